package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-http-governance/internal/faults"
)

// FaultHandler turns a request failure into the client response. The HTTP
// failure pipeline is the production implementation.
type FaultHandler interface {
	Handle(c *gin.Context, err error)
}

// FaultHandlerFunc adapts a function to FaultHandler.
type FaultHandlerFunc func(c *gin.Context, err error)

// Handle calls f(c, err).
func (f FaultHandlerFunc) Handle(c *gin.Context, err error) { f(c, err) }

// Errors routes the last error a handler attached with c.Error to h, once
// the chain has returned. When a response was already written it cannot be
// replaced; the failure is only stashed as a server error so the access log
// still records it.
func Errors(h FaultHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		if c.Writer.Written() {
			markLateFailure(c)
			LoggerFrom(c).Warn().Err(c.Errors.Last().Err).Msg("fault after response was written")
			return
		}
		h.Handle(c, c.Errors.Last().Err)
	}
}

// markLateFailure stashes a generic server error unless one was already
// classified for c.
func markLateFailure(c *gin.Context) {
	if _, _, ok := ErrorFrom(c); !ok {
		SetError(c, faults.CodeServerError, faults.MsgServerError)
	}
}

// Recovery intercepts panics, logs the stack, and hands the panic value to h
// as a server error. When the response is already on the wire the status is
// forced and a server error is stashed for the access log.
func Recovery(h FaultHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			log.Error().
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Str("request_id", RequestIDFrom(c)).
				Msg("panic recovered")

			if c.Writer.Written() {
				markLateFailure(c)
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
			h.Handle(c, faults.Panic(rec))
		}()
		c.Next()
	}
}

// Fail records err on the context and stops the chain. Handlers return right
// after calling it; Errors picks the error up.
func Fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
