// Package handlers provides the HTTP failure pipeline and the governance
// endpoints.
//
// Every request failure, whatever its origin (handler error, panic, unknown
// route, wrong method, overload, authentication), ends in Pipeline.Handle,
// which:
//
//  1. logs the fault with the request-scoped logger,
//  2. forces the transport status to 200,
//  3. classifies the fault into (errorCode, errorMsg),
//  4. stashes the pair on the request context,
//  5. emits the access log (best effort),
//  6. writes {"errorCode":N,"errorMsg":"..."} as UTF-8 JSON, flushes, and
//     aborts the handler chain.
//
// Example failure response:
//
//	HTTP/1.1 200 OK
//	Content-Type: application/json; charset=UTF-8
//
//	{"errorCode":2001,"errorMsg":"auth failed"}
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-http-governance/internal/faults"
	"github.com/tbourn/go-http-governance/internal/http/middleware"
)

// ContentType is the content type of every failure response.
const ContentType = "application/json; charset=UTF-8"

// Pipeline turns faults into in-band error responses. Both fields are
// optional: a nil Classifier uses the default codes, a nil Emitter skips
// access logging.
type Pipeline struct {
	Classifier *faults.Classifier
	Emitter    middleware.Emitter
}

// NewPipeline constructs a Pipeline.
func NewPipeline(cl *faults.Classifier, e middleware.Emitter) *Pipeline {
	return &Pipeline{Classifier: cl, Emitter: e}
}

// Handle implements middleware.FaultHandler. It never panics and never
// returns the fault further.
func (p *Pipeline) Handle(c *gin.Context, err error) {
	var (
		cl *faults.Classifier
		em middleware.Emitter
	)
	if p != nil {
		cl, em = p.Classifier, p.Emitter
	}

	lg := middleware.LoggerFrom(c)
	lg.Error().
		Err(err).
		Str("method", c.Request.Method).
		Str("uri", c.Request.URL.RequestURI()).
		Msg("request failed")

	c.Status(http.StatusOK)

	out := cl.Classify(err)
	middleware.SetError(c, out.Code, out.Msg)
	middleware.ObserveFailure(cl.Rule(err), out.Code)

	if em != nil && !middleware.AccessLogged(c) {
		emit(c, em)
	}

	body, merr := json.Marshal(out)
	if merr != nil {
		body = []byte(`{"errorCode":500,"errorMsg":"server error"}`)
	}
	c.Data(http.StatusOK, ContentType, body)
	c.Writer.Flush()
	c.Abort()
}

// emit runs the emitter, containing panics and marking the request so the
// success-path middleware does not log it again.
func emit(c *gin.Context, em middleware.Emitter) {
	defer func() {
		middleware.MarkAccessLogged(c)
		if rec := recover(); rec != nil {
			middleware.LoggerFrom(c).Error().Interface("panic", rec).Msg("access log emission failed")
		}
	}()
	em.Emit(c)
}

// NoRoute answers requests that matched no route.
func (p *Pipeline) NoRoute(c *gin.Context) {
	p.Handle(c, faults.NoHandler(c.Request.Method, c.Request.URL.Path))
}

// NoMethod answers requests whose path exists under another method.
func (p *Pipeline) NoMethod(c *gin.Context) {
	p.Handle(c, faults.MethodNotSupported(c.Request.Method))
}
