// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file defines the request-scoped context keys shared between the
// middleware chain, the failure pipeline and the access log assembler, plus
// the StartTimer middleware that stamps every request with its start time.
//
// Key ownership:
//   - CtxKeyStartTime: written by StartTimer, read by the access log assembler.
//   - CtxKeyUserID:    written by Authenticate (or any upstream auth layer).
//   - CtxKeyErrorCode / CtxKeyErrorMsg: written by the failure pipeline after
//     classification, read by the access log assembler.
//   - ctxKeyAccessLogged: set once a record has been emitted for the request.
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

const (
	CtxKeyStartTime = "request.start"
	CtxKeyUserID    = "userID"
	CtxKeyErrorCode = "response.error_code"
	CtxKeyErrorMsg  = "response.error_msg"

	ctxKeyAccessLogged = "accesslog.emitted"
)

// StartTimer records the request start time under CtxKeyStartTime. Install
// it first so the recorded cost covers the whole chain.
func StartTimer() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(CtxKeyStartTime, time.Now())
		c.Next()
	}
}

// StartTime returns the marker set by StartTimer.
func StartTime(c *gin.Context) (time.Time, bool) {
	v, ok := c.Get(CtxKeyStartTime)
	if !ok {
		return time.Time{}, false
	}
	t, ok := v.(time.Time)
	return t, ok
}

// UserID returns the authenticated user id, or "" for anonymous requests.
func UserID(c *gin.Context) string {
	return c.GetString(CtxKeyUserID)
}

// SetError stashes a classified error on the request.
func SetError(c *gin.Context, code int, msg string) {
	c.Set(CtxKeyErrorCode, code)
	c.Set(CtxKeyErrorMsg, msg)
}

// ErrorFrom returns the classified error stashed by SetError.
func ErrorFrom(c *gin.Context) (code int, msg string, ok bool) {
	v, ok := c.Get(CtxKeyErrorCode)
	if !ok {
		return 0, "", false
	}
	code, _ = v.(int)
	msg = c.GetString(CtxKeyErrorMsg)
	return code, msg, true
}

// MarkAccessLogged records that an access log was emitted for c.
func MarkAccessLogged(c *gin.Context) { c.Set(ctxKeyAccessLogged, true) }

// AccessLogged reports whether MarkAccessLogged was called for c.
func AccessLogged(c *gin.Context) bool { return c.GetBool(ctxKeyAccessLogged) }
