// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file provides structured request logging and a request ID injector:
//
//   - RequestID() ensures every request carries a stable correlation ID
//     (propagated via X-Request-ID and stored in the Gin context).
//   - Logger() emits one structured line per request with request/response
//     metadata (latency, status, sizes, classified error), attaches a
//     request-scoped zerolog.Logger, and scrubs obvious PII from the query
//     string and header values before they reach the log.
//   - LoggerFrom() retrieves the request-scoped logger to enrich logs within
//     handlers and the failure pipeline.
//
// Recommended order:
//  1. RequestID()
//  2. StartTimer()
//  3. Logger(opts)
//  4. Errors(h) / Recovery(h)
//
// Request and response bodies are never logged.
package middleware

import (
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	// requestIDKey is the Gin context key under which the request ID is stored.
	requestIDKey = "requestID"
	// RequestIDHeader is the HTTP header used to propagate the correlation ID.
	RequestIDHeader = "X-Request-ID"
	// loggerKey is the Gin context key of the request-scoped logger.
	loggerKey = "logger"
	// maxQueryLogLength caps the number of bytes of the raw query string logged.
	maxQueryLogLength = 2048
)

// RequestID attaches (or propagates) a correlation identifier per request.
// An incoming X-Request-ID is reused, otherwise a new UUIDv4 is generated.
// The ID is echoed on the response and stored under the "requestID" key.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(RequestIDHeader)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(requestIDKey, rid)
		c.Writer.Header().Set(RequestIDHeader, rid)
		c.Next()
	}
}

// RequestIDFrom returns the correlation ID set by RequestID, or "".
func RequestIDFrom(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// RedactOptions configures scrubbing for Logger.
//
// MaskHeaders lists extra header names whose values are fully replaced with
// "[REDACTED]". Matching is case-insensitive and merged with the built-in
// set (Authorization, Cookie, Set-Cookie). LogHeaders turns header logging on.
type RedactOptions struct {
	MaskHeaders []string
	LogHeaders  bool
}

// Redact UUIDs before phone numbers so the loose phone pattern cannot eat the
// digit/hyphen segments of an ID.
var (
	uuidRE  = regexp.MustCompile(`(?i)\b[0-9a-f]{8}\-[0-9a-f]{4}\-[1-5][0-9a-f]{3}\-[89ab][0-9a-f]{3}\-[0-9a-f]{12}\b`)
	emailRE = regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`)
	phoneRE = regexp.MustCompile(`\b(?:\+?\d{1,3}[ .-]?)?(?:\(?\d{2,4}\)?[ .-]?)?\d{3,4}[ .-]?\d{4}\b`)
)

func redact(s string) string {
	if s == "" {
		return s
	}
	s = uuidRE.ReplaceAllString(s, "[REDACTED:id]")
	s = emailRE.ReplaceAllString(s, "[REDACTED:email]")
	return phoneRE.ReplaceAllString(s, "[REDACTED:phone]")
}

// Logger writes a structured line for each request.
//
// It stores a request-scoped zerolog.Logger under the "logger" key so
// downstream code can emit enriched logs tied to the request. The level is
// chosen by outcome: error when the request carries a classified error or
// Gin errors, or for 5xx; warn for 4xx; info otherwise. Because failures are
// answered with status 200, the classified error code is what marks them.
func Logger(opts RedactOptions) gin.HandlerFunc {
	mask := map[string]struct{}{
		"authorization": {},
		"cookie":        {},
		"set-cookie":    {},
	}
	for _, h := range opts.MaskHeaders {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			mask[h] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		start := time.Now()
		if t, ok := StartTime(c); ok {
			start = t
		}

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		lc := log.With().
			Str("request_id", RequestIDFrom(c)).
			Str("method", c.Request.Method).
			Str("path", path).
			Str("remote_ip", ResolveClientIP(c.Request)).
			Str("user_agent", c.Request.UserAgent()).
			Str("query", truncate(redact(c.Request.URL.RawQuery), maxQueryLogLength)).
			Int64("bytes_in", c.Request.ContentLength)
		if opts.LogHeaders {
			lc = lc.Interface("headers", scrubHeaders(c, mask))
		}
		l := lc.Logger()
		c.Set(loggerKey, &l)

		c.Next()

		status := c.Writer.Status()
		ev := l.With().
			Str("user_id", UserID(c)).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Int("bytes_out", c.Writer.Size()).
			Logger()

		code, msg, failed := ErrorFrom(c)
		switch {
		case failed:
			ev.Error().Int("error_code", code).Str("error_msg", msg).Msg("request")
		case len(c.Errors) > 0:
			ev.Error().Str("errors", c.Errors.String()).Msg("request")
		case status >= 500:
			ev.Error().Msg("request")
		case status >= 400:
			ev.Warn().Msg("request")
		default:
			ev.Info().Msg("request")
		}
	}
}

func scrubHeaders(c *gin.Context, mask map[string]struct{}) map[string]string {
	out := make(map[string]string, len(c.Request.Header))
	for k, vv := range c.Request.Header {
		if _, ok := mask[strings.ToLower(k)]; ok {
			out[k] = "[REDACTED]"
			continue
		}
		out[k] = redact(strings.Join(vv, ", "))
	}
	return out
}

// LoggerFrom returns the request-scoped zerolog.Logger, or a fallback logger
// without request fields when Logger was not installed.
func LoggerFrom(c *gin.Context) *zerolog.Logger {
	if v, ok := c.Get(loggerKey); ok {
		if lg, ok := v.(*zerolog.Logger); ok {
			return lg
		}
	}
	l := log.With().Logger()
	return &l
}

// truncate returns s cut to max bytes plus an ellipsis. max <= 0 disables it.
func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max] + "…"
}
