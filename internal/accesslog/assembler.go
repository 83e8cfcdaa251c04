// Package accesslog builds the structured access record of a served request
// and hands it to a pluggable sink.
//
// The Assembler is shared by the failure pipeline (records carrying a
// classified error) and the AccessLog middleware (successful requests). Every
// collaborator is optional:
//
//   - Handler nil: records are assembled and dropped.
//   - Identity nil: ServerID is "".
//   - Resolve nil: the proxy-aware middleware.ResolveClientIP is used.
//   - Now nil: time.Now.
//
// The only hard requirement is the start-time marker set by
// middleware.StartTimer; assembling without it panics.
package accesslog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/language"

	"github.com/tbourn/go-http-governance/internal/domain"
	"github.com/tbourn/go-http-governance/internal/http/middleware"
	"github.com/tbourn/go-http-governance/internal/utils"
)

// Request parameters read into every record.
const (
	ParamAPIVersion = "apiVersion"
	ParamPlatform   = "platform"
)

// ErrNoStartTime is the panic value raised when the start marker is missing.
var ErrNoStartTime = errors.New("accesslog: request start time not set; install middleware.StartTimer")

// Handler persists or forwards an assembled record.
type Handler interface {
	Handle(ctx context.Context, rec domain.AccessLog) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, rec domain.AccessLog) error

// Handle calls f(ctx, rec).
func (f HandlerFunc) Handle(ctx context.Context, rec domain.AccessLog) error { return f(ctx, rec) }

// ServerIdentity names the serving instance.
type ServerIdentity interface {
	ServerID() string
}

// StaticIdentity is a fixed server id.
type StaticIdentity string

// ServerID returns s.
func (s StaticIdentity) ServerID() string { return string(s) }

// AddressResolver extracts the client address from a request.
type AddressResolver func(*http.Request) string

// Assembler builds and emits access records.
type Assembler struct {
	Handler  Handler
	Identity ServerIdentity
	Resolve  AddressResolver
	Now      func() time.Time
}

// Assemble builds the record for the request in c. It panics with
// ErrNoStartTime when middleware.StartTimer did not run.
func (a *Assembler) Assemble(c *gin.Context) domain.AccessLog {
	start, ok := middleware.StartTime(c)
	if !ok {
		panic(ErrNoStartTime)
	}
	now := time.Now
	resolve := middleware.ResolveClientIP
	var identity ServerIdentity
	if a != nil {
		if a.Now != nil {
			now = a.Now
		}
		if a.Resolve != nil {
			resolve = a.Resolve
		}
		identity = a.Identity
	}
	end := now()
	req := c.Request
	params := requestParams(req)

	rec := domain.AccessLog{
		ID:         uuid.NewString(),
		AccessTime: end.UTC(),
		StartTime:  start.UTC(),
		EndTime:    end.UTC(),
		TimeCost:   end.Sub(start).Milliseconds(),
		ClientHost: resolve(req),
		UserID:     middleware.UserID(c),
		Params:     encodeParams(params),
		Path:       req.URL.Path,
		Method:     req.Method,
		APIVersion: utils.AtoiDefault(params.Get(ParamAPIVersion), 0),
		Platform:   utils.AtoiDefault(params.Get(ParamPlatform), 0),
		Status:     c.Writer.Status(),
		RequestID:  middleware.RequestIDFrom(c),
		Locale:     locale(req),
	}
	if identity != nil {
		rec.ServerID = identity.ServerID()
	}
	if sc := trace.SpanContextFromContext(req.Context()); sc.HasTraceID() {
		rec.TraceID = sc.TraceID().String()
	}
	if code, msg, ok := middleware.ErrorFrom(c); ok {
		rec.ErrorCode = code
		rec.ErrorMsg = msg
	}
	return rec
}

// Emit assembles the record, logs the request time, and hands the record to
// the Handler. Sink errors are logged, never returned.
func (a *Assembler) Emit(c *gin.Context) {
	rec := a.Assemble(c)
	middleware.MarkAccessLogged(c)

	lg := middleware.LoggerFrom(c)
	lg.Info().Int64("time_cost_ms", rec.TimeCost).Msg("REQUEST_TIME")

	if a == nil || a.Handler == nil {
		return
	}
	if err := a.Handler.Handle(c.Request.Context(), rec); err != nil {
		lg.Warn().Err(err).Str("access_log_id", rec.ID).Msg("access log sink failed")
	}
}

// requestParams merges query and form values. Bodies already consumed by a
// handler contribute nothing.
func requestParams(r *http.Request) url.Values {
	if r.Form == nil {
		_ = r.ParseForm()
	}
	if r.Form != nil {
		return r.Form
	}
	return r.URL.Query()
}

func encodeParams(p url.Values) string {
	if len(p) == 0 {
		return "{}"
	}
	b, err := json.Marshal(p)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// locale returns the preferred Accept-Language tag, or "".
func locale(r *http.Request) string {
	h := r.Header.Get("Accept-Language")
	if h == "" {
		return ""
	}
	tags, _, err := language.ParseAcceptLanguage(h)
	if err != nil || len(tags) == 0 {
		return ""
	}
	return tags[0].String()
}
