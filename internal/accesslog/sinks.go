package accesslog

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/go-http-governance/internal/domain"
	"github.com/tbourn/go-http-governance/internal/repo"
)

// LogHandler writes each record as one structured log line. A nil Logger
// uses the global zerolog logger.
type LogHandler struct {
	Logger *zerolog.Logger
}

// Handle implements Handler.
func (h LogHandler) Handle(_ context.Context, rec domain.AccessLog) error {
	lg := h.Logger
	if lg == nil {
		lg = &log.Logger
	}
	params := rec.Params
	if params == "" {
		params = "{}"
	}
	ev := lg.Info()
	if rec.Failed() {
		ev = lg.Warn()
	}
	ev.
		Str("access_log_id", rec.ID).
		Time("access_time", rec.AccessTime).
		Int64("time_cost_ms", rec.TimeCost).
		Str("client_host", rec.ClientHost).
		Str("user_id", rec.UserID).
		Str("method", rec.Method).
		Str("path", rec.Path).
		RawJSON("params", []byte(params)).
		Int("api_version", rec.APIVersion).
		Int("platform", rec.Platform).
		Str("server_id", rec.ServerID).
		Int("status", rec.Status).
		Int("error_code", rec.ErrorCode).
		Str("error_msg", rec.ErrorMsg).
		Str("request_id", rec.RequestID).
		Str("trace_id", rec.TraceID).
		Str("locale", rec.Locale).
		Msg("access")
	return nil
}

// StoreHandler persists records through GORM.
type StoreHandler struct {
	DB *gorm.DB
}

// Handle implements Handler. The insert is detached from request
// cancellation.
func (h StoreHandler) Handle(ctx context.Context, rec domain.AccessLog) error {
	if h.DB == nil {
		return errors.New("accesslog: store handler has no database")
	}
	return repo.CreateAccessLog(context.WithoutCancel(ctx), h.DB, &rec)
}

// Multi fans a record out to every handler, joining their errors.
type Multi []Handler

// Handle implements Handler.
func (m Multi) Handle(ctx context.Context, rec domain.AccessLog) error {
	var errs []error
	for _, h := range m {
		if h == nil {
			continue
		}
		if err := h.Handle(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
