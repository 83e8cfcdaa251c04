package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-http-governance/internal/faults"
	"github.com/tbourn/go-http-governance/internal/registry"
)

// OverloadEnforcer admits or rejects one request for a registered full path.
type OverloadEnforcer interface {
	Allow(ctx context.Context, fullPath string) (bool, error)
}

// LimitLookup is implemented by enforcers that can report the limit
// registered for a path. Rejection logs include it when available.
type LimitLookup interface {
	Lookup(fullPath string) (registry.Limit, bool)
}

// Overload enforces the per-path limits collected by the route walker. The
// matched route pattern (c.FullPath()) is the lookup key, so unmatched
// requests pass through. Enforcer errors fail open and are logged.
func Overload(e OverloadEnforcer) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath()
		if e == nil || path == "" {
			c.Next()
			return
		}

		ok, err := e.Allow(c.Request.Context(), path)
		if err != nil {
			LoggerFrom(c).Warn().Err(err).Str("path", path).Msg("overload check failed, admitting")
			c.Next()
			return
		}
		if !ok {
			overloadRejects.WithLabelValues(path).Inc()
			ev := LoggerFrom(c).Info().Str("path", path)
			if ll, isLookup := e.(LimitLookup); isLookup {
				if l, found := ll.Lookup(path); found {
					ev = ev.Int("threshold", l.Threshold).Dur("window", l.Window)
				}
			}
			ev.Msg("overload rejected")
			Fail(c, faults.Overload(path))
			return
		}
		c.Next()
	}
}
