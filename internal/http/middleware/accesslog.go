package middleware

import "github.com/gin-gonic/gin"

// Emitter assembles and ships the access log record of a finished request.
type Emitter interface {
	Emit(c *gin.Context)
}

// AccessLog emits an access log record for every request the failure
// pipeline did not already log. Emission runs after the handler chain.
func AccessLog(e Emitter) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if e == nil || AccessLogged(c) {
			return
		}
		defer func() {
			if rec := recover(); rec != nil {
				LoggerFrom(c).Error().Interface("panic", rec).Msg("access log emission failed")
			}
		}()
		e.Emit(c)
		MarkAccessLogged(c)
	}
}
