package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-http-governance/internal/faults"
)

// UserIDHeader carries the caller identity asserted by the upstream gateway.
const UserIDHeader = "X-User-ID"

// Authenticator extracts the caller identity from a request. A non-nil error
// or an empty id rejects the request.
type Authenticator func(c *gin.Context) (userID string, err error)

// HeaderAuthenticator trusts the X-User-ID header set by the gateway.
func HeaderAuthenticator(c *gin.Context) (string, error) {
	uid := strings.TrimSpace(c.GetHeader(UserIDHeader))
	if uid == "" {
		return "", faults.AuthFailed("missing " + UserIDHeader)
	}
	return uid, nil
}

// Authenticate stores the authenticated user under CtxKeyUserID, or fails
// the request with an authentication fault. A nil fn uses HeaderAuthenticator.
func Authenticate(fn Authenticator) gin.HandlerFunc {
	if fn == nil {
		fn = HeaderAuthenticator
	}
	return func(c *gin.Context) {
		uid, err := fn(c)
		if err != nil || uid == "" {
			var af *faults.AuthFailedError
			switch {
			case err == nil:
				err = faults.ErrAuthFailed
			case !errors.As(err, &af):
				err = faults.AuthFailed(err.Error())
			}
			Fail(c, err)
			return
		}
		c.Set(CtxKeyUserID, uid)
		c.Next()
	}
}
