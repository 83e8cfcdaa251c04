package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/tbourn/go-http-governance/internal/faults"
	"github.com/tbourn/go-http-governance/internal/http/middleware"
)

// ErrorResponse documents the failure body in the OpenAPI document.
type ErrorResponse = faults.Classified

// ConfigureBinding makes gin's validator report form/json tag names, so
// missing-parameter messages name what the client sent.
func ConfigureBinding() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		faults.UseWireNames(v)
	}
}

// fail hands err to the failure pipeline via the Errors middleware.
func fail(c *gin.Context, err error) {
	middleware.Fail(c, err)
}

// bindQuery binds query parameters into obj, translating binding errors
// into faults.
func bindQuery(c *gin.Context, obj any) error {
	return faults.FromQueryBinding(c.ShouldBindQuery(obj))
}

// ok writes a success JSON response.
func ok(c *gin.Context, body any) {
	c.JSON(http.StatusOK, body)
}
