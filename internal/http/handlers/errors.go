// Domain fault codes returned by the governance endpoints. They travel in the
// errorCode field of the failure body next to the protocol and policy codes
// (400, 404, 1001, 2001, ...).

package handlers

import (
	"errors"

	"github.com/tbourn/go-http-governance/internal/faults"
	"github.com/tbourn/go-http-governance/internal/services"
)

const (
	CodeAccessLogNotFound = 4404
	CodeStoreDisabled     = 5003
	CodeQueryFailed       = 5010
)

// serviceFault maps service errors to domain faults.
func serviceFault(err error) error {
	switch {
	case errors.Is(err, services.ErrAccessLogNotFound):
		return faults.NewClient(CodeAccessLogNotFound, "access log not found")
	case errors.Is(err, services.ErrStoreDisabled):
		return faults.NewServer(CodeStoreDisabled, "access log store disabled")
	default:
		e := faults.NewServer(CodeQueryFailed, "access log query failed")
		e.Err = err
		return e
	}
}
