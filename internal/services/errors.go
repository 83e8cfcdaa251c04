// Package services holds the query logic behind the governance endpoints.
// This file centralizes service-level error values so callers can check them
// with errors.Is; translation into client-visible codes happens in handlers.
package services

import "errors"

var (
	// ErrAccessLogNotFound indicates that no access log has the requested id.
	ErrAccessLogNotFound = errors.New("access log not found")

	// ErrStoreDisabled is returned when access logs are not persisted.
	ErrStoreDisabled = errors.New("access log store disabled")
)
