// Package faults defines the closed set of fault kinds that can reach the
// request failure pipeline and the classifier that maps any of them to a
// stable, client-visible (errorCode, errorMsg) pair.
//
// Fault families:
//   - ProtocolError: request/response shape problems detected by the
//     transport (media types, unreadable bodies, wrong method, missing or
//     mismatched parameters, unknown routes). Each carries a Kind.
//   - ServerError / ClientError: domain faults that report their own code.
//   - AuthFailedError / OverloadError: policy faults whose code is resolved by
//     an optional ErrorCodeResolver.
//
// Anything else collapses to a generic server error.
package faults

import "fmt"

// Kind enumerates the protocol-level fault kinds.
type Kind int

const (
	KindConversionNotSupported Kind = iota + 1
	KindMediaTypeNotAcceptable
	KindMediaTypeNotSupported
	KindMessageNotReadable
	KindMessageNotWritable
	KindMethodNotSupported
	KindMissingParameter
	KindNoHandler
	KindTypeMismatch
)

var kindNames = map[Kind]string{
	KindConversionNotSupported: "conversion_not_supported",
	KindMediaTypeNotAcceptable: "media_type_not_acceptable",
	KindMediaTypeNotSupported:  "media_type_not_supported",
	KindMessageNotReadable:     "message_not_readable",
	KindMessageNotWritable:     "message_not_writable",
	KindMethodNotSupported:     "method_not_supported",
	KindMissingParameter:       "missing_parameter",
	KindNoHandler:              "no_handler",
	KindTypeMismatch:           "type_mismatch",
}

// String returns the snake_case name of k.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ProtocolError is a transport-shape fault. Msg is the raw, client-safe
// message; Err optionally carries the underlying cause.
type ProtocolError struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *ProtocolError) Error() string {
	if e.Msg == "" && e.Err != nil {
		return e.Err.Error()
	}
	return e.Msg
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// Is reports whether target is a ProtocolError of the same Kind, so callers
// can write errors.Is(err, &ProtocolError{Kind: KindNoHandler}).
func (e *ProtocolError) Is(target error) bool {
	t, ok := target.(*ProtocolError)
	return ok && t.Kind == e.Kind && t.Msg == "" && t.Err == nil
}

// ConversionNotSupported reports that a handler result could not be converted
// to the response type.
func ConversionNotSupported(err error) error {
	return &ProtocolError{Kind: KindConversionNotSupported, Msg: "conversion not supported", Err: err}
}

// MediaTypeNotAcceptable reports that none of the offered media types is
// acceptable to the client.
func MediaTypeNotAcceptable(accept string) error {
	return &ProtocolError{
		Kind: KindMediaTypeNotAcceptable,
		Msg:  fmt.Sprintf("Could not find acceptable representation for Accept: %s", accept),
	}
}

// MediaTypeNotSupported reports a request Content-Type the route cannot read.
func MediaTypeNotSupported(contentType string) error {
	return &ProtocolError{
		Kind: KindMediaTypeNotSupported,
		Msg:  fmt.Sprintf("Content type '%s' not supported", contentType),
	}
}

// MessageNotReadable reports an unreadable or malformed request body.
func MessageNotReadable(err error) error {
	msg := "Required request body is missing or malformed"
	if err != nil {
		msg = "Could not read request body: " + err.Error()
	}
	return &ProtocolError{Kind: KindMessageNotReadable, Msg: msg, Err: err}
}

// MessageNotWritable reports a response body that could not be written.
func MessageNotWritable(err error) error {
	return &ProtocolError{Kind: KindMessageNotWritable, Msg: "could not write response body", Err: err}
}

// MethodNotSupported reports a method the matched route does not accept.
func MethodNotSupported(method string) error {
	return &ProtocolError{
		Kind: KindMethodNotSupported,
		Msg:  fmt.Sprintf("Request method '%s' not supported", method),
	}
}

// MissingParameter reports a required request parameter that is absent. The
// message quotes the parameter name; the classifier extracts it from there.
func MissingParameter(name, typ string) error {
	if typ == "" {
		typ = "string"
	}
	return &ProtocolError{
		Kind: KindMissingParameter,
		Msg:  fmt.Sprintf("Required %s parameter '%s' is not present", typ, name),
	}
}

// NoHandler reports that no route matched the request.
func NoHandler(method, path string) error {
	return &ProtocolError{
		Kind: KindNoHandler,
		Msg:  fmt.Sprintf("No handler found for %s %s", method, path),
	}
}

// TypeMismatch reports a parameter whose value cannot be converted to the
// declared type.
func TypeMismatch(field string, value any, err error) error {
	return &ProtocolError{
		Kind: KindTypeMismatch,
		Msg:  fmt.Sprintf("Failed to convert value '%v' of field '%s'", value, field),
		Err:  err,
	}
}

// ServerError is a domain fault originating on the server side. Its Code and
// Msg are returned to the client verbatim.
type ServerError struct {
	Code int
	Msg  string
	Err  error
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error %d: %s", e.Code, e.Msg)
}

func (e *ServerError) Unwrap() error { return e.Err }

// NewServer builds a ServerError.
func NewServer(code int, msg string) *ServerError { return &ServerError{Code: code, Msg: msg} }

// ClientError is a domain fault caused by the caller. Its Code and Msg are
// returned to the client verbatim.
type ClientError struct {
	Code int
	Msg  string
	Err  error
}

func (e *ClientError) Error() string {
	return fmt.Sprintf("client error %d: %s", e.Code, e.Msg)
}

func (e *ClientError) Unwrap() error { return e.Err }

// NewClient builds a ClientError.
func NewClient(code int, msg string) *ClientError { return &ClientError{Code: code, Msg: msg} }

// AuthFailedError signals that the request could not be authenticated.
type AuthFailedError struct {
	Reason string
}

func (e *AuthFailedError) Error() string {
	if e.Reason == "" {
		return "auth failed"
	}
	return "auth failed: " + e.Reason
}

// ErrAuthFailed is the reason-less authentication fault.
var ErrAuthFailed error = &AuthFailedError{}

// AuthFailed builds an AuthFailedError carrying a diagnostic reason. The
// reason is logged but never shown to the client.
func AuthFailed(reason string) error { return &AuthFailedError{Reason: reason} }

// OverloadError signals an admission-control rejection for Path.
type OverloadError struct {
	Path string
}

func (e *OverloadError) Error() string {
	if e.Path == "" {
		return "overload suffered"
	}
	return "overload suffered on " + e.Path
}

// Overload builds an OverloadError for the given versioned path.
func Overload(path string) error { return &OverloadError{Path: path} }

// Panic wraps a recovered panic value as a fault. It belongs to no known
// family and therefore classifies as a generic server error.
func Panic(v any) error {
	if err, ok := v.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}
	return fmt.Errorf("panic: %v", v)
}
