package faults

import (
	"encoding/json"
	"errors"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// FromBinding translates an error returned by gin's ShouldBind* family into
// a fault of the matching protocol kind. Errors that already are faults are
// returned unchanged; nil stays nil.
func FromBinding(err error) error {
	if f, ok := known(err); ok {
		return f
	}

	// json.SyntaxError, io.EOF on an empty body, http.MaxBytesError, ...
	return MessageNotReadable(err)
}

// FromQueryBinding is FromBinding for query and form binding. No body is
// read there, so any value that fails to decode is a type mismatch.
func FromQueryBinding(err error) error {
	if f, ok := known(err); ok {
		return f
	}
	return TypeMismatch("query", "", err)
}

// known translates the binding errors whose kind does not depend on where
// the value came from. ok is false for unrecognized decode errors.
func known(err error) (error, bool) {
	if err == nil || isFault(err) {
		return err, true
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		if fe.Tag() == "required" {
			return MissingParameter(fieldName(fe), fe.Kind().String()), true
		}
		return TypeMismatch(fieldName(fe), fe.Value(), err), true
	}

	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		return TypeMismatch(numErr.Func, numErr.Num, err), true
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return TypeMismatch(typeErr.Field, typeErr.Value, err), true
	}
	var timeErr *time.ParseError
	if errors.As(err, &timeErr) {
		return TypeMismatch(timeErr.Layout, timeErr.Value, err), true
	}
	return nil, false
}

// fieldName prefers the wire name recorded by the validator (json/form tag
// when a tag name func is registered) and lower-cases the first rune of
// struct field names otherwise.
func fieldName(fe validator.FieldError) string {
	name := fe.Field()
	if name == "" {
		return fe.StructField()
	}
	if name == fe.StructField() && len(name) > 0 {
		return strings.ToLower(name[:1]) + name[1:]
	}
	return name
}

func isFault(err error) bool { return outermost(err) != nil }

// UseWireNames makes v report field names from `form`, then `json` struct
// tags, so missing-parameter messages name the parameter as the client sent
// it.
func UseWireNames(v *validator.Validate) {
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"form", "json", "uri"} {
			name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return ""
	})
}
