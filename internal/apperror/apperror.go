// Package apperror defines the error taxonomy shared by the use cases and
// translated to HTTP responses at the request boundary.
package apperror

import (
	"errors"
	"strings"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindNotFound
	KindInvalidOrExpired
	KindInvalidCredentials
	KindUnauthorized
	KindUnsupportedMediaType
	KindPayloadTooLarge
	KindUpstream
	KindPersistence
)

var kindNames = map[Kind]string{
	KindInternal:             "internal",
	KindValidation:           "validation",
	KindConflict:             "conflict",
	KindNotFound:             "not_found",
	KindInvalidOrExpired:     "invalid_or_expired",
	KindInvalidCredentials:   "invalid_credentials",
	KindUnauthorized:         "unauthorized",
	KindUnsupportedMediaType: "unsupported_media_type",
	KindPayloadTooLarge:      "payload_too_large",
	KindUpstream:             "upstream_failure",
	KindPersistence:          "persistence_failure",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// FieldError is one entry of an aggregated validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Error struct {
	Kind    Kind
	Message string
	Fields  []FieldError
	Err     error
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Validation aggregates field errors into a single KindValidation error.
func Validation(fields ...FieldError) *Error {
	return &Error{Kind: KindValidation, Message: "validation failed", Fields: fields}
}

func (e *Error) Error() string {
	if e.Err == nil {
		if len(e.Fields) == 0 {
			return e.Message
		}
		msgs := make([]string, 0, len(e.Fields))
		for _, f := range e.Fields {
			msgs = append(msgs, f.Field+": "+f.Message)
		}
		return e.Message + ": " + strings.Join(msgs, "; ")
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports kind+message equality so a wrapped copy of a sentinel still
// matches it.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

// KindOf returns the kind of the first *Error in err's chain, or
// KindInternal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}
