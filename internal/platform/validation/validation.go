// Package validation wraps go-playground/validator so failures come back as
// apperror field errors named after the JSON wire fields.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Monkfuego/rentsetu-prereleasebe/internal/apperror"
)

// Validator reads an optional `msg_<rule>` or `msg` struct tag for the
// user-facing message of a failing field, in that order.
//
// Besides the built-in rules it understands maxbytes=N, a cap on the UTF-8
// byte length of a string.
type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	// registration only fails for an empty tag or nil func
	_ = v.RegisterValidation("maxbytes", maxBytes)
	return &Validator{v: v}
}

// Struct returns nil when s is valid and the per-field failures otherwise.
func (val *Validator) Struct(s interface{}) []apperror.FieldError {
	err := val.v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []apperror.FieldError{{Field: "", Message: err.Error()}}
	}

	root := reflect.TypeOf(s)
	out := make([]apperror.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, apperror.FieldError{
			Field:   trimRoot(fe.Namespace()),
			Message: messageFor(root, fe),
		})
	}
	return out
}

func maxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(fl.Field().String()) <= limit
}

func trimRoot(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func messageFor(root reflect.Type, fe validator.FieldError) string {
	if f, ok := lookupField(root, fe.StructNamespace()); ok {
		if msg := f.Tag.Get("msg_" + fe.Tag()); msg != "" {
			return msg
		}
		if msg := f.Tag.Get("msg"); msg != "" {
			return msg
		}
	}
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return "Please include a valid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "maxbytes":
		return fmt.Sprintf("%s must be at most %s bytes", fe.Field(), fe.Param())
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters", fe.Field(), fe.Param())
	case "numeric":
		return fe.Field() + " must be numeric"
	default:
		return fe.Field() + " is invalid"
	}
}

// lookupField walks a struct namespace such as "Input.Details.Name" from root.
func lookupField(root reflect.Type, structNS string) (reflect.StructField, bool) {
	parts := strings.Split(structNS, ".")
	if len(parts) < 2 {
		return reflect.StructField{}, false
	}
	t := root
	var field reflect.StructField
	for _, part := range parts[1:] {
		for t.Kind() == reflect.Ptr || t.Kind() == reflect.Slice {
			t = t.Elem()
		}
		if t.Kind() != reflect.Struct {
			return reflect.StructField{}, false
		}
		if i := strings.IndexByte(part, '['); i >= 0 {
			part = part[:i]
		}
		f, ok := t.FieldByName(part)
		if !ok {
			return reflect.StructField{}, false
		}
		field = f
		t = f.Type
	}
	return field, true
}
