// Package response writes the JSON bodies returned by every route.
package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Monkfuego/rentsetu-prereleasebe/internal/apperror"
	"github.com/Monkfuego/rentsetu-prereleasebe/internal/platform/logger"
)

const MsgServerError = "Server error"

type MessageBody struct {
	Message string `json:"message"`
}

type ServerErrorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

type ValidationBody struct {
	Errors []apperror.FieldError `json:"errors"`
}

func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func Message(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, MessageBody{Message: msg})
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind apperror.Kind) int {
	switch kind {
	case apperror.KindValidation,
		apperror.KindConflict,
		apperror.KindNotFound,
		apperror.KindInvalidOrExpired,
		apperror.KindInvalidCredentials,
		apperror.KindUnsupportedMediaType,
		apperror.KindPayloadTooLarge:
		return http.StatusBadRequest
	case apperror.KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Error writes err using the apperror taxonomy. Anything that is not an
// *apperror.Error is treated as internal.
func Error(w http.ResponseWriter, log *logger.Logger, err error) {
	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		appErr = apperror.Wrap(apperror.KindInternal, "unexpected error", err)
	}

	status := StatusFor(appErr.Kind)
	switch {
	case appErr.Kind == apperror.KindValidation && len(appErr.Fields) > 0:
		JSON(w, status, ValidationBody{Errors: appErr.Fields})
	case status >= http.StatusInternalServerError:
		log.Error("request failed", "kind", appErr.Kind.String(), "error", err.Error())
		JSON(w, status, ServerErrorBody{Message: MsgServerError, Error: appErr.Error()})
	default:
		Message(w, status, appErr.Message)
	}
}
