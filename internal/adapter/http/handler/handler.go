package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/Monkfuego/rentsetu-prereleasebe/internal/apperror"
)

const (
	maxJSONBody      = 1 << 20
	msgMalformedBody = "Invalid request body"
)

// decodeJSON reads a JSON object into dst. An empty body leaves dst zero.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return apperror.Wrap(apperror.KindValidation, msgMalformedBody, err)
	}
	return nil
}
