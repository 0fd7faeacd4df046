package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"sort"

	"github.com/Monkfuego/rentsetu-prereleasebe/internal/adapter/http/middleware"
	"github.com/Monkfuego/rentsetu-prereleasebe/internal/adapter/http/response"
	"github.com/Monkfuego/rentsetu-prereleasebe/internal/apperror"
	"github.com/Monkfuego/rentsetu-prereleasebe/internal/auth/domain"
	"github.com/Monkfuego/rentsetu-prereleasebe/internal/platform/logger"
	propdomain "github.com/Monkfuego/rentsetu-prereleasebe/internal/property/domain"
	"github.com/Monkfuego/rentsetu-prereleasebe/internal/property/usecase"
)

const (
	multipartMemory = 32 << 20
	// every accepted file at the size cap plus room for the text parts
	maxRegisterBody = 16*usecase.MaxFileSize + 1<<20
)

type PropertyService interface {
	Register(ctx context.Context, in usecase.RegisterInput) (*propdomain.Property, error)
	ListMine(ctx context.Context, userID string) ([]*propdomain.Property, error)
}

type PropertyHandler struct {
	properties PropertyService
	logger     *logger.Logger
}

func NewPropertyHandler(properties PropertyService, log *logger.Logger) *PropertyHandler {
	return &PropertyHandler{properties: properties, logger: log.Named("PropertyHTTPHandler")}
}

type registerResponse struct {
	Message  string               `json:"message"`
	Property *propdomain.Property `json:"property"`
}

func (h *PropertyHandler) Register(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.Message(w, http.StatusUnauthorized, domain.ErrMissingAccessToken.Message)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxRegisterBody)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(w, h.logger, propdomain.ErrFileTooLarge)
			return
		}
		response.Error(w, h.logger, apperror.Wrap(apperror.KindValidation, "Invalid multipart form", err))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	in := usecase.RegisterInput{UserID: userID, Files: collectFiles(r.MultipartForm)}
	var fields []apperror.FieldError
	if err := decodeJSONPart(r.MultipartForm, "personalDetails", &in.PersonalDetails); err != nil {
		fields = append(fields, apperror.FieldError{Field: "personalDetails", Message: "Invalid JSON"})
	}
	if err := decodeJSONPart(r.MultipartForm, "propertyDetails", &in.PropertyDetails); err != nil {
		fields = append(fields, apperror.FieldError{Field: "propertyDetails", Message: "Invalid JSON"})
	}
	if len(fields) > 0 {
		response.Error(w, h.logger, apperror.Validation(fields...))
		return
	}

	property, err := h.properties.Register(r.Context(), in)
	if err != nil {
		response.Error(w, h.logger, err)
		return
	}
	response.JSON(w, http.StatusCreated, registerResponse{Message: propdomain.MsgRegistered, Property: property})
}

func (h *PropertyHandler) MyProperties(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.Message(w, http.StatusUnauthorized, domain.ErrMissingAccessToken.Message)
		return
	}
	properties, err := h.properties.ListMine(r.Context(), userID)
	if err != nil {
		response.Error(w, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, properties)
}

// decodeJSONPart fills dst from a text part holding a JSON object. A missing
// part leaves dst zero so field validation reports what is required.
func decodeJSONPart(form *multipart.Form, name string, dst interface{}) error {
	values := form.Value[name]
	if len(values) == 0 || values[0] == "" {
		return nil
	}
	return json.Unmarshal([]byte(values[0]), dst)
}

// collectFiles lists the known upload fields first, in document order, then
// any other file fields sorted by name.
func collectFiles(form *multipart.Form) []propdomain.File {
	names := make([]string, 0, len(form.File))
	known := make(map[string]bool, len(propdomain.UploadFields))
	for _, uf := range propdomain.UploadFields {
		known[uf.Name] = true
		names = append(names, uf.Name)
	}
	var unknown []string
	for name := range form.File {
		if !known[name] {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	names = append(names, unknown...)

	var files []propdomain.File
	for _, name := range names {
		for _, fh := range form.File[name] {
			fh := fh
			files = append(files, propdomain.File{
				Field:       name,
				Name:        fh.Filename,
				ContentType: fh.Header.Get("Content-Type"),
				Size:        fh.Size,
				Open: func() (io.ReadCloser, error) {
					return fh.Open()
				},
			})
		}
	}
	return files
}
