package usecase

import (
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Monkfuego/rentsetu-prereleasebe/internal/apperror"
	"github.com/Monkfuego/rentsetu-prereleasebe/internal/property/domain"
)

const (
	MaxFileSize = 5 << 20

	objectPrefix = "rentsetu"

	ResourceImage = "image"
	ResourceRaw   = "raw"
)

var allowedContentTypes = map[string]struct{}{
	"image/jpeg":      {},
	"image/png":       {},
	"application/pdf": {},
}

// ValidateFile checks the content type and size of a single upload.
func ValidateFile(f domain.File) error {
	if _, ok := allowedContentTypes[strings.ToLower(f.ContentType)]; !ok {
		return domain.ErrUnsupportedFileType
	}
	if f.Size > MaxFileSize {
		return domain.ErrFileTooLarge
	}
	return nil
}

// FileFieldErrors reports files sent under an unknown field and fields over
// their cap, one entry per offending field in order of first appearance.
func FileFieldErrors(files []domain.File) []apperror.FieldError {
	limits := make(map[string]int, len(domain.UploadFields))
	for _, uf := range domain.UploadFields {
		limits[uf.Name] = uf.MaxCount
	}
	counts := make(map[string]int, len(limits))
	reported := make(map[string]bool)
	var out []apperror.FieldError
	for _, f := range files {
		if reported[f.Field] {
			continue
		}
		limit, ok := limits[f.Field]
		if !ok {
			reported[f.Field] = true
			out = append(out, apperror.FieldError{Field: f.Field, Message: "Unexpected field"})
			continue
		}
		counts[f.Field]++
		if counts[f.Field] > limit {
			reported[f.Field] = true
			out = append(out, apperror.FieldError{
				Field:   f.Field,
				Message: fmt.Sprintf("Too many files, at most %d allowed", limit),
			})
		}
	}
	return out
}

// ValidateFiles returns the aggregated FileFieldErrors, if any, and otherwise
// the first per-file type or size failure.
func ValidateFiles(files []domain.File) error {
	if fields := FileFieldErrors(files); len(fields) > 0 {
		return apperror.Validation(fields...)
	}
	return validateEach(files)
}

func validateEach(files []domain.File) error {
	for _, f := range files {
		if err := ValidateFile(f); err != nil {
			return err
		}
	}
	return nil
}

// ResourceType is "image" for image/* content and "raw" otherwise.
func ResourceType(contentType string) string {
	if strings.HasPrefix(strings.ToLower(contentType), "image/") {
		return ResourceImage
	}
	return ResourceRaw
}

// ObjectKey builds rentsetu/<field>/<unixMillis>-<requestID>-<name>. The
// request ID keeps two registrations in the same millisecond apart.
func ObjectKey(field, name, requestID string, at time.Time) string {
	return objectPrefix + "/" + field + "/" + strconv.FormatInt(at.UnixMilli(), 10) + "-" + requestID + "-" + SanitizeName(name)
}

func newUploadID() string {
	return uuid.NewString()[:8]
}

// SanitizeName keeps the base name and replaces anything outside
// [A-Za-z0-9._-] with an underscore.
func SanitizeName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "file"
	}
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// uniqueNames suffixes repeated names within one field so two files sent in
// the same request never share a key.
func uniqueNames(files []domain.File) []string {
	names := make([]string, len(files))
	seen := make(map[string]int, len(files))
	for i, f := range files {
		name := SanitizeName(f.Name)
		k := f.Field + "/" + name
		n := seen[k]
		seen[k] = n + 1
		if n > 0 {
			ext := path.Ext(name)
			name = strings.TrimSuffix(name, ext) + "-" + strconv.Itoa(n) + ext
		}
		names[i] = name
	}
	return names
}
