package domain

import "github.com/Monkfuego/rentsetu-prereleasebe/internal/apperror"

const MsgRegistered = "Property registered successfully"

var (
	ErrUnsupportedFileType = apperror.New(apperror.KindUnsupportedMediaType, "Invalid file type. Only JPEG, PNG, PDF allowed.")
	ErrFileTooLarge        = apperror.New(apperror.KindPayloadTooLarge, "File too large")
)
