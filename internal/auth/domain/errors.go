package domain

import "github.com/Monkfuego/rentsetu-prereleasebe/internal/apperror"

var (
	ErrUserExists          = apperror.New(apperror.KindConflict, "User already exists")
	ErrUserNotFound        = apperror.New(apperror.KindNotFound, "User not found")
	ErrInvalidOrExpiredOTP = apperror.New(apperror.KindInvalidOrExpired, "Invalid or expired OTP")
	ErrInvalidCredentials  = apperror.New(apperror.KindInvalidCredentials, "Invalid credentials")
	ErrMissingRefreshToken = apperror.New(apperror.KindUnauthorized, "No refresh token provided")
	ErrInvalidRefreshToken = apperror.New(apperror.KindUnauthorized, "Invalid refresh token")
	ErrMissingAccessToken  = apperror.New(apperror.KindUnauthorized, "No token, authorization denied")
	ErrInvalidAccessToken  = apperror.New(apperror.KindUnauthorized, "Token is not valid")
)
