package domain

import "time"

// User is an account. OTP and OTPExpires are set together on signup and
// cleared together once the code is consumed.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	OTP          *string
	OTPExpires   *time.Time
	RefreshToken *string
	IsVerified   bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TokenPair is returned by verification and login.
type TokenPair struct {
	AccessToken  string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}
