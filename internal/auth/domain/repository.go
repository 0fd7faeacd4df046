package domain

import (
	"context"
	"time"
)

type UserRepository interface {
	// Create inserts the user and sets its ID. A duplicate email yields
	// ErrUserExists.
	Create(ctx context.Context, user *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	// ConsumeOTP clears the pending code, marks the user verified and stores
	// the refresh token, only if the stored code still equals code. It
	// returns ErrInvalidOrExpiredOTP when nothing matched.
	ConsumeOTP(ctx context.Context, userID, code, refreshToken string, now time.Time) error
	SetRefreshToken(ctx context.Context, userID, refreshToken string) error
}

type Mailer interface {
	SendOTP(ctx context.Context, toEmail, code string, ttl time.Duration) error
}

type EventPublisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
}

const (
	SubjectUserSignedUp = "user.signed_up"
	SubjectUserVerified = "user.verified"
)
