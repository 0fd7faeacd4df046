package usecase

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"

	"github.com/Monkfuego/rentsetu-prereleasebe/internal/apperror"
	"github.com/Monkfuego/rentsetu-prereleasebe/internal/auth/domain"
	"github.com/Monkfuego/rentsetu-prereleasebe/internal/platform/logger"
	"github.com/Monkfuego/rentsetu-prereleasebe/internal/platform/validation"
)

const (
	bcryptCost = 10
	otpDigits  = 6

	MsgOTPSent = "OTP sent to email"
)

// TokenManager mints and verifies the JWTs handed out by the auth flows.
type TokenManager interface {
	GenerateAccessToken(userID string) (string, error)
	GenerateRefreshToken(userID string) (string, error)
	ParseRefreshToken(token string) (string, error)
}

type SignupInput struct {
	Email string `json:"email" validate:"required,email" msg:"Please include a valid email"`
	// bcrypt only hashes the first 72 bytes and rejects longer input.
	Password string `json:"password" validate:"min=6,maxbytes=72" msg:"Password must be 6 or more characters" msg_maxbytes:"Password must be at most 72 bytes"`
}

type VerifyOTPInput struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthUsecase struct {
	users     domain.UserRepository
	mailer    domain.Mailer
	events    domain.EventPublisher
	tokens    TokenManager
	validator *validation.Validator
	otpTTL    time.Duration
	logger    *logger.Logger
	tracer    trace.Tracer

	now         func() time.Time
	generateOTP func() (string, error)
}

func NewAuthUsecase(
	users domain.UserRepository,
	mailer domain.Mailer,
	events domain.EventPublisher,
	tokens TokenManager,
	otpTTL time.Duration,
	log *logger.Logger,
) *AuthUsecase {
	return &AuthUsecase{
		users:       users,
		mailer:      mailer,
		events:      events,
		tokens:      tokens,
		validator:   validation.New(),
		otpTTL:      otpTTL,
		logger:      log,
		tracer:      otel.Tracer("rentsetu/auth"),
		now:         time.Now,
		generateOTP: randomOTP,
	}
}

// Signup registers an unverified account and mails it a one-time code.
func (uc *AuthUsecase) Signup(ctx context.Context, in SignupInput) error {
	ctx, span := uc.tracer.Start(ctx, "AuthUsecase.Signup")
	defer span.End()

	if fields := uc.validator.Struct(in); fields != nil {
		return apperror.Validation(fields...)
	}
	uc.logger.Info("AuthUsecase.Signup: registering user", "email", in.Email)

	existing, err := uc.users.FindByEmail(ctx, in.Email)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		uc.logger.Error("AuthUsecase.Signup: failed to look up user", "email", in.Email, "error", err.Error())
		return apperror.Wrap(apperror.KindPersistence, "failed to look up user", err)
	}
	if existing != nil {
		return domain.ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return apperror.Wrap(apperror.KindInternal, "failed to hash password", err)
	}
	code, err := uc.generateOTP()
	if err != nil {
		return apperror.Wrap(apperror.KindInternal, "failed to generate otp", err)
	}

	now := uc.now()
	expires := now.Add(uc.otpTTL)
	user := &domain.User{
		Email:        in.Email,
		PasswordHash: string(hash),
		OTP:          &code,
		OTPExpires:   &expires,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return domain.ErrUserExists
		}
		uc.logger.Error("AuthUsecase.Signup: failed to create user", "email", in.Email, "error", err.Error())
		return apperror.Wrap(apperror.KindPersistence, "failed to create user", err)
	}
	span.SetAttributes(attribute.String("user.id", user.ID))

	if err := uc.mailer.SendOTP(ctx, in.Email, code, uc.otpTTL); err != nil {
		uc.logger.Error("AuthUsecase.Signup: failed to send otp", "user_id", user.ID, "error", err.Error())
		return apperror.Wrap(apperror.KindUpstream, "failed to send otp email", err)
	}

	uc.publish(ctx, domain.SubjectUserSignedUp, map[string]string{"userId": user.ID, "email": user.Email})
	return nil
}

// VerifyOTP consumes the pending code and returns the first token pair.
func (uc *AuthUsecase) VerifyOTP(ctx context.Context, in VerifyOTPInput) (*domain.TokenPair, error) {
	ctx, span := uc.tracer.Start(ctx, "AuthUsecase.VerifyOTP")
	defer span.End()

	user, err := uc.users.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, apperror.Wrap(apperror.KindPersistence, "failed to look up user", err)
	}

	now := uc.now()
	if user.OTP == nil || user.OTPExpires == nil || in.OTP == "" ||
		subtle.ConstantTimeCompare([]byte(*user.OTP), []byte(in.OTP)) != 1 ||
		now.After(*user.OTPExpires) {
		uc.logger.Warn("AuthUsecase.VerifyOTP: rejected code", "user_id", user.ID)
		return nil, domain.ErrInvalidOrExpiredOTP
	}

	pair, err := uc.issuePair(user.ID)
	if err != nil {
		return nil, err
	}
	if err := uc.users.ConsumeOTP(ctx, user.ID, in.OTP, pair.RefreshToken, now); err != nil {
		if errors.Is(err, domain.ErrInvalidOrExpiredOTP) {
			return nil, domain.ErrInvalidOrExpiredOTP
		}
		uc.logger.Error("AuthUsecase.VerifyOTP: failed to consume otp", "user_id", user.ID, "error", err.Error())
		return nil, apperror.Wrap(apperror.KindPersistence, "failed to verify user", err)
	}

	uc.logger.Info("AuthUsecase.VerifyOTP: user verified", "user_id", user.ID)
	uc.publish(ctx, domain.SubjectUserVerified, map[string]string{"userId": user.ID})
	return pair, nil
}

// Login does not distinguish an unknown email from a wrong password.
func (uc *AuthUsecase) Login(ctx context.Context, in LoginInput) (*domain.TokenPair, error) {
	ctx, span := uc.tracer.Start(ctx, "AuthUsecase.Login")
	defer span.End()

	user, err := uc.users.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, apperror.Wrap(apperror.KindPersistence, "failed to look up user", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	pair, err := uc.issuePair(user.ID)
	if err != nil {
		return nil, err
	}
	if err := uc.users.SetRefreshToken(ctx, user.ID, pair.RefreshToken); err != nil {
		uc.logger.Error("AuthUsecase.Login: failed to store refresh token", "user_id", user.ID, "error", err.Error())
		return nil, apperror.Wrap(apperror.KindPersistence, "failed to store refresh token", err)
	}
	return pair, nil
}

// Refresh exchanges the stored refresh token for a new access token. Only the
// most recently issued refresh token is accepted.
func (uc *AuthUsecase) Refresh(ctx context.Context, refreshToken string) (string, error) {
	ctx, span := uc.tracer.Start(ctx, "AuthUsecase.Refresh")
	defer span.End()

	if refreshToken == "" {
		return "", domain.ErrMissingRefreshToken
	}
	userID, err := uc.tokens.ParseRefreshToken(refreshToken)
	if err != nil {
		return "", domain.ErrInvalidRefreshToken
	}
	user, err := uc.users.FindByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			uc.logger.Error("AuthUsecase.Refresh: failed to look up user", "user_id", userID, "error", err.Error())
		}
		return "", domain.ErrInvalidRefreshToken
	}
	if user.RefreshToken == nil ||
		subtle.ConstantTimeCompare([]byte(*user.RefreshToken), []byte(refreshToken)) != 1 {
		return "", domain.ErrInvalidRefreshToken
	}

	access, err := uc.tokens.GenerateAccessToken(user.ID)
	if err != nil {
		return "", apperror.Wrap(apperror.KindInternal, "failed to sign token", err)
	}
	return access, nil
}

func (uc *AuthUsecase) issuePair(userID string) (*domain.TokenPair, error) {
	access, err := uc.tokens.GenerateAccessToken(userID)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "failed to sign token", err)
	}
	refresh, err := uc.tokens.GenerateRefreshToken(userID)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "failed to sign token", err)
	}
	return &domain.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (uc *AuthUsecase) publish(ctx context.Context, subject string, data interface{}) {
	if err := uc.events.Publish(ctx, subject, data); err != nil {
		uc.logger.Warn("AuthUsecase: failed to publish event", "subject", subject, "error", err.Error())
	}
}

func randomOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", otpDigits, n.Int64()), nil
}
