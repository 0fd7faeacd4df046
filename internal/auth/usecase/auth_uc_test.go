package usecase

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Monkfuego/rentsetu-prereleasebe/internal/apperror"
	"github.com/Monkfuego/rentsetu-prereleasebe/internal/auth/domain"
	"github.com/Monkfuego/rentsetu-prereleasebe/internal/auth/token"
	"github.com/Monkfuego/rentsetu-prereleasebe/internal/platform/logger"
)

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendOTP(ctx context.Context, toEmail, code string, ttl time.Duration) error {
	args := m.Called(ctx, toEmail, code, ttl)
	return args.Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, subject string, data interface{}) error {
	args := m.Called(ctx, subject, data)
	return args.Error(0)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) ConsumeOTP(ctx context.Context, userID, code, refreshToken string, now time.Time) error {
	return m.Called(ctx, userID, code, refreshToken, now).Error(0)
}

func (m *MockUserRepository) SetRefreshToken(ctx context.Context, userID, refreshToken string) error {
	return m.Called(ctx, userID, refreshToken).Error(0)
}

// memoryUsers mirrors the conditional-update semantics of the Mongo store.
type memoryUsers struct {
	mu     sync.Mutex
	nextID int
	byID   map[string]*domain.User
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{byID: map[string]*domain.User{}}
}

func (r *memoryUsers) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Email == user.Email {
			return domain.ErrUserExists
		}
	}
	r.nextID++
	user.ID = "user-" + strconv.Itoa(r.nextID)
	cp := *user
	r.byID[user.ID] = &cp
	return nil
}

func (r *memoryUsers) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *memoryUsers) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memoryUsers) ConsumeOTP(_ context.Context, userID, code, refreshToken string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[userID]
	if !ok || u.OTP == nil || *u.OTP != code || u.OTPExpires == nil || now.After(*u.OTPExpires) {
		return domain.ErrInvalidOrExpiredOTP
	}
	u.OTP, u.OTPExpires = nil, nil
	u.IsVerified = true
	u.RefreshToken = &refreshToken
	return nil
}

func (r *memoryUsers) SetRefreshToken(_ context.Context, userID, refreshToken string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.RefreshToken = &refreshToken
	return nil
}

type fixture struct {
	uc      *AuthUsecase
	users   *memoryUsers
	mailer  *MockMailer
	events  *MockPublisher
	tokens  *token.Manager
	clock   time.Time
	sentOTP string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		users:  newMemoryUsers(),
		mailer: new(MockMailer),
		events: new(MockPublisher),
		tokens: token.NewManager("access", "refresh", time.Hour, 7*24*time.Hour),
		clock:  time.Now(),
	}
	f.uc = NewAuthUsecase(f.users, f.mailer, f.events, f.tokens, 10*time.Minute, logger.NewNop())
	f.uc.now = func() time.Time { return f.clock }
	f.uc.generateOTP = func() (string, error) { return "123456", nil }

	f.mailer.On("SendOTP", mock.Anything, mock.Anything, mock.Anything, 10*time.Minute).
		Run(func(args mock.Arguments) { f.sentOTP = args.String(2) }).
		Return(nil).Maybe()
	f.events.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	return f
}

func (f *fixture) signupAndVerify(t *testing.T, email, password string) *domain.TokenPair {
	t.Helper()
	require.NoError(t, f.uc.Signup(context.Background(), SignupInput{Email: email, Password: password}))
	pair, err := f.uc.VerifyOTP(context.Background(), VerifyOTPInput{Email: email, OTP: f.sentOTP})
	require.NoError(t, err)
	return pair
}

func TestSignup_CreatesUnverifiedUserAndMailsCode(t *testing.T) {
	f := newFixture(t)

	err := f.uc.Signup(context.Background(), SignupInput{Email: "a@x.io", Password: "secret1"})
	require.NoError(t, err)

	u, err := f.users.FindByEmail(context.Background(), "a@x.io")
	require.NoError(t, err)
	assert.False(t, u.IsVerified)
	assert.NotEqual(t, "secret1", u.PasswordHash)
	require.NotNil(t, u.OTP)
	require.NotNil(t, u.OTPExpires)
	assert.Equal(t, "123456", *u.OTP)
	assert.Equal(t, f.clock.Add(10*time.Minute), *u.OTPExpires)
	assert.Equal(t, "123456", f.sentOTP)

	f.mailer.AssertNumberOfCalls(t, "SendOTP", 1)
	f.events.AssertCalled(t, "Publish", mock.Anything, domain.SubjectUserSignedUp, mock.Anything)
}

func TestSignup_Validation(t *testing.T) {
	f := newFixture(t)

	err := f.uc.Signup(context.Background(), SignupInput{Email: "not-an-email", Password: "123"})

	var appErr *apperror.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.KindValidation, appErr.Kind)
	require.Len(t, appErr.Fields, 2)
	assert.Equal(t, apperror.FieldError{Field: "email", Message: "Please include a valid email"}, appErr.Fields[0])
	assert.Equal(t, apperror.FieldError{Field: "password", Message: "Password must be 6 or more characters"}, appErr.Fields[1])
	f.mailer.AssertNotCalled(t, "SendOTP", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSignup_PasswordOverBcryptLimit(t *testing.T) {
	f := newFixture(t)

	err := f.uc.Signup(context.Background(), SignupInput{Email: "a@x.io", Password: strings.Repeat("p", 80)})

	var appErr *apperror.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.KindValidation, appErr.Kind)
	assert.Equal(t, []apperror.FieldError{{Field: "password", Message: "Password must be at most 72 bytes"}}, appErr.Fields)
	f.mailer.AssertNotCalled(t, "SendOTP", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	require.NoError(t, f.uc.Signup(context.Background(), SignupInput{Email: "b@x.io", Password: strings.Repeat("p", 72)}))
}

func TestSignup_Duplicate(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.uc.Signup(context.Background(), SignupInput{Email: "a@x.io", Password: "secret1"}))

	err := f.uc.Signup(context.Background(), SignupInput{Email: "a@x.io", Password: "another"})

	assert.ErrorIs(t, err, domain.ErrUserExists)
	f.mailer.AssertNumberOfCalls(t, "SendOTP", 1)
}

func TestSignup_InsertRaceMapsToConflict(t *testing.T) {
	repo := new(MockUserRepository)
	repo.On("FindByEmail", mock.Anything, "a@x.io").Return(nil, domain.ErrUserNotFound)
	repo.On("Create", mock.Anything, mock.Anything).Return(domain.ErrUserExists)
	mailer := new(MockMailer)
	uc := NewAuthUsecase(repo, mailer, new(MockPublisher), token.NewManager("a", "b", time.Hour, time.Hour), 10*time.Minute, logger.NewNop())

	err := uc.Signup(context.Background(), SignupInput{Email: "a@x.io", Password: "secret1"})

	assert.ErrorIs(t, err, domain.ErrUserExists)
	mailer.AssertNotCalled(t, "SendOTP", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSignup_MailFailureIsUpstream(t *testing.T) {
	users := newMemoryUsers()
	mailer := new(MockMailer)
	mailer.On("SendOTP", mock.Anything, "a@x.io", mock.Anything, mock.Anything).Return(errors.New("smtp down"))
	events := new(MockPublisher)
	uc := NewAuthUsecase(users, mailer, events, token.NewManager("a", "b", time.Hour, time.Hour), 10*time.Minute, logger.NewNop())

	err := uc.Signup(context.Background(), SignupInput{Email: "a@x.io", Password: "secret1"})

	assert.Equal(t, apperror.KindUpstream, apperror.KindOf(err))
	events.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestVerifyOTP_Success(t *testing.T) {
	f := newFixture(t)
	pair := f.signupAndVerify(t, "a@x.io", "secret1")

	userID, err := f.tokens.ParseRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	u, err := f.users.FindByID(context.Background(), userID)
	require.NoError(t, err)
	assert.True(t, u.IsVerified)
	assert.Nil(t, u.OTP)
	assert.Nil(t, u.OTPExpires)
	require.NotNil(t, u.RefreshToken)
	assert.Equal(t, pair.RefreshToken, *u.RefreshToken)
}

func TestVerifyOTP_AcceptedAtMostOnce(t *testing.T) {
	f := newFixture(t)
	f.signupAndVerify(t, "a@x.io", "secret1")

	_, err := f.uc.VerifyOTP(context.Background(), VerifyOTPInput{Email: "a@x.io", OTP: "123456"})
	assert.ErrorIs(t, err, domain.ErrInvalidOrExpiredOTP)
}

func TestVerifyOTP_ConcurrentAttemptsSucceedOnce(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.uc.Signup(context.Background(), SignupInput{Email: "a@x.io", Password: "secret1"}))

	var ok int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.uc.VerifyOTP(context.Background(), VerifyOTPInput{Email: "a@x.io", OTP: "123456"}); err == nil {
				atomic.AddInt32(&ok, 1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), ok)
}

func TestVerifyOTP_Rejections(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.uc.Signup(context.Background(), SignupInput{Email: "a@x.io", Password: "secret1"}))

	_, err := f.uc.VerifyOTP(context.Background(), VerifyOTPInput{Email: "missing@x.io", OTP: "123456"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = f.uc.VerifyOTP(context.Background(), VerifyOTPInput{Email: "a@x.io", OTP: "654321"})
	assert.ErrorIs(t, err, domain.ErrInvalidOrExpiredOTP)

	_, err = f.uc.VerifyOTP(context.Background(), VerifyOTPInput{Email: "a@x.io", OTP: ""})
	assert.ErrorIs(t, err, domain.ErrInvalidOrExpiredOTP)

	f.clock = f.clock.Add(10*time.Minute + time.Second)
	_, err = f.uc.VerifyOTP(context.Background(), VerifyOTPInput{Email: "a@x.io", OTP: "123456"})
	assert.ErrorIs(t, err, domain.ErrInvalidOrExpiredOTP)
}

func TestLogin_FailuresIndistinguishable(t *testing.T) {
	f := newFixture(t)
	f.signupAndVerify(t, "a@x.io", "secret1")

	_, errUnknown := f.uc.Login(context.Background(), LoginInput{Email: "nobody@x.io", Password: "secret1"})
	_, errWrong := f.uc.Login(context.Background(), LoginInput{Email: "a@x.io", Password: "wrong-pass"})

	assert.ErrorIs(t, errUnknown, domain.ErrInvalidCredentials)
	assert.ErrorIs(t, errWrong, domain.ErrInvalidCredentials)
	assert.Equal(t, errUnknown.Error(), errWrong.Error())
}

func TestRefresh_OnlyLatestTokenAccepted(t *testing.T) {
	f := newFixture(t)
	first := f.signupAndVerify(t, "a@x.io", "secret1")

	second, err := f.uc.Login(context.Background(), LoginInput{Email: "a@x.io", Password: "secret1"})
	require.NoError(t, err)
	require.NotEqual(t, first.RefreshToken, second.RefreshToken)

	_, err = f.uc.Refresh(context.Background(), first.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrInvalidRefreshToken)

	access, err := f.uc.Refresh(context.Background(), second.RefreshToken)
	require.NoError(t, err)
	_, err = f.tokens.ParseAccessToken(access)
	assert.NoError(t, err)
}

func TestRefresh_Rejections(t *testing.T) {
	f := newFixture(t)
	pair := f.signupAndVerify(t, "a@x.io", "secret1")

	_, err := f.uc.Refresh(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrMissingRefreshToken)

	_, err = f.uc.Refresh(context.Background(), "garbage")
	assert.ErrorIs(t, err, domain.ErrInvalidRefreshToken)

	// an access token is signed with the other secret
	_, err = f.uc.Refresh(context.Background(), pair.AccessToken)
	assert.ErrorIs(t, err, domain.ErrInvalidRefreshToken)
}

func TestRandomOTP_Format(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := randomOTP()
		require.NoError(t, err)
		assert.Len(t, code, 6)
		_, err = strconv.Atoi(code)
		assert.NoError(t, err)
	}
}
