package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errExists = New(KindConflict, "User already exists")

func TestError_IsMatchesSentinelThroughWrapping(t *testing.T) {
	err := fmt.Errorf("signup: %w", errExists)

	assert.True(t, errors.Is(err, errExists))
	assert.False(t, errors.Is(err, New(KindConflict, "other")))
	assert.Equal(t, KindConflict, KindOf(err))
}

func TestWrap_UnwrapsCause(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := Wrap(KindUpstream, "failed to send email", cause)

	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "failed to send email: dial tcp: connection refused", err.Error())
	assert.Equal(t, KindUpstream, KindOf(err))
}

func TestValidation_AggregatesFields(t *testing.T) {
	err := Validation(
		FieldError{Field: "email", Message: "Please include a valid email"},
		FieldError{Field: "password", Message: "Password must be 6 or more characters"},
	)

	var appErr *Error
	require.True(t, errors.As(err, &appErr))
	assert.Len(t, appErr.Fields, 2)
	assert.Contains(t, err.Error(), "email: Please include a valid email")
}

func TestKindOf_PlainError(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("x")))
	assert.Equal(t, "internal", KindOf(nil).String())
}
