package mailer

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/Monkfuego/rentsetu-prereleasebe/internal/platform/logger"
)

type captureDialer struct {
	sent []*gomail.Message
	err  error
}

func (d *captureDialer) DialAndSend(m ...*gomail.Message) error {
	d.sent = append(d.sent, m...)
	return d.err
}

func TestSendOTP_BuildsMessage(t *testing.T) {
	d := &captureDialer{}
	m := NewWithDialer(d, "noreply@rentsetu.in", logger.NewNop())

	err := m.SendOTP(context.Background(), "user@example.com", "042137", 10*time.Minute)
	require.NoError(t, err)
	require.Len(t, d.sent, 1)

	msg := d.sent[0]
	assert.Equal(t, []string{"noreply@rentsetu.in"}, msg.GetHeader("From"))
	assert.Equal(t, []string{"user@example.com"}, msg.GetHeader("To"))
	assert.Equal(t, []string{"Verify Your Email - RentSetu"}, msg.GetHeader("Subject"))

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Your OTP is 042137. It expires in 10 minutes.")
}

func TestSendOTP_DialerError(t *testing.T) {
	d := &captureDialer{err: errors.New("535 auth failed")}
	m := NewWithDialer(d, "noreply@rentsetu.in", logger.NewNop())

	err := m.SendOTP(context.Background(), "user@example.com", "111111", 10*time.Minute)
	assert.ErrorContains(t, err, "535 auth failed")
}

func TestSendOTP_CancelledContext(t *testing.T) {
	d := &captureDialer{}
	m := NewWithDialer(d, "noreply@rentsetu.in", logger.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := m.SendOTP(ctx, "user@example.com", "111111", 10*time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, d.sent)
}
