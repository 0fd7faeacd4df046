package mailer

import (
	"context"
	"fmt"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/Monkfuego/rentsetu-prereleasebe/internal/config"
	"github.com/Monkfuego/rentsetu-prereleasebe/internal/platform/logger"
)

const otpSubject = "Verify Your Email - RentSetu"

// Dialer sends fully built messages; *gomail.Dialer satisfies it.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type Mailer struct {
	dialer Dialer
	from   string
	logger *logger.Logger
}

func New(cfg config.SMTPConfig, log *logger.Logger) *Mailer {
	return NewWithDialer(gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password), cfg.Username, log)
}

func NewWithDialer(d Dialer, from string, log *logger.Logger) *Mailer {
	return &Mailer{dialer: d, from: from, logger: log.Named("Mailer")}
}

// SendOTP mails the verification code. The SMTP exchange itself is not
// cancellable; ctx is only checked before dialing.
func (m *Mailer) SendOTP(ctx context.Context, toEmail, code string, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", toEmail)
	msg.SetHeader("Subject", otpSubject)
	msg.SetBody("text/plain", otpBody(code, ttl))

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send otp email to %s: %w", toEmail, err)
	}
	m.logger.Info("Mailer.SendOTP: otp email sent", "to", toEmail)
	return nil
}

func otpBody(code string, ttl time.Duration) string {
	return fmt.Sprintf("Your OTP is %s. It expires in %d minutes.", code, int(ttl.Minutes()))
}
