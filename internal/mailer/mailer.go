package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"matrimony-server/internal/config"
)

// Mailer delivers transactional email over SMTP.
type Mailer interface {
	SendOTP(to, subject, code string, validMinutes int) error
}

type smtpMailer struct {
	dialer *gomail.Dialer
	from   string
}

// New creates a Mailer from SMTP configuration.
func New(cfg config.MailerConfig) Mailer {
	return &smtpMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

// SendOTP emails a one-time code. The code is only valid for a short window,
// so failures here must roll back whatever state change produced the code.
func (m *smtpMailer) SendOTP(to, subject, code string, validMinutes int) error {
	body := fmt.Sprintf(
		"<h3>Welcome to Matrimony! Trusted matchmaking service.</h3>"+
			"<p>Your One-Time Passcode (OTP) is:</p><h2><b>%s</b></h2>"+
			"<p>This code is valid for %d minute(s).</p>",
		code, validMinutes)

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}
