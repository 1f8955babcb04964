// Package mailer delivers magic-link emails. When SMTP is not
// configured it degrades to mock mode: Send reports Mock=true and the
// caller is expected to present the link through another channel
// instead of failing the flow.
package mailer

import (
	"fmt"
	"net/smtp"

	"swingtrack/internal/config"
	"swingtrack/internal/logger"
)

// Result reports the outcome of a send attempt.
type Result struct {
	Delivered bool `json:"delivered"`
	Mock      bool `json:"mock"`
}

// Mailer sends HTML emails.
type Mailer interface {
	Send(to, subject, htmlBody string) (Result, error)
}

type smtpMailer struct {
	host      string
	port      string
	user      string
	pass      string
	fromEmail string
	fromName  string
}

// New creates a Mailer from the application configuration.
func New(cfg *config.Config) Mailer {
	return &smtpMailer{
		host:      cfg.SMTPHost,
		port:      cfg.SMTPPort,
		user:      cfg.SMTPUser,
		pass:      cfg.SMTPPass,
		fromEmail: cfg.FromEmail,
		fromName:  "Swing Tracker",
	}
}

func (m *smtpMailer) configured() bool {
	return m.host != "" && m.user != "" && m.pass != ""
}

// Send delivers an HTML email over SMTP with STARTTLS. An unconfigured
// mailer returns Mock=true and no error.
func (m *smtpMailer) Send(to, subject, htmlBody string) (Result, error) {
	if !m.configured() {
		logger.Get().Infow("mailer not configured, returning mock result", "to", to, "subject", subject)
		return Result{Mock: true}, nil
	}

	msg := fmt.Sprintf(
		"From: %s <%s>\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		m.fromName, m.fromEmail, to, subject, htmlBody,
	)

	auth := smtp.PlainAuth("", m.user, m.pass, m.host)
	addr := m.host + ":" + m.port
	if err := smtp.SendMail(addr, auth, m.fromEmail, []string{to}, []byte(msg)); err != nil {
		return Result{}, fmt.Errorf("sending mail to %s: %w", to, err)
	}

	return Result{Delivered: true}, nil
}
