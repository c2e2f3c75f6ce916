package mailer

import (
	"fmt"
	"net/smtp"

	"github.com/rs/zerolog"

	"eventman/cmd/buildCFG"
)

// Mailer sends attendee notification emails. A Mailer with an empty host
// silently drops every send, so SMTP stays optional in development.
type Mailer struct {
	cfg buildCFG.SMTPConfig
	log *zerolog.Logger
}

func New(cfg buildCFG.SMTPConfig, log *zerolog.Logger) *Mailer {
	return &Mailer{cfg: cfg, log: log}
}

func (m *Mailer) SendRegistered(eventName, recipient string) error {
	subject := "Registration confirmed"
	body := fmt.Sprintf("Hello!\n\nYou are registered for %q. See you there!", eventName)
	return m.send(recipient, subject, body)
}

func (m *Mailer) SendCheckedIn(eventName, recipient string) error {
	subject := "Checked in"
	body := fmt.Sprintf("Hello!\n\nYou have been checked in to %q. Enjoy the event!", eventName)
	return m.send(recipient, subject, body)
}

func (m *Mailer) send(recipient, subject, body string) error {
	if m.cfg.Host == "" {
		m.log.Debug().Str("email", recipient).Msg("SMTP not configured, skipping email")
		return nil
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		m.cfg.From, recipient, subject, body,
	)

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	auth := smtp.PlainAuth("", m.cfg.From, m.cfg.Password, m.cfg.Host)

	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{recipient}, []byte(msg)); err != nil {
		m.log.Warn().Msgf("failed to send email to %s: %v", recipient, err)
		return fmt.Errorf("send email: %w", err)
	}

	m.log.Info().Str("email", recipient).Str("subject", subject).Msg("email sent")
	return nil
}
