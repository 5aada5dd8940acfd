// Package mail sends transactional email for the clinic.
package mail

import (
	"fmt"

	"github.com/go-gomail/gomail"
	"github.com/rs/zerolog"
)

// Message is a plain-text email ready to deliver.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers clinic email. Implementations must be safe for concurrent
// use by request handlers.
type Sender interface {
	Send(msg Message) error
}

// SMTPSender delivers mail through an SMTP relay via gomail.
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
	logger zerolog.Logger
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func NewSMTPSender(cfg SMTPConfig, logger zerolog.Logger) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		logger: logger.With().Str("component", "mail").Logger(),
	}
}

func (s *SMTPSender) Send(msg Message) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)

	if err := s.dialer.DialAndSend(m); err != nil {
		s.logger.Error().
			Err(err).
			Str("to", msg.To).
			Str("subject", msg.Subject).
			Msg("failed to send email")
		return fmt.Errorf("sending email to %s: %w", msg.To, err)
	}

	s.logger.Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Msg("email sent")
	return nil
}

// LogSender writes messages to the log instead of delivering them. Used in
// development when no SMTP relay is configured.
type LogSender struct {
	logger zerolog.Logger
}

func NewLogSender(logger zerolog.Logger) *LogSender {
	return &LogSender{logger: logger.With().Str("component", "mail").Logger()}
}

func (s *LogSender) Send(msg Message) error {
	s.logger.Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Str("body", msg.Body).
		Msg("email suppressed (log sender)")
	return nil
}
