package email

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"gopkg.in/gomail.v2"
)

type Service interface {
	Send(ctx context.Context, to, subject, body string) error
}

type Config struct {
	Host     string `envconfig:"SMTP_HOST"`
	Port     int    `envconfig:"SMTP_PORT" default:"587"`
	Username string `envconfig:"SMTP_USERNAME"`
	Password string `envconfig:"SMTP_PASSWORD"`
	From     string `envconfig:"SMTP_FROM" default:"no-reply@telehealth.local"`
}

func (c Config) Enabled() bool {
	return c.Host != ""
}

// Sender abstracts the SMTP transport so messages can be inspected in tests.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type SMTPService struct {
	sender Sender
	from   string
}

func NewSMTPService(cfg Config) *SMTPService {
	return &SMTPService{
		sender: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func NewSMTPServiceWithSender(sender Sender, from string) *SMTPService {
	return &SMTPService{sender: sender, from: from}
}

func (s *SMTPService) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}

// LogService writes messages to the log instead of sending them. Used when
// no SMTP host is configured.
type LogService struct{}

func (LogService) Send(ctx context.Context, to, subject, body string) error {
	log.Info().Str("to", to).Str("subject", subject).Msg("email delivery disabled, message not sent")
	return nil
}
