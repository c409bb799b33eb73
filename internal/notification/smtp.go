package notification

import (
	"context"
	"fmt"

	"github.com/caarlos0/env/v11"
	"gopkg.in/gomail.v2"
)

// SMTPConfig holds mail relay settings, populated from the environment.
type SMTPConfig struct {
	Host     string `env:"SMTP_HOST"`
	Port     int    `env:"SMTP_PORT"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"SMTP_FROM"`
}

// LoadSMTPConfig parses SMTP settings from environment variables.
func LoadSMTPConfig() (SMTPConfig, error) {
	cfg, err := env.ParseAs[SMTPConfig]()
	if err != nil {
		return SMTPConfig{}, fmt.Errorf("parse smtp config: %w", err)
	}
	return cfg, cfg.validate()
}

func (c SMTPConfig) validate() error {
	if c.Host == "" {
		return fmt.Errorf("SMTP_HOST must be set")
	}
	if c.Port == 0 {
		return fmt.Errorf("SMTP_PORT must be set")
	}
	if c.From == "" {
		return fmt.Errorf("SMTP_FROM must be set")
	}
	return nil
}

// SMTPNotifier delivers messages through an SMTP relay.
type SMTPNotifier struct {
	cfg    SMTPConfig
	dialer *gomail.Dialer
}

// NewSMTPNotifier constructs a notifier bound to the configured relay.
func NewSMTPNotifier(cfg SMTPConfig) *SMTPNotifier {
	return &SMTPNotifier{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

// Send dials the relay and delivers a single plain-text message. Delivery is
// synchronous; a failed dial or send surfaces as a typed error to the caller.
func (n *SMTPNotifier) Send(_ context.Context, message Message) error {
	if message.To == "" {
		return fmt.Errorf("no recipient specified")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", n.cfg.From)
	msg.SetHeader("To", message.To)
	msg.SetHeader("Subject", message.Subject)
	msg.SetBody("text/plain", message.Body)

	if err := n.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", message.To, err)
	}
	return nil
}
