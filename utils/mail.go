package utils

import (
	"fmt"
	"net/smtp"
	"strings"
)

type SMTPConfig struct {
	// Address is host:port of the SMTP server.
	Address  string
	Host     string
	From     string
	Password string
}

// SendEmail sends an HTML message over SMTP with PLAIN auth.
func SendEmail(cfg SMTPConfig, emailTo []string, emailSubject string, htmlBody string) error {
	if cfg.Address == "" || cfg.From == "" {
		return fmt.Errorf("smtp is not configured")
	}

	message := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-version: 1.0;\r\nContent-Type: text/html; charset=\"UTF-8\";\r\n\r\n%s",
		cfg.From,
		strings.Join(emailTo, ", "),
		emailSubject,
		htmlBody,
	)

	host := cfg.Host
	if host == "" {
		host, _, _ = strings.Cut(cfg.Address, ":")
	}
	auth := smtp.PlainAuth("", cfg.From, cfg.Password, host)

	if err := smtp.SendMail(cfg.Address, auth, cfg.From, emailTo, []byte(message)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
