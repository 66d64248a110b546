package notifications

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/Kariqs/magnets-api/utils"
)

const defaultFrom = "Magnets & Prints <orders@magnetsandprints.com>"

type Message struct {
	To      []string
	Subject string
	HTML    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// MailerFunc adapts a function to Mailer.
type MailerFunc func(ctx context.Context, msg Message) error

func (f MailerFunc) Send(ctx context.Context, msg Message) error {
	return f(ctx, msg)
}

type SMTPMailer struct {
	cfg utils.SMTPConfig
}

func NewSMTPMailer(cfg utils.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

// Send ignores ctx; net/smtp has no cancellation.
func (m *SMTPMailer) Send(_ context.Context, msg Message) error {
	return utils.SendEmail(m.cfg, msg.To, msg.Subject, msg.HTML)
}

type ResendConfig struct {
	APIKey  string
	BaseURL string
	From    string
}

type ResendMailer struct {
	client *resty.Client
	from   string
}

func NewResendMailer(cfg ResendConfig) *ResendMailer {
	from := cfg.From
	if from == "" {
		from = defaultFrom
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(15*time.Second).
		SetAuthToken(cfg.APIKey).
		SetHeader("Accept", "application/json")
	return &ResendMailer{client: client, from: from}
}

type resendEmail struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

func (m *ResendMailer) Send(ctx context.Context, msg Message) error {
	resp, err := m.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(resendEmail{From: m.from, To: msg.To, Subject: msg.Subject, HTML: msg.HTML}).
		Post("/emails")
	if err != nil {
		return fmt.Errorf("resend request failed: %w", err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("resend responded %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}
