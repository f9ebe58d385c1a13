package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/example/foodshop/pkg/config"
	"github.com/resend/resend-go/v2"
)

var ErrMailerNotConfigured = errors.New("email api key is not configured")

type Email struct {
	To      []string
	Subject string
	HTML    string
	Text    string
}

// Mailer sends transactional email through Resend.
type Mailer struct {
	from   string
	client *resend.Client
}

func NewMailer(cfg *config.EmailConfig) *Mailer {
	m := &Mailer{from: cfg.From}
	if cfg.APIKey == "" {
		return m
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	m.client = resend.NewCustomClient(&http.Client{Timeout: timeout}, cfg.APIKey)
	if cfg.BaseURL != "" {
		// Relative endpoint paths resolve against the last slash.
		if base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/") + "/"); err == nil {
			m.client.BaseURL = base
		}
	}
	return m
}

func (m *Mailer) Send(ctx context.Context, email *Email) error {
	if m.client == nil {
		return ErrMailerNotConfigured
	}
	if len(email.To) == 0 {
		return errors.New("email has no recipients")
	}

	_, err := m.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    m.from,
		To:      email.To,
		Subject: email.Subject,
		Html:    email.HTML,
		Text:    email.Text,
	})
	if err != nil {
		return fmt.Errorf("email send failed: %w", err)
	}
	return nil
}
