// Package mail delivers account verification messages.
package mail

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"interndesk/internal/config"
	"interndesk/internal/logging"
)

const verificationSubject = "Activate Your Account"

type Mailer interface {
	SendVerification(ctx context.Context, to, link string) error
}

// New picks the delivery backend named by cfg.Mail.Provider.
func New(cfg config.Config) (Mailer, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Mail.Provider)) {
	case "", "log":
		return LogMailer{}, nil
	case "resend":
		return NewResend(cfg.Mail.Endpoint, cfg.Mail.APIKey, cfg.Mail.From)
	default:
		return nil, fmt.Errorf("unknown mail provider %q", cfg.Mail.Provider)
	}
}

func verificationHTML(link string) string {
	l := html.EscapeString(link)
	return `<h2>Welcome to InternDesk</h2>
<p>Click below to verify your account:</p>
<a href="` + l + `">Verify Account</a>`
}

// LogMailer writes the link to the log instead of sending it. Used in development.
type LogMailer struct{}

func (LogMailer) SendVerification(ctx context.Context, to, link string) error {
	logging.Ctx(ctx).Info().Str("to", to).Str("link", link).Msg("verification mail (log provider)")
	return nil
}

// Resend sends mail through the Resend HTTP API.
type Resend struct {
	endpoint string
	apiKey   string
	from     string
	hc       *http.Client
}

func NewResend(endpoint, apiKey, from string) (*Resend, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("resend: api key is empty")
	}
	if endpoint == "" {
		endpoint = "https://api.resend.com/emails"
	}
	return &Resend{
		endpoint: endpoint,
		apiKey:   apiKey,
		from:     from,
		hc:       &http.Client{Timeout: 15 * time.Second},
	}, nil
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

type resendResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

func (r *Resend) SendVerification(ctx context.Context, to, link string) error {
	payload, err := json.Marshal(resendRequest{
		From:    r.from,
		To:      []string{to},
		Subject: verificationSubject,
		HTML:    verificationHTML(link),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+r.apiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := r.hc.Do(req)
	if err != nil {
		return fmt.Errorf("resend post: %w", err)
	}
	defer res.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(res.Body, 64<<10))
	var out resendResponse
	_ = json.Unmarshal(body, &out)

	if res.StatusCode >= 400 {
		msg := out.Message
		if msg == "" {
			msg = strings.TrimSpace(string(body))
		}
		return fmt.Errorf("resend status %d: %s", res.StatusCode, msg)
	}

	logging.Ctx(ctx).Debug().Str("to", to).Str("id", out.ID).Msg("verification mail sent")
	return nil
}
