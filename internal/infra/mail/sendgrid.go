package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// メール送信の窓口。呼び出し側は投げっぱなし（失敗はログのみ、再送しない）。
type Mailer interface {
	Send(ctx context.Context, to string, subject string, body string) error
}

type Config struct {
	APIKey    string
	BaseURL   string
	FromEmail string
	FromName  string
	Timeout   time.Duration
}

type sendGridMailer struct {
	cfg    Config
	client *http.Client
}

// SendGrid v3 mail/send を直接叩く。
func NewSendGridMailer(cfg Config) (Mailer, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("missing sendgrid api key")
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = "https://api.sendgrid.com"
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if strings.TrimSpace(cfg.FromEmail) == "" {
		return nil, fmt.Errorf("missing sendgrid from email")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &sendGridMailer{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type sgAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type sgPersonalization struct {
	To []sgAddress `json:"to"`
}

type sgContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sgSendRequest struct {
	Personalizations []sgPersonalization `json:"personalizations"`
	From             sgAddress           `json:"from"`
	Subject          string              `json:"subject"`
	Content          []sgContent         `json:"content"`
}

// 1回だけ送る。リトライしない。
func (m *sendGridMailer) Send(ctx context.Context, to string, subject string, body string) error {
	if strings.TrimSpace(to) == "" {
		return fmt.Errorf("missing recipient")
	}

	payload := sgSendRequest{
		Personalizations: []sgPersonalization{
			{To: []sgAddress{{Email: to}}},
		},
		From:    sgAddress{Email: m.cfg.FromEmail, Name: m.cfg.FromName},
		Subject: subject,
		Content: []sgContent{{Type: "text/plain", Value: body}},
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.cfg.BaseURL+"/v3/mail/send", bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+m.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("sendgrid status %d: %s", resp.StatusCode, string(detail))
	}
	return nil
}
