package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/DevWael/google-review-incentive/config"
)

// Mailer is the outbound mail transport.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// Client speaks the Resend-style send API: POST {base}/emails with a
// bearer key.
type Client struct {
	baseURL    string
	apiKey     string
	from       string
	httpClient *http.Client
	logger     *zap.Logger
}

type sendEmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html,omitempty"`
}

func New(baseURL, apiKey, from string, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		from:       from,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

func NewClient(cfg *config.Config, logger *zap.Logger) Mailer {
	return New(cfg.Mail.APIBase, cfg.Mail.APIKey, cfg.Mail.From, logger)
}

func (c *Client) Send(ctx context.Context, to, subject, htmlBody string) error {

	payload, err := json.Marshal(sendEmailRequest{
		From:    c.from,
		To:      []string{to},
		Subject: subject,
		HTML:    htmlBody,
	})
	if err != nil {
		return fmt.Errorf("failed to encode email request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/emails", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	defer func() {
		if err = resp.Body.Close(); err != nil {
			c.logger.Warn("failed to close mail response body", zap.Error(err))
		}
	}()

	if resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("mail API returned %d: %s", resp.StatusCode, body)
	}

	return nil
}
