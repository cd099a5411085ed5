package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/divanco-studio/backend/config"
)

// ResendEmailRequest represents the request payload for Resend API
type ResendEmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Html    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
}

// ResendEmailResponse represents the response from Resend API
type ResendEmailResponse struct {
	ID string `json:"id"`
}

// ResendErrorResponse represents an error response from Resend API
type ResendErrorResponse struct {
	Message string `json:"message"`
}

// ResendClient sends transactional email through the Resend API. It is
// configured once at process start and injected where needed.
type ResendClient struct {
	apiKey    string
	fromEmail string
	baseURL   string
	client    *http.Client
}

// NewResendClient builds the client from configuration. Required keys:
// RESEND_API_KEY and RESEND_FROM_EMAIL.
func NewResendClient(cfg map[string]string) (*ResendClient, error) {
	apiKey := config.GetString(cfg, "RESEND_API_KEY", "")
	if apiKey == "" {
		return nil, fmt.Errorf("RESEND_API_KEY environment variable is required")
	}

	fromEmail := config.GetString(cfg, "RESEND_FROM_EMAIL", "")
	if fromEmail == "" {
		return nil, fmt.Errorf("RESEND_FROM_EMAIL environment variable is required")
	}

	timeout := time.Duration(config.GetInt(cfg, "RESEND_TIMEOUT_SECONDS", 30)) * time.Second

	return &ResendClient{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		baseURL:   config.GetString(cfg, "RESEND_BASE_URL", "https://api.resend.com"),
		client:    &http.Client{Timeout: timeout},
	}, nil
}

// SendEmail sends a single email to the given recipients.
func (c *ResendClient) SendEmail(subject, htmlBody string, recipients []string) error {
	if len(recipients) == 0 {
		return fmt.Errorf("at least one recipient is required")
	}

	payload := ResendEmailRequest{
		From:    c.fromEmail,
		To:      recipients,
		Subject: subject,
		Html:    htmlBody,
	}

	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal email payload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/emails", bytes.NewBuffer(jsonPayload))
	if err != nil {
		return fmt.Errorf("failed to create Resend API request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request to Resend API: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read Resend API response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp ResendErrorResponse
		if err := json.Unmarshal(bodyBytes, &errResp); err == nil && errResp.Message != "" {
			return fmt.Errorf("Resend API error (%d): %s", resp.StatusCode, errResp.Message)
		}
		return fmt.Errorf("Resend API returned status %d", resp.StatusCode)
	}

	return nil
}
