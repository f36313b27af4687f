package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rpupo63/blog-backend/config"
	"github.com/rs/zerolog/log"
)

const defaultResendBaseURL = "https://api.resend.com"

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

// Mailer sends transactional email through Resend
type Mailer struct {
	apiKey  string
	from    string
	baseURL string
	siteURL string
	client  *http.Client
}

// NewMailerFromConfig returns nil when RESEND_API_KEY or RESEND_FROM_EMAIL
// is missing, which disables email.
//
// Reads:
//   - RESEND_API_KEY: Your Resend API key
//   - RESEND_FROM_EMAIL: The sender address (e.g., "Blog <hello@example.com>")
//   - RESEND_BASE_URL: Optional API base, defaults to https://api.resend.com
//   - SITE_URL: Optional public site URL linked from the welcome email
func NewMailerFromConfig(cfg map[string]string) *Mailer {
	apiKey := config.GetString(cfg, "RESEND_API_KEY", "")
	from := config.GetString(cfg, "RESEND_FROM_EMAIL", "")
	if apiKey == "" || from == "" {
		return nil
	}
	return NewMailer(apiKey, from, config.GetString(cfg, "RESEND_BASE_URL", ""), config.GetString(cfg, "SITE_URL", ""),
		&http.Client{Timeout: config.GetDuration(cfg, "RESEND_TIMEOUT_SECONDS", time.Second, 10)})
}

func NewMailer(apiKey, from, baseURL, siteURL string, client *http.Client) *Mailer {
	if baseURL == "" {
		baseURL = defaultResendBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Mailer{
		apiKey:  apiKey,
		from:    from,
		baseURL: strings.TrimRight(baseURL, "/"),
		siteURL: siteURL,
		client:  client,
	}
}

// SendEmail sends an email using the Resend API
// Parameters:
//   - subject: The email subject line
//   - body: The email body (HTML)
//   - recipients: A list of recipient email addresses
func (m *Mailer) SendEmail(ctx context.Context, subject, body string, recipients []string) error {
	if len(recipients) == 0 {
		return fmt.Errorf("at least one recipient is required")
	}

	// Build the Resend API payload
	payload := ResendEmailRequest{
		From:    m.from,
		To:      recipients,
		Subject: subject,
		Html:    body,
	}

	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/emails", bytes.NewBuffer(jsonPayload))
	if err != nil {
		return fmt.Errorf("failed to create Resend API request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request to Resend API: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read Resend API response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errorResp ResendErrorResponse
		if err := json.Unmarshal(bodyBytes, &errorResp); err == nil && errorResp.Message != "" {
			return fmt.Errorf("resend API error (status %d): %s", resp.StatusCode, errorResp.Message)
		}
		return fmt.Errorf("resend API error (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var emailResponse ResendEmailResponse
	if err := json.Unmarshal(bodyBytes, &emailResponse); err != nil {
		log.Warn().Err(err).Msg("Failed to parse Resend email response, but email was sent")
	} else {
		log.Info().Str("emailId", emailResponse.ID).Msg("Successfully sent email via Resend")
	}

	return nil
}

// SendWelcome greets a reader whose profile was just created
func (m *Mailer) SendWelcome(ctx context.Context, email, displayName string) error {
	var sb strings.Builder
	sb.WriteString("<p>Bonjour " + html.EscapeString(displayName) + ",</p>")
	sb.WriteString("<p>Bienvenue ! Votre compte lecteur est prêt : enregistrez vos articles favoris et suivez votre historique de lecture.</p>")
	if m.siteURL != "" {
		sb.WriteString(`<p><a href="` + html.EscapeString(m.siteURL) + `">Découvrir les articles</a></p>`)
	}
	return m.SendEmail(ctx, "Bienvenue sur le blog", sb.String(), []string{email})
}
