package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/exp/slog"
)

// Announcer posts contest announcements to a Discord channel
type Announcer interface {
	AnnounceWinners(ctx context.Context, contestTitle, tier string, names []string) error
}

// WebhookAnnouncer posts announcements through a Discord webhook
type WebhookAnnouncer struct {
	webhookURL string
	httpClient *http.Client
}

// MockAnnouncer logs announcements instead of delivering them. Used when no
// webhook is configured and in tests.
type MockAnnouncer struct{}

// NewWebhookAnnouncer creates a new WebhookAnnouncer
func NewWebhookAnnouncer(webhookURL string) *WebhookAnnouncer {
	return &WebhookAnnouncer{
		webhookURL: webhookURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// NewMockAnnouncer creates a new MockAnnouncer
func NewMockAnnouncer() *MockAnnouncer {
	return &MockAnnouncer{}
}

// AnnounceWinners posts the winner list for a draw tier
func (a *WebhookAnnouncer) AnnounceWinners(ctx context.Context, contestTitle, tier string, names []string) error {
	content := fmt.Sprintf("**%s** — %s winners: %s", contestTitle, tier, strings.Join(names, ", "))
	requestBody := map[string]interface{}{
		"content": content,
	}

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.webhookURL, bytes.NewBuffer(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("webhook request failed with status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// AnnounceWinners logs the winner list without delivering it anywhere
func (a *MockAnnouncer) AnnounceWinners(_ context.Context, contestTitle, tier string, names []string) error {
	slog.Info("Winner announcement (mock)", "contest", contestTitle, "tier", tier, "winners", strings.Join(names, ", "))
	return nil
}
