package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// maxAttachmentSize is Discord's upload limit without boosts.
const maxAttachmentSize = 8 * 1024 * 1024

// WebhookNotifier posts messages to a Discord-compatible webhook, optionally
// attaching the difference image.
type WebhookNotifier struct {
	webhookURL  string
	attachImage bool
	httpClient  *http.Client
	logger      zerolog.Logger
	now         func() time.Time
}

// NewWebhookNotifier validates webhookURL. httpClient may be nil.
func NewWebhookNotifier(webhookURL string, attachImage bool, httpClient *http.Client, logger zerolog.Logger) (*WebhookNotifier, error) {
	if _, err := url.ParseRequestURI(webhookURL); err != nil {
		return nil, fmt.Errorf("invalid webhook URL: %w", err)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 20 * time.Second}
	}
	return &WebhookNotifier{
		webhookURL:  webhookURL,
		attachImage: attachImage,
		httpClient:  httpClient,
		logger:      logger.With().Str("component", "WebhookNotifier").Logger(),
		now:         time.Now,
	}, nil
}

func (wn *WebhookNotifier) Notify(ctx context.Context, msg Message) error {
	embed := WebhookEmbed{
		Title:       msg.Text,
		Color:       embedColor(msg.Kind),
		Timestamp:   wn.now().UTC().Format(time.RFC3339),
		Description: msg.AttachmentPath,
	}

	attachment := ""
	if wn.attachImage && msg.AttachmentPath != "" {
		if info, err := os.Stat(msg.AttachmentPath); err == nil && info.Size() <= maxAttachmentSize {
			attachment = msg.AttachmentPath
			embed.Image = &WebhookEmbedImage{URL: "attachment://" + filepath.Base(attachment)}
		} else {
			wn.logger.Debug().Str("file_path", msg.AttachmentPath).Msg("Skipping attachment (missing or too large)")
		}
	}

	payload := WebhookPayload{Username: webhookUsername, Embeds: []WebhookEmbed{embed}}
	return wn.send(ctx, payload, attachment)
}

func (wn *WebhookNotifier) send(ctx context.Context, payload WebhookPayload, attachmentPath string) error {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}
	if err := writer.WriteField("payload_json", string(payloadJSON)); err != nil {
		return fmt.Errorf("failed to write payload_json to multipart: %w", err)
	}

	if attachmentPath != "" {
		f, err := os.Open(attachmentPath)
		if err != nil {
			return fmt.Errorf("failed to open attachment '%s': %w", attachmentPath, err)
		}
		defer func() { _ = f.Close() }()

		part, err := writer.CreateFormFile("file[0]", filepath.Base(attachmentPath))
		if err != nil {
			return fmt.Errorf("failed to create form file: %w", err)
		}
		if _, err := io.Copy(part, f); err != nil {
			return fmt.Errorf("failed to copy attachment to form: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, wn.webhookURL, body)
	if err != nil {
		return fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := wn.httpClient.Do(req)
	if err != nil {
		wn.logger.Error().Err(err).Msg("Failed to send webhook notification")
		return fmt.Errorf("failed to send webhook notification: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		wn.logger.Error().Int("status_code", resp.StatusCode).Str("response_body", string(respBody)).Msg("Webhook notification failed")
		return fmt.Errorf("webhook notification failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	wn.logger.Debug().Int("status_code", resp.StatusCode).Msg("Webhook notification sent")
	return nil
}
