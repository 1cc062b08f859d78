package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"podscribe/internal/config"
)

const userAgent = "Podscribe/0.1.0"

// maxAttachmentBytes is Discord's webhook upload ceiling with headroom.
// Larger transcripts fall back to an excerpt message.
const maxAttachmentBytes = 7_864_320 // 7.5 MiB

const excerptLimit = 1500

// Service defines the notification surface exposed to the pipeline.
type Service interface {
	NotifyTranscriptReady(ctx context.Context, title, transcriptPath string) error
	NotifyError(ctx context.Context, err error, scope string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by a Discord webhook
// when configured. When no webhook URL is configured, a noop
// implementation is returned.
func NewService(cfg *config.Config) Service {
	webhookURL := strings.TrimSpace(cfg.Notifications.DiscordWebhookURL)
	if webhookURL == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &discordService{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: timeout},
	}
}

type discordService struct {
	webhookURL string
	client     *http.Client
}

// NotifyTranscriptReady uploads the transcript as a file attachment when
// it fits under Discord's limit, otherwise sends an excerpt message.
func (d *discordService) NotifyTranscriptReady(ctx context.Context, title, transcriptPath string) error {
	info, err := os.Stat(transcriptPath)
	if err != nil {
		return fmt.Errorf("stat transcript: %w", err)
	}
	content := fmt.Sprintf("Transcript ready: **%s**", strings.TrimSpace(title))
	if info.Size() <= maxAttachmentBytes {
		return d.sendFile(ctx, content, transcriptPath)
	}

	data, err := os.ReadFile(transcriptPath)
	if err != nil {
		return fmt.Errorf("read transcript: %w", err)
	}
	excerpt := string(data)
	if len(excerpt) > excerptLimit {
		excerpt = excerpt[:excerptLimit] + "…"
	}
	message := fmt.Sprintf("%s\nTranscript too large to attach (%d bytes). Excerpt:\n```\n%s\n```", content, info.Size(), excerpt)
	return d.sendMessage(ctx, message)
}

func (d *discordService) NotifyError(ctx context.Context, err error, scope string) error {
	message := fmt.Sprintf("Error: %v", err)
	if scope = strings.TrimSpace(scope); scope != "" {
		message = fmt.Sprintf("Error in %s: %v", scope, err)
	}
	return d.sendMessage(ctx, message)
}

func (d *discordService) TestNotification(ctx context.Context) error {
	return d.sendMessage(ctx, "Podscribe notification test - your webhook is working.")
}

func (d *discordService) sendMessage(ctx context.Context, content string) error {
	body, err := json.Marshal(map[string]string{"content": content})
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	return d.do(req)
}

func (d *discordService) sendFile(ctx context.Context, content, filePath string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("open attachment: %w", err)
	}
	defer file.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	payload, err := json.Marshal(map[string]string{"content": content})
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	if err := writer.WriteField("payload_json", string(payload)); err != nil {
		return fmt.Errorf("write payload field: %w", err)
	}
	part, err := writer.CreateFormFile("files[0]", filepath.Base(filePath))
	if err != nil {
		return fmt.Errorf("create file part: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("copy attachment: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.webhookURL, &buf)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("User-Agent", userAgent)
	return d.do(req)
}

func (d *discordService) do(req *http.Request) error {
	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("send webhook request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("webhook returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	return nil
}

type noopService struct{}

func (noopService) NotifyTranscriptReady(context.Context, string, string) error { return nil }

func (noopService) NotifyError(context.Context, error, string) error { return nil }

func (noopService) TestNotification(context.Context) error { return nil }
