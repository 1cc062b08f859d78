package notifications

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"podscribe/internal/config"
)

func newWebhookService(url string) Service {
	cfg := config.Default()
	cfg.Notifications.DiscordWebhookURL = url
	cfg.Notifications.RequestTimeout = 5
	return NewService(&cfg)
}

func TestNewServiceReturnsNoopWithoutWebhook(t *testing.T) {
	cfg := config.Default()
	service := NewService(&cfg)
	if _, ok := service.(noopService); !ok {
		t.Fatalf("expected noop service, got %T", service)
	}
	if err := service.NotifyTranscriptReady(context.Background(), "t", "/nonexistent"); err != nil {
		t.Fatalf("noop should never fail: %v", err)
	}
}

func TestNotifyTranscriptReadyAttachesFile(t *testing.T) {
	var (
		gotContentType string
		gotPayload     string
		gotFileName    string
		gotFileBody    string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
			return
		}
		gotPayload = r.FormValue("payload_json")
		file, header, err := r.FormFile("files[0]")
		if err != nil {
			t.Errorf("form file: %v", err)
			return
		}
		defer file.Close()
		gotFileName = header.Filename
		body, _ := io.ReadAll(file)
		gotFileBody = string(body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	transcript := filepath.Join(t.TempDir(), "Episode_One.txt")
	if err := os.WriteFile(transcript, []byte("[00:00:00.000 --> 00:00:01.000] hi\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	service := newWebhookService(server.URL)
	if err := service.NotifyTranscriptReady(context.Background(), "Episode One", transcript); err != nil {
		t.Fatal(err)
	}

	if !strings.HasPrefix(gotContentType, "multipart/form-data") {
		t.Fatalf("content type = %q", gotContentType)
	}
	if !strings.Contains(gotPayload, "Episode One") {
		t.Fatalf("payload = %q", gotPayload)
	}
	if gotFileName != "Episode_One.txt" {
		t.Fatalf("attachment name = %q", gotFileName)
	}
	if !strings.Contains(gotFileBody, "hi") {
		t.Fatalf("attachment body = %q", gotFileBody)
	}
}

func TestNotifyTranscriptReadyFallsBackToExcerpt(t *testing.T) {
	var gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	transcript := filepath.Join(t.TempDir(), "big.txt")
	if err := os.WriteFile(transcript, []byte(strings.Repeat("a", maxAttachmentBytes+1)), 0o644); err != nil {
		t.Fatal(err)
	}

	service := newWebhookService(server.URL)
	if err := service.NotifyTranscriptReady(context.Background(), "Big Episode", transcript); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(gotBody, "too large to attach") {
		t.Fatalf("body = %q", gotBody)
	}
}

func TestNotifyErrorReportsWebhookFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad webhook", http.StatusBadRequest)
	}))
	defer server.Close()

	service := newWebhookService(server.URL)
	err := service.NotifyError(context.Background(), errors.New("boom"), "feed poll")
	if err == nil || !strings.Contains(err.Error(), "400") {
		t.Fatalf("err = %v, want 400 status error", err)
	}
}

func TestTestNotification(t *testing.T) {
	var gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	service := newWebhookService(server.URL)
	if err := service.TestNotification(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(gotBody, "notification test") {
		t.Fatalf("body = %q", gotBody)
	}
}
