package processor

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"podscribe/internal/config"
	"podscribe/internal/logging"
	"podscribe/internal/media"
)

// tempAudioPrefix marks in-flight downloads in the audio directory so
// leftovers from a crash are recognizable and never mistaken for
// retained episodes.
const tempAudioPrefix = "_temp_"

var downloadExtensions = map[string]struct{}{
	".mp3":  {},
	".m4a":  {},
	".wav":  {},
	".ogg":  {},
	".aac":  {},
	".opus": {},
	".flac": {},
}

type downloader struct {
	client   *http.Client
	attempts int
	timeout  time.Duration
	audioDir string
	logger   *slog.Logger
}

func newDownloader(cfg config.Processing, audioDir string, logger *slog.Logger) *downloader {
	attempts := cfg.DownloadAttempts
	if attempts < 1 {
		attempts = 1
	}
	timeout := time.Duration(cfg.DownloadTimeout) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &downloader{
		client:   &http.Client{},
		attempts: attempts,
		timeout:  timeout,
		audioDir: audioDir,
		logger:   logger,
	}
}

// fetch downloads the candidate's audio into the audio directory under a
// temporary name and returns the path. A failed or partial download is
// always removed before the next attempt or the final error.
func (d *downloader) fetch(ctx context.Context, c media.Candidate) (string, error) {
	tempPath := filepath.Join(d.audioDir, tempAudioPrefix+media.SanitizeTitle(c.Title)+audioExtension(c.AudioURL))

	var lastErr error
	for attempt := 1; attempt <= d.attempts; attempt++ {
		size, err := d.fetchOnce(ctx, c.AudioURL, tempPath)
		if err == nil {
			d.logger.Info("audio downloaded",
				logging.String(logging.FieldEpisodeID, c.ID),
				logging.String("size", humanize.Bytes(uint64(size))),
			)
			return tempPath, nil
		}
		lastErr = err
		if removeErr := os.Remove(tempPath); removeErr != nil && !os.IsNotExist(removeErr) {
			d.logger.Warn("cannot remove partial download", logging.Error(removeErr))
		}
		if ctx.Err() != nil {
			break
		}
		if attempt < d.attempts {
			d.logger.Warn("download attempt failed; retrying",
				logging.String(logging.FieldEpisodeID, c.ID),
				logging.Int("attempt", attempt),
				logging.Error(err),
			)
		}
	}
	return "", Wrap(ErrDownload, c.AudioURL, lastErr)
}

func (d *downloader) fetchOnce(ctx context.Context, audioURL, dest string) (int64, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, audioURL, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request audio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, fmt.Errorf("unexpected status %s", resp.Status)
	}

	file, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, fmt.Errorf("create audio file: %w", err)
	}
	size, err := io.Copy(file, resp.Body)
	if err != nil {
		file.Close()
		return 0, fmt.Errorf("stream audio: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		return 0, fmt.Errorf("sync audio file: %w", err)
	}
	if err := file.Close(); err != nil {
		return 0, fmt.Errorf("close audio file: %w", err)
	}
	return size, nil
}

// audioExtension derives the on-disk extension from the URL path,
// defaulting to .mp3 for unrecognized or missing extensions.
func audioExtension(audioURL string) string {
	parsed, err := url.Parse(audioURL)
	if err != nil {
		return ".mp3"
	}
	ext := strings.ToLower(path.Ext(parsed.Path))
	if _, ok := downloadExtensions[ext]; ok {
		return ext
	}
	return ".mp3"
}
