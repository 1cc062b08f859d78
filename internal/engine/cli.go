package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"podscribe/internal/config"
)

// cliTranscriber shells out to a Whisper-family binary that writes JSON
// next to its other output formats.
type cliTranscriber struct {
	binary        string
	cfg           config.Engine
	commandRunner func(ctx context.Context, name string, args ...string) error
}

func newCLITranscriber(binary string, cfg config.Engine) *cliTranscriber {
	return &cliTranscriber{binary: binary, cfg: cfg}
}

// WithCommandRunner sets a custom command runner (for testing).
func (t *cliTranscriber) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	t.commandRunner = runner
}

func (t *cliTranscriber) Transcribe(ctx context.Context, audioPath, workDir string) (string, error) {
	if audioPath == "" {
		return "", fmt.Errorf("%w: audio path required", ErrTranscription)
	}
	if workDir == "" {
		workDir = filepath.Dir(audioPath)
	}
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return "", fmt.Errorf("%w: ensure work dir: %w", ErrTranscription, err)
	}

	if err := t.run(ctx, t.binary, t.buildArgs(audioPath, workDir)...); err != nil {
		return "", fmt.Errorf("%w: %w", ErrTranscription, err)
	}

	baseName := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	jsonPath := filepath.Join(workDir, baseName+".json")
	segments, err := LoadSegments(jsonPath)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTranscription, err)
	}
	return RenderTranscript(segments), nil
}

func (t *cliTranscriber) buildArgs(audioPath, workDir string) []string {
	args := []string{
		audioPath,
		"--model", t.cfg.Model,
		"--device", t.cfg.Device,
		"--output_format", "json",
		"--output_dir", workDir,
	}
	if t.binary == FasterWhisperCommand && t.cfg.ComputeType != "" {
		args = append(args, "--compute_type", t.cfg.ComputeType)
	}
	return args
}

func (t *cliTranscriber) run(ctx context.Context, name string, args ...string) error {
	if t.commandRunner != nil {
		return t.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// Segment is one timed span of transcript text.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

type enginePayload struct {
	Segments []Segment `json:"segments"`
}

// LoadSegments parses the engine's JSON output file.
func LoadSegments(jsonPath string) ([]Segment, error) {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, err
	}
	var payload enginePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parse engine json: %w", err)
	}
	return payload.Segments, nil
}
