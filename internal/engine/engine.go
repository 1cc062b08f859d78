package engine

import (
	"context"
	"errors"
	"fmt"

	"podscribe/internal/config"
)

// ErrTranscription marks engine invocation and output-parsing failures.
var ErrTranscription = errors.New("transcription failed")

// Command names for the supported engines.
const (
	WhisperCommand       = "whisper"
	FasterWhisperCommand = "whisper-ctranslate2"
)

// Transcriber turns one audio file into transcript text. workDir receives
// the engine's intermediate output files and is owned by the caller.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath, workDir string) (string, error)
}

// New selects a transcriber for the configured engine.
func New(cfg config.Engine) (Transcriber, error) {
	switch cfg.Name {
	case config.EngineWhisper:
		return newCLITranscriber(WhisperCommand, cfg), nil
	case config.EngineFasterWhisper:
		return newCLITranscriber(FasterWhisperCommand, cfg), nil
	default:
		return nil, fmt.Errorf("%w: unknown engine %q", ErrTranscription, cfg.Name)
	}
}
