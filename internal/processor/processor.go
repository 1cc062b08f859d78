package processor

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"podscribe/internal/config"
	"podscribe/internal/engine"
	"podscribe/internal/fileutil"
	"podscribe/internal/importer"
	"podscribe/internal/logging"
	"podscribe/internal/media"
	"podscribe/internal/notifications"
)

// Store is the slice of the state store the processor needs: the single
// durable commit at the end of a successful episode.
type Store interface {
	MarkProcessed(id string) error
}

// Claimer stages and releases import files. The import scanner
// satisfies it; nil when no import directory is configured.
type Claimer interface {
	ClaimFile(c media.Candidate) (*importer.Claim, error)
	Release(claim *importer.Claim) error
	Discard(claim *importer.Claim) error
}

// Outcome reports how one episode fared.
type Outcome struct {
	Candidate      media.Candidate
	TranscriptPath string
	Err            error
}

// Success reports whether the episode committed.
func (o Outcome) Success() bool { return o.Err == nil }

// Fatal reports whether the failure must stop the daemon.
func (o Outcome) Fatal() bool { return Fatal(o.Err) }

// Processor runs episodes through the pipeline one at a time.
type Processor struct {
	cfg         *config.Config
	store       Store
	transcriber engine.Transcriber
	notifier    notifications.Service
	claims      Claimer
	downloader  *downloader
	logger      *slog.Logger
}

// New wires a processor. claims may be nil when imports are disabled.
func New(cfg *config.Config, store Store, transcriber engine.Transcriber, notifier notifications.Service, claims Claimer, logger *slog.Logger) *Processor {
	componentLogger := logging.NewComponentLogger(logger, "processor")
	return &Processor{
		cfg:         cfg,
		store:       store,
		transcriber: transcriber,
		notifier:    notifier,
		claims:      claims,
		downloader:  newDownloader(cfg.Processing, cfg.AudioDir(), componentLogger),
		logger:      componentLogger,
	}
}

// Process runs one candidate through the pipeline. Any error before the
// state commit leaves the filesystem retryable: downloaded audio is
// removed and claimed imports are returned to the watched directory.
func (p *Processor) Process(ctx context.Context, c media.Candidate) Outcome {
	outcome := Outcome{Candidate: c}

	logger := p.logger.With(
		logging.String(logging.FieldEpisodeID, c.ID),
		logging.String(logging.FieldSource, string(c.Source)),
	)
	logger.Info("processing episode", logging.String("title", c.Title))

	transcriptPath, err := p.transcriptPath(c.Title)
	if err != nil {
		outcome.Err = Wrap(ErrOutput, "resolve transcript path", err)
		return outcome
	}

	var (
		audioPath string
		claim     *importer.Claim
	)
	if c.FromImport() {
		if p.claims == nil {
			outcome.Err = Wrap(ErrImport, "import directory not configured", nil)
			return outcome
		}
		claim, err = p.claims.ClaimFile(c)
		if err != nil {
			outcome.Err = Wrap(ErrImport, "claim "+c.AudioPath, err)
			return outcome
		}
		audioPath = claim.StagedPath
	} else {
		audioPath, err = p.downloader.fetch(ctx, c)
		if err != nil {
			outcome.Err = err
			return outcome
		}
	}

	release := func() {
		if claim != nil {
			if err := p.claims.Release(claim); err != nil {
				logger.Warn("cannot return import file for retry", logging.Error(err))
			}
			return
		}
		if err := os.Remove(audioPath); err != nil && !os.IsNotExist(err) {
			logger.Warn("cannot remove downloaded audio", logging.Error(err))
		}
	}

	text, err := p.transcribe(ctx, audioPath)
	if err != nil {
		release()
		outcome.Err = Wrap(ErrTranscribe, c.Title, err)
		return outcome
	}

	if err := fileutil.WriteFileAtomic(transcriptPath, []byte(text), 0o644); err != nil {
		release()
		outcome.Err = Wrap(ErrOutput, "write "+transcriptPath, err)
		return outcome
	}
	outcome.TranscriptPath = transcriptPath
	logger.Info("transcript written", logging.String("path", transcriptPath))

	if err := p.retainAudio(c, audioPath, claim); err != nil {
		// Transcript is already durable; losing the audio copy is not
		// worth reprocessing the episode. Log and continue to commit.
		logger.Warn("audio retention failed", logging.Error(err))
	}

	if err := p.notifier.NotifyTranscriptReady(ctx, c.Title, transcriptPath); err != nil {
		logger.Warn("notification delivery failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "transcript is on disk; only the notification was lost"),
		)
	}

	if err := p.store.MarkProcessed(c.ID); err != nil {
		outcome.Err = Wrap(ErrState, c.ID, err)
		return outcome
	}
	logger.Info("episode committed")
	return outcome
}

// transcribe runs the engine in a scratch directory so intermediate
// output files never land next to finished transcripts.
func (p *Processor) transcribe(ctx context.Context, audioPath string) (string, error) {
	workDir, err := os.MkdirTemp(p.cfg.Paths.OutputDir, ".work-")
	if err != nil {
		return "", fmt.Errorf("create work dir: %w", err)
	}
	defer os.RemoveAll(workDir)
	return p.transcriber.Transcribe(ctx, audioPath, workDir)
}

// transcriptPath picks a free path for the episode title, suffixing
// _2, _3, ... on filename collision. The state store, not the
// filesystem, decides whether an episode was already processed.
func (p *Processor) transcriptPath(title string) (string, error) {
	base := media.SanitizeTitle(title)
	dir := p.cfg.TranscriptsDir()
	candidate := filepath.Join(dir, base+".txt")
	for n := 2; ; n++ {
		_, err := os.Stat(candidate)
		if os.IsNotExist(err) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
		candidate = filepath.Join(dir, fmt.Sprintf("%s_%d.txt", base, n))
	}
}

// retainAudio applies the keep-audio policy after the transcript is
// durable. Kept audio moves into the audio output directory under the
// sanitized title; otherwise the working copy is deleted.
func (p *Processor) retainAudio(c media.Candidate, audioPath string, claim *importer.Claim) error {
	defer func() {
		if claim != nil {
			p.claims.Discard(claim)
		}
	}()

	if !p.cfg.Processing.KeepAudio {
		if err := os.Remove(audioPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove audio: %w", err)
		}
		return nil
	}

	target := filepath.Join(p.cfg.AudioDir(), media.SanitizeTitle(c.Title)+filepath.Ext(audioPath))
	if err := fileutil.MoveFile(audioPath, target); err != nil {
		return fmt.Errorf("retain audio: %w", err)
	}
	return nil
}
