package monitor

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"podscribe/internal/config"
	"podscribe/internal/feed"
	"podscribe/internal/logging"
	"podscribe/internal/media"
	"podscribe/internal/processor"
	"podscribe/internal/selector"
)

// FeedSource fetches one feed's candidates. The feed package satisfies it.
type FeedSource interface {
	Fetch(ctx context.Context, feedURL string, feedOrder int) ([]media.Candidate, error)
}

// ImportSource scans the watched directory. The import scanner satisfies it.
type ImportSource interface {
	Scan() ([]media.Candidate, error)
}

// EpisodeProcessor runs one candidate through the pipeline.
type EpisodeProcessor interface {
	Process(ctx context.Context, c media.Candidate) processor.Outcome
}

// PassStats summarizes one discovery pass.
type PassStats struct {
	FeedsPolled int
	FeedsFailed int
	Selected    int
	Processed   int
	Failed      int
}

// Monitor runs discovery passes.
type Monitor struct {
	cfg     *config.Config
	store   selector.Processed
	feeds   FeedSource
	imports ImportSource
	proc    EpisodeProcessor
	logger  *slog.Logger

	now func() time.Time
}

// New wires a monitor. imports may be nil when no import directory is
// configured.
func New(cfg *config.Config, store selector.Processed, feeds FeedSource, imports ImportSource, proc EpisodeProcessor, logger *slog.Logger) *Monitor {
	return &Monitor{
		cfg:     cfg,
		store:   store,
		feeds:   feeds,
		imports: imports,
		proc:    proc,
		logger:  logging.NewComponentLogger(logger, "monitor"),
		now:     time.Now,
	}
}

// RunPass executes one full discovery and processing pass. The returned
// error is non-nil only for fatal conditions; ordinary per-feed and
// per-episode failures are counted in the stats and logged.
func (m *Monitor) RunPass(ctx context.Context) (PassStats, error) {
	var stats PassStats

	var importCandidates []media.Candidate
	if m.imports != nil {
		candidates, err := m.imports.Scan()
		if err != nil {
			m.logger.Warn("import scan failed; skipping imports this pass", logging.Error(err))
		} else {
			importCandidates = candidates
		}
	}

	var feedCandidates []media.Candidate
	for order, feedURL := range m.cfg.Feeds.URLs {
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}
		stats.FeedsPolled++
		candidates, err := m.feeds.Fetch(ctx, feedURL, order)
		if err != nil {
			stats.FeedsFailed++
			hint := "check feed URL and network reachability"
			if errors.Is(err, feed.ErrParse) {
				hint = "feed content is malformed; contact the publisher or drop the feed"
			}
			m.logger.Warn("feed poll failed; continuing with remaining feeds",
				logging.String(logging.FieldFeedURL, feedURL),
				logging.String(logging.FieldErrorHint, hint),
				logging.Error(err),
			)
			continue
		}
		feedCandidates = append(feedCandidates, candidates...)
	}

	lookback := time.Duration(m.cfg.Feeds.LookbackDays) * 24 * time.Hour
	selected := selector.Select(feedCandidates, importCandidates, lookback, m.now(), m.store)
	stats.Selected = len(selected)

	if len(selected) > 0 {
		m.logger.Info("pass discovered new episodes", logging.Int("count", len(selected)))
	}

	for _, candidate := range selected {
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}
		outcome := m.proc.Process(ctx, candidate)
		if outcome.Err != nil {
			if outcome.Fatal() {
				m.logger.Error("state store failure; stopping",
					logging.String(logging.FieldEpisodeID, candidate.ID),
					logging.Error(outcome.Err),
				)
				return stats, outcome.Err
			}
			stats.Failed++
			m.logger.Error("episode failed; will retry on a later pass",
				logging.String(logging.FieldEpisodeID, candidate.ID),
				logging.Error(outcome.Err),
			)
			continue
		}
		stats.Processed++
	}

	m.logger.Info("pass complete",
		logging.Int("feeds_polled", stats.FeedsPolled),
		logging.Int("feeds_failed", stats.FeedsFailed),
		logging.Int("selected", stats.Selected),
		logging.Int("processed", stats.Processed),
		logging.Int("failed", stats.Failed),
	)
	return stats, nil
}

// Run loops passes until the context is canceled or a fatal error
// occurs. The sleep starts after a pass finishes, so a long pass simply
// delays the next one; passes never overlap.
func (m *Monitor) Run(ctx context.Context) error {
	interval := m.interval()
	m.logger.Info("monitor started",
		logging.Int("feeds", len(m.cfg.Feeds.URLs)),
		logging.Bool("imports", m.imports != nil),
		logging.Duration("interval", interval),
	)

	timer := time.NewTimer(0)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}

		if _, err := m.RunPass(ctx); err != nil {
			return err
		}
		timer.Reset(interval)
	}
}

// interval picks the sleep between passes: the feed interval normally,
// the shorter import interval when only the import directory is
// configured.
func (m *Monitor) interval() time.Duration {
	if len(m.cfg.Feeds.URLs) == 0 && m.imports != nil {
		return time.Duration(m.cfg.Feeds.ImportCheckInterval) * time.Second
	}
	return time.Duration(m.cfg.Feeds.CheckInterval) * time.Second
}
