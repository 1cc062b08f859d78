package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/gofrs/flock"

	"podscribe/internal/config"
	"podscribe/internal/logging"
)

// Daemon wraps a monitor with flock-based single-instance locking.
type Daemon struct {
	monitor  *Monitor
	lock     *flock.Flock
	lockPath string
	logger   *slog.Logger
}

// NewDaemon builds a daemon around the monitor. The lock file lives in
// the log directory.
func NewDaemon(cfg *config.Config, m *Monitor, logger *slog.Logger) *Daemon {
	lockPath := filepath.Join(cfg.Paths.LogDir, "podscribe.lock")
	return &Daemon{
		monitor:  m,
		lock:     flock.New(lockPath),
		lockPath: lockPath,
		logger:   logging.NewComponentLogger(logger, "daemon"),
	}
}

// Run acquires the instance lock and blocks in the monitor loop until
// the context is canceled or a fatal error occurs.
func (d *Daemon) Run(ctx context.Context) error {
	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock %s: %w", d.lockPath, err)
	}
	if !ok {
		return errors.New("another podscribe instance is already running")
	}
	defer func() {
		if err := d.lock.Unlock(); err != nil {
			d.logger.Warn("cannot release instance lock", logging.Error(err))
		}
	}()

	err = d.monitor.Run(ctx)
	if errors.Is(err, context.Canceled) {
		d.logger.Info("shutdown requested; stopping cleanly")
		return nil
	}
	return err
}
