package processor

import (
	"errors"
	"fmt"
)

// Sentinel markers for pipeline failure classification. All are
// retryable on a later pass except ErrState, which the scheduler treats
// as fatal: once the durable processed log cannot be written, continuing
// risks duplicate side effects after a restart.
var (
	ErrDownload   = errors.New("audio download failed")
	ErrImport     = errors.New("import claim failed")
	ErrTranscribe = errors.New("transcription failed")
	ErrOutput     = errors.New("transcript output failed")
	ErrState      = errors.New("state commit failed")
)

// Wrap tags err with a sentinel marker and operation context.
func Wrap(marker error, operation string, err error) error {
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, operation, err)
	}
	return fmt.Errorf("%w: %s", marker, operation)
}

// Fatal reports whether the error must stop the daemon.
func Fatal(err error) bool {
	return errors.Is(err, ErrState)
}
