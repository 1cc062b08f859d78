package importer

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"podscribe/internal/fileutil"
	"podscribe/internal/logging"
	"podscribe/internal/media"
)

// ErrScan marks import directory scan failures. A scan failure skips the
// import phase for the pass; feed work still proceeds.
var ErrScan = errors.New("import scan failed")

const quarantineDirName = "quarantine"

// allowedExtensions is the audio file allow-list for the watched
// directory. Anything else is ignored, not deleted.
var allowedExtensions = map[string]struct{}{
	".mp3":  {},
	".wav":  {},
	".m4a":  {},
	".flac": {},
	".ogg":  {},
	".aac":  {},
	".opus": {},
}

// Claim is a file that has been moved out of the watched directory and
// belongs exclusively to the pipeline until discarded or released.
type Claim struct {
	// StagedPath is where the audio now lives.
	StagedPath string

	claimDir     string
	originalName string
}

// Scanner discovers and claims import files.
type Scanner struct {
	importDir     string
	stagingDir    string
	quarantineDir string
	grace         time.Duration
	logger        *slog.Logger

	now func() time.Time
}

// NewScanner builds a scanner over importDir. stagingDir must live on the
// same filesystem as importDir so claims are plain renames.
func NewScanner(importDir, stagingDir, quarantineDir string, grace time.Duration, logger *slog.Logger) *Scanner {
	return &Scanner{
		importDir:     importDir,
		stagingDir:    stagingDir,
		quarantineDir: quarantineDir,
		grace:         grace,
		logger:        logging.NewComponentLogger(logger, "importer"),
		now:           time.Now,
	}
}

// Scan sweeps stale staging residue, then returns one candidate per
// eligible file in the watched directory, oldest modification time first.
// Files are not claimed here; claiming happens when processing starts.
func (s *Scanner) Scan() ([]media.Candidate, error) {
	s.sweepResidue()

	entries, err := os.ReadDir(s.importDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: read %s: %w", ErrScan, s.importDir, err)
	}

	type scanned struct {
		candidate media.Candidate
		modTime   time.Time
	}
	var files []scanned
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		ext := strings.ToLower(filepath.Ext(name))
		if _, ok := allowedExtensions[ext]; !ok {
			s.logger.Debug("ignoring non-audio file in import directory",
				logging.String("file", name),
			)
			continue
		}
		info, err := entry.Info()
		if err != nil {
			s.logger.Warn("cannot stat import file; skipping",
				logging.String("file", name),
				logging.Error(err),
			)
			continue
		}
		path := filepath.Join(s.importDir, name)
		files = append(files, scanned{
			candidate: media.Candidate{
				Source:    media.SourceImport,
				ID:        media.ImportIdentifier(path, info.Size(), info.ModTime()),
				Title:     strings.TrimSuffix(name, filepath.Ext(name)),
				AudioPath: path,
			},
			modTime: info.ModTime(),
		})
	}

	sort.SliceStable(files, func(i, j int) bool {
		return files[i].modTime.Before(files[j].modTime)
	})

	candidates := make([]media.Candidate, 0, len(files))
	for _, f := range files {
		candidates = append(candidates, f.candidate)
	}
	return candidates, nil
}

// ClaimFile moves the candidate's file into a fresh staging directory and
// returns the claim. The rename preserves size and modification time, so
// releasing the claim restores the original identifier.
func (s *Scanner) ClaimFile(c media.Candidate) (*Claim, error) {
	claimDir := filepath.Join(s.stagingDir, uuid.NewString())
	if err := os.MkdirAll(claimDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create claim dir: %w", ErrScan, err)
	}
	name := filepath.Base(c.AudioPath)
	staged := filepath.Join(claimDir, name)
	if err := os.Rename(c.AudioPath, staged); err != nil {
		os.Remove(claimDir)
		return nil, fmt.Errorf("%w: claim %s: %w", ErrScan, c.AudioPath, err)
	}
	return &Claim{StagedPath: staged, claimDir: claimDir, originalName: name}, nil
}

// Release returns a claimed file to the watched directory so a later pass
// can retry it, then removes the claim directory.
func (s *Scanner) Release(claim *Claim) error {
	target := filepath.Join(s.importDir, claim.originalName)
	if err := fileutil.MoveFile(claim.StagedPath, target); err != nil {
		return fmt.Errorf("%w: release %s: %w", ErrScan, claim.StagedPath, err)
	}
	return os.RemoveAll(claim.claimDir)
}

// Discard removes the claim directory and anything left in it. Called
// after the claimed file has been consumed (moved to output or deleted).
func (s *Scanner) Discard(claim *Claim) error {
	return os.RemoveAll(claim.claimDir)
}

// sweepResidue quarantines staging directories old enough that no live
// pass can own them. Younger residue is left alone; passes are
// sequential, but the grace period also covers operators poking around.
func (s *Scanner) sweepResidue() {
	entries, err := os.ReadDir(s.stagingDir)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("cannot read staging directory",
				logging.String("dir", s.stagingDir),
				logging.Error(err),
			)
		}
		return
	}

	cutoff := s.now().Add(-s.grace)
	for _, entry := range entries {
		if entry.Name() == quarantineDirName {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		source := filepath.Join(s.stagingDir, entry.Name())
		target := filepath.Join(s.quarantineDir, entry.Name())
		if err := os.MkdirAll(s.quarantineDir, 0o755); err != nil {
			s.logger.Warn("cannot create quarantine directory", logging.Error(err))
			return
		}
		if err := os.Rename(source, target); err != nil {
			s.logger.Warn("cannot quarantine staging residue",
				logging.String("dir", source),
				logging.Error(err),
			)
			continue
		}
		s.logger.Warn("quarantined staging residue from an earlier run",
			logging.String("dir", target),
			logging.String(logging.FieldImpact, "file needs operator review before reprocessing"),
		)
	}
}
