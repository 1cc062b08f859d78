package media

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// SourceKind identifies where a candidate was discovered.
type SourceKind string

const (
	SourceFeed   SourceKind = "feed"
	SourceImport SourceKind = "import"
)

// Candidate is one discovered, not-yet-processed unit of work. Candidates
// are ephemeral: they are recomputed on every pass and only their ID is
// persisted once processing succeeds.
type Candidate struct {
	Source SourceKind
	// ID is deterministic and stable across restarts for the same logical
	// episode; the state store keys on it.
	ID    string
	Title string
	// AudioURL is set for feed candidates.
	AudioURL string
	// AudioPath is set for import candidates and points into staging.
	AudioPath string
	// PublishedAt feeds the lookback filter; zero for imports, which are
	// exempt from it.
	PublishedAt time.Time
	// FeedOrder is the position of the originating feed in configuration,
	// used as a deterministic ordering tie-break. Zero for imports.
	FeedOrder int
}

// FromImport reports whether the candidate came from the import directory.
func (c Candidate) FromImport() bool {
	return c.Source == SourceImport
}

// FeedIdentifier derives the stable identifier for a feed episode from the
// feed URL and the episode GUID (or whatever stood in for it).
func FeedIdentifier(feedURL, guid string) string {
	return digest("feed", feedURL, guid)
}

// ImportIdentifier derives the stable identifier for an imported file from
// its original path, size, and modification time. Rename-based staging
// moves preserve size and mtime, so a failed import that is returned to
// the watched directory keeps its identifier.
func ImportIdentifier(path string, size int64, modTime time.Time) string {
	return digest("import", path, fmt.Sprintf("%d:%d", size, modTime.UTC().UnixNano()))
}

func digest(parts ...string) string {
	h := sha256.New()
	for _, part := range parts {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

var (
	unsafeFilenameChars = regexp.MustCompile(`[\\/*?:"<>|]`)
	whitespaceRun       = regexp.MustCompile(`\s+`)
)

const maxFilenameBase = 200

// SanitizeTitle converts an episode title into a safe filename base:
// unicode-normalized, shell/filesystem metacharacters stripped, whitespace
// collapsed to underscores, capped at 200 characters.
func SanitizeTitle(title string) string {
	cleaned := norm.NFKC.String(strings.TrimSpace(title))
	cleaned = unsafeFilenameChars.ReplaceAllString(cleaned, "")
	cleaned = whitespaceRun.ReplaceAllString(cleaned, "_")
	cleaned = strings.Trim(cleaned, "._")
	if cleaned == "" {
		cleaned = "episode"
	}
	if len(cleaned) > maxFilenameBase {
		cleaned = cleaned[:maxFilenameBase]
	}
	return cleaned
}
