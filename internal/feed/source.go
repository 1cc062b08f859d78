package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"podscribe/internal/logging"
	"podscribe/internal/media"
)

var (
	// ErrFetch marks network and HTTP-level failures.
	ErrFetch = errors.New("feed fetch failed")
	// ErrParse marks malformed feed content.
	ErrParse = errors.New("feed parse failed")
)

// audioLinkExtensions lets an episode link stand in for a missing
// enclosure when it plainly points at an audio file.
var audioLinkExtensions = map[string]struct{}{
	".mp3": {},
	".m4a": {},
	".wav": {},
	".ogg": {},
}

// Source fetches and parses RSS feeds into episode candidates.
type Source struct {
	parser *gofeed.Parser
	logger *slog.Logger
}

// NewSource builds a feed source with a bounded-timeout HTTP client.
func NewSource(logger *slog.Logger, timeout time.Duration) *Source {
	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: timeout}
	return &Source{
		parser: parser,
		logger: logging.NewComponentLogger(logger, "feed"),
	}
}

// Fetch retrieves feedURL and returns its candidates in feed order.
// feedOrder is the feed's position in configuration and is carried onto
// every candidate for deterministic tie-breaking downstream.
func (s *Source) Fetch(ctx context.Context, feedURL string, feedOrder int) ([]media.Candidate, error) {
	parsed, err := s.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, classify(feedURL, err)
	}

	candidates := make([]media.Candidate, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		candidate, ok := s.candidateFromItem(feedURL, feedOrder, item)
		if !ok {
			continue
		}
		candidates = append(candidates, candidate)
	}
	return candidates, nil
}

func (s *Source) candidateFromItem(feedURL string, feedOrder int, item *gofeed.Item) (media.Candidate, bool) {
	guid := strings.TrimSpace(item.GUID)
	if guid == "" {
		guid = strings.TrimSpace(item.Link)
	}
	if guid == "" && item.PublishedParsed != nil {
		guid = strings.TrimSpace(item.Title) + "|" + item.PublishedParsed.UTC().Format(time.RFC3339)
	}
	if guid == "" || guid == "|" {
		s.logger.Warn("feed entry has no usable identifier; dropping",
			logging.String(logging.FieldFeedURL, feedURL),
			logging.String("title", item.Title),
		)
		return media.Candidate{}, false
	}

	audioURL := resolveEnclosure(item)
	if audioURL == "" {
		s.logger.Warn("feed entry has no resolvable audio enclosure; dropping",
			logging.String(logging.FieldFeedURL, feedURL),
			logging.String("title", item.Title),
		)
		return media.Candidate{}, false
	}

	if item.PublishedParsed == nil {
		s.logger.Warn("feed entry has no parsable publish date; dropping",
			logging.String(logging.FieldFeedURL, feedURL),
			logging.String("title", item.Title),
		)
		return media.Candidate{}, false
	}

	title := strings.TrimSpace(item.Title)
	if title == "" {
		title = titleFromURL(audioURL)
	}

	return media.Candidate{
		Source:      media.SourceFeed,
		ID:          media.FeedIdentifier(feedURL, guid),
		Title:       title,
		AudioURL:    audioURL,
		PublishedAt: item.PublishedParsed.UTC(),
		FeedOrder:   feedOrder,
	}, true
}

// resolveEnclosure prefers an audio-typed enclosure and falls back to an
// item link with an audio file extension.
func resolveEnclosure(item *gofeed.Item) string {
	for _, enclosure := range item.Enclosures {
		if enclosure == nil {
			continue
		}
		if strings.HasPrefix(strings.ToLower(enclosure.Type), "audio") && enclosure.URL != "" {
			return enclosure.URL
		}
	}
	link := strings.TrimSpace(item.Link)
	if link == "" {
		return ""
	}
	ext := strings.ToLower(path.Ext(stripQuery(link)))
	if _, ok := audioLinkExtensions[ext]; ok {
		return link
	}
	return ""
}

func stripQuery(raw string) string {
	if idx := strings.IndexAny(raw, "?#"); idx >= 0 {
		return raw[:idx]
	}
	return raw
}

func titleFromURL(audioURL string) string {
	base := path.Base(stripQuery(audioURL))
	if ext := path.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	if base == "" || base == "." || base == "/" {
		return "episode"
	}
	return base
}

func classify(feedURL string, err error) error {
	var httpErr gofeed.HTTPError
	var urlErr *url.Error
	switch {
	case errors.As(err, &httpErr):
		return fmt.Errorf("%w: %s: %s", ErrFetch, feedURL, httpErr.Status)
	case errors.As(err, &urlErr),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %s: %v", ErrFetch, feedURL, err)
	default:
		return fmt.Errorf("%w: %s: %v", ErrParse, feedURL, err)
	}
}
