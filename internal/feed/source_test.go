package feed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"podscribe/internal/logging"
	"podscribe/internal/media"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Test Show</title>
    <item>
      <title>Episode One</title>
      <guid>ep-1</guid>
      <pubDate>Mon, 02 Jun 2025 10:00:00 +0000</pubDate>
      <enclosure url="https://cdn.example.com/ep1.mp3" type="audio/mpeg" length="123"/>
    </item>
    <item>
      <title>No Enclosure</title>
      <guid>ep-2</guid>
      <pubDate>Tue, 03 Jun 2025 10:00:00 +0000</pubDate>
    </item>
    <item>
      <title>Link Fallback</title>
      <guid>ep-3</guid>
      <pubDate>Wed, 04 Jun 2025 10:00:00 +0000</pubDate>
      <link>https://cdn.example.com/ep3.mp3?token=abc</link>
    </item>
    <item>
      <title>Undated</title>
      <guid>ep-4</guid>
      <enclosure url="https://cdn.example.com/ep4.mp3" type="audio/mpeg" length="123"/>
    </item>
  </channel>
</rss>`

func newTestSource(t *testing.T) *Source {
	t.Helper()
	return NewSource(logging.NewNop(), 5*time.Second)
}

func TestFetchExtractsCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, sampleFeed)
	}))
	defer server.Close()

	source := newTestSource(t)
	candidates, err := source.Fetch(context.Background(), server.URL, 2)
	if err != nil {
		t.Fatal(err)
	}

	if len(candidates) != 2 {
		t.Fatalf("got %d candidates, want 2 (no-enclosure and undated dropped)", len(candidates))
	}

	first := candidates[0]
	if first.Source != media.SourceFeed {
		t.Fatalf("source = %q", first.Source)
	}
	if first.Title != "Episode One" {
		t.Fatalf("title = %q", first.Title)
	}
	if first.AudioURL != "https://cdn.example.com/ep1.mp3" {
		t.Fatalf("audio url = %q", first.AudioURL)
	}
	if first.FeedOrder != 2 {
		t.Fatalf("feed order = %d", first.FeedOrder)
	}
	if first.ID != media.FeedIdentifier(server.URL, "ep-1") {
		t.Fatal("identifier does not match feed URL + guid derivation")
	}
	want := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	if !first.PublishedAt.Equal(want) {
		t.Fatalf("published = %v, want %v", first.PublishedAt, want)
	}

	second := candidates[1]
	if second.AudioURL != "https://cdn.example.com/ep3.mp3?token=abc" {
		t.Fatalf("link fallback audio url = %q", second.AudioURL)
	}
}

func TestFetchClassifiesHTTPFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	source := newTestSource(t)
	_, err := source.Fetch(context.Background(), server.URL, 0)
	if !errors.Is(err, ErrFetch) {
		t.Fatalf("err = %v, want ErrFetch", err)
	}
}

func TestFetchClassifiesNetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	source := newTestSource(t)
	_, err := source.Fetch(context.Background(), server.URL, 0)
	if !errors.Is(err, ErrFetch) {
		t.Fatalf("err = %v, want ErrFetch", err)
	}
}

func TestFetchClassifiesParseFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "this is not a feed")
	}))
	defer server.Close()

	source := newTestSource(t)
	_, err := source.Fetch(context.Background(), server.URL, 0)
	if !errors.Is(err, ErrParse) {
		t.Fatalf("err = %v, want ErrParse", err)
	}
}

func TestResolveEnclosurePrefersAudioType(t *testing.T) {
	if got := titleFromURL("https://cdn.example.com/shows/deep_dive.mp3?sig=x"); got != "deep_dive" {
		t.Fatalf("titleFromURL = %q", got)
	}
}
