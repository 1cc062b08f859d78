package media

import (
	"strings"
	"testing"
	"time"
)

func TestFeedIdentifierDeterministic(t *testing.T) {
	a := FeedIdentifier("https://example.com/feed.xml", "guid-1")
	b := FeedIdentifier("https://example.com/feed.xml", "guid-1")
	if a != b {
		t.Fatalf("identifier not stable: %q vs %q", a, b)
	}
	if a == FeedIdentifier("https://example.com/feed.xml", "guid-2") {
		t.Fatal("different GUIDs must yield different identifiers")
	}
	if a == FeedIdentifier("https://other.example.com/feed.xml", "guid-1") {
		t.Fatal("different feeds must yield different identifiers")
	}
}

func TestFeedIdentifierNoDelimiterCollision(t *testing.T) {
	a := FeedIdentifier("https://example.com/a", "bc")
	b := FeedIdentifier("https://example.com/ab", "c")
	if a == b {
		t.Fatal("concatenation must not collide across field boundaries")
	}
}

func TestImportIdentifierDeterministic(t *testing.T) {
	mod := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	a := ImportIdentifier("/import/show.mp3", 1024, mod)
	b := ImportIdentifier("/import/show.mp3", 1024, mod)
	if a != b {
		t.Fatalf("identifier not stable: %q vs %q", a, b)
	}
	if a == ImportIdentifier("/import/show.mp3", 1025, mod) {
		t.Fatal("size change must change the identifier")
	}
	if a == ImportIdentifier("/import/show.mp3", 1024, mod.Add(time.Second)) {
		t.Fatal("mtime change must change the identifier")
	}
}

func TestSanitizeTitle(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Episode 42: The Answer", "Episode_42_The_Answer"},
		{`a/b\c*d?e"f<g>h|i`, "abcdefghi"},
		{"  spaced   out  ", "spaced_out"},
		{"", "episode"},
		{"???", "episode"},
	}
	for _, tc := range cases {
		if got := SanitizeTitle(tc.in); got != tc.want {
			t.Errorf("SanitizeTitle(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSanitizeTitleCapsLength(t *testing.T) {
	long := strings.Repeat("x", 500)
	if got := SanitizeTitle(long); len(got) != maxFilenameBase {
		t.Fatalf("length = %d, want %d", len(got), maxFilenameBase)
	}
}
