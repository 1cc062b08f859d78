package processor

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"podscribe/internal/config"
	"podscribe/internal/importer"
	"podscribe/internal/logging"
	"podscribe/internal/media"
	"podscribe/internal/testsupport"
)

type fakeTranscriber struct {
	text string
	err  error
	// sawAudio records the audio path handed to the engine.
	sawAudio string
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audioPath, workDir string) (string, error) {
	f.sawAudio = audioPath
	if f.err != nil {
		return "", f.err
	}
	if _, err := os.Stat(audioPath); err != nil {
		return "", err
	}
	return f.text, nil
}

type fakeNotifier struct {
	readyTitles []string
	readyPaths  []string
	err         error
}

func (f *fakeNotifier) NotifyTranscriptReady(ctx context.Context, title, transcriptPath string) error {
	f.readyTitles = append(f.readyTitles, title)
	f.readyPaths = append(f.readyPaths, transcriptPath)
	return f.err
}

func (f *fakeNotifier) NotifyError(ctx context.Context, err error, scope string) error { return nil }

func (f *fakeNotifier) TestNotification(ctx context.Context) error { return nil }

type fakeStore struct {
	marked []string
	err    error
}

func (f *fakeStore) MarkProcessed(id string) error {
	if f.err != nil {
		return f.err
	}
	f.marked = append(f.marked, id)
	return nil
}

type fixture struct {
	cfg         *config.Config
	store       *fakeStore
	transcriber *fakeTranscriber
	notifier    *fakeNotifier
	scanner     *importer.Scanner
	processor   *Processor
}

func newFixture(t *testing.T, opts ...testsupport.ConfigOption) *fixture {
	t.Helper()
	cfg := testsupport.NewConfig(t, opts...)
	f := &fixture{
		cfg:         cfg,
		store:       &fakeStore{},
		transcriber: &fakeTranscriber{text: "[00:00:00.000 --> 00:00:01.000] hello\n"},
		notifier:    &fakeNotifier{},
	}
	if cfg.ImportEnabled() {
		f.scanner = importer.NewScanner(cfg.Paths.ImportDir, cfg.StagingDir(), cfg.QuarantineDir(), time.Hour, logging.NewNop())
	}
	var claims Claimer
	if f.scanner != nil {
		claims = f.scanner
	}
	f.processor = New(cfg, f.store, f.transcriber, f.notifier, claims, logging.NewNop())
	return f
}

func audioServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if status != http.StatusOK {
			http.Error(w, "nope", status)
			return
		}
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func feedCandidate(url string) media.Candidate {
	return media.Candidate{
		Source:   media.SourceFeed,
		ID:       "feed-ep-1",
		Title:    "Episode One",
		AudioURL: url + "/ep.mp3",
	}
}

func (f *fixture) importCandidate(t *testing.T, name string) media.Candidate {
	t.Helper()
	testsupport.WriteFile(t, filepath.Join(f.cfg.Paths.ImportDir, name), 64)
	candidates, err := f.scanner.Scan()
	if err != nil {
		t.Fatal(err)
	}
	if len(candidates) != 1 {
		t.Fatalf("got %d import candidates, want 1", len(candidates))
	}
	return candidates[0]
}

func TestProcessFeedEpisodeCommits(t *testing.T) {
	f := newFixture(t)
	server := audioServer(t, http.StatusOK, "audio-bytes")

	outcome := f.processor.Process(context.Background(), feedCandidate(server.URL))
	if !outcome.Success() {
		t.Fatal(outcome.Err)
	}

	wantPath := filepath.Join(f.cfg.TranscriptsDir(), "Episode_One.txt")
	if outcome.TranscriptPath != wantPath {
		t.Fatalf("transcript path = %q, want %q", outcome.TranscriptPath, wantPath)
	}
	data, err := os.ReadFile(wantPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != f.transcriber.text {
		t.Fatalf("transcript content = %q", data)
	}

	// Default retention discards the working audio.
	entries, err := os.ReadDir(f.cfg.AudioDir())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("audio dir should be empty, has %v", entries)
	}

	if len(f.store.marked) != 1 || f.store.marked[0] != "feed-ep-1" {
		t.Fatalf("marked = %v", f.store.marked)
	}
	if len(f.notifier.readyPaths) != 1 || f.notifier.readyPaths[0] != wantPath {
		t.Fatalf("notified paths = %v", f.notifier.readyPaths)
	}
}

func TestProcessFeedEpisodeKeepsAudio(t *testing.T) {
	f := newFixture(t, testsupport.WithKeepAudio())
	server := audioServer(t, http.StatusOK, "audio-bytes")

	outcome := f.processor.Process(context.Background(), feedCandidate(server.URL))
	if !outcome.Success() {
		t.Fatal(outcome.Err)
	}

	kept := filepath.Join(f.cfg.AudioDir(), "Episode_One.mp3")
	if _, err := os.Stat(kept); err != nil {
		t.Fatalf("kept audio missing: %v", err)
	}
	entries, _ := os.ReadDir(f.cfg.AudioDir())
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), tempAudioPrefix) {
			t.Fatalf("temporary download left behind: %s", entry.Name())
		}
	}
}

func TestProcessDownloadFailureLeavesNoResidue(t *testing.T) {
	f := newFixture(t)
	server := audioServer(t, http.StatusNotFound, "")

	outcome := f.processor.Process(context.Background(), feedCandidate(server.URL))
	if !errors.Is(outcome.Err, ErrDownload) {
		t.Fatalf("err = %v, want ErrDownload", outcome.Err)
	}
	if outcome.Fatal() {
		t.Fatal("download failure must not be fatal")
	}

	entries, _ := os.ReadDir(f.cfg.AudioDir())
	if len(entries) != 0 {
		t.Fatalf("partial download left behind: %v", entries)
	}
	if len(f.store.marked) != 0 {
		t.Fatalf("failed episode was committed: %v", f.store.marked)
	}
}

func TestProcessTranscriptionFailureCleansUpDownload(t *testing.T) {
	f := newFixture(t)
	f.transcriber.err = errors.New("model exploded")
	server := audioServer(t, http.StatusOK, "audio-bytes")

	outcome := f.processor.Process(context.Background(), feedCandidate(server.URL))
	if !errors.Is(outcome.Err, ErrTranscribe) {
		t.Fatalf("err = %v, want ErrTranscribe", outcome.Err)
	}

	entries, _ := os.ReadDir(f.cfg.AudioDir())
	if len(entries) != 0 {
		t.Fatalf("audio residue after failure: %v", entries)
	}
	transcripts, _ := os.ReadDir(f.cfg.TranscriptsDir())
	if len(transcripts) != 0 {
		t.Fatalf("transcript residue after failure: %v", transcripts)
	}
	if len(f.store.marked) != 0 {
		t.Fatal("failed episode was committed")
	}
}

func TestProcessImportEpisodeCommits(t *testing.T) {
	f := newFixture(t, testsupport.WithKeepAudio())
	candidate := f.importCandidate(t, "dropped_show.mp3")

	outcome := f.processor.Process(context.Background(), candidate)
	if !outcome.Success() {
		t.Fatal(outcome.Err)
	}

	if _, err := os.Stat(filepath.Join(f.cfg.Paths.ImportDir, "dropped_show.mp3")); !os.IsNotExist(err) {
		t.Fatal("import file still in watched directory after success")
	}
	kept := filepath.Join(f.cfg.AudioDir(), "dropped_show.mp3")
	if _, err := os.Stat(kept); err != nil {
		t.Fatalf("kept import audio missing: %v", err)
	}
	staging, _ := os.ReadDir(f.cfg.StagingDir())
	for _, entry := range staging {
		if entry.Name() != "quarantine" {
			t.Fatalf("claim residue in staging: %s", entry.Name())
		}
	}
	if len(f.store.marked) != 1 || f.store.marked[0] != candidate.ID {
		t.Fatalf("marked = %v", f.store.marked)
	}
}

func TestProcessImportFailureReturnsFileForRetry(t *testing.T) {
	f := newFixture(t)
	f.transcriber.err = errors.New("model exploded")
	candidate := f.importCandidate(t, "dropped_show.mp3")

	outcome := f.processor.Process(context.Background(), candidate)
	if !errors.Is(outcome.Err, ErrTranscribe) {
		t.Fatalf("err = %v, want ErrTranscribe", outcome.Err)
	}

	if _, err := os.Stat(filepath.Join(f.cfg.Paths.ImportDir, "dropped_show.mp3")); err != nil {
		t.Fatalf("import file not returned for retry: %v", err)
	}

	// The returned file must keep its identifier so the next pass sees
	// the same episode.
	f.transcriber.err = nil
	rescanned, err := f.scanner.Scan()
	if err != nil {
		t.Fatal(err)
	}
	if len(rescanned) != 1 || rescanned[0].ID != candidate.ID {
		t.Fatalf("rescan = %v, want identifier %s", rescanned, candidate.ID)
	}
}

func TestProcessTranscriptNameCollisionGetsSuffix(t *testing.T) {
	f := newFixture(t)
	server := audioServer(t, http.StatusOK, "audio-bytes")
	existing := filepath.Join(f.cfg.TranscriptsDir(), "Episode_One.txt")
	testsupport.WriteFile(t, existing, 10)

	outcome := f.processor.Process(context.Background(), feedCandidate(server.URL))
	if !outcome.Success() {
		t.Fatal(outcome.Err)
	}
	want := filepath.Join(f.cfg.TranscriptsDir(), "Episode_One_2.txt")
	if outcome.TranscriptPath != want {
		t.Fatalf("transcript path = %q, want %q", outcome.TranscriptPath, want)
	}
}

func TestProcessStateCommitFailureIsFatal(t *testing.T) {
	f := newFixture(t)
	f.store.err = errors.New("disk full")
	server := audioServer(t, http.StatusOK, "audio-bytes")

	outcome := f.processor.Process(context.Background(), feedCandidate(server.URL))
	if !errors.Is(outcome.Err, ErrState) {
		t.Fatalf("err = %v, want ErrState", outcome.Err)
	}
	if !outcome.Fatal() {
		t.Fatal("state commit failure must be fatal")
	}
}

func TestProcessNotificationFailureDoesNotFailEpisode(t *testing.T) {
	f := newFixture(t)
	f.notifier.err = errors.New("webhook down")
	server := audioServer(t, http.StatusOK, "audio-bytes")

	outcome := f.processor.Process(context.Background(), feedCandidate(server.URL))
	if !outcome.Success() {
		t.Fatalf("notification failure leaked into outcome: %v", outcome.Err)
	}
	if len(f.store.marked) != 1 {
		t.Fatal("episode not committed despite successful pipeline")
	}
}

func TestProcessCommitSurvivesStoreReopen(t *testing.T) {
	f := newFixture(t)
	server := audioServer(t, http.StatusOK, "audio-bytes")

	store := testsupport.MustOpenStore(t, f.cfg)
	proc := New(f.cfg, store, f.transcriber, f.notifier, nil, logging.NewNop())

	candidate := feedCandidate(server.URL)
	if outcome := proc.Process(context.Background(), candidate); !outcome.Success() {
		t.Fatal(outcome.Err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	reopened := testsupport.MustOpenStore(t, f.cfg)
	if !reopened.IsProcessed(candidate.ID) {
		t.Fatal("commit lost across store reopen")
	}
}

func TestProcessDownloadRetriesThenSucceeds(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, "flaky", http.StatusInternalServerError)
			return
		}
		w.Write([]byte("audio-bytes"))
	}))
	defer server.Close()

	f := newFixture(t, func(cfg *config.Config) {
		cfg.Processing.DownloadAttempts = 2
	})

	outcome := f.processor.Process(context.Background(), feedCandidate(server.URL))
	if !outcome.Success() {
		t.Fatal(outcome.Err)
	}
	if calls != 2 {
		t.Fatalf("download attempts = %d, want 2", calls)
	}
}
