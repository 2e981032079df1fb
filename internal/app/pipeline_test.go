package app

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"shortforge/internal/content"
	"shortforge/internal/media"
	"shortforge/internal/plan"
	"shortforge/internal/speech"
	"shortforge/internal/store"
	"shortforge/internal/topics"
	"shortforge/internal/upload"
	"shortforge/internal/video"
	"shortforge/pkg/config"
)

type fakeLibrary struct {
	mu     sync.Mutex
	videos map[string]*store.Video
	failed []store.Video
	stats  struct{ created, uploaded int }
}

func newFakeLibrary() *fakeLibrary {
	return &fakeLibrary{videos: make(map[string]*store.Video)}
}

func (f *fakeLibrary) CreateVideo(v *store.Video) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.videos[v.VideoID] = v
	return nil
}

func (f *fakeLibrary) VideoByID(videoID string) (*store.Video, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.videos[videoID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return v, nil
}

func (f *fakeLibrary) FailedUploads(_ int) ([]store.Video, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.failed, nil
}

func (f *fakeLibrary) BumpDailyStats(_ string, created, uploaded int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stats.created += created
	f.stats.uploaded += uploaded
	return nil
}

func (f *fakeLibrary) videoCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.videos)
}

type fakeTopics struct{ topic string }

func (f *fakeTopics) Next(_ context.Context) topics.Candidate {
	return topics.Candidate{Topic: f.topic, Source: "curated", Score: 8}
}

type fakeContent struct{}

func (fakeContent) Generate(_ context.Context, topic string) *content.Package {
	return &content.Package{
		Script:      "First sentence. Second sentence. Third sentence.",
		Title:       "About " + topic,
		Description: "desc #tag",
		Tags:        []string{"shorts"},
		Keywords:    []string{topic},
	}
}

type fakeNarrator struct{ err error }

func (f *fakeNarrator) Synthesize(_ context.Context, _ string, _ speech.VoiceProfile, outPath string) (*speech.Track, error) {
	if f.err != nil {
		return nil, f.err
	}
	if err := os.WriteFile(outPath, []byte("audio"), 0o644); err != nil {
		return nil, err
	}
	return &speech.Track{Path: outPath, Backend: "fake", Duration: 9}, nil
}

type fakeFetcher struct{ assets []media.Asset }

func (f *fakeFetcher) Fetch(_ context.Context, _ []string, _ int, _ media.Kind) []media.Asset {
	return f.assets
}

type fakeRenderer struct{ dir string }

func (f *fakeRenderer) RenderSegment(_ context.Context, seg plan.Segment, asset *media.Asset) video.Clip {
	path := filepath.Join(f.dir, "clip.mp4")
	_ = os.WriteFile(path, []byte("clip"), 0o644)
	return video.Clip{Path: path, Duration: seg.Duration(), Fallback: asset == nil}
}

type fakeAssembler struct {
	dir string
	err error
}

func (f *fakeAssembler) Assemble(_ context.Context, _ video.AssembleRequest) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	path := filepath.Join(f.dir, "final.mp4")
	_ = os.WriteFile(path, []byte("video"), 0o644)
	return path, nil
}

type fakeUploader struct {
	err   error
	calls int
}

func (f *fakeUploader) Upload(_ context.Context, rec *store.Video) (string, error) {
	f.calls++
	if f.err != nil {
		rec.Status = store.StatusUploadFailed
		return "", f.err
	}
	rec.Status = store.StatusUploaded
	rec.RemoteURL = "https://www.youtube.com/watch?v=x"
	return rec.RemoteURL, nil
}

func testService(t *testing.T, library *fakeLibrary, uploader Uploader) *Service {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{}
	cfg.Video.TempDir = dir
	cfg.Video.OutputDir = dir
	cfg.YouTube.MaxRetries = 3

	return NewService(ServiceOptions{
		Config:    cfg,
		Library:   library,
		Topics:    &fakeTopics{topic: "ocean facts"},
		Content:   fakeContent{},
		Narrator:  &fakeNarrator{},
		Fetcher:   &fakeFetcher{},
		Renderer:  &fakeRenderer{dir: dir},
		Assembler: &fakeAssembler{dir: dir},
		Uploader:  uploader,
	})
}

func TestGenerateOneHappyPath(t *testing.T) {
	library := newFakeLibrary()
	uploader := &fakeUploader{}
	s := testService(t, library, uploader)

	rec, err := s.GenerateOne(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Topic != "ocean facts" {
		t.Errorf("discovered topic should be recorded, got %q", rec.Topic)
	}
	if rec.Status != store.StatusUploaded {
		t.Errorf("expected uploaded status, got %s", rec.Status)
	}
	if uploader.calls != 1 {
		t.Errorf("expected 1 upload, got %d", uploader.calls)
	}
	if library.stats.created != 1 || library.stats.uploaded != 1 {
		t.Errorf("daily stats not bumped: %+v", library.stats)
	}
}

func TestGenerateOneExplicitTopicSkipsDiscovery(t *testing.T) {
	library := newFakeLibrary()
	s := testService(t, library, &fakeUploader{})

	rec, err := s.GenerateOne(context.Background(), "volcanoes")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Topic != "volcanoes" {
		t.Errorf("expected explicit topic, got %q", rec.Topic)
	}
	if rec.TrendScore != 0 {
		t.Errorf("explicit topics have no trend score, got %v", rec.TrendScore)
	}
}

func TestGenerateOneUploadFailureKeepsRecord(t *testing.T) {
	library := newFakeLibrary()
	uploader := &fakeUploader{err: errors.New("boom")}
	s := testService(t, library, uploader)

	rec, err := s.GenerateOne(context.Background(), "")
	if err == nil {
		t.Fatal("expected upload error to propagate")
	}
	if rec == nil {
		t.Fatal("record must survive a failed upload")
	}
	if library.stats.created != 1 || library.stats.uploaded != 0 {
		t.Errorf("only created should be counted: %+v", library.stats)
	}
}

func TestGenerateOneNarrationFailureIsFatal(t *testing.T) {
	library := newFakeLibrary()
	s := testService(t, library, &fakeUploader{})
	s.narrator = &fakeNarrator{err: errors.New("all backends failed")}

	if _, err := s.GenerateOne(context.Background(), ""); err == nil {
		t.Fatal("narration failure must be fatal for the video")
	}
	if len(library.videos) != 0 {
		t.Error("no record should be created without a rendered video")
	}
}

func TestGenerateOneWithoutUploaderStaysLocal(t *testing.T) {
	library := newFakeLibrary()
	s := testService(t, library, nil)

	rec, err := s.GenerateOne(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Status != store.StatusCreated {
		t.Errorf("expected created status, got %s", rec.Status)
	}
}

func TestGenerateOneWarnsOnShortNarration(t *testing.T) {
	library := newFakeLibrary()
	s := testService(t, library, nil)
	s.cfg.Video.MinDuration = 30
	s.cfg.Video.MaxDuration = 60

	var buf bytes.Buffer
	s.logger = slog.New(slog.NewTextHandler(&buf, nil))

	if _, err := s.GenerateOne(context.Background(), ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "narration outside the configured duration bounds") {
		t.Error("expected a warning for narration shorter than the minimum duration")
	}
}

func TestRetryFailedUploads(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "old.mp4")
	if err := os.WriteFile(existing, []byte("v"), 0o644); err != nil {
		t.Fatal(err)
	}

	library := newFakeLibrary()
	library.failed = []store.Video{
		{VideoID: "a", FilePath: existing, Status: store.StatusUploadFailed},
		{VideoID: "b", FilePath: filepath.Join(dir, "missing.mp4"), Status: store.StatusUploadFailed},
	}
	uploader := &fakeUploader{}
	s := testService(t, library, uploader)

	if err := s.RetryFailedUploads(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if uploader.calls != 1 {
		t.Errorf("records without a file must be skipped, got %d calls", uploader.calls)
	}
}

func TestRetryFailedUploadsStopsOnQuota(t *testing.T) {
	dir := t.TempDir()
	paths := make([]string, 2)
	for i := range paths {
		paths[i] = filepath.Join(dir, string(rune('a'+i))+".mp4")
		if err := os.WriteFile(paths[i], []byte("v"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	library := newFakeLibrary()
	library.failed = []store.Video{
		{VideoID: "a", FilePath: paths[0], Status: store.StatusUploadFailed},
		{VideoID: "b", FilePath: paths[1], Status: store.StatusUploadFailed},
	}
	uploader := &fakeUploader{err: upload.ErrQuotaExceeded}
	s := testService(t, library, uploader)

	err := s.RetryFailedUploads(context.Background())
	if !errors.Is(err, upload.ErrQuotaExceeded) {
		t.Fatalf("expected quota error, got %v", err)
	}
	if uploader.calls != 1 {
		t.Errorf("quota exhaustion must stop the loop, got %d calls", uploader.calls)
	}
}
