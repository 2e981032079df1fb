package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestRandomMusicTrackPicksAudioOnly(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.mp3", "b.wav", "notes.txt", "c.mp4"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	s := NewLocalMusic(dir)
	tracks, err := s.ListTracks()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tracks) != 2 {
		t.Fatalf("expected 2 audio tracks, got %v", tracks)
	}

	track, err := s.RandomMusicTrack(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ext := filepath.Ext(track)
	if ext != ".mp3" && ext != ".wav" {
		t.Errorf("picked non-audio file %s", track)
	}
}

func TestRandomMusicTrackEmptyDirIsSilent(t *testing.T) {
	s := NewLocalMusic(t.TempDir())
	track, err := s.RandomMusicTrack(context.Background())
	if err != nil {
		t.Fatalf("missing music should not error: %v", err)
	}
	if track != "" {
		t.Errorf("expected empty track, got %s", track)
	}
}

func TestRandomMusicTrackMissingDirIsSilent(t *testing.T) {
	s := NewLocalMusic("/nonexistent/music")
	track, err := s.RandomMusicTrack(context.Background())
	if err != nil {
		t.Fatalf("missing dir should not error: %v", err)
	}
	if track != "" {
		t.Errorf("expected empty track, got %s", track)
	}
}
