package storage

import (
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
)

// LocalMusic serves tracks from a directory on disk.
type LocalMusic struct {
	musicDir string
}

func NewLocalMusic(musicDir string) *LocalMusic {
	return &LocalMusic{musicDir: musicDir}
}

func (s *LocalMusic) RandomMusicTrack(_ context.Context) (string, error) {
	tracks, err := s.ListTracks()
	if err != nil || len(tracks) == 0 {
		return "", nil
	}
	return tracks[rand.Intn(len(tracks))], nil
}

func (s *LocalMusic) ListTracks() ([]string, error) {
	entries, err := os.ReadDir(s.musicDir)
	if err != nil {
		return nil, err
	}

	var tracks []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if isAudioFile(entry.Name()) {
			tracks = append(tracks, filepath.Join(s.musicDir, entry.Name()))
		}
	}
	return tracks, nil
}

func isAudioFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".mp3", ".wav", ".m4a", ".ogg":
		return true
	}
	return false
}
