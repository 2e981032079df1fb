package storage

import "context"

// MusicProvider hands out a background music track, or "" when no
// music is available. Missing music is not an error.
type MusicProvider interface {
	RandomMusicTrack(ctx context.Context) (string, error)
}
