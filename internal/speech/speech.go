package speech

import "context"

// VoiceProfile selects a narration style. The concrete voice, rate and
// pitch are resolved per backend.
type VoiceProfile struct {
	Style string
}

// Track is a synthesized narration saved to disk.
type Track struct {
	Path     string
	Voice    string
	Backend  string
	Size     int64
	Duration float64
}

// Backend converts text to speech and writes the audio to outPath.
type Backend interface {
	Name() string
	Synthesize(ctx context.Context, text string, profile VoiceProfile, outPath string) error
}

// Voice styles recognized by all backends. Unknown styles fall back
// to casual.
const (
	StyleEnergetic = "energetic"
	StyleCalm      = "calm"
	StyleFormal    = "formal"
	StyleCasual    = "casual"
	StyleDramatic  = "dramatic"
)
