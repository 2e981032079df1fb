package speech

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
)

const (
	// Anything smaller than this is silence or an error page, not speech.
	minAudioBytes = 5 * 1024

	minNarrationSeconds = 10.0
)

// ErrAllBackendsFailed is returned when no backend produced usable audio.
var ErrAllBackendsFailed = errors.New("speech: all backends failed")

// DurationProbe reports the duration of an audio file in seconds.
type DurationProbe func(ctx context.Context, path string) (float64, error)

// Synthesizer tries a chain of TTS backends in priority order until one
// produces a plausible audio file.
type Synthesizer struct {
	backends []Backend
	probe    DurationProbe
	timeout  time.Duration
	logger   *slog.Logger
}

func NewSynthesizer(backends []Backend, probe DurationProbe, timeout time.Duration, logger *slog.Logger) *Synthesizer {
	if timeout == 0 {
		timeout = 90 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Synthesizer{
		backends: backends,
		probe:    probe,
		timeout:  timeout,
		logger:   logger,
	}
}

// Synthesize narrates text into outPath. Each backend gets one attempt
// with the full text; if the output is implausibly small, the text is
// cut in half and that backend gets one more try before moving on.
func (s *Synthesizer) Synthesize(ctx context.Context, text string, profile VoiceProfile, outPath string) (*Track, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("speech: empty text")
	}
	if len(s.backends) == 0 {
		return nil, errors.New("speech: no backends configured")
	}

	var lastErr error
	for _, backend := range s.backends {
		track, err := s.tryBackend(ctx, backend, text, profile, outPath)
		if err == nil {
			return track, nil
		}
		lastErr = err
		s.logger.Warn("speech backend failed",
			"backend", backend.Name(),
			"error", err)
	}

	return nil, fmt.Errorf("%w: %v", ErrAllBackendsFailed, lastErr)
}

func (s *Synthesizer) tryBackend(ctx context.Context, backend Backend, text string, profile VoiceProfile, outPath string) (*Track, error) {
	size, err := s.synthesizeOnce(ctx, backend, text, profile, outPath)
	if err == nil && size < minAudioBytes {
		s.logger.Warn("audio too small, retrying with shorter text",
			"backend", backend.Name(),
			"bytes", size)
		size, err = s.synthesizeOnce(ctx, backend, truncateHalf(text), profile, outPath)
	}
	if err != nil {
		return nil, err
	}
	if size < minAudioBytes {
		return nil, fmt.Errorf("%s: audio implausibly small (%d bytes)", backend.Name(), size)
	}

	track := &Track{
		Path:    outPath,
		Backend: backend.Name(),
		Size:    size,
	}

	if s.probe != nil {
		duration, err := s.probe(ctx, outPath)
		if err != nil {
			return nil, fmt.Errorf("probe narration: %w", err)
		}
		track.Duration = duration
		if duration < minNarrationSeconds {
			s.logger.Warn("narration shorter than expected",
				"seconds", duration)
		}
	}

	return track, nil
}

func (s *Synthesizer) synthesizeOnce(ctx context.Context, backend Backend, text string, profile VoiceProfile, outPath string) (int64, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := backend.Synthesize(callCtx, text, profile, outPath); err != nil {
		return 0, err
	}

	info, err := os.Stat(outPath)
	if err != nil {
		return 0, fmt.Errorf("%s: no output file: %w", backend.Name(), err)
	}
	return info.Size(), nil
}

// truncateHalf cuts text to its first half, preferring a word boundary.
func truncateHalf(text string) string {
	half := len(text) / 2
	if half == 0 {
		return text
	}
	cut := text[:half]
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}
	return cut
}
