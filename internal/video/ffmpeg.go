package video

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

const (
	defaultFFmpegPath  = "ffmpeg"
	defaultFFprobePath = "ffprobe"
)

// FFmpeg wraps the ffmpeg and ffprobe binaries.
type FFmpeg struct {
	ffmpegPath  string
	ffprobePath string
}

func NewFFmpeg(ffmpegPath, ffprobePath string) *FFmpeg {
	if ffmpegPath == "" {
		ffmpegPath = defaultFFmpegPath
	}
	if ffprobePath == "" {
		ffprobePath = defaultFFprobePath
	}
	return &FFmpeg{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
	}
}

// Run executes ffmpeg with -y prepended so outputs are overwritten.
func (f *FFmpeg) Run(ctx context.Context, args ...string) error {
	full := append([]string{"-y"}, args...)
	cmd := exec.CommandContext(ctx, f.ffmpegPath, full...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg failed: %w, output: %s", err, tail(string(output), 800))
	}
	return nil
}

// ProbeDuration returns the container duration of a media file in seconds.
func (f *FFmpeg) ProbeDuration(ctx context.Context, path string) (float64, error) {
	args := []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	}

	cmd := exec.CommandContext(ctx, f.ffprobePath, args...)
	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w", err)
	}

	dur, err := strconv.ParseFloat(strings.TrimSpace(string(output)), 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration: %w", err)
	}
	return dur, nil
}

// tail keeps only the end of ffmpeg output, where the error lives.
func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}

func parseResolution(res string) (int, int) {
	parts := strings.Split(res, "x")
	if len(parts) != 2 {
		return 1080, 1920
	}
	w, err1 := strconv.Atoi(parts[0])
	h, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return 1080, 1920
	}
	return w, h
}
