package video

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"shortforge/internal/media"
	"shortforge/internal/plan"
	"shortforge/pkg/httputil"
)

// palette backs the solid-color fallback, indexed by segment position.
var palette = []string{
	"0x2980B9", // blue
	"0x8E44AD", // purple
	"0xE74C3C", // red
	"0xF39C12", // orange
	"0x2ECC71", // green
	"0x3498DB", // light blue
}

// Clip is one rendered segment, normalized to the target resolution
// and frame rate so clips concat without re-encoding surprises.
type Clip struct {
	Path     string
	Duration float64
	Fallback bool
}

// Compositor turns a planned segment plus a stock asset into a clip.
type Compositor struct {
	ffmpeg  *FFmpeg
	client  *httputil.RetryClient
	width   int
	height  int
	fps     int
	preset  string
	workDir string
	logger  *slog.Logger
}

type CompositorOptions struct {
	FFmpeg     *FFmpeg
	Client     *httputil.RetryClient
	Resolution string
	FPS        int
	Preset     string
	WorkDir    string
	Logger     *slog.Logger
}

func NewCompositor(opts CompositorOptions) *Compositor {
	width, height := parseResolution(opts.Resolution)
	ffmpeg := opts.FFmpeg
	if ffmpeg == nil {
		ffmpeg = NewFFmpeg("", "")
	}
	client := opts.Client
	if client == nil {
		client = httputil.NewRetryClient(nil, httputil.DefaultRetryConfig())
	}
	fps := opts.FPS
	if fps == 0 {
		fps = 30
	}
	preset := opts.Preset
	if preset == "" {
		preset = "fast"
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Compositor{
		ffmpeg:  ffmpeg,
		client:  client,
		width:   width,
		height:  height,
		fps:     fps,
		preset:  preset,
		workDir: opts.WorkDir,
		logger:  logger,
	}
}

// RenderSegment produces a clip of exactly the segment's duration. A nil
// asset, download failure or encode failure falls back to a solid color
// background, so the pipeline never loses a segment to bad stock media.
func (c *Compositor) RenderSegment(ctx context.Context, seg plan.Segment, asset *media.Asset) Clip {
	duration := seg.Duration()
	outPath := filepath.Join(c.workDir, fmt.Sprintf("clip_%03d.mp4", seg.Index))

	if asset != nil {
		localPath, err := c.download(ctx, asset, seg.Index)
		if err != nil {
			c.logger.Warn("asset download failed, using color background",
				"segment", seg.Index,
				"url", asset.URL,
				"error", err)
		} else {
			defer func() { _ = os.Remove(localPath) }()
			err := c.renderAsset(ctx, localPath, asset.Kind, duration, outPath)
			if err == nil {
				return Clip{Path: outPath, Duration: duration}
			}
			c.logger.Warn("asset encode failed, using color background",
				"segment", seg.Index,
				"error", err)
		}
	}

	if err := c.renderColor(ctx, seg.Index, duration, outPath); err != nil {
		// Even the lavfi source failed. Leave a zero clip for the
		// assembler to skip rather than abort the whole video.
		c.logger.Error("color background render failed",
			"segment", seg.Index,
			"error", err)
		return Clip{Duration: duration, Fallback: true}
	}
	return Clip{Path: outPath, Duration: duration, Fallback: true}
}

func (c *Compositor) download(ctx context.Context, asset *media.Asset, index int) (string, error) {
	data, err := c.client.Get(ctx, asset.URL)
	if err != nil {
		return "", err
	}

	ext := ".mp4"
	if asset.Kind == media.KindImage {
		ext = ".jpg"
	}
	localPath := filepath.Join(c.workDir, fmt.Sprintf("asset_%03d%s", index, ext))
	if err := os.WriteFile(localPath, data, 0o644); err != nil {
		return "", fmt.Errorf("write asset: %w", err)
	}
	return localPath, nil
}

func (c *Compositor) renderAsset(ctx context.Context, localPath string, kind media.Kind, duration float64, outPath string) error {
	scaleFilter := fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=increase,crop=%d:%d",
		c.width, c.height, c.width, c.height)

	var args []string
	if kind == media.KindImage {
		args = []string{
			"-loop", "1",
			"-i", localPath,
		}
	} else {
		args = []string{
			"-stream_loop", "-1",
			"-i", localPath,
		}
	}

	args = append(args,
		"-t", fmt.Sprintf("%.3f", duration),
		"-vf", scaleFilter,
		"-r", strconv.Itoa(c.fps),
		"-an",
		"-c:v", "libx264",
		"-preset", c.preset,
		"-pix_fmt", "yuv420p",
		outPath,
	)

	return c.ffmpeg.Run(ctx, args...)
}

func (c *Compositor) renderColor(ctx context.Context, index int, duration float64, outPath string) error {
	color := palette[index%len(palette)]
	source := fmt.Sprintf("color=c=%s:s=%dx%d:r=%d", color, c.width, c.height, c.fps)

	args := []string{
		"-f", "lavfi",
		"-i", source,
		"-t", fmt.Sprintf("%.3f", duration),
		"-c:v", "libx264",
		"-preset", c.preset,
		"-pix_fmt", "yuv420p",
		outPath,
	}
	return c.ffmpeg.Run(ctx, args...)
}

// PaletteColor exposes the fallback color for a segment position.
func PaletteColor(index int) string {
	return palette[index%len(palette)]
}
