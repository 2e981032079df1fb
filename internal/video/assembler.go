package video

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"shortforge/internal/plan"
	"shortforge/internal/speech"
)

// Assembler concatenates segment clips, pads the tail to narration
// length, mixes ducked music under the voice and burns captions, all
// in a single encode pass.
type Assembler struct {
	ffmpeg       *FFmpeg
	captions     *CaptionGenerator
	outputDir    string
	fps          int
	preset       string
	videoBitrate string
	audioBitrate string
	musicVolume  float64
	musicFadeIn  float64
	musicFadeOut float64
}

type AssemblerOptions struct {
	FFmpeg       *FFmpeg
	Captions     *CaptionGenerator
	OutputDir    string
	FPS          int
	Preset       string
	VideoBitrate string
	AudioBitrate string
	MusicVolume  float64
	MusicFadeIn  float64
	MusicFadeOut float64
}

type AssembleRequest struct {
	Clips      []Clip
	Narration  *speech.Track
	Segments   []plan.Segment
	MusicPath  string
	OutputPath string
}

func NewAssembler(opts AssemblerOptions) *Assembler {
	ffmpeg := opts.FFmpeg
	if ffmpeg == nil {
		ffmpeg = NewFFmpeg("", "")
	}
	fps := opts.FPS
	if fps == 0 {
		fps = 30
	}
	preset := opts.Preset
	if preset == "" {
		preset = "fast"
	}
	musicVolume := opts.MusicVolume
	if musicVolume <= 0 || musicVolume >= 1.0 {
		musicVolume = 0.15
	}
	musicFadeIn := opts.MusicFadeIn
	if musicFadeIn == 0 {
		musicFadeIn = 1.0
	}
	musicFadeOut := opts.MusicFadeOut
	if musicFadeOut == 0 {
		musicFadeOut = 2.0
	}
	return &Assembler{
		ffmpeg:       ffmpeg,
		captions:     opts.Captions,
		outputDir:    opts.OutputDir,
		fps:          fps,
		preset:       preset,
		videoBitrate: opts.VideoBitrate,
		audioBitrate: opts.AudioBitrate,
		musicVolume:  musicVolume,
		musicFadeIn:  musicFadeIn,
		musicFadeOut: musicFadeOut,
	}
}

// Assemble renders the final vertical video. The narration is the
// master clock: video is padded or cut so the output duration equals
// the narration duration exactly.
func (a *Assembler) Assemble(ctx context.Context, req AssembleRequest) (string, error) {
	if req.Narration == nil || req.Narration.Path == "" {
		return "", errors.New("assemble: narration track required")
	}

	clips := usableClips(req.Clips)
	if len(clips) == 0 {
		return "", errors.New("assemble: no usable clips")
	}

	outputPath := req.OutputPath
	if outputPath == "" {
		outputPath = filepath.Join(a.outputDir, fmt.Sprintf("short_%d.mp4", time.Now().Unix()))
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	workDir := filepath.Dir(outputPath)

	listPath := filepath.Join(workDir, fmt.Sprintf("concat_%d.txt", time.Now().UnixNano()))
	if err := writeConcatList(listPath, clips); err != nil {
		return "", err
	}
	defer func() { _ = os.Remove(listPath) }()

	assPath := filepath.Join(workDir, fmt.Sprintf("captions_%d.ass", time.Now().UnixNano()))
	if err := os.WriteFile(assPath, []byte(a.captions.ToASS(req.Segments)), 0o644); err != nil {
		return "", fmt.Errorf("write captions: %w", err)
	}
	defer func() { _ = os.Remove(assPath) }()

	duration := req.Narration.Duration
	pad := duration - totalDuration(clips)
	if pad < 0 {
		pad = 0
	}

	filter := a.buildVideoFilter(assPath, pad) + ";" + a.buildAudioFilter(req.MusicPath, duration)

	args := []string{
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-i", req.Narration.Path,
	}
	if req.MusicPath != "" {
		args = append(args, "-stream_loop", "-1", "-i", req.MusicPath)
	}

	args = append(args,
		"-filter_complex", filter,
		"-map", "[v]",
		"-map", "[a]",
		"-t", fmt.Sprintf("%.3f", duration),
		"-r", strconv.Itoa(a.fps),
		"-c:v", "libx264",
		"-preset", a.preset,
	)
	if a.videoBitrate != "" {
		args = append(args, "-b:v", a.videoBitrate)
	}
	args = append(args, "-c:a", "aac", "-ar", "44100")
	if a.audioBitrate != "" {
		args = append(args, "-b:a", a.audioBitrate)
	}
	args = append(args, outputPath)

	if err := a.ffmpeg.Run(ctx, args...); err != nil {
		return "", err
	}
	return outputPath, nil
}

// buildVideoFilter holds the last frame out to the narration length and
// burns the captions in the same pass.
func (a *Assembler) buildVideoFilter(assPath string, pad float64) string {
	var sb strings.Builder
	sb.WriteString("[0:v]")
	if pad > 0.01 {
		sb.WriteString(fmt.Sprintf("tpad=stop_mode=clone:stop_duration=%.3f,", pad))
	}
	sb.WriteString(fmt.Sprintf("ass=%s[v]", assPath))
	return sb.String()
}

func (a *Assembler) buildAudioFilter(musicPath string, duration float64) string {
	if musicPath == "" {
		return "[1:a]volume=1.0[a]"
	}

	fadeOutStart := duration - a.musicFadeOut
	if fadeOutStart < 0 {
		fadeOutStart = 0
	}

	return fmt.Sprintf(
		"[1:a]volume=1.0[voice];"+
			"[2:a]volume=%.2f,afade=t=in:st=0:d=%.2f,afade=t=out:st=%.2f:d=%.2f[music];"+
			"[voice][music]amix=inputs=2:duration=first:normalize=0[a]",
		a.musicVolume, a.musicFadeIn, fadeOutStart, a.musicFadeOut,
	)
}

func usableClips(clips []Clip) []Clip {
	out := make([]Clip, 0, len(clips))
	for _, clip := range clips {
		if clip.Path != "" {
			out = append(out, clip)
		}
	}
	return out
}

func totalDuration(clips []Clip) float64 {
	var sum float64
	for _, clip := range clips {
		sum += clip.Duration
	}
	return sum
}

func writeConcatList(listPath string, clips []Clip) error {
	var sb strings.Builder
	for _, clip := range clips {
		absPath, err := filepath.Abs(clip.Path)
		if err != nil {
			return fmt.Errorf("resolve clip path: %w", err)
		}
		sb.WriteString(fmt.Sprintf("file '%s'\n", absPath))
	}
	if err := os.WriteFile(listPath, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("write concat list: %w", err)
	}
	return nil
}
