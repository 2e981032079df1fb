package video

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

func testAssembler() *Assembler {
	return NewAssembler(AssemblerOptions{
		MusicVolume:  0.15,
		MusicFadeIn:  1.0,
		MusicFadeOut: 2.0,
	})
}

func TestBuildAudioFilterWithMusic(t *testing.T) {
	filter := testAssembler().buildAudioFilter("/music/track.mp3", 35)

	if !strings.Contains(filter, "volume=1.0[voice]") {
		t.Error("narration should play at full volume")
	}
	if !strings.Contains(filter, "volume=0.15") {
		t.Error("music should be ducked to configured volume")
	}
	if !strings.Contains(filter, "amix=inputs=2:duration=first:normalize=0") {
		t.Error("mix must not renormalize and must follow narration duration")
	}
	if !strings.Contains(filter, "afade=t=out:st=33.00:d=2.00") {
		t.Errorf("fade out should start before the end, got %s", filter)
	}
}

func TestBuildAudioFilterWithoutMusic(t *testing.T) {
	filter := testAssembler().buildAudioFilter("", 35)
	if filter != "[1:a]volume=1.0[a]" {
		t.Errorf("unexpected filter without music: %s", filter)
	}
}

func TestMusicVolumeAlwaysBelowNarration(t *testing.T) {
	tests := []float64{0, -0.5, 1.0, 2.0}
	for _, vol := range tests {
		t.Run(strconv.FormatFloat(vol, 'f', -1, 64), func(t *testing.T) {
			a := NewAssembler(AssemblerOptions{MusicVolume: vol})
			if a.musicVolume <= 0 || a.musicVolume >= 1.0 {
				t.Errorf("music volume %v not clamped, got %v", vol, a.musicVolume)
			}
		})
	}
}

func TestBuildVideoFilterPadsToNarration(t *testing.T) {
	a := testAssembler()

	padded := a.buildVideoFilter("/tmp/caps.ass", 2.5)
	if !strings.Contains(padded, "tpad=stop_mode=clone:stop_duration=2.500") {
		t.Errorf("expected tail padding, got %s", padded)
	}
	if !strings.Contains(padded, "ass=/tmp/caps.ass[v]") {
		t.Errorf("captions should burn in the same pass, got %s", padded)
	}

	exact := a.buildVideoFilter("/tmp/caps.ass", 0)
	if strings.Contains(exact, "tpad") {
		t.Errorf("no padding expected when clips cover narration, got %s", exact)
	}
}

func TestUsableClipsSkipsFailedRenders(t *testing.T) {
	clips := []Clip{
		{Path: "/tmp/a.mp4", Duration: 3},
		{Duration: 3, Fallback: true},
		{Path: "/tmp/b.mp4", Duration: 4},
	}

	got := usableClips(clips)
	if len(got) != 2 {
		t.Fatalf("expected 2 usable clips, got %d", len(got))
	}
	if sum := totalDuration(got); sum != 7 {
		t.Errorf("expected total 7s, got %v", sum)
	}
}

func TestWriteConcatList(t *testing.T) {
	dir := t.TempDir()
	listPath := filepath.Join(dir, "list.txt")
	clips := []Clip{
		{Path: filepath.Join(dir, "one.mp4"), Duration: 3},
		{Path: filepath.Join(dir, "two.mp4"), Duration: 3},
	}

	if err := writeConcatList(listPath, clips); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(listPath)
	if err != nil {
		t.Fatalf("read list: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(lines))
	}
	for i, line := range lines {
		if !strings.HasPrefix(line, "file '") || !strings.HasSuffix(line, ".mp4'") {
			t.Errorf("line %d malformed: %s", i, line)
		}
	}
}
