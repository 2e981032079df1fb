package speech

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

// EdgeVoice holds the neural voice plus prosody tweaks for one style.
type EdgeVoice struct {
	Voice string
	Rate  string
	Pitch string
}

var EdgeVoices = map[string]EdgeVoice{
	StyleEnergetic: {Voice: "en-US-TonyNeural", Rate: "+10%", Pitch: "+5Hz"},
	StyleFormal:    {Voice: "en-US-AriaNeural", Rate: "+5%", Pitch: "+0Hz"},
	StyleCalm:      {Voice: "en-US-DavisNeural", Rate: "+0%", Pitch: "-2Hz"},
	StyleDramatic:  {Voice: "en-US-JennyNeural", Rate: "+8%", Pitch: "+4Hz"},
	StyleCasual:    {Voice: "en-US-JennyNeural", Rate: "+5%", Pitch: "+2Hz"},
}

// EdgeBackend synthesizes speech through the edge-tts command line tool.
// It needs no API key.
type EdgeBackend struct {
	binary string
}

func NewEdgeBackend(binary string) *EdgeBackend {
	if binary == "" {
		binary = "edge-tts"
	}
	return &EdgeBackend{binary: binary}
}

func (b *EdgeBackend) Name() string {
	return "edge"
}

func (b *EdgeBackend) Synthesize(ctx context.Context, text string, profile VoiceProfile, outPath string) error {
	voice := EdgeVoiceFor(profile.Style)

	cmd := exec.CommandContext(ctx, b.binary,
		"--voice", voice.Voice,
		"--rate", voice.Rate,
		"--pitch", voice.Pitch,
		"--text", text,
		"--write-media", outPath,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if stderr.Len() > 0 {
			return fmt.Errorf("edge-tts: %s: %w", stderr.String(), err)
		}
		return fmt.Errorf("edge-tts: %w", err)
	}
	return nil
}

// EdgeVoiceFor maps a style to its edge-tts voice. Unknown styles get
// the casual voice.
func EdgeVoiceFor(style string) EdgeVoice {
	if v, ok := EdgeVoices[style]; ok {
		return v
	}
	return EdgeVoices[StyleCasual]
}
