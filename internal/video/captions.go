package video

import (
	"fmt"
	"strings"

	"shortforge/internal/plan"
)

// CaptionGenerator renders segment captions as an ASS subtitle script
// with a lower-third style.
type CaptionGenerator struct {
	fontName     string
	fontSize     int
	primaryColor string
	outlineColor string
	outlineSize  int
	shadowSize   int
	bold         bool
	playResX     int
	playResY     int
}

type CaptionOptions struct {
	FontName     string
	FontSize     int
	PrimaryColor string
	OutlineColor string
	OutlineSize  int
	ShadowSize   int
	Bold         bool
	Width        int
	Height       int
}

func NewCaptionGenerator(opts CaptionOptions) *CaptionGenerator {
	primaryColor := "&H00FFFFFF"
	if opts.PrimaryColor != "" {
		primaryColor = toASSColor(opts.PrimaryColor)
	}

	outlineColor := "&H00000000"
	if opts.OutlineColor != "" {
		outlineColor = toASSColor(opts.OutlineColor)
	}

	outlineSize := 4
	if opts.OutlineSize > 0 {
		outlineSize = opts.OutlineSize
	}

	shadowSize := 2
	if opts.ShadowSize >= 0 {
		shadowSize = opts.ShadowSize
	}

	width := opts.Width
	height := opts.Height
	if width == 0 {
		width = 1080
	}
	if height == 0 {
		height = 1920
	}

	fontSize := opts.FontSize
	if fontSize == 0 {
		fontSize = 96
	}

	return &CaptionGenerator{
		fontName:     opts.FontName,
		fontSize:     fontSize,
		primaryColor: primaryColor,
		outlineColor: outlineColor,
		outlineSize:  outlineSize,
		shadowSize:   shadowSize,
		bold:         opts.Bold,
		playResX:     width,
		playResY:     height,
	}
}

func toASSColor(color string) string {
	if strings.HasPrefix(color, "&H") {
		return color
	}
	color = strings.TrimPrefix(color, "#")
	if len(color) == 6 {
		r := color[0:2]
		g := color[2:4]
		b := color[4:6]
		return fmt.Sprintf("&H00%s%s%s", b, g, r)
	}
	return "&H00FFFFFF"
}

// ToASS renders one Dialogue event per segment. Alignment 2 with a
// large MarginV puts the text in the lower third, and every event
// carries a short fade so cuts between segments read smoothly.
func (g *CaptionGenerator) ToASS(segments []plan.Segment) string {
	var sb strings.Builder

	sb.WriteString("[Script Info]\n")
	sb.WriteString("Title: Captions\n")
	sb.WriteString("ScriptType: v4.00+\n")
	sb.WriteString(fmt.Sprintf("PlayResX: %d\n", g.playResX))
	sb.WriteString(fmt.Sprintf("PlayResY: %d\n", g.playResY))
	sb.WriteString("\n")

	boldVal := 0
	if g.bold {
		boldVal = -1
	}

	marginV := g.playResY / 4

	sb.WriteString("[V4+ Styles]\n")
	sb.WriteString("Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding\n")
	sb.WriteString(fmt.Sprintf("Style: Default,%s,%d,%s,%s,%s,&H80000000,%d,0,0,0,100,100,0,0,1,%d,%d,2,60,60,%d,1\n",
		g.fontName, g.fontSize, g.primaryColor, g.primaryColor, g.outlineColor, boldVal, g.outlineSize, g.shadowSize, marginV))
	sb.WriteString("\n")

	sb.WriteString("[Events]\n")
	sb.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")

	for _, seg := range segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		start := formatASSTime(seg.Start)
		end := formatASSTime(seg.End)
		sb.WriteString(fmt.Sprintf("Dialogue: 0,%s,%s,Default,,0,0,0,,{\\fad(150,100)}%s\n",
			start, end, escapeASSText(text)))
	}

	return sb.String()
}

func escapeASSText(text string) string {
	text = strings.ReplaceAll(text, "\\", "\\\\")
	text = strings.ReplaceAll(text, "{", "(")
	text = strings.ReplaceAll(text, "}", ")")
	text = strings.ReplaceAll(text, "\n", "\\N")
	return text
}

func formatASSTime(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	hours := int(seconds) / 3600
	minutes := (int(seconds) % 3600) / 60
	secs := int(seconds) % 60
	centis := int((seconds - float64(int(seconds))) * 100)

	return fmt.Sprintf("%d:%02d:%02d.%02d", hours, minutes, secs, centis)
}
