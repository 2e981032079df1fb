package video

import (
	"strings"
	"testing"

	"shortforge/internal/plan"
)

func testGenerator() *CaptionGenerator {
	return NewCaptionGenerator(CaptionOptions{
		FontName:     "Montserrat Black",
		FontSize:     96,
		PrimaryColor: "#FFFFFF",
		OutlineColor: "#000000",
		OutlineSize:  5,
		Bold:         true,
	})
}

func TestToASSLowerThirdStyle(t *testing.T) {
	out := testGenerator().ToASS([]plan.Segment{
		{Index: 0, Text: "Hello there", Start: 0, End: 3},
	})

	if !strings.Contains(out, "PlayResX: 1080") || !strings.Contains(out, "PlayResY: 1920") {
		t.Error("expected vertical play resolution")
	}
	// Alignment 2 with MarginV of a quarter height puts captions in
	// the lower third.
	if !strings.Contains(out, ",2,60,60,480,1\n") {
		t.Errorf("expected bottom-center alignment with lower-third margin, got style line:\n%s", out)
	}
}

func TestToASSEventTimingAndFade(t *testing.T) {
	out := testGenerator().ToASS([]plan.Segment{
		{Index: 0, Text: "First", Start: 0, End: 3},
		{Index: 1, Text: "Second", Start: 3, End: 6.5},
	})

	want := []string{
		"Dialogue: 0,0:00:00.00,0:00:03.00,Default,,0,0,0,,{\\fad(150,100)}First",
		"Dialogue: 0,0:00:03.00,0:00:06.50,Default,,0,0,0,,{\\fad(150,100)}Second",
	}
	for _, line := range want {
		if !strings.Contains(out, line) {
			t.Errorf("missing event line %q in:\n%s", line, out)
		}
	}
}

func TestToASSSkipsEmptySegments(t *testing.T) {
	out := testGenerator().ToASS([]plan.Segment{
		{Index: 0, Text: "   ", Start: 0, End: 3},
		{Index: 1, Text: "Real", Start: 3, End: 6},
	})

	if strings.Count(out, "Dialogue:") != 1 {
		t.Errorf("expected 1 dialogue event, got:\n%s", out)
	}
}

func TestToASSColorConversion(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"#FFFFFF", "&H00FFFFFF"},
		{"#FF0000", "&H000000FF"},
		{"#00FF00", "&H0000FF00"},
		{"&H00ABCDEF", "&H00ABCDEF"},
		{"junk", "&H00FFFFFF"},
	}

	for _, tt := range tests {
		if got := toASSColor(tt.in); got != tt.want {
			t.Errorf("toASSColor(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEscapeASSText(t *testing.T) {
	got := escapeASSText("a{b}c\nd")
	if strings.ContainsAny(got, "{}") {
		t.Errorf("braces should be neutralized, got %q", got)
	}
	if !strings.Contains(got, "\\N") {
		t.Errorf("newline should become \\N, got %q", got)
	}
}

func TestFormatASSTime(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "0:00:00.00"},
		{3.5, "0:00:03.50"},
		{65.25, "0:01:05.25"},
		{3601, "1:00:01.00"},
		{-1, "0:00:00.00"},
	}

	for _, tt := range tests {
		if got := formatASSTime(tt.seconds); got != tt.want {
			t.Errorf("formatASSTime(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestPaletteColorDeterministic(t *testing.T) {
	if PaletteColor(0) != PaletteColor(0) {
		t.Fatal("palette must be deterministic")
	}
	if PaletteColor(0) != PaletteColor(6) {
		t.Error("palette should cycle with period 6")
	}
	if PaletteColor(1) == PaletteColor(2) {
		t.Error("adjacent segments should get different colors")
	}
}
