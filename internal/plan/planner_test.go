package plan

import (
	"math"
	"strings"
	"testing"
)

const epsilon = 1e-9

func totalOf(segments []Segment) float64 {
	total := 0.0
	for _, s := range segments {
		total += s.Duration()
	}
	return total
}

func TestPlanExactSplit(t *testing.T) {
	segments := Plan("Hello. World. Goodbye.", 9.0)

	if len(segments) != 3 {
		t.Fatalf("Plan() returned %d segments, want 3", len(segments))
	}

	want := []struct{ start, end float64 }{
		{0, 3}, {3, 6}, {6, 9},
	}
	for i, w := range want {
		if math.Abs(segments[i].Start-w.start) > epsilon || math.Abs(segments[i].End-w.end) > epsilon {
			t.Errorf("segment %d = [%v,%v), want [%v,%v)", i, segments[i].Start, segments[i].End, w.start, w.end)
		}
	}

	if math.Abs(totalOf(segments)-9.0) > epsilon {
		t.Errorf("durations sum to %v, want 9.0", totalOf(segments))
	}
}

func TestPlanSumInvariant(t *testing.T) {
	tests := []struct {
		name     string
		script   string
		duration float64
	}{
		{"shortScript", "One sentence only.", 12.0},
		{"twoSentences", "First thing. Second thing.", 7.5},
		{"manySentences", strings.Repeat("Another fact here. ", 12), 45.0},
		{"longNarration", strings.Repeat("Quick point. ", 30), 58.3},
		{"exclamations", "Wow! Really? Yes. Indeed!", 10.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segments := Plan(tt.script, tt.duration)

			if len(segments) == 0 {
				t.Fatal("Plan() returned no segments")
			}
			if math.Abs(totalOf(segments)-tt.duration) > epsilon {
				t.Errorf("durations sum to %v, want %v", totalOf(segments), tt.duration)
			}
			if segments[0].Start != 0 {
				t.Errorf("first segment starts at %v, want 0", segments[0].Start)
			}
			if segments[len(segments)-1].End != tt.duration {
				t.Errorf("last segment ends at %v, want %v", segments[len(segments)-1].End, tt.duration)
			}
			for i := 1; i < len(segments); i++ {
				if math.Abs(segments[i].Start-segments[i-1].End) > epsilon {
					t.Errorf("gap between segment %d end (%v) and %d start (%v)", i-1, segments[i-1].End, i, segments[i].Start)
				}
			}
		})
	}
}

func TestPlanVariationIsBounded(t *testing.T) {
	segments := Plan(strings.Repeat("A steady sentence here. ", 10), 40.0)
	if len(segments) < 4 {
		t.Fatalf("expected enough segments for variation, got %d", len(segments))
	}

	base := 40.0 / float64(len(segments))
	uniform := true
	for _, s := range segments[:len(segments)-1] {
		if math.Abs(s.Duration()-base) > variationStep+epsilon {
			t.Errorf("segment %d duration %v deviates more than %v from base %v", s.Index, s.Duration(), variationStep, base)
		}
		if math.Abs(s.Duration()-base) > epsilon {
			uniform = false
		}
	}
	if uniform {
		t.Error("expected cyclical variation, all segments are uniform")
	}
}

func TestPlanEmptyScript(t *testing.T) {
	tests := []struct {
		name   string
		script string
	}{
		{"empty", ""},
		{"whitespace", "   \n\t"},
		{"punctuationOnly", "...!?"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segments := Plan(tt.script, 20.0)

			if len(segments) != 1 {
				t.Fatalf("Plan() returned %d segments, want 1", len(segments))
			}
			if segments[0].Start != 0 || segments[0].End != 20.0 {
				t.Errorf("segment spans [%v,%v), want [0,20)", segments[0].Start, segments[0].End)
			}
		})
	}
}

func TestPlanZeroDuration(t *testing.T) {
	segments := Plan("Some text. More text.", 0)

	if len(segments) != 1 {
		t.Fatalf("Plan() returned %d segments, want 1", len(segments))
	}
	if segments[0].Duration() != 0 {
		t.Errorf("segment duration = %v, want 0", segments[0].Duration())
	}
	if segments[0].Text == "" {
		t.Error("zero-duration segment lost its text")
	}
}

func TestPlanPacing(t *testing.T) {
	// 20 sentences in 40 seconds should pair up rather than cutting
	// every two seconds.
	segments := Plan(strings.Repeat("Short one. ", 20), 40.0)

	perSegment := 40.0 / float64(len(segments))
	if perSegment < minSecondsPerSegment-1 {
		t.Errorf("average pacing %.2fs per segment is too frenetic", perSegment)
	}
	if len(segments) == 1 {
		t.Error("a 20 sentence script collapsed into one segment")
	}
}

func TestSplitChunks(t *testing.T) {
	chunks := splitChunks("First. Second! Third? Fourth")
	if len(chunks) != 4 {
		t.Fatalf("splitChunks() = %d chunks, want 4", len(chunks))
	}
	if chunks[0] != "First" || chunks[3] != "Fourth" {
		t.Errorf("unexpected chunks: %v", chunks)
	}
}
