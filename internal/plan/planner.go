// Package plan splits a narration script into caption-sized segments
// and times them against the spoken duration.
package plan

import (
	"regexp"
	"strings"
)

const (
	// Target pacing: roughly one segment per 3-6 seconds of narration.
	minSecondsPerSegment = 3.0
	maxSecondsPerSegment = 6.0

	// Cyclical variation applied to the base segment duration so cuts
	// do not land on a perfectly even grid.
	variationStep = 0.3

	// A segment never shrinks below this, however the variation falls.
	minSegmentDuration = 0.5
)

var sentenceSplit = regexp.MustCompile(`[.!?]+`)

// Segment is a time-bounded slice of the final video carrying one
// caption chunk. End is always > Start except for zero-duration plans.
type Segment struct {
	Index int
	Text  string
	Start float64
	End   float64
}

func (s Segment) Duration() float64 {
	return s.End - s.Start
}

// Plan splits script into segments whose durations sum to exactly
// totalDuration. Rounding drift is absorbed by the last segment.
func Plan(script string, totalDuration float64) []Segment {
	chunks := splitChunks(script)
	if len(chunks) == 0 {
		return []Segment{{Index: 0, Text: strings.TrimSpace(script), Start: 0, End: totalDuration}}
	}
	if totalDuration <= 0 {
		// Degenerate narration; keep the full text in one empty window
		// rather than failing the render.
		return []Segment{{Index: 0, Text: strings.Join(chunks, " "), Start: 0, End: 0}}
	}

	groups := groupChunks(chunks, totalDuration)
	base := totalDuration / float64(len(groups))

	segments := make([]Segment, len(groups))
	current := 0.0
	for i, text := range groups {
		duration := base + variation(i, len(groups))
		if duration < minSegmentDuration {
			duration = minSegmentDuration
		}

		end := current + duration
		if i == len(groups)-1 || end > totalDuration {
			end = totalDuration
		}

		segments[i] = Segment{Index: i, Text: text, Start: current, End: end}
		current = end
	}

	// The variation can leave the tail short of the total when an
	// intermediate segment hit the cap; stretch the last one back out.
	segments[len(segments)-1].End = totalDuration

	return segments
}

// splitChunks breaks the script into trimmed sentences.
func splitChunks(script string) []string {
	parts := sentenceSplit.Split(script, -1)
	chunks := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			chunks = append(chunks, trimmed)
		}
	}
	return chunks
}

// groupChunks merges adjacent sentences into 1-2 sentence groups so
// the segment count lands near one per 3-6 seconds. A single segment
// is too static and one per sentence can be too frenetic.
func groupChunks(chunks []string, totalDuration float64) []string {
	maxSegments := int(totalDuration / minSecondsPerSegment)
	minSegments := int(totalDuration/maxSecondsPerSegment) + 1

	groupSize := 1
	if maxSegments > 0 && len(chunks) > maxSegments {
		groupSize = 2
	}

	var groups []string
	for i := 0; i < len(chunks); i += groupSize {
		end := i + groupSize
		if end > len(chunks) {
			end = len(chunks)
		}
		groups = append(groups, strings.Join(chunks[i:end], ". "))
	}

	// Pairing can overshoot the floor; that is acceptable, but never
	// collapse everything into a single group when more exist.
	if len(groups) < minSegments && len(chunks) >= minSegments {
		groups = groups[:0]
		for _, chunk := range chunks {
			groups = append(groups, chunk)
		}
	}

	return groups
}

// variation cycles -0.3, 0, +0.3 so pacing is uneven but bounded.
// Symmetric over each full cycle, so drift stays small and the last
// segment absorbs what remains. Plans of three segments or fewer keep
// the exact even split.
func variation(i, count int) float64 {
	if count <= 3 {
		return 0
	}
	return float64(i%3-1) * variationStep
}
