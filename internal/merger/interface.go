package merger

import (
	"context"

	"github.com/nguyentantai21042004/meetflow/internal/store"
)

// Merger reassembles per-segment transcripts into one meeting timeline.
type Merger interface {
	// Merge maps raw labels to SPEAKER_NN in order of first appearance.
	// Labels naming an enrolled speaker are kept as they are.
	Merge(ctx context.Context, segments []SegmentTranscript, enrolled []string) (Result, error)
}

// SegmentTranscript is one segment's output. Entry times are relative to
// the segment's logical start.
type SegmentTranscript struct {
	Index   int
	Start   float64
	End     float64
	Entries []store.TranscriptEntry
}

type Result struct {
	Entries []store.TranscriptEntry
	// TotalEntries counts raw entries across all segments, empty ones included.
	TotalEntries    int
	SkippedSegments []int
	Speakers        map[string]string
	Warnings        []string
}
