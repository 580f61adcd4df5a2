package merger

import (
	"context"
	"errors"
	"math/rand"
	"reflect"
	"sort"
	"testing"

	"github.com/nguyentantai21042004/meetflow/internal/logger"
	"github.com/nguyentantai21042004/meetflow/internal/store"
)

func entry(speaker, text string, start, end float64) store.TranscriptEntry {
	return store.TranscriptEntry{Speaker: speaker, Text: text, Start: start, End: end}
}

func sampleSegments() []SegmentTranscript {
	return []SegmentTranscript{
		{Index: 0, Start: 0, End: 450, Entries: []store.TranscriptEntry{
			entry("B", "first", 2, 5),
			entry("A", "second", 10, 12.5),
		}},
		{Index: 1, Start: 450, End: 900, Entries: []store.TranscriptEntry{
			entry("A", "third", 0.1, 3),
			entry("C", "fourth", 0.2, 4),
		}},
		{Index: 2, Start: 900, End: 1350},
	}
}

func TestMerge(t *testing.T) {
	res, err := New(logger.Nop()).Merge(context.Background(), sampleSegments(), nil)
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}

	want := []store.TranscriptEntry{
		{Speaker: "SPEAKER_00", Text: "first", Start: 2, End: 5, Timestamp: "[00:02]"},
		{Speaker: "SPEAKER_01", Text: "second", Start: 10, End: 12.5, Timestamp: "[00:10]"},
		{Speaker: "SPEAKER_01", Text: "third", Start: 450.1, End: 453, Timestamp: "[07:30]"},
		{Speaker: "SPEAKER_02", Text: "fourth", Start: 450.2, End: 454, Timestamp: "[07:30]"},
	}
	if !reflect.DeepEqual(res.Entries, want) {
		t.Errorf("Entries =\n%+v\nwant\n%+v", res.Entries, want)
	}
	if res.TotalEntries != 4 || !reflect.DeepEqual(res.SkippedSegments, []int{2}) {
		t.Errorf("TotalEntries = %d, SkippedSegments = %v", res.TotalEntries, res.SkippedSegments)
	}
	// every 450s segment here has under one entry per minute
	if len(res.Warnings) != 3 {
		t.Errorf("Warnings = %v", res.Warnings)
	}
}

func TestMergeKeepsEnrolledNames(t *testing.T) {
	segs := []SegmentTranscript{
		{Index: 0, Start: 0, End: 60, Entries: []store.TranscriptEntry{
			entry("SPEAKER_3", "hi", 1, 2),
			entry("Lan", "hello", 3, 4),
		}},
		{Index: 1, Start: 60, End: 120, Entries: []store.TranscriptEntry{
			entry("Lan", "again", 1, 2),
			entry("SPEAKER_0", "bye", 3, 4),
		}},
	}
	res, err := New(logger.Nop()).Merge(context.Background(), segs, []string{"Lan", "Minh"})
	if err != nil {
		t.Fatal(err)
	}

	var speakers []string
	for _, e := range res.Entries {
		speakers = append(speakers, e.Speaker)
	}
	if want := []string{"SPEAKER_00", "Lan", "Lan", "SPEAKER_01"}; !reflect.DeepEqual(speakers, want) {
		t.Errorf("speakers = %v, want %v", speakers, want)
	}
	if res.Speakers["Lan"] != "Lan" || len(res.Speakers) != 3 {
		t.Errorf("Speakers = %v", res.Speakers)
	}
}

func TestMergeAllEmpty(t *testing.T) {
	segs := []SegmentTranscript{{Index: 0, Start: 0, End: 300}, {Index: 1, Start: 300, End: 600, Entries: []store.TranscriptEntry{}}}
	if _, err := New(logger.Nop()).Merge(context.Background(), segs, nil); !errors.Is(err, ErrNothingToMerge) {
		t.Errorf("Merge() error = %v, want ErrNothingToMerge", err)
	}
}

func TestMergeTiesKeepSegmentThenEntryOrder(t *testing.T) {
	segs := []SegmentTranscript{
		{Index: 1, Start: 100, End: 200, Entries: []store.TranscriptEntry{entry("X", "seg1-a", 0, 1), entry("X", "seg1-b", 0, 1)}},
		{Index: 0, Start: 0, End: 100, Entries: []store.TranscriptEntry{entry("Y", "seg0", 100, 101)}},
	}
	res, err := New(logger.Nop()).Merge(context.Background(), segs, nil)
	if err != nil {
		t.Fatal(err)
	}

	var texts []string
	for _, e := range res.Entries {
		texts = append(texts, e.Text)
	}
	if !reflect.DeepEqual(texts, []string{"seg0", "seg1-a", "seg1-b"}) {
		t.Errorf("order = %v", texts)
	}
	if res.Entries[0].Speaker != "SPEAKER_00" {
		t.Errorf("first-seen speaker should follow segment order, got %s", res.Entries[0].Speaker)
	}
}

func TestMergeSortedAndDeterministicForAnyInputOrder(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	var segs []SegmentTranscript
	for i := 0; i < 6; i++ {
		seg := SegmentTranscript{Index: i, Start: float64(i * 300), End: float64((i + 1) * 300)}
		for j := 0; j < 20; j++ {
			local := rng.Float64() * 330
			seg.Entries = append(seg.Entries, entry(string(rune('A'+rng.Intn(4))), "t", local, local+2))
		}
		segs = append(segs, seg)
	}

	m := New(logger.Nop())
	baseline, err := m.Merge(context.Background(), segs, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !sort.SliceIsSorted(baseline.Entries, func(i, j int) bool { return baseline.Entries[i].Start < baseline.Entries[j].Start }) {
		t.Fatal("merged entries are not sorted by start")
	}

	for trial := 0; trial < 5; trial++ {
		shuffled := make([]SegmentTranscript, len(segs))
		copy(shuffled, segs)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		res, err := m.Merge(context.Background(), shuffled, nil)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(res.Entries, baseline.Entries) {
			t.Fatalf("trial %d: merge depends on input order", trial)
		}
	}
}

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "[00:00]"},
		{59.99, "[00:59]"},
		{450.2, "[07:30]"},
		{3599.9, "[59:59]"},
		{3600, "[01:00:00]"},
		{36125, "[10:02:05]"},
		{-3, "[00:00]"},
	}
	for _, tt := range tests {
		if got := FormatTimestamp(tt.seconds); got != tt.want {
			t.Errorf("FormatTimestamp(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}
