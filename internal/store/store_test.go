package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) Store {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenDB() error = %v", err)
	}
	s, err := New(context.Background(), db)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seedMeeting(t *testing.T, s Store, segments int) (Meeting, []Segment) {
	t.Helper()
	ctx := context.Background()

	m := Meeting{Title: "Weekly sync", Status: MeetingProcessing}
	if err := s.CreateMeeting(ctx, &m); err != nil {
		t.Fatalf("CreateMeeting() error = %v", err)
	}

	var segs []Segment
	for i := 0; i < segments; i++ {
		seg := Segment{
			MeetingID: m.ID,
			Index:     i,
			StartTime: float64(i * 450),
			EndTime:   float64((i + 1) * 450),
			FilePath:  filepath.Join(m.ID, "segments", "x.wav"),
		}
		if err := s.CreateSegment(ctx, &seg); err != nil {
			t.Fatalf("CreateSegment() error = %v", err)
		}
		segs = append(segs, seg)
	}
	if segments > 0 {
		if err := s.SetSegmentTotals(ctx, m.ID, segments); err != nil {
			t.Fatalf("SetSegmentTotals() error = %v", err)
		}
	}
	return m, segs
}

func TestMeetingRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	m, _ := seedMeeting(t, s, 0)

	got, err := s.GetMeeting(ctx, m.ID)
	if err != nil {
		t.Fatalf("GetMeeting() error = %v", err)
	}
	if got.Title != "Weekly sync" || got.Status != MeetingProcessing || got.Summary != nil {
		t.Errorf("GetMeeting() = %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt not persisted")
	}

	if _, err := s.GetMeeting(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetMeeting(missing) error = %v, want ErrNotFound", err)
	}
	if err := s.SetMeetingStatus(ctx, "missing", MeetingFailed); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetMeetingStatus(missing) error = %v, want ErrNotFound", err)
	}

	list, err := s.ListMeetings(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListMeetings() = %d, %v", len(list), err)
	}
}

func TestRecomputeProgressIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	m, segs := seedMeeting(t, s, 3)

	transcript := []TranscriptEntry{{Speaker: "A", Text: "hello", Start: 1, End: 2}}

	for i := 0; i < 2; i++ {
		if err := s.CompleteSegment(ctx, segs[0].ID, transcript, ""); err != nil {
			t.Fatalf("CompleteSegment() error = %v", err)
		}
		p, err := s.RecomputeProgress(ctx, m.ID)
		if err != nil {
			t.Fatalf("RecomputeProgress() error = %v", err)
		}
		if p.Completed != 1 || p.Total != 3 || p.AllDone() {
			t.Errorf("delivery %d: progress = %+v, want 1/3", i+1, p)
		}
	}

	for _, seg := range segs[1:] {
		if err := s.CompleteSegment(ctx, seg.ID, nil, ""); err != nil {
			t.Fatal(err)
		}
	}
	p, err := s.RecomputeProgress(ctx, m.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !p.AllDone() || p.Status != MeetingProcessing {
		t.Errorf("progress = %+v, want all done", p)
	}

	got, _ := s.GetMeeting(ctx, m.ID)
	if got.CompletedSegments != 3 {
		t.Errorf("CompletedSegments = %d, want 3", got.CompletedSegments)
	}

	empty, _ := s.GetSegment(ctx, segs[1].ID)
	if empty.Transcript == nil || len(empty.Transcript) != 0 {
		t.Errorf("empty transcript should be stored as [], got %#v", empty.Transcript)
	}
}

func TestCompleteSegmentWithRemoteError(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	m, segs := seedMeeting(t, s, 2)

	if err := s.CompleteSegment(ctx, segs[1].ID, nil, "diarization crashed"); err != nil {
		t.Fatal(err)
	}
	seg, err := s.GetMeetingSegment(ctx, m.ID, segs[1].ID)
	if err != nil {
		t.Fatal(err)
	}
	if seg.Status != SegmentFailed || seg.Error != "diarization crashed" {
		t.Errorf("segment = %+v", seg)
	}

	if _, err := s.GetMeetingSegment(ctx, "other", segs[1].ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetMeetingSegment(other meeting) error = %v", err)
	}

	if err := s.FailSegment(ctx, segs[0].ID, "timeout"); err != nil {
		t.Fatal(err)
	}
	list, _ := s.ListSegments(ctx, m.ID)
	if len(list) != 2 || list[0].Index != 0 || list[0].Status != SegmentFailed || list[0].Error != "timeout" {
		t.Errorf("ListSegments() = %+v", list)
	}

	if err := s.RetrySegment(ctx, segs[0].ID, "unhealthy"); err != nil {
		t.Fatal(err)
	}
	seg, _ = s.GetSegment(ctx, segs[0].ID)
	if seg.Status != SegmentPending || seg.Error != "unhealthy" {
		t.Errorf("after RetrySegment segment = %+v", seg)
	}
}

func TestStatusWritesKeepCompletedSegment(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	m, segs := seedMeeting(t, s, 1)
	id := segs[0].ID

	entries := []TranscriptEntry{{Speaker: "A", Text: "xin chào", Start: 0, End: 2}}
	if err := s.CompleteSegment(ctx, id, entries, ""); err != nil {
		t.Fatal(err)
	}

	writes := map[string]func() error{
		"SetSegmentStatus": func() error { return s.SetSegmentStatus(ctx, id, SegmentProcessing) },
		"RetrySegment":     func() error { return s.RetrySegment(ctx, id, "503 busy") },
		"FailSegment":      func() error { return s.FailSegment(ctx, id, "503 busy") },
	}
	for name, write := range writes {
		t.Run(name, func(t *testing.T) {
			if err := write(); !errors.Is(err, ErrSegmentCompleted) {
				t.Errorf("%s() error = %v, want ErrSegmentCompleted", name, err)
			}
			seg, err := s.GetSegment(ctx, id)
			if err != nil {
				t.Fatal(err)
			}
			if seg.Status != SegmentCompleted || seg.Error != "" || len(seg.Transcript) != 1 {
				t.Errorf("segment = %+v, want untouched COMPLETED", seg)
			}
		})
	}

	p, err := s.RecomputeProgress(ctx, m.ID)
	if err != nil {
		t.Fatal(err)
	}
	if p.Completed != 1 || p.Total != 1 {
		t.Errorf("progress = %+v, want 1/1", p)
	}

	if err := s.RetrySegment(ctx, "missing", "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("RetrySegment(missing) error = %v, want ErrNotFound", err)
	}
}

func TestMarkMeetingFailedKeepsExtra(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	m := Meeting{Extra: map[string]any{"source": "inbox"}}
	if err := s.CreateMeeting(ctx, &m); err != nil {
		t.Fatal(err)
	}
	if err := s.MarkMeetingFailed(ctx, m.ID, "probe failed"); err != nil {
		t.Fatal(err)
	}

	got, _ := s.GetMeeting(ctx, m.ID)
	if got.Status != MeetingFailed || got.FailureReason() != "probe failed" || got.Extra["source"] != "inbox" {
		t.Errorf("meeting = %+v", got)
	}

	if err := s.MarkMeetingFailed(ctx, m.ID, ""); err != nil {
		t.Fatal(err)
	}
	got, _ = s.GetMeeting(ctx, m.ID)
	if got.FailureReason() != "Unknown" {
		t.Errorf("FailureReason() = %q, want Unknown", got.FailureReason())
	}
}

func TestCompleteMeetingAndReset(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	m, segs := seedMeeting(t, s, 2)

	res := MeetingResult{
		Summary:        "We agreed.",
		FormattedLines: []FormattedLine{{Speaker: "SPEAKER_00", Text: "hi", Timestamp: "[00:01]"}},
		RawTranscript: []TranscriptEntry{
			{Speaker: "SPEAKER_00", Text: "hi", Start: 1, End: 2, Timestamp: "[00:01]"},
			{Speaker: "SPEAKER_01", Text: "hello", Start: 3, End: 4, Timestamp: "[00:03]"},
		},
	}
	if err := s.CompleteMeeting(ctx, m.ID, res); err != nil {
		t.Fatalf("CompleteMeeting() error = %v", err)
	}

	got, _ := s.GetMeeting(ctx, m.ID)
	if got.Status != MeetingCompleted || got.Summary == nil || *got.Summary != "We agreed." || len(got.RawTranscript) != 2 {
		t.Errorf("meeting = %+v", got)
	}
	utts, err := s.ListUtterances(ctx, m.ID)
	if err != nil || len(utts) != 2 || utts[1].Speaker != "SPEAKER_01" {
		t.Fatalf("ListUtterances() = %+v, %v", utts, err)
	}

	retried := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	if err := s.ResetMeeting(ctx, m.ID, retried); err != nil {
		t.Fatalf("ResetMeeting() error = %v", err)
	}

	got, _ = s.GetMeeting(ctx, m.ID)
	if got.Status != MeetingProcessing || got.Summary != nil || got.RawTranscript != nil || got.TotalSegments != 0 {
		t.Errorf("after reset meeting = %+v", got)
	}
	if got.Extra["retriedAt"] != "2026-01-02T03:04:05Z" {
		t.Errorf("retriedAt = %v", got.Extra["retriedAt"])
	}
	if _, err := s.GetSegment(ctx, segs[0].ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("segments should be deleted on reset, got %v", err)
	}
	if utts, _ := s.ListUtterances(ctx, m.ID); len(utts) != 0 {
		t.Errorf("utterances should be deleted on reset, got %d", len(utts))
	}
}

func TestUploadsAndDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	m, _ := seedMeeting(t, s, 1)

	u := Upload{
		MeetingID:        m.ID,
		OriginalFilename: "call.mp3",
		StoredFilename:   "1-abc.mp3",
		MimeType:         "audio/mpeg",
		Size:             42,
		StoragePath:      filepath.Join(m.ID, "1-abc.mp3"),
		Blake3Hash:       "deadbeef",
	}
	if err := s.CreateUpload(ctx, &u); err != nil {
		t.Fatal(err)
	}
	if err := s.SetUploadDuration(ctx, u.ID, 1800.5); err != nil {
		t.Fatal(err)
	}

	found, err := s.FindUploadByHash(ctx, "deadbeef")
	if err != nil || found.ID != u.ID || found.DurationSeconds == nil || *found.DurationSeconds != 1800.5 {
		t.Fatalf("FindUploadByHash() = %+v, %v", found, err)
	}
	if _, err := s.FindUploadByHash(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("FindUploadByHash(nope) error = %v", err)
	}

	if err := s.DeleteMeeting(ctx, m.ID); err != nil {
		t.Fatalf("DeleteMeeting() error = %v", err)
	}
	if ups, _ := s.ListUploads(ctx, m.ID); len(ups) != 0 {
		t.Errorf("uploads left after delete: %d", len(ups))
	}
	if err := s.DeleteMeeting(ctx, m.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteMeeting() error = %v, want ErrNotFound", err)
	}
}

func TestMergeMeetingExtra(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	m, _ := seedMeeting(t, s, 0)

	if _, err := s.MergeMeetingExtra(ctx, m.ID, map[string]any{"a": "1"}); err != nil {
		t.Fatal(err)
	}
	got, err := s.MergeMeetingExtra(ctx, m.ID, map[string]any{"b": "2"})
	if err != nil {
		t.Fatal(err)
	}
	if got.Extra["a"] != "1" || got.Extra["b"] != "2" {
		t.Errorf("Extra = %v", got.Extra)
	}
}
