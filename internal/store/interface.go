package store

import (
	"context"
	"time"
)

// Store persists meetings and their uploads, segments and utterances.
// Every method reads or writes the database directly; nothing is cached.
type Store interface {
	CreateMeeting(ctx context.Context, m *Meeting) error
	GetMeeting(ctx context.Context, id string) (Meeting, error)
	ListMeetings(ctx context.Context) ([]Meeting, error)
	SetMeetingStatus(ctx context.Context, id string, status MeetingStatus) error
	MarkMeetingFailed(ctx context.Context, id, reason string) error
	SetSegmentTotals(ctx context.Context, id string, total int) error
	CompleteMeeting(ctx context.Context, id string, res MeetingResult) error
	ResetMeeting(ctx context.Context, id string, retriedAt time.Time) error
	MergeMeetingExtra(ctx context.Context, id string, extra map[string]any) (Meeting, error)
	DeleteMeeting(ctx context.Context, id string) error

	CreateUpload(ctx context.Context, u *Upload) error
	ListUploads(ctx context.Context, meetingID string) ([]Upload, error)
	FindUploadByHash(ctx context.Context, hash string) (Upload, error)
	SetUploadDuration(ctx context.Context, id string, seconds float64) error

	CreateSegment(ctx context.Context, s *Segment) error
	GetSegment(ctx context.Context, id string) (Segment, error)
	GetMeetingSegment(ctx context.Context, meetingID, segmentID string) (Segment, error)
	ListSegments(ctx context.Context, meetingID string) ([]Segment, error)
	// SetSegmentStatus, FailSegment and RetrySegment leave a COMPLETED
	// segment untouched and return ErrSegmentCompleted.
	SetSegmentStatus(ctx context.Context, id string, status SegmentStatus) error
	FailSegment(ctx context.Context, id, reason string) error
	// RetrySegment records a failed attempt that will be retried and puts
	// the segment back to PENDING.
	RetrySegment(ctx context.Context, id, reason string) error
	// CompleteSegment stores the transcript. A non-empty remoteErr marks the
	// segment FAILED instead of COMPLETED.
	CompleteSegment(ctx context.Context, id string, transcript []TranscriptEntry, remoteErr string) error
	// RecomputeProgress sets completed_segments to the number of COMPLETED
	// segment rows and returns the new counts.
	RecomputeProgress(ctx context.Context, meetingID string) (Progress, error)

	ListUtterances(ctx context.Context, meetingID string) ([]Utterance, error)

	// CreateSpeaker returns ErrSpeakerExists when the name is taken.
	CreateSpeaker(ctx context.Context, sp *Speaker) error
	AddSpeakerSample(ctx context.Context, sample *SpeakerSample) error
	GetSpeaker(ctx context.Context, id string) (Speaker, error)
	FindSpeakerByName(ctx context.Context, name string) (Speaker, error)
	ListSpeakers(ctx context.Context) ([]Speaker, error)
	// ActiveSpeakerNames lists the names of ACTIVE speakers.
	ActiveSpeakerNames(ctx context.Context) ([]string, error)
	// SetSpeakerStatus sets status and merges extra into the stored extra map.
	SetSpeakerStatus(ctx context.Context, id string, status SpeakerStatus, extra map[string]any) error
	RenameSpeaker(ctx context.Context, id, name string) error
	DeleteSpeaker(ctx context.Context, id string) error

	Ping(ctx context.Context) error
	Close() error
}
