package store

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("not found")

// ErrSegmentCompleted is returned by segment status writes that would move a
// COMPLETED segment back. Only CompleteSegment may rewrite a completed row.
var ErrSegmentCompleted = errors.New("segment already completed")

type MeetingStatus string

const (
	MeetingUploaded   MeetingStatus = "UPLOADED"
	MeetingProcessing MeetingStatus = "PROCESSING"
	MeetingCompleted  MeetingStatus = "COMPLETED"
	MeetingFailed     MeetingStatus = "FAILED"
)

type SegmentStatus string

const (
	SegmentPending    SegmentStatus = "PENDING"
	SegmentProcessing SegmentStatus = "PROCESSING"
	SegmentCompleted  SegmentStatus = "COMPLETED"
	SegmentFailed     SegmentStatus = "FAILED"
)

// TranscriptEntry is one utterance. Times are seconds, relative to the clip
// for segment transcripts and absolute for merged ones.
type TranscriptEntry struct {
	Speaker   string  `json:"speaker"`
	Text      string  `json:"text"`
	Start     float64 `json:"start"`
	End       float64 `json:"end"`
	Timestamp string  `json:"timestamp,omitempty"`
}

type FormattedLine struct {
	Speaker   string `json:"speaker"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp,omitempty"`
}

type SummaryPhase struct {
	Title  string   `json:"title"`
	Points []string `json:"points"`
}

type Meeting struct {
	ID                string            `json:"id"`
	Title             string            `json:"title,omitempty"`
	Description       string            `json:"description,omitempty"`
	Status            MeetingStatus     `json:"status"`
	Summary           *string           `json:"summary"`
	SummaryPhases     []SummaryPhase    `json:"summaryPhases"`
	FormattedLines    []FormattedLine   `json:"formattedLines"`
	RawTranscript     []TranscriptEntry `json:"rawTranscript"`
	APIPayload        map[string]any    `json:"apiPayload"`
	Extra             map[string]any    `json:"extra"`
	TotalSegments     int               `json:"totalSegments"`
	CompletedSegments int               `json:"completedSegments"`
	CreatedAt         time.Time         `json:"createdAt"`
	UpdatedAt         time.Time         `json:"updatedAt"`
}

// FailureReason returns extra.failureReason, if any.
func (m Meeting) FailureReason() string {
	s, _ := m.Extra["failureReason"].(string)
	return s
}

type Segment struct {
	ID         string            `json:"id"`
	MeetingID  string            `json:"meetingId"`
	Index      int               `json:"segmentIndex"`
	StartTime  float64           `json:"startTime"`
	EndTime    float64           `json:"endTime"`
	FilePath   string            `json:"filePath"`
	Status     SegmentStatus     `json:"status"`
	Transcript []TranscriptEntry `json:"transcript"`
	Error      string            `json:"error,omitempty"`
	CreatedAt  time.Time         `json:"createdAt"`
	UpdatedAt  time.Time         `json:"updatedAt"`
}

type Upload struct {
	ID               string    `json:"id"`
	MeetingID        string    `json:"meetingId"`
	OriginalFilename string    `json:"originalFilename"`
	StoredFilename   string    `json:"storedFilename"`
	MimeType         string    `json:"mimeType"`
	Size             int64     `json:"size"`
	StoragePath      string    `json:"storagePath"`
	Blake3Hash       string    `json:"blake3Hash"`
	DurationSeconds  *float64  `json:"durationSeconds,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

type Utterance struct {
	ID        string  `json:"id"`
	MeetingID string  `json:"meetingId"`
	Position  int     `json:"position"`
	Speaker   string  `json:"speaker"`
	Text      string  `json:"text"`
	Timestamp string  `json:"timestamp,omitempty"`
	Start     float64 `json:"start"`
	End       float64 `json:"end"`
}

// MeetingResult is the terminal payload written when a meeting completes.
// A nil Extra leaves the stored extra untouched.
type MeetingResult struct {
	Summary        string
	SummaryPhases  []SummaryPhase
	FormattedLines []FormattedLine
	RawTranscript  []TranscriptEntry
	APIPayload     map[string]any
	Extra          map[string]any
}

// Progress is the recomputed segment count of a meeting.
type Progress struct {
	Completed int
	Total     int
	Status    MeetingStatus
}

// AllDone reports whether every planned segment has completed.
func (p Progress) AllDone() bool {
	return p.Total > 0 && p.Completed == p.Total
}

type SpeakerStatus string

const (
	SpeakerPending   SpeakerStatus = "PENDING"
	SpeakerEnrolling SpeakerStatus = "ENROLLING"
	SpeakerActive    SpeakerStatus = "ACTIVE"
	SpeakerFailed    SpeakerStatus = "FAILED"
)

// ErrSpeakerExists is returned when a speaker name is already taken.
var ErrSpeakerExists = errors.New("speaker name already exists")

// Speaker is a voice enrolled with the transcription service so that its
// diarization reports the name instead of an anonymous label.
type Speaker struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Status    SpeakerStatus   `json:"status"`
	Extra     map[string]any  `json:"extra"`
	Samples   []SpeakerSample `json:"samples"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

type SpeakerSample struct {
	ID               string    `json:"id"`
	SpeakerID        string    `json:"speakerId"`
	OriginalFilename string    `json:"originalFilename"`
	StoredFilename   string    `json:"storedFilename"`
	MimeType         string    `json:"mimeType"`
	Size             int64     `json:"size"`
	StoragePath      string    `json:"storagePath"`
	Blake3Hash       string    `json:"blake3Hash"`
	CreatedAt        time.Time `json:"createdAt"`
}
