package meeting

import (
	"errors"
	"io"
	"time"

	"github.com/nguyentantai21042004/meetflow/internal/store"
)

var (
	// ErrInvalidToken rejects a callback whose shared secret does not match.
	ErrInvalidToken = errors.New("invalid callback token")
	// ErrNoUpload means the original recording is gone.
	ErrNoUpload = errors.New("original audio file is missing")
	// ErrInvalidInput wraps request validation failures.
	ErrInvalidInput = errors.New("invalid input")
)

type CreateInput struct {
	Title       string
	Description string
	Filename    string
	MimeType    string
	Body        io.Reader
	Extra       map[string]any
}

// CallbackInput is the body the service posts after a whole-file run.
type CallbackInput struct {
	Status         store.MeetingStatus     `json:"status,omitempty"`
	Summary        string                  `json:"summary,omitempty"`
	SummaryPhases  []store.SummaryPhase    `json:"summaryPhases,omitempty"`
	FormattedLines []store.FormattedLine   `json:"formattedLines,omitempty"`
	RawTranscript  []store.TranscriptEntry `json:"raw_transcript,omitempty"`
	APIPayload     map[string]any          `json:"apiPayload,omitempty"`
	Extra          map[string]any          `json:"extra,omitempty"`

	// Raw is the undecoded body, kept next to the upload when set.
	Raw []byte `json:"-"`
}

// SegmentCallbackInput is the body the service posts for one segment.
type SegmentCallbackInput struct {
	Transcript []store.TranscriptEntry `json:"transcript"`
	Error      string                  `json:"error,omitempty"`
}

type Detail struct {
	store.Meeting
	Uploads    []store.Upload    `json:"uploads"`
	Utterances []store.Utterance `json:"utterances"`
	Segments   []store.Segment   `json:"segments"`
}

type StatusView struct {
	ID                string              `json:"id"`
	Status            store.MeetingStatus `json:"status"`
	TotalSegments     int                 `json:"totalSegments"`
	CompletedSegments int                 `json:"completedSegments"`
	FailureReason     string              `json:"failureReason,omitempty"`
	UpdatedAt         time.Time           `json:"updatedAt"`
}

type AudioFile struct {
	Path     string
	Filename string
	MimeType string
}
