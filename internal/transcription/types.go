package transcription

import (
	"errors"
	"fmt"

	"github.com/nguyentantai21042004/meetflow/internal/store"
)

// ErrUnhealthy is returned when the service does not become healthy in time.
var ErrUnhealthy = errors.New("transcription service is not healthy")

var (
	// ErrEnrollmentRejected is a 409 from /enroll-speaker: no usable voice
	// embedding could be taken from the samples.
	ErrEnrollmentRejected = errors.New("enrollment rejected")
	ErrSpeakerNotEnrolled = errors.New("speaker not enrolled")
)

// ServiceTokenHeader carries the shared secret the service expects.
const ServiceTokenHeader = "x-service-token"

type ProcessRequest struct {
	MeetingID   string `json:"meetingId"`
	AudioPath   string `json:"audio_path"`
	CallbackURL string `json:"callback_url"`
	Language    string `json:"language"`
}

type SegmentRequest struct {
	SegmentPath      string  `json:"segment_path"`
	SegmentStartTime float64 `json:"segment_start_time"`
	MeetingID        string  `json:"meeting_id"`
	SegmentIndex     int     `json:"segment_index"`
	CallbackURL      string  `json:"callback_url"`
	Language         string  `json:"language"`
}

type summaryRequest struct {
	Transcript []store.TranscriptEntry `json:"transcript"`
}

type SummaryResponse struct {
	Summary        string                `json:"summary"`
	FormattedLines []store.FormattedLine `json:"formattedLines"`
}

// EnrollRequest registers a voice from sample files readable by the service.
type EnrollRequest struct {
	SpeakerName string   `json:"speaker_name"`
	SamplePaths []string `json:"sample_paths"`
	Force       bool     `json:"force"`
}

type speakerListResponse struct {
	Speakers []string `json:"speakers"`
}

type queuedResponse struct {
	Status string `json:"status"`
}

// StatusError is a non-2xx answer from the service.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: unexpected status %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Endpoint, e.StatusCode, e.Body)
}
