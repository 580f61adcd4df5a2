package worker

import "fmt"

// Job names consumed by this package.
const (
	SegmentJob = "segment"
	MergeJob   = "merge"
)

// SegmentPayload is the body of a segment job.
type SegmentPayload struct {
	MeetingID        string  `json:"meetingId"`
	SegmentID        string  `json:"segmentId"`
	SegmentPath      string  `json:"segmentPath"`
	SegmentIndex     int     `json:"segmentIndex"`
	SegmentStartTime float64 `json:"segmentStartTime"`
	SegmentEndTime   float64 `json:"segmentEndTime"`
}

// MergePayload is the body of a merge job.
type MergePayload struct {
	MeetingID string `json:"meetingId"`
}

func SegmentKey(meetingID string, index int) string {
	return fmt.Sprintf("segment-%s-%d", meetingID, index)
}

// SegmentKeyPrefix matches every segment job of a meeting.
func SegmentKeyPrefix(meetingID string) string {
	return fmt.Sprintf("segment-%s-", meetingID)
}

func MergeKey(meetingID string) string {
	return "merge-" + meetingID
}

// MeetingCallbackURL is where the service reports a whole-file result.
func MeetingCallbackURL(base, meetingID string) string {
	return fmt.Sprintf("%s/meetings/%s/callback", base, meetingID)
}

// SegmentCallbackURL is where the service reports one segment's result.
func SegmentCallbackURL(base, meetingID, segmentID string) string {
	return fmt.Sprintf("%s/meetings/%s/segments/%s/callback", base, meetingID, segmentID)
}
