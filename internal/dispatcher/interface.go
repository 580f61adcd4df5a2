package dispatcher

import "context"

// Dispatcher starts transcription of an uploaded recording: one direct call
// for short files, or segment jobs plus a merge job for long ones. Any
// failure after the meeting is found marks it FAILED.
type Dispatcher interface {
	Dispatch(ctx context.Context, meetingID, audioPath string) (Result, error)
}

type Mode string

const (
	ModeDirect    Mode = "direct"
	ModeSegmented Mode = "segmented"
)

type Result struct {
	Mode     Mode
	Duration float64
	Segments int
}
