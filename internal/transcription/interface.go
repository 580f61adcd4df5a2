package transcription

import (
	"context"

	"github.com/nguyentantai21042004/meetflow/internal/config"
	"github.com/nguyentantai21042004/meetflow/internal/store"
)

// Client talks to the external transcription service. Process and
// ProcessSegment only enqueue work remotely; results arrive by callback.
type Client interface {
	Health(ctx context.Context) error
	// WaitHealthy polls Health with capped exponential waits and returns
	// ErrUnhealthy once the attempts are used up.
	WaitHealthy(ctx context.Context, policy config.HealthRetry) error
	Process(ctx context.Context, req ProcessRequest) error
	ProcessSegment(ctx context.Context, req SegmentRequest) error
	GenerateSummary(ctx context.Context, transcript []store.TranscriptEntry) (SummaryResponse, error)

	// EnrollSpeaker stores a voice embedding under req.SpeakerName. A 409
	// answer is returned as ErrEnrollmentRejected.
	EnrollSpeaker(ctx context.Context, req EnrollRequest) error
	ListEnrolledSpeakers(ctx context.Context) ([]string, error)
	// RemoveEnrolledSpeaker returns ErrSpeakerNotEnrolled on 404.
	RemoveEnrolledSpeaker(ctx context.Context, name string) error
}
