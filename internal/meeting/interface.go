package meeting

import (
	"context"

	"github.com/nguyentantai21042004/meetflow/internal/dispatcher"
	"github.com/nguyentantai21042004/meetflow/internal/store"
)

// Service owns the meeting lifecycle around the pipeline.
type Service interface {
	// Create stores an uploaded recording and dispatches it.
	Create(ctx context.Context, in CreateInput) (store.Meeting, error)
	List(ctx context.Context) ([]store.Meeting, error)
	Get(ctx context.Context, id string) (Detail, error)
	Status(ctx context.Context, id string) (StatusView, error)
	// UpdateExtra merges extra into the stored extra map.
	UpdateExtra(ctx context.Context, id string, extra map[string]any) (store.Meeting, error)
	// AudioFile locates the original upload of a meeting.
	AudioFile(ctx context.Context, id string) (AudioFile, error)

	// HandleCallback stores the result of a whole-file run.
	HandleCallback(ctx context.Context, id, token string, in CallbackInput) (store.Meeting, error)
	// HandleSegmentCallback stores one segment transcript and triggers the
	// merge once every segment has completed.
	HandleSegmentCallback(ctx context.Context, meetingID, segmentID, token string, in SegmentCallbackInput) (store.Segment, error)

	// Retry removes the meeting's jobs, resets it and dispatches again.
	Retry(ctx context.Context, id string) (dispatcher.Result, error)
	Delete(ctx context.Context, id string) error
}
