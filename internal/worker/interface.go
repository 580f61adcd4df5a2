package worker

import (
	"context"

	"github.com/nguyentantai21042004/meetflow/internal/queue"
)

// Worker holds the queue handlers of the segmented pipeline.
type Worker interface {
	// HandleSegment sends one segment to the transcription service. The
	// transcript arrives later on the segment callback.
	HandleSegment(ctx context.Context, job queue.Job) error
	// HandleMerge assembles the meeting once every segment has completed.
	// It returns a queue.Wait error while segments are still outstanding.
	HandleMerge(ctx context.Context, job queue.Job) error
}
