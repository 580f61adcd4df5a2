package speaker

import (
	"context"

	"github.com/nguyentantai21042004/meetflow/internal/store"
)

// Service keeps the speaker registry in step with the voice database of the
// transcription service.
type Service interface {
	// Create stores the samples and enrolls the speaker. A failed enrollment
	// is not an error: the speaker comes back FAILED with extra.enrollmentError.
	Create(ctx context.Context, in CreateInput) (store.Speaker, error)
	List(ctx context.Context) ([]store.Speaker, error)
	Get(ctx context.Context, id string) (store.Speaker, error)
	Rename(ctx context.Context, id, name string) (store.Speaker, error)
	// Delete removes the voice from the service, then the speaker and its samples.
	Delete(ctx context.Context, id string) error
	// Sync imports the names the service already knows.
	Sync(ctx context.Context) (SyncResult, error)
	// HandleDeleted drops a speaker the service removed on its own.
	HandleDeleted(ctx context.Context, token, name string) error
}
