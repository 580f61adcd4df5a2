package report

import (
	"context"

	"github.com/nguyentantai21042004/meetflow/internal/store"
)

// Writer exports a completed meeting as a document.
type Writer interface {
	WriteMeeting(ctx context.Context, m store.Meeting, outputPath string) error
}
