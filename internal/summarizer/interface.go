package summarizer

import (
	"context"

	"github.com/nguyentantai21042004/meetflow/internal/store"
)

// Summarizer turns a merged transcript into prose plus speaker-attributed lines.
type Summarizer interface {
	Summarize(ctx context.Context, transcript []store.TranscriptEntry) (Summary, error)
}

type Summary struct {
	Text           string
	FormattedLines []store.FormattedLine
}
