package httpapi

import (
	"context"
	"net/http"
)

// Server exposes the meeting API and the transcription callbacks.
type Server interface {
	// Start serves until ctx is cancelled, then shuts down gracefully.
	Start(ctx context.Context) error
	Handler() http.Handler
}
