package watcher

import "context"

// Watcher defines the interface for inbox monitoring
type Watcher interface {
	// Start hands files already in the inbox and every new one to the
	// handler until ctx is cancelled.
	Start(ctx context.Context) error
	Stop() error
}

// EventHandler is a function that handles one audio file
type EventHandler func(ctx context.Context, filePath string) error
