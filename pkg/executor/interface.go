package executor

import "context"

// Executor runs external binaries such as ffmpeg and ffprobe.
type Executor interface {
	// Execute runs name with args and returns captured stdout.
	Execute(ctx context.Context, name string, args ...string) (string, error)
	// ExecuteInDir is Execute with the working directory set to dir.
	ExecuteInDir(ctx context.Context, dir string, name string, args ...string) (string, error)
	// LookPath reports the resolved path of a binary, or an error if it is not installed.
	LookPath(name string) (string, error)
}
