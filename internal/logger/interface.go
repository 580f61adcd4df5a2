package logger

import "context"

// Logger is a leveled, printf-style logger. The context is accepted so call
// sites stay uniform when request scoped values are added later.
type Logger interface {
	Debug(ctx context.Context, msg string, args ...interface{})
	Info(ctx context.Context, msg string, args ...interface{})
	Warn(ctx context.Context, msg string, args ...interface{})
	Error(ctx context.Context, msg string, args ...interface{})

	// Named returns a child logger that tags every line with component.
	Named(component string) Logger
}
