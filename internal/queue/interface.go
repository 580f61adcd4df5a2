package queue

import (
	"context"
	"time"
)

// Handler processes one claimed job. A nil return completes the job.
type Handler func(ctx context.Context, job Job) error

// Queue is a durable keyed job queue. A key identifies at most one job at a
// time; enqueueing an existing key returns the existing job.
type Queue interface {
	// Enqueue adds a job unless key exists. created is false on dedup.
	Enqueue(ctx context.Context, name, key string, payload any, opts Options) (job Job, created bool, err error)
	Get(ctx context.Context, key string) (Job, error)
	State(ctx context.Context, key string) (State, error)
	// Remove deletes the job in any state. An active job running in this
	// process has its context cancelled and its result discarded.
	Remove(ctx context.Context, key string) error
	RemoveByPrefix(ctx context.Context, prefix string) (int, error)
	// Reconcile makes sure a runnable job exists for key: active or completed
	// jobs are left alone (false), waiting, delayed or failed ones are replaced,
	// missing ones are inserted (true). A reconcile that finds the job active
	// asks for one extra run should that attempt fail.
	Reconcile(ctx context.Context, name, key string, payload any, opts Options) (bool, error)
	// Consume runs handler for due jobs named name with at most concurrency
	// in flight, until ctx is cancelled.
	Consume(ctx context.Context, name string, concurrency int, handler Handler) error
	// Recover returns jobs left active by a previous process to waiting.
	Recover(ctx context.Context) (int, error)
	Prune(ctx context.Context, completedAge, failedAge time.Duration) (int, error)
	Counts(ctx context.Context) (map[State]int, error)
}
