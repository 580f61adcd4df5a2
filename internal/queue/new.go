package queue

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/nguyentantai21042004/meetflow/internal/logger"
)

type running struct {
	token  string
	cancel context.CancelFunc
}

type implQueue struct {
	db     *sql.DB
	logger logger.Logger
	poll   time.Duration
	clock  func() time.Time

	mu      sync.Mutex
	active  map[string]running
	wakeups map[string]chan struct{}
}

// New migrates the jobs table on db and returns a Queue. poll is how often
// idle consumers look for due jobs.
func New(ctx context.Context, db *sql.DB, poll time.Duration, log logger.Logger) (Queue, error) {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("migrate queue schema: %w", err)
	}
	if poll <= 0 {
		poll = 500 * time.Millisecond
	}
	return &implQueue{
		db:      db,
		logger:  log,
		poll:    poll,
		clock:   time.Now,
		active:  map[string]running{},
		wakeups: map[string]chan struct{}{},
	}, nil
}

const schema = `
	create table if not exists jobs (
		key text primary key not null,
		name text not null,
		payload text not null,
		state text not null,
		attempts_made integer not null default 0,
		max_attempts integer not null,
		backoff_type text not null,
		backoff_delay_ms integer not null,
		remove_on_complete integer not null default 0,
		run_at integer not null,
		token text,
		last_error text,
		rerun integer not null default 0,
		created_at integer not null,
		updated_at integer not null,
		finished_at integer
	);
	create index if not exists jobs_due on jobs (name, state, run_at);`
