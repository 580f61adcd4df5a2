package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
)

func (q *implQueue) Consume(ctx context.Context, name string, concurrency int, handler Handler) error {
	sem := newSemaphore(concurrency)
	wake := q.wakeup(name)
	ticker := time.NewTicker(q.poll)
	defer ticker.Stop()

	var wg sync.WaitGroup
	defer wg.Wait()

	q.logger.Info(ctx, "Consuming %s jobs with concurrency %d", name, concurrency)
	for {
		if err := sem.acquire(ctx); err != nil {
			return nil
		}

		job, err := q.claim(ctx, name)
		if err != nil || job == nil {
			sem.release()
			if err != nil && ctx.Err() == nil {
				q.logger.Error(ctx, "Claim %s job: %v", name, err)
			}
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			case <-wake:
			}
			continue
		}

		wg.Add(1)
		go func(job Job) {
			defer wg.Done()
			defer sem.release()
			q.run(ctx, job, handler)
		}(*job)
	}
}

// claim atomically moves the oldest due job to active. It returns nil when
// nothing is due.
func (q *implQueue) claim(ctx context.Context, name string) (*Job, error) {
	now := q.nowMs()
	job, err := scanJob(q.db.QueryRowContext(ctx, `
		update jobs
		set state = $1, token = $2, attempts_made = attempts_made + 1, updated_at = $3
		where key = (
			select key from jobs
			where name = $4 and state in ($5, $6) and run_at <= $3
			order by run_at, created_at
			limit 1
		)
		returning `+jobColumns,
		StateActive, uuid.NewString(), now, name, StateWaiting, StateDelayed))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("claim job: %w", err)
	}
	return &job, nil
}

func (q *implQueue) run(ctx context.Context, job Job, handler Handler) {
	jobCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	q.track(job.Key, job.token, cancel)
	defer q.untrack(job.Key, job.token)

	q.logger.Debug(ctx, "Running %s job %s (attempt %d/%d)", job.Name, job.Key, job.AttemptsMade, job.Options.Attempts)
	err := safeCall(jobCtx, job, handler)

	// results are written even while shutting down
	dbCtx := context.WithoutCancel(ctx)
	switch {
	case err == nil:
		q.complete(dbCtx, job)
	case ctx.Err() != nil:
		q.release(dbCtx, job)
	default:
		q.fail(dbCtx, job, err)
	}
}

func safeCall(ctx context.Context, job Job, handler Handler) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in job %s: %v\n%s", job.Key, r, debug.Stack())
		}
	}()
	return handler(ctx, job)
}

func (q *implQueue) complete(ctx context.Context, job Job) {
	now := q.nowMs()
	var (
		res sql.Result
		err error
	)
	if job.Options.RemoveOnComplete {
		res, err = q.db.ExecContext(ctx, "delete from jobs where key = $1 and token = $2", job.Key, job.token)
	} else {
		res, err = q.db.ExecContext(ctx, `
			update jobs
			set state = $1, token = null, rerun = 0, last_error = null, finished_at = $2, updated_at = $2
			where key = $3 and token = $4`,
			StateCompleted, now, job.Key, job.token)
	}
	if err != nil {
		q.logger.Error(ctx, "Complete job %s: %v", job.Key, err)
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		q.logger.Debug(ctx, "Job %s was removed while running, dropping result", job.Key)
		return
	}
	q.logger.Info(ctx, "Job %s completed", job.Key)
}

func (q *implQueue) fail(ctx context.Context, job Job, cause error) {
	current, err := getJob(ctx, q.db, job.Key)
	if err != nil || current.token != job.token {
		q.logger.Debug(ctx, "Job %s was removed while running, dropping failure: %v", job.Key, cause)
		return
	}

	now := q.clock()
	var (
		state       State
		runAt       = now
		maxAttempts = job.Options.Attempts
	)
	switch {
	case IsPermanent(cause):
		state = StateFailed
	case current.rerun:
		// a trigger arrived while this attempt was running
		state = StateWaiting
		if maxAttempts <= job.AttemptsMade {
			maxAttempts = job.AttemptsMade + 1
		}
	case job.FinalAttempt():
		state = StateFailed
	default:
		state = StateDelayed
		runAt = now.Add(job.Options.backoff(job.AttemptsMade))
	}

	var finished any
	if state == StateFailed {
		finished = now.UnixMilli()
	}
	_, err = q.db.ExecContext(ctx, `
		update jobs
		set state = $1, token = null, rerun = 0, last_error = $2, run_at = $3, max_attempts = $4,
			finished_at = $5, updated_at = $6
		where key = $7 and token = $8`,
		state, cause.Error(), runAt.UnixMilli(), maxAttempts, finished, now.UnixMilli(), job.Key, job.token)
	if err != nil {
		q.logger.Error(ctx, "Fail job %s: %v", job.Key, err)
		return
	}

	switch {
	case state == StateFailed:
		q.logger.Error(ctx, "Job %s failed after %d attempts: %v", job.Key, job.AttemptsMade, cause)
	case IsWait(cause):
		q.logger.Info(ctx, "Job %s not ready (attempt %d/%d), retrying at %s: %v",
			job.Key, job.AttemptsMade, maxAttempts, runAt.Format(time.RFC3339), cause)
	default:
		q.logger.Warn(ctx, "Job %s failed (attempt %d/%d), retrying at %s: %v",
			job.Key, job.AttemptsMade, maxAttempts, runAt.Format(time.RFC3339), cause)
	}
	if state == StateWaiting {
		q.wake(job.Name)
	}
}

// release hands a job back untouched when the consumer is shutting down.
func (q *implQueue) release(ctx context.Context, job Job) {
	_, err := q.db.ExecContext(ctx, `
		update jobs
		set state = $1, token = null, attempts_made = max(attempts_made - 1, 0), updated_at = $2
		where key = $3 and token = $4`,
		StateWaiting, q.nowMs(), job.Key, job.token)
	if err != nil {
		q.logger.Error(ctx, "Release job %s: %v", job.Key, err)
		return
	}
	q.logger.Info(ctx, "Job %s released on shutdown", job.Key)
}

func (q *implQueue) track(key, token string, cancel context.CancelFunc) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.active[key] = running{token: token, cancel: cancel}
}

func (q *implQueue) untrack(key, token string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if r, ok := q.active[key]; ok && r.token == token {
		delete(q.active, key)
	}
}

func (q *implQueue) cancelRunning(key string) {
	q.mu.Lock()
	r, ok := q.active[key]
	delete(q.active, key)
	q.mu.Unlock()
	if ok {
		r.cancel()
	}
}

func (q *implQueue) wakeup(name string) chan struct{} {
	q.mu.Lock()
	defer q.mu.Unlock()
	ch, ok := q.wakeups[name]
	if !ok {
		ch = make(chan struct{}, 1)
		q.wakeups[name] = ch
	}
	return ch
}

func (q *implQueue) wake(name string) {
	select {
	case q.wakeup(name) <- struct{}{}:
	default:
	}
}
