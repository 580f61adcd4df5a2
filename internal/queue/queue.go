package queue

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const jobColumns = `key, name, payload, state, attempts_made, max_attempts, backoff_type, backoff_delay_ms,
	remove_on_complete, run_at, token, last_error, rerun, created_at, updated_at, finished_at`

type rowScanner interface {
	Scan(dest ...any) error
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func scanJob(row rowScanner) (Job, error) {
	var (
		j                       Job
		payload                 string
		delayMs                 int64
		removeOnComplete, rerun int
		runAt, created, updated int64
		token, lastErr          sql.NullString
		finished                sql.NullInt64
	)
	err := row.Scan(&j.Key, &j.Name, &payload, &j.State, &j.AttemptsMade, &j.Options.Attempts,
		&j.Options.Backoff, &delayMs, &removeOnComplete, &runAt, &token, &lastErr, &rerun,
		&created, &updated, &finished)
	if err != nil {
		return j, err
	}

	j.Payload = json.RawMessage(payload)
	j.Options.Delay = time.Duration(delayMs) * time.Millisecond
	j.Options.RemoveOnComplete = removeOnComplete == 1
	j.RunAt = time.UnixMilli(runAt)
	j.CreatedAt = time.UnixMilli(created)
	j.UpdatedAt = time.UnixMilli(updated)
	if finished.Valid {
		t := time.UnixMilli(finished.Int64)
		j.FinishedAt = &t
	}
	j.LastError = lastErr.String
	j.token = token.String
	j.rerun = rerun == 1
	return j, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (q *implQueue) nowMs() int64 {
	return q.clock().UnixMilli()
}

func insertJob(ctx context.Context, ex querier, name, key string, payload []byte, opts Options, now int64) (sql.Result, error) {
	return ex.ExecContext(ctx, `
		insert into jobs (key, name, payload, state, max_attempts, backoff_type, backoff_delay_ms,
			remove_on_complete, run_at, created_at, updated_at)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9, $9)
		on conflict (key) do nothing`,
		key, name, string(payload), StateWaiting, opts.Attempts, opts.Backoff, opts.Delay.Milliseconds(),
		boolInt(opts.RemoveOnComplete), now)
}

func getJob(ctx context.Context, q querier, key string) (Job, error) {
	j, err := scanJob(q.QueryRowContext(ctx, "select "+jobColumns+" from jobs where key = $1", key))
	if errors.Is(err, sql.ErrNoRows) {
		return j, fmt.Errorf("job %s: %w", key, ErrJobNotFound)
	}
	if err != nil {
		return j, fmt.Errorf("get job %s: %w", key, err)
	}
	return j, nil
}

func (q *implQueue) Enqueue(ctx context.Context, name, key string, payload any, opts Options) (Job, bool, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Job{}, false, fmt.Errorf("encode payload of job %s: %w", key, err)
	}

	res, err := insertJob(ctx, q.db, name, key, data, opts.normalized(), q.nowMs())
	if err != nil {
		return Job{}, false, fmt.Errorf("enqueue job %s: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return Job{}, false, fmt.Errorf("enqueue job %s: %w", key, err)
	}

	job, err := getJob(ctx, q.db, key)
	if err != nil {
		return job, false, err
	}
	if n == 1 {
		q.wake(name)
		q.logger.Debug(ctx, "Enqueued %s job %s", name, key)
	} else {
		q.logger.Debug(ctx, "Job %s already exists in state %s", key, job.State)
	}
	return job, n == 1, nil
}

func (q *implQueue) Get(ctx context.Context, key string) (Job, error) {
	return getJob(ctx, q.db, key)
}

func (q *implQueue) State(ctx context.Context, key string) (State, error) {
	var s State
	err := q.db.QueryRowContext(ctx, "select state from jobs where key = $1", key).Scan(&s)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("job %s: %w", key, ErrJobNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("job state %s: %w", key, err)
	}
	return s, nil
}

func (q *implQueue) Remove(ctx context.Context, key string) error {
	res, err := q.db.ExecContext(ctx, "delete from jobs where key = $1", key)
	if err != nil {
		return fmt.Errorf("remove job %s: %w", key, err)
	}
	q.cancelRunning(key)

	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("job %s: %w", key, ErrJobNotFound)
	}
	return nil
}

func (q *implQueue) RemoveByPrefix(ctx context.Context, prefix string) (int, error) {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(prefix)
	rows, err := q.db.QueryContext(ctx, `delete from jobs where key like $1 escape '\' returning key`, escaped+"%")
	if err != nil {
		return 0, fmt.Errorf("remove jobs with prefix %s: %w", prefix, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return 0, fmt.Errorf("remove jobs with prefix %s: %w", prefix, err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("remove jobs with prefix %s: %w", prefix, err)
	}

	for _, k := range keys {
		q.cancelRunning(k)
	}
	return len(keys), nil
}

func (q *implQueue) Reconcile(ctx context.Context, name, key string, payload any, opts Options) (bool, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return false, fmt.Errorf("encode payload of job %s: %w", key, err)
	}
	opts = opts.normalized()

	tx, err := q.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("reconcile job %s: begin trx: %w", key, err)
	}
	defer tx.Rollback()

	existing, err := getJob(ctx, tx, key)
	switch {
	case errors.Is(err, ErrJobNotFound):
	case err != nil:
		return false, err
	case existing.State == StateActive:
		if _, err := tx.ExecContext(ctx, "update jobs set rerun = 1 where key = $1", key); err != nil {
			return false, fmt.Errorf("reconcile job %s: flag rerun: %w", key, err)
		}
		if err := tx.Commit(); err != nil {
			return false, fmt.Errorf("reconcile job %s: commiting: %w", key, err)
		}
		q.logger.Debug(ctx, "Job %s already active, skipping", key)
		return false, nil
	case existing.State == StateCompleted:
		q.logger.Debug(ctx, "Job %s already completed, skipping", key)
		return false, nil
	default:
		if _, err := tx.ExecContext(ctx, "delete from jobs where key = $1", key); err != nil {
			return false, fmt.Errorf("reconcile job %s: remove stale: %w", key, err)
		}
		q.logger.Debug(ctx, "Replacing job %s in state %s", key, existing.State)
	}

	if _, err := insertJob(ctx, tx, name, key, data, opts, q.nowMs()); err != nil {
		return false, fmt.Errorf("reconcile job %s: insert: %w", key, err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("reconcile job %s: commiting: %w", key, err)
	}

	q.wake(name)
	return true, nil
}

func (q *implQueue) Recover(ctx context.Context) (int, error) {
	res, err := q.db.ExecContext(ctx, `
		update jobs
		set state = $1, token = null, attempts_made = max(attempts_made - 1, 0), run_at = $2, updated_at = $2
		where state = $3`, StateWaiting, q.nowMs(), StateActive)
	if err != nil {
		return 0, fmt.Errorf("recover active jobs: %w", err)
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		q.logger.Warn(ctx, "Recovered %d jobs left active by a previous run", n)
	}
	return int(n), nil
}

func (q *implQueue) Prune(ctx context.Context, completedAge, failedAge time.Duration) (int, error) {
	now := q.clock()
	res, err := q.db.ExecContext(ctx, `
		delete from jobs
		where (state = $1 and finished_at < $2) or (state = $3 and finished_at < $4)`,
		StateCompleted, now.Add(-completedAge).UnixMilli(), StateFailed, now.Add(-failedAge).UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("prune jobs: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (q *implQueue) Counts(ctx context.Context) (map[State]int, error) {
	rows, err := q.db.QueryContext(ctx, "select state, count(*) from jobs group by state")
	if err != nil {
		return nil, fmt.Errorf("count jobs: %w", err)
	}
	defer rows.Close()

	counts := map[State]int{
		StateWaiting:   0,
		StateDelayed:   0,
		StateActive:    0,
		StateCompleted: 0,
		StateFailed:    0,
	}
	for rows.Next() {
		var (
			s State
			n int
		)
		if err := rows.Scan(&s, &n); err != nil {
			return nil, fmt.Errorf("count jobs: %w", err)
		}
		counts[s] = n
	}
	return counts, rows.Err()
}
