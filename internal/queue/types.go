package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nguyentantai21042004/meetflow/internal/config"
)

// ErrJobNotFound is returned when no job has the requested key.
var ErrJobNotFound = errors.New("job not found")

type State string

const (
	StateWaiting   State = "waiting"
	StateDelayed   State = "delayed"
	StateActive    State = "active"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

type BackoffType string

const (
	BackoffExponential BackoffType = "exponential"
	BackoffFixed       BackoffType = "fixed"
)

// Options is the retry policy of one job. Zero Attempts means a single attempt.
type Options struct {
	Attempts         int
	Backoff          BackoffType
	Delay            time.Duration
	RemoveOnComplete bool
}

// DefaultOptions is 3 attempts with 2s exponential backoff.
func DefaultOptions() Options {
	return Options{Attempts: 3, Backoff: BackoffExponential, Delay: 2 * time.Second}
}

// OptionsFromConfig converts a configured retry policy.
func OptionsFromConfig(c config.JobRetry) Options {
	return Options{Attempts: c.Attempts, Backoff: BackoffType(c.Backoff), Delay: c.Delay}
}

func (o Options) normalized() Options {
	if o.Attempts < 1 {
		o.Attempts = 1
	}
	if o.Backoff == "" {
		o.Backoff = BackoffExponential
	}
	return o
}

// backoff returns the wait before the next attempt, given how many attempts
// have been made so far (>= 1).
func (o Options) backoff(attemptsMade int) time.Duration {
	if attemptsMade < 1 {
		attemptsMade = 1
	}
	if o.Backoff == BackoffFixed {
		return o.Delay
	}
	shift := attemptsMade - 1
	if shift > 20 {
		shift = 20
	}
	return o.Delay * time.Duration(1<<shift)
}

type Job struct {
	Key          string          `json:"key"`
	Name         string          `json:"name"`
	Payload      json.RawMessage `json:"payload"`
	State        State           `json:"state"`
	AttemptsMade int             `json:"attemptsMade"`
	Options      Options         `json:"options"`
	RunAt        time.Time       `json:"runAt"`
	LastError    string          `json:"lastError,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
	FinishedAt   *time.Time      `json:"finishedAt,omitempty"`

	token string
	rerun bool
}

// Decode unmarshals the payload into v.
func (j Job) Decode(v any) error {
	if err := json.Unmarshal(j.Payload, v); err != nil {
		return fmt.Errorf("decode payload of job %s: %w", j.Key, err)
	}
	return nil
}

// FinalAttempt reports whether a failure now would be terminal.
func (j Job) FinalAttempt() bool {
	return j.AttemptsMade >= j.Options.Attempts
}
