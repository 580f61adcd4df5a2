package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/nguyentantai21042004/meetflow/internal/watcher"
	"github.com/nguyentantai21042004/meetflow/internal/worker"
)

const (
	pruneInterval     = time.Hour
	pruneCompletedAge = 24 * time.Hour
	pruneFailedAge    = 7 * 24 * time.Hour
)

// Serve runs the HTTP API, both job consumers, the queue pruner and, when
// enabled, the inbox watcher. It returns when ctx is cancelled or any of
// them fails; the others are stopped and awaited first.
func (a *App) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if a.Config.Server.CallbackToken == "" {
		a.Logger.Warn(ctx, "server.callback_token is empty: every callback will be rejected")
	}

	n, err := a.Queue.Recover(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		a.Logger.Info(ctx, "Requeued %d jobs left active by a previous run", n)
	}

	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)
	run := func(name string, fn func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := fn(ctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				a.Logger.Error(ctx, "%s stopped: %v", name, err)
				once.Do(func() { firstErr = err })
			}
			cancel()
		}()
	}

	run("segment consumer", func(ctx context.Context) error {
		return a.Queue.Consume(ctx, worker.SegmentJob, a.Config.Workers.Concurrency, a.Worker.HandleSegment)
	})
	run("merge consumer", func(ctx context.Context) error {
		return a.Queue.Consume(ctx, worker.MergeJob, a.Config.Workers.MergeConcurrency, a.Worker.HandleMerge)
	})
	run("pruner", a.prune)

	if a.Config.Watcher.Enabled {
		w, err := watcher.New(a.Config.Watcher.Inbox,
			watcher.NewInboxHandler(a.Meeting, a.Store, a.Logger.Named("inbox")),
			a.Logger.Named("watcher"), a.Config.Workers.Concurrency)
		if err != nil {
			cancel()
			wg.Wait()
			return err
		}
		defer w.Stop()
		run("watcher", w.Start)
	}

	run("http server", a.Server.Start)

	wg.Wait()
	a.Logger.Info(context.Background(), "meetflow stopped")
	return firstErr
}

func (a *App) prune(ctx context.Context) error {
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			n, err := a.Queue.Prune(ctx, pruneCompletedAge, pruneFailedAge)
			if err != nil {
				a.Logger.Warn(ctx, "Prune jobs: %v", err)
				continue
			}
			if n > 0 {
				a.Logger.Debug(ctx, "Pruned %d finished jobs", n)
			}
		}
	}
}
