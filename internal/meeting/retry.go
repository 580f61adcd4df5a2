package meeting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nguyentantai21042004/meetflow/internal/dispatcher"
	"github.com/nguyentantai21042004/meetflow/internal/queue"
	"github.com/nguyentantai21042004/meetflow/internal/worker"
)

// removeJobs drops every queued, delayed or running job of a meeting.
func (s *implService) removeJobs(ctx context.Context, id string) error {
	n, err := s.queue.RemoveByPrefix(ctx, worker.SegmentKeyPrefix(id))
	if err != nil {
		return fmt.Errorf("remove segment jobs: %w", err)
	}
	if err := s.queue.Remove(ctx, worker.MergeKey(id)); err != nil && !errors.Is(err, queue.ErrJobNotFound) {
		return fmt.Errorf("remove merge job: %w", err)
	}
	s.logger.Info(ctx, "Removed %d segment jobs and the merge job of meeting %s", n, id)
	return nil
}

func (s *implService) Retry(ctx context.Context, id string) (dispatcher.Result, error) {
	if _, err := s.store.GetMeeting(ctx, id); err != nil {
		return dispatcher.Result{}, err
	}

	uploads, err := s.store.ListUploads(ctx, id)
	if err != nil {
		return dispatcher.Result{}, err
	}
	if len(uploads) == 0 {
		return dispatcher.Result{}, fmt.Errorf("meeting %s: %w", id, ErrNoUpload)
	}

	if err := s.removeJobs(ctx, id); err != nil {
		return dispatcher.Result{}, err
	}
	s.removeSegmentClips(ctx, id)

	if err := s.store.ResetMeeting(ctx, id, time.Now().UTC()); err != nil {
		return dispatcher.Result{}, err
	}

	s.logger.Info(ctx, "Retrying meeting %s", id)
	return s.dispatcher.Dispatch(ctx, id, s.storage.AbsPath(uploads[0].StoragePath))
}

// removeSegmentClips deletes extracted clips before the segment rows go.
func (s *implService) removeSegmentClips(ctx context.Context, id string) {
	segs, err := s.store.ListSegments(ctx, id)
	if err != nil {
		s.logger.Warn(ctx, "List segments of meeting %s: %v", id, err)
		return
	}
	for _, seg := range segs {
		if seg.FilePath == "" {
			continue
		}
		if err := s.storage.Remove(seg.FilePath); err != nil {
			s.logger.Warn(ctx, "Remove clip %s: %v", seg.FilePath, err)
		}
	}
}

func (s *implService) Delete(ctx context.Context, id string) error {
	if _, err := s.store.GetMeeting(ctx, id); err != nil {
		return err
	}

	if err := s.removeJobs(ctx, id); err != nil {
		return err
	}
	if err := s.store.DeleteMeeting(ctx, id); err != nil {
		return err
	}
	if err := s.storage.RemoveMeeting(id); err != nil {
		s.logger.Warn(ctx, "Remove files of meeting %s: %v", id, err)
	}

	s.logger.Info(ctx, "Meeting %s deleted", id)
	return nil
}
