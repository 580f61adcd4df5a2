package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/nguyentantai21042004/meetflow/internal/queue"
	"github.com/nguyentantai21042004/meetflow/internal/store"
	"github.com/nguyentantai21042004/meetflow/internal/transcription"
)

func (w *implWorker) HandleSegment(ctx context.Context, job queue.Job) error {
	var p SegmentPayload
	if err := job.Decode(&p); err != nil {
		return queue.Permanent(err)
	}

	seg, err := w.store.GetSegment(ctx, p.SegmentID)
	if errors.Is(err, store.ErrNotFound) {
		return queue.Permanent(fmt.Errorf("segment %s of meeting %s no longer exists", p.SegmentID, p.MeetingID))
	}
	if err != nil {
		return err
	}
	if seg.Status == store.SegmentCompleted {
		w.logger.Info(ctx, "Segment %d of meeting %s already completed, skipping", seg.Index, seg.MeetingID)
		return nil
	}

	w.logger.Info(ctx, "Processing segment %d of meeting %s (attempt %d/%d)",
		p.SegmentIndex, p.MeetingID, job.AttemptsMade, job.Options.Attempts)

	if err := w.store.SetSegmentStatus(ctx, seg.ID, store.SegmentProcessing); err != nil {
		if errors.Is(err, store.ErrSegmentCompleted) {
			w.logger.Info(ctx, "Segment %d of meeting %s completed meanwhile, skipping", seg.Index, seg.MeetingID)
			return nil
		}
		return err
	}

	if err := w.client.WaitHealthy(ctx, w.health); err != nil {
		return w.segmentFailed(ctx, job, seg, fmt.Errorf("transcription service unavailable: %w", err))
	}

	err = w.client.ProcessSegment(ctx, transcription.SegmentRequest{
		SegmentPath:      p.SegmentPath,
		SegmentStartTime: p.SegmentStartTime,
		MeetingID:        p.MeetingID,
		SegmentIndex:     p.SegmentIndex,
		CallbackURL:      SegmentCallbackURL(w.callbackBase, p.MeetingID, p.SegmentID),
	})
	if err != nil {
		return w.segmentFailed(ctx, job, seg, fmt.Errorf("process segment: %w", err))
	}

	w.logger.Info(ctx, "Segment %d of meeting %s queued remotely", p.SegmentIndex, p.MeetingID)
	return nil
}

// segmentFailed records the error and recomputes progress, then returns
// cause for the queue to retry. Only the last attempt leaves the segment
// FAILED; earlier ones put it back to PENDING so the merge does not give up
// on a segment that is about to be retried. A segment already COMPLETED by
// its callback keeps its result and the job succeeds.
func (w *implWorker) segmentFailed(ctx context.Context, job queue.Job, seg store.Segment, cause error) error {
	if ctx.Err() != nil {
		// cancelled by removal or shutdown: leave state alone
		return cause
	}

	var err error
	if job.FinalAttempt() {
		err = w.store.FailSegment(ctx, seg.ID, cause.Error())
	} else {
		err = w.store.RetrySegment(ctx, seg.ID, cause.Error())
	}
	if errors.Is(err, store.ErrSegmentCompleted) {
		// a callback from an earlier attempt landed first
		w.logger.Info(ctx, "Segment %d of meeting %s completed by callback, dropping error: %v", seg.Index, seg.MeetingID, cause)
		return nil
	}
	if err != nil {
		w.logger.Error(ctx, "Failed to record error of segment %s: %v", seg.ID, err)
	}

	if _, err := w.store.RecomputeProgress(ctx, seg.MeetingID); err != nil {
		w.logger.Error(ctx, "Failed to recompute progress of meeting %s: %v", seg.MeetingID, err)
	}
	return cause
}
