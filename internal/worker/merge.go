package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/nguyentantai21042004/meetflow/internal/merger"
	"github.com/nguyentantai21042004/meetflow/internal/queue"
	"github.com/nguyentantai21042004/meetflow/internal/store"
)

var (
	// ErrSegmentsNotReady means some segments are still outstanding; the
	// merge job retries with backoff.
	ErrSegmentsNotReady = errors.New("segments not ready")
	// ErrSegmentsFailed means at least one segment failed for good.
	ErrSegmentsFailed = errors.New("segments failed")
)

func (w *implWorker) HandleMerge(ctx context.Context, job queue.Job) error {
	var p MergePayload
	if err := job.Decode(&p); err != nil {
		return queue.Permanent(err)
	}

	m, err := w.store.GetMeeting(ctx, p.MeetingID)
	if errors.Is(err, store.ErrNotFound) {
		return queue.Permanent(err)
	}
	if err != nil {
		return err
	}
	if m.Status == store.MeetingCompleted {
		w.logger.Info(ctx, "Meeting %s already completed, nothing to merge", m.ID)
		return nil
	}

	segs, err := w.store.ListSegments(ctx, m.ID)
	if err != nil {
		return err
	}

	var failed []int
	completed := 0
	for _, s := range segs {
		switch s.Status {
		case store.SegmentFailed:
			failed = append(failed, s.Index)
		case store.SegmentCompleted:
			completed++
		}
	}

	if len(failed) > 0 {
		err := fmt.Errorf("%w: %d of %d segments failed (indexes %v)", ErrSegmentsFailed, len(failed), len(segs), failed)
		w.markFailed(ctx, m.ID, err)
		return queue.Permanent(err)
	}

	if len(segs) == 0 || completed < len(segs) || m.TotalSegments == 0 {
		return queue.Wait(fmt.Errorf("%w: %d/%d completed", ErrSegmentsNotReady, completed, m.TotalSegments))
	}

	if err := w.merge(ctx, m, segs); err != nil {
		w.markFailed(ctx, m.ID, err)
		return err
	}
	return nil
}

func (w *implWorker) merge(ctx context.Context, m store.Meeting, segs []store.Segment) error {
	w.logger.Info(ctx, "Merging %d segments of meeting %s", len(segs), m.ID)

	input := make([]merger.SegmentTranscript, 0, len(segs))
	for _, s := range segs {
		input = append(input, merger.SegmentTranscript{
			Index:   s.Index,
			Start:   s.StartTime,
			End:     s.EndTime,
			Entries: s.Transcript,
		})
	}

	enrolled, err := w.store.ActiveSpeakerNames(ctx)
	if err != nil {
		return fmt.Errorf("list enrolled speakers: %w", err)
	}
	merged, err := w.merger.Merge(ctx, input, enrolled)
	if err != nil {
		return fmt.Errorf("merge transcripts: %w", err)
	}

	summary, err := w.summarizer.Summarize(ctx, merged.Entries)
	if err != nil {
		return fmt.Errorf("summarize: %w", err)
	}

	extra := map[string]any{}
	for k, v := range m.Extra {
		extra[k] = v
	}
	delete(extra, "failureReason")
	if len(merged.Warnings) > 0 {
		extra["mergeWarnings"] = merged.Warnings
	}
	if len(merged.SkippedSegments) > 0 {
		extra["skippedSegments"] = merged.SkippedSegments
	}

	err = w.store.CompleteMeeting(ctx, m.ID, store.MeetingResult{
		Summary:        summary.Text,
		FormattedLines: summary.FormattedLines,
		RawTranscript:  merged.Entries,
		Extra:          extra,
	})
	if err != nil {
		return fmt.Errorf("complete meeting: %w", err)
	}

	w.logger.Info(ctx, "Meeting %s completed with %d entries", m.ID, len(merged.Entries))
	return nil
}

func (w *implWorker) markFailed(ctx context.Context, meetingID string, cause error) {
	if ctx.Err() != nil {
		return
	}
	if err := w.store.MarkMeetingFailed(ctx, meetingID, cause.Error()); err != nil {
		w.logger.Error(ctx, "Failed to mark meeting %s failed: %v", meetingID, err)
	}
}
