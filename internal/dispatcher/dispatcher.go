package dispatcher

import (
	"context"
	"fmt"

	"github.com/nguyentantai21042004/meetflow/internal/planner"
	"github.com/nguyentantai21042004/meetflow/internal/store"
	"github.com/nguyentantai21042004/meetflow/internal/transcription"
	"github.com/nguyentantai21042004/meetflow/internal/worker"
)

func (d *implDispatcher) Dispatch(ctx context.Context, meetingID, audioPath string) (Result, error) {
	m, err := d.store.GetMeeting(ctx, meetingID)
	if err != nil {
		return Result{}, fmt.Errorf("get meeting: %w", err)
	}

	res, err := d.dispatch(ctx, m, audioPath)
	if err != nil {
		d.logger.Error(ctx, "Dispatch failed for meeting %s: %v", meetingID, err)
		if mErr := d.store.MarkMeetingFailed(context.WithoutCancel(ctx), meetingID, err.Error()); mErr != nil {
			d.logger.Error(ctx, "Failed to mark meeting %s failed: %v", meetingID, mErr)
		}
		return res, err
	}
	return res, nil
}

func (d *implDispatcher) dispatch(ctx context.Context, m store.Meeting, audioPath string) (Result, error) {
	if m.Status != store.MeetingProcessing {
		if err := d.store.SetMeetingStatus(ctx, m.ID, store.MeetingProcessing); err != nil {
			return Result{}, err
		}
	}

	duration, err := d.audio.Probe(ctx, audioPath)
	if err != nil {
		return Result{}, fmt.Errorf("probe duration: %w", err)
	}
	d.recordDuration(ctx, m.ID, audioPath, duration)

	res := Result{Duration: duration}
	if d.planner.IsShort(duration) {
		res.Mode = ModeDirect
		// a single direct call: result arrives on the meeting callback
		return res, d.dispatchDirect(ctx, m.ID, audioPath, duration)
	}

	res.Mode = ModeSegmented
	n, err := d.dispatchSegments(ctx, m.ID, audioPath, duration)
	res.Segments = n
	return res, err
}

func (d *implDispatcher) dispatchDirect(ctx context.Context, meetingID, audioPath string, duration float64) error {
	d.logger.Info(ctx, "Meeting %s is %.1fs, processing as a single file", meetingID, duration)

	if err := d.client.WaitHealthy(ctx, d.health); err != nil {
		return fmt.Errorf("transcription service unavailable: %w", err)
	}

	err := d.client.Process(ctx, transcription.ProcessRequest{
		MeetingID:   meetingID,
		AudioPath:   audioPath,
		CallbackURL: worker.MeetingCallbackURL(d.callbackBase, meetingID),
	})
	if err != nil {
		return fmt.Errorf("start processing: %w", err)
	}
	return nil
}

func (d *implDispatcher) dispatchSegments(ctx context.Context, meetingID, audioPath string, duration float64) (int, error) {
	plan, err := d.planner.Plan(duration, d.workers)
	if err != nil {
		return 0, fmt.Errorf("plan segments: %w", err)
	}
	d.logger.Info(ctx, "Meeting %s is %.1fs, splitting into %d segments of ~%.0fs",
		meetingID, duration, len(plan), plan[0].Duration())

	for _, p := range plan {
		if err := d.dispatchSegment(ctx, meetingID, audioPath, p); err != nil {
			return 0, fmt.Errorf("segment %d: %w", p.Index, err)
		}
	}

	if err := d.store.SetSegmentTotals(ctx, meetingID, len(plan)); err != nil {
		return 0, err
	}

	_, created, err := d.queue.Enqueue(ctx, worker.MergeJob, worker.MergeKey(meetingID),
		worker.MergePayload{MeetingID: meetingID}, d.mergeOpts)
	if err != nil {
		return 0, fmt.Errorf("enqueue merge job: %w", err)
	}
	if !created {
		d.logger.Info(ctx, "Merge job for meeting %s already exists", meetingID)
	}

	d.logger.Info(ctx, "Dispatched %d segment jobs for meeting %s", len(plan), meetingID)
	return len(plan), nil
}

func (d *implDispatcher) dispatchSegment(ctx context.Context, meetingID, audioPath string, p planner.Segment) error {
	abs, rel, err := d.storage.SegmentPath(meetingID, p.Index)
	if err != nil {
		return err
	}

	if err := d.audio.ExtractClip(ctx, audioPath, abs, p.ExtractStart, p.ExtractDuration()); err != nil {
		return fmt.Errorf("extract clip: %w", err)
	}

	seg := &store.Segment{
		MeetingID: meetingID,
		Index:     p.Index,
		StartTime: p.LogicalStart,
		EndTime:   p.LogicalEnd,
		FilePath:  rel,
		Status:    store.SegmentPending,
	}
	if err := d.store.CreateSegment(ctx, seg); err != nil {
		return err
	}

	payload := worker.SegmentPayload{
		MeetingID:        meetingID,
		SegmentID:        seg.ID,
		SegmentPath:      abs,
		SegmentIndex:     p.Index,
		SegmentStartTime: p.LogicalStart,
		SegmentEndTime:   p.LogicalEnd,
	}
	if _, _, err := d.queue.Enqueue(ctx, worker.SegmentJob, worker.SegmentKey(meetingID, p.Index), payload, d.segmentOpts); err != nil {
		return fmt.Errorf("enqueue segment job: %w", err)
	}
	return nil
}

// recordDuration stores the probed duration on the matching upload row.
func (d *implDispatcher) recordDuration(ctx context.Context, meetingID, audioPath string, duration float64) {
	uploads, err := d.store.ListUploads(ctx, meetingID)
	if err != nil {
		d.logger.Warn(ctx, "List uploads of meeting %s: %v", meetingID, err)
		return
	}
	for _, u := range uploads {
		if d.storage.AbsPath(u.StoragePath) != audioPath {
			continue
		}
		if err := d.store.SetUploadDuration(ctx, u.ID, duration); err != nil {
			d.logger.Warn(ctx, "Record duration of upload %s: %v", u.ID, err)
		}
		return
	}
}
