package meeting

import (
	"context"
	"crypto/subtle"

	"github.com/nguyentantai21042004/meetflow/internal/store"
	"github.com/nguyentantai21042004/meetflow/internal/worker"
)

func (s *implService) checkToken(token string) error {
	if s.token == "" || token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(s.token)) != 1 {
		return ErrInvalidToken
	}
	return nil
}

func (s *implService) HandleCallback(ctx context.Context, id, token string, in CallbackInput) (store.Meeting, error) {
	if err := s.checkToken(token); err != nil {
		return store.Meeting{}, err
	}

	m, err := s.store.GetMeeting(ctx, id)
	if err != nil {
		return m, err
	}

	if len(in.Raw) > 0 {
		if _, err := s.storage.SavePayload(id, "callback.json", in.Raw); err != nil {
			s.logger.Warn(ctx, "Failed to keep callback payload of meeting %s: %v", id, err)
		}
	}

	if in.Status == store.MeetingFailed {
		reason, _ := in.Extra["error"].(string)
		s.logger.Warn(ctx, "Transcription of meeting %s failed: %s", id, reason)
		if err := s.store.MarkMeetingFailed(ctx, id, reason); err != nil {
			return m, err
		}
		return s.store.GetMeeting(ctx, id)
	}

	extra := in.Extra
	if extra == nil {
		extra = map[string]any{}
	}
	err = s.store.CompleteMeeting(ctx, id, store.MeetingResult{
		Summary:        in.Summary,
		SummaryPhases:  in.SummaryPhases,
		FormattedLines: in.FormattedLines,
		RawTranscript:  in.RawTranscript,
		APIPayload:     in.APIPayload,
		Extra:          extra,
	})
	if err != nil {
		return m, err
	}

	s.logger.Info(ctx, "Meeting %s completed from callback (%d entries)", id, len(in.RawTranscript))
	return s.store.GetMeeting(ctx, id)
}

func (s *implService) HandleSegmentCallback(ctx context.Context, meetingID, segmentID, token string, in SegmentCallbackInput) (store.Segment, error) {
	if err := s.checkToken(token); err != nil {
		return store.Segment{}, err
	}

	seg, err := s.store.GetMeetingSegment(ctx, meetingID, segmentID)
	if err != nil {
		return seg, err
	}

	if in.Error != "" {
		s.logger.Error(ctx, "Segment %d of meeting %s reported error: %s", seg.Index, meetingID, in.Error)
	} else if len(in.Transcript) == 0 {
		s.logger.Warn(ctx, "Segment %d of meeting %s callback received empty transcript", seg.Index, meetingID)
	}

	if err := s.store.CompleteSegment(ctx, seg.ID, in.Transcript, in.Error); err != nil {
		return seg, err
	}

	progress, err := s.store.RecomputeProgress(ctx, meetingID)
	if err != nil {
		return seg, err
	}
	s.logger.Info(ctx, "Meeting %s progress: %d/%d segments completed", meetingID, progress.Completed, progress.Total)

	switch {
	case progress.Status == store.MeetingCompleted:
	case progress.AllDone():
		s.triggerMerge(ctx, meetingID, "all segments completed")
	case in.Error != "":
		if s.segmentsSettled(ctx, meetingID) {
			s.triggerMerge(ctx, meetingID, "no segment left running")
		}
	}

	return s.store.GetSegment(ctx, seg.ID)
}

// segmentsSettled reports whether no segment of the meeting is PENDING or
// PROCESSING, so the merge can fail the meeting without waiting for backoff.
func (s *implService) segmentsSettled(ctx context.Context, meetingID string) bool {
	segs, err := s.store.ListSegments(ctx, meetingID)
	if err != nil {
		s.logger.Warn(ctx, "List segments of meeting %s: %v", meetingID, err)
		return false
	}
	for _, seg := range segs {
		if seg.Status == store.SegmentPending || seg.Status == store.SegmentProcessing {
			return false
		}
	}
	return len(segs) > 0
}

// triggerMerge replaces a waiting, delayed or failed merge job with one that
// runs now. An active or completed merge is left alone.
func (s *implService) triggerMerge(ctx context.Context, meetingID, why string) {
	created, err := s.queue.Reconcile(ctx, worker.MergeJob, worker.MergeKey(meetingID),
		worker.MergePayload{MeetingID: meetingID}, s.triggerOpts)
	if err != nil {
		// the merge job's own retries still pick the meeting up
		s.logger.Warn(ctx, "Could not trigger merge for meeting %s: %v", meetingID, err)
		return
	}
	if created {
		s.logger.Info(ctx, "Merge of meeting %s triggered: %s", meetingID, why)
	} else {
		s.logger.Info(ctx, "Merge job of meeting %s already active or completed, skipping", meetingID)
	}
}
