package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

const segmentColumns = `id, meeting_id, segment_index, start_time, end_time, file_path, status,
	transcript, error, created_at, updated_at`

func scanSegment(row rowScanner) (Segment, error) {
	var (
		seg        Segment
		transcript sql.NullString
		errText    sql.NullString
	)
	err := row.Scan(&seg.ID, &seg.MeetingID, &seg.Index, &seg.StartTime, &seg.EndTime, &seg.FilePath,
		&seg.Status, &transcript, &errText, &seg.CreatedAt, &seg.UpdatedAt)
	if err != nil {
		return seg, err
	}
	seg.Error = errText.String
	if err := scanJSON(transcript, &seg.Transcript); err != nil {
		return seg, err
	}
	return seg, nil
}

func (s *implStore) CreateSegment(ctx context.Context, seg *Segment) error {
	if seg.ID == "" {
		seg.ID = uuid.NewString()
	}
	if seg.Status == "" {
		seg.Status = SegmentPending
	}
	seg.CreatedAt = now()
	seg.UpdatedAt = seg.CreatedAt

	_, err := s.db.ExecContext(ctx, `
		insert into segments (id, meeting_id, segment_index, start_time, end_time, file_path, status, created_at, updated_at)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		seg.ID, seg.MeetingID, seg.Index, seg.StartTime, seg.EndTime, seg.FilePath, seg.Status, seg.CreatedAt, seg.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert segment %d: %w", seg.Index, err)
	}
	return nil
}

func (s *implStore) GetSegment(ctx context.Context, id string) (Segment, error) {
	seg, err := scanSegment(s.db.QueryRowContext(ctx, "select "+segmentColumns+" from segments where id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return seg, fmt.Errorf("segment %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return seg, fmt.Errorf("get segment: %w", err)
	}
	return seg, nil
}

func (s *implStore) GetMeetingSegment(ctx context.Context, meetingID, segmentID string) (Segment, error) {
	seg, err := scanSegment(s.db.QueryRowContext(ctx,
		"select "+segmentColumns+" from segments where id = $1 and meeting_id = $2", segmentID, meetingID))
	if errors.Is(err, sql.ErrNoRows) {
		return seg, fmt.Errorf("segment %s of meeting %s: %w", segmentID, meetingID, ErrNotFound)
	}
	if err != nil {
		return seg, fmt.Errorf("get segment: %w", err)
	}
	return seg, nil
}

func (s *implStore) ListSegments(ctx context.Context, meetingID string) ([]Segment, error) {
	rows, err := s.db.QueryContext(ctx,
		"select "+segmentColumns+" from segments where meeting_id = $1 order by segment_index", meetingID)
	if err != nil {
		return nil, fmt.Errorf("list segments: %w", err)
	}
	defer rows.Close()

	var res []Segment
	for rows.Next() {
		seg, err := scanSegment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan segment: %w", err)
		}
		res = append(res, seg)
	}
	return res, rows.Err()
}

func (s *implStore) SetSegmentStatus(ctx context.Context, id string, status SegmentStatus) error {
	return s.updateUnlessCompleted(ctx, id,
		"update segments set status = $1, updated_at = $2 where id = $3 and status != $4",
		status, now(), id, SegmentCompleted)
}

func (s *implStore) FailSegment(ctx context.Context, id, reason string) error {
	return s.updateUnlessCompleted(ctx, id,
		"update segments set status = $1, error = $2, updated_at = $3 where id = $4 and status != $5",
		SegmentFailed, reason, now(), id, SegmentCompleted)
}

func (s *implStore) RetrySegment(ctx context.Context, id, reason string) error {
	return s.updateUnlessCompleted(ctx, id,
		"update segments set status = $1, error = $2, updated_at = $3 where id = $4 and status != $5",
		SegmentPending, reason, now(), id, SegmentCompleted)
}

// updateUnlessCompleted runs a segment update guarded by status != COMPLETED.
// When nothing changed it tells a missing row from a completed one.
func (s *implStore) updateUnlessCompleted(ctx context.Context, id, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update segment %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update segment %s: %w", id, err)
	}
	if n > 0 {
		return nil
	}

	var status SegmentStatus
	err = s.db.QueryRowContext(ctx, "select status from segments where id = $1", id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("segment %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update segment %s: %w", id, err)
	}
	return fmt.Errorf("segment %s: %w", id, ErrSegmentCompleted)
}

func (s *implStore) CompleteSegment(ctx context.Context, id string, transcript []TranscriptEntry, remoteErr string) error {
	if transcript == nil {
		transcript = []TranscriptEntry{}
	}
	enc, err := jsonValue(transcript)
	if err != nil {
		return err
	}

	status := SegmentCompleted
	if remoteErr != "" {
		status = SegmentFailed
	}
	return execOne(ctx, s.db, "segment "+id,
		"update segments set status = $1, transcript = $2, error = $3, updated_at = $4 where id = $5",
		status, enc, nullString(remoteErr), now(), id)
}

func (s *implStore) RecomputeProgress(ctx context.Context, meetingID string) (Progress, error) {
	var p Progress
	err := s.db.QueryRowContext(ctx, `
		update meetings
		set completed_segments = (
				select count(*) from segments where meeting_id = $1 and status = $2
			),
			updated_at = $3
		where id = $1
		returning completed_segments, total_segments, status`,
		meetingID, SegmentCompleted, now()).
		Scan(&p.Completed, &p.Total, &p.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return p, fmt.Errorf("meeting %s: %w", meetingID, ErrNotFound)
	}
	if err != nil {
		return p, fmt.Errorf("recompute progress: %w", err)
	}
	return p, nil
}
