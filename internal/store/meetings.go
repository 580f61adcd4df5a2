package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const meetingColumns = `id, title, description, status, summary, summary_phases, formatted_lines,
	raw_transcript, api_payload, extra, total_segments, completed_segments, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMeeting(row rowScanner) (Meeting, error) {
	var (
		m                                             Meeting
		title, description, summary                   sql.NullString
		phases, lines, transcript, payload, extraJSON sql.NullString
	)
	err := row.Scan(&m.ID, &title, &description, &m.Status, &summary, &phases, &lines,
		&transcript, &payload, &extraJSON, &m.TotalSegments, &m.CompletedSegments, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return m, err
	}

	m.Title = title.String
	m.Description = description.String
	if summary.Valid {
		m.Summary = &summary.String
	}
	for _, c := range []struct {
		src sql.NullString
		dst any
	}{
		{phases, &m.SummaryPhases},
		{lines, &m.FormattedLines},
		{transcript, &m.RawTranscript},
		{payload, &m.APIPayload},
		{extraJSON, &m.Extra},
	} {
		if err := scanJSON(c.src, c.dst); err != nil {
			return m, err
		}
	}
	return m, nil
}

func now() time.Time {
	return time.Now().UTC()
}

func (s *implStore) CreateMeeting(ctx context.Context, m *Meeting) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Status == "" {
		m.Status = MeetingUploaded
	}
	m.CreatedAt = now()
	m.UpdatedAt = m.CreatedAt

	extra, err := jsonValue(m.Extra)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		insert into meetings (id, title, description, status, extra, created_at, updated_at)
		values ($1, $2, $3, $4, $5, $6, $7)`,
		m.ID, nullString(m.Title), nullString(m.Description), m.Status, extra, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert meeting: %w", err)
	}
	return nil
}

func (s *implStore) GetMeeting(ctx context.Context, id string) (Meeting, error) {
	return getMeeting(ctx, s.db, id)
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func getMeeting(ctx context.Context, q querier, id string) (Meeting, error) {
	m, err := scanMeeting(q.QueryRowContext(ctx, "select "+meetingColumns+" from meetings where id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return m, fmt.Errorf("meeting %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return m, fmt.Errorf("get meeting: %w", err)
	}
	return m, nil
}

func (s *implStore) ListMeetings(ctx context.Context) ([]Meeting, error) {
	rows, err := s.db.QueryContext(ctx, "select "+meetingColumns+" from meetings order by created_at desc")
	if err != nil {
		return nil, fmt.Errorf("list meetings: %w", err)
	}
	defer rows.Close()

	var res []Meeting
	for rows.Next() {
		m, err := scanMeeting(rows)
		if err != nil {
			return nil, fmt.Errorf("scan meeting: %w", err)
		}
		res = append(res, m)
	}
	return res, rows.Err()
}

func (s *implStore) SetMeetingStatus(ctx context.Context, id string, status MeetingStatus) error {
	return execOne(ctx, s.db, "meeting "+id,
		"update meetings set status = $1, updated_at = $2 where id = $3", status, now(), id)
}

func (s *implStore) MarkMeetingFailed(ctx context.Context, id, reason string) error {
	if reason == "" {
		reason = "Unknown"
	}
	return execOne(ctx, s.db, "meeting "+id, `
		update meetings
		set status = $1,
			extra = json_set(coalesce(extra, '{}'), '$.failureReason', $2),
			updated_at = $3
		where id = $4`, MeetingFailed, reason, now(), id)
}

func (s *implStore) SetSegmentTotals(ctx context.Context, id string, total int) error {
	return execOne(ctx, s.db, "meeting "+id, `
		update meetings
		set total_segments = $1, completed_segments = 0, updated_at = $2
		where id = $3`, total, now(), id)
}

func (s *implStore) CompleteMeeting(ctx context.Context, id string, res MeetingResult) error {
	values := make([]any, 0, 5)
	for _, v := range []any{res.SummaryPhases, res.FormattedLines, res.RawTranscript, res.APIPayload, res.Extra} {
		enc, err := jsonValue(v)
		if err != nil {
			return err
		}
		values = append(values, enc)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("complete meeting: begin trx: %w", err)
	}
	defer tx.Rollback()

	err = execOne(ctx, tx, "meeting "+id, `
		update meetings
		set status = $1, summary = $2, summary_phases = $3, formatted_lines = $4,
			raw_transcript = $5, api_payload = $6,
			extra = case when $7 is null then extra else $7 end,
			updated_at = $8
		where id = $9`,
		MeetingCompleted, res.Summary, values[0], values[1], values[2], values[3], values[4], now(), id)
	if err != nil {
		return err
	}

	if len(res.RawTranscript) > 0 {
		if err := replaceUtterances(ctx, tx, id, res.RawTranscript); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("complete meeting: commiting: %w", err)
	}
	return nil
}

func (s *implStore) ResetMeeting(ctx context.Context, id string, retriedAt time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("reset meeting: begin trx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "delete from segments where meeting_id = $1", id); err != nil {
		return fmt.Errorf("reset meeting: delete segments: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "delete from utterances where meeting_id = $1", id); err != nil {
		return fmt.Errorf("reset meeting: delete utterances: %w", err)
	}

	err = execOne(ctx, tx, "meeting "+id, `
		update meetings
		set status = $1, summary = null, summary_phases = null, formatted_lines = null,
			raw_transcript = null, api_payload = null,
			extra = json_set(coalesce(extra, '{}'), '$.retriedAt', $2),
			total_segments = 0, completed_segments = 0, updated_at = $3
		where id = $4`,
		MeetingProcessing, retriedAt.UTC().Format(time.RFC3339), now(), id)
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("reset meeting: commiting: %w", err)
	}
	return nil
}

func (s *implStore) MergeMeetingExtra(ctx context.Context, id string, extra map[string]any) (Meeting, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Meeting{}, fmt.Errorf("merge extra: begin trx: %w", err)
	}
	defer tx.Rollback()

	m, err := getMeeting(ctx, tx, id)
	if err != nil {
		return m, err
	}
	if m.Extra == nil {
		m.Extra = map[string]any{}
	}
	for k, v := range extra {
		m.Extra[k] = v
	}
	enc, err := jsonValue(m.Extra)
	if err != nil {
		return m, err
	}
	m.UpdatedAt = now()
	if err := execOne(ctx, tx, "meeting "+id,
		"update meetings set extra = $1, updated_at = $2 where id = $3", enc, m.UpdatedAt, id); err != nil {
		return m, err
	}

	if err := tx.Commit(); err != nil {
		return m, fmt.Errorf("merge extra: commiting: %w", err)
	}
	return m, nil
}

func (s *implStore) DeleteMeeting(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete meeting: begin trx: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"segments", "utterances", "uploads"} {
		if _, err := tx.ExecContext(ctx, "delete from "+table+" where meeting_id = $1", id); err != nil {
			return fmt.Errorf("delete meeting %s: %w", table, err)
		}
	}
	if err := execOne(ctx, tx, "meeting "+id, "delete from meetings where id = $1", id); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("delete meeting: commiting: %w", err)
	}
	return nil
}

// execOne runs a statement that must touch exactly one row.
func execOne(ctx context.Context, q querier, what, query string, args ...any) error {
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", what, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update %s: %w", what, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
