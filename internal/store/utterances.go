package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

func replaceUtterances(ctx context.Context, tx *sql.Tx, meetingID string, entries []TranscriptEntry) error {
	if _, err := tx.ExecContext(ctx, "delete from utterances where meeting_id = $1", meetingID); err != nil {
		return fmt.Errorf("replace utterances: delete: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		insert into utterances (id, meeting_id, position, speaker, text, timestamp, start_time, end_time)
		values ($1, $2, $3, $4, $5, $6, $7, $8)`)
	if err != nil {
		return fmt.Errorf("replace utterances: prepare: %w", err)
	}
	defer stmt.Close()

	for i, e := range entries {
		if _, err := stmt.ExecContext(ctx, uuid.NewString(), meetingID, i, e.Speaker, e.Text,
			nullString(e.Timestamp), e.Start, e.End); err != nil {
			return fmt.Errorf("replace utterances: insert %d: %w", i, err)
		}
	}
	return nil
}

func (s *implStore) ListUtterances(ctx context.Context, meetingID string) ([]Utterance, error) {
	rows, err := s.db.QueryContext(ctx, `
		select id, meeting_id, position, speaker, text, timestamp, start_time, end_time
		from utterances where meeting_id = $1 order by position`, meetingID)
	if err != nil {
		return nil, fmt.Errorf("list utterances: %w", err)
	}
	defer rows.Close()

	var res []Utterance
	for rows.Next() {
		var (
			u          Utterance
			ts         sql.NullString
			start, end sql.NullFloat64
		)
		if err := rows.Scan(&u.ID, &u.MeetingID, &u.Position, &u.Speaker, &u.Text, &ts, &start, &end); err != nil {
			return nil, fmt.Errorf("scan utterance: %w", err)
		}
		u.Timestamp = ts.String
		u.Start = start.Float64
		u.End = end.Float64
		res = append(res, u)
	}
	return res, rows.Err()
}
