package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
)

const speakerColumns = `id, name, status, extra, created_at, updated_at`

const sampleColumns = `id, speaker_id, original_filename, stored_filename, mime_type, size, storage_path,
	blake3_hash, created_at`

func scanSpeaker(row rowScanner) (Speaker, error) {
	var (
		sp    Speaker
		extra sql.NullString
	)
	if err := row.Scan(&sp.ID, &sp.Name, &sp.Status, &extra, &sp.CreatedAt, &sp.UpdatedAt); err != nil {
		return sp, err
	}
	if err := scanJSON(extra, &sp.Extra); err != nil {
		return sp, err
	}
	sp.Samples = []SpeakerSample{}
	return sp, nil
}

func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintUnique
}

func (s *implStore) CreateSpeaker(ctx context.Context, sp *Speaker) error {
	if sp.ID == "" {
		sp.ID = uuid.NewString()
	}
	if sp.Status == "" {
		sp.Status = SpeakerPending
	}
	sp.Name = strings.TrimSpace(sp.Name)
	sp.CreatedAt = now()
	sp.UpdatedAt = sp.CreatedAt
	if sp.Samples == nil {
		sp.Samples = []SpeakerSample{}
	}

	extra, err := jsonValue(sp.Extra)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		insert into speakers (id, name, status, extra, created_at, updated_at)
		values ($1, $2, $3, $4, $5, $6)`,
		sp.ID, sp.Name, sp.Status, extra, sp.CreatedAt, sp.UpdatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("%q: %w", sp.Name, ErrSpeakerExists)
	}
	if err != nil {
		return fmt.Errorf("insert speaker: %w", err)
	}
	return nil
}

func (s *implStore) AddSpeakerSample(ctx context.Context, sample *SpeakerSample) error {
	if sample.ID == "" {
		sample.ID = uuid.NewString()
	}
	sample.CreatedAt = now()

	_, err := s.db.ExecContext(ctx, `
		insert into speaker_samples (id, speaker_id, original_filename, stored_filename, mime_type, size,
			storage_path, blake3_hash, created_at)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		sample.ID, sample.SpeakerID, sample.OriginalFilename, sample.StoredFilename, sample.MimeType,
		sample.Size, sample.StoragePath, sample.Blake3Hash, sample.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert speaker sample: %w", err)
	}
	return nil
}

func (s *implStore) GetSpeaker(ctx context.Context, id string) (Speaker, error) {
	return s.getSpeaker(ctx, "id", id)
}

func (s *implStore) FindSpeakerByName(ctx context.Context, name string) (Speaker, error) {
	return s.getSpeaker(ctx, "name", strings.TrimSpace(name))
}

func (s *implStore) getSpeaker(ctx context.Context, column, value string) (Speaker, error) {
	sp, err := scanSpeaker(s.db.QueryRowContext(ctx,
		"select "+speakerColumns+" from speakers where "+column+" = $1", value))
	if errors.Is(err, sql.ErrNoRows) {
		return sp, fmt.Errorf("speaker %s: %w", value, ErrNotFound)
	}
	if err != nil {
		return sp, fmt.Errorf("get speaker: %w", err)
	}

	samples, err := s.listSamples(ctx, "where speaker_id = $1", sp.ID)
	if err != nil {
		return sp, err
	}
	sp.Samples = append(sp.Samples, samples...)
	return sp, nil
}

func (s *implStore) ListSpeakers(ctx context.Context) ([]Speaker, error) {
	rows, err := s.db.QueryContext(ctx, "select "+speakerColumns+" from speakers order by created_at desc")
	if err != nil {
		return nil, fmt.Errorf("list speakers: %w", err)
	}
	defer rows.Close()

	res := []Speaker{}
	index := map[string]int{}
	for rows.Next() {
		sp, err := scanSpeaker(rows)
		if err != nil {
			return nil, fmt.Errorf("scan speaker: %w", err)
		}
		index[sp.ID] = len(res)
		res = append(res, sp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	samples, err := s.listSamples(ctx, "")
	if err != nil {
		return nil, err
	}
	for _, sample := range samples {
		if i, ok := index[sample.SpeakerID]; ok {
			res[i].Samples = append(res[i].Samples, sample)
		}
	}
	return res, nil
}

func (s *implStore) listSamples(ctx context.Context, where string, args ...any) ([]SpeakerSample, error) {
	rows, err := s.db.QueryContext(ctx,
		"select "+sampleColumns+" from speaker_samples "+where+" order by created_at", args...)
	if err != nil {
		return nil, fmt.Errorf("list speaker samples: %w", err)
	}
	defer rows.Close()

	var res []SpeakerSample
	for rows.Next() {
		var sample SpeakerSample
		if err := rows.Scan(&sample.ID, &sample.SpeakerID, &sample.OriginalFilename, &sample.StoredFilename,
			&sample.MimeType, &sample.Size, &sample.StoragePath, &sample.Blake3Hash, &sample.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan speaker sample: %w", err)
		}
		res = append(res, sample)
	}
	return res, rows.Err()
}

func (s *implStore) ActiveSpeakerNames(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "select name from speakers where status = $1 order by name", SpeakerActive)
	if err != nil {
		return nil, fmt.Errorf("list active speakers: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan speaker name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *implStore) SetSpeakerStatus(ctx context.Context, id string, status SpeakerStatus, extra map[string]any) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("set speaker status: begin trx: %w", err)
	}
	defer tx.Rollback()

	var stored sql.NullString
	err = tx.QueryRowContext(ctx, "select extra from speakers where id = $1", id).Scan(&stored)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("speaker %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("set speaker status: %w", err)
	}

	merged := map[string]any{}
	if err := scanJSON(stored, &merged); err != nil {
		return err
	}
	for k, v := range extra {
		merged[k] = v
	}
	enc, err := jsonValue(merged)
	if err != nil {
		return err
	}
	if err := execOne(ctx, tx, "speaker "+id,
		"update speakers set status = $1, extra = $2, updated_at = $3 where id = $4",
		status, enc, now(), id); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("set speaker status: commiting: %w", err)
	}
	return nil
}

func (s *implStore) RenameSpeaker(ctx context.Context, id, name string) error {
	name = strings.TrimSpace(name)
	err := execOne(ctx, s.db, "speaker "+id,
		"update speakers set name = $1, updated_at = $2 where id = $3", name, now(), id)
	if isUniqueViolation(err) {
		return fmt.Errorf("%q: %w", name, ErrSpeakerExists)
	}
	return err
}

func (s *implStore) DeleteSpeaker(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete speaker: begin trx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "delete from speaker_samples where speaker_id = $1", id); err != nil {
		return fmt.Errorf("delete speaker samples: %w", err)
	}
	if err := execOne(ctx, tx, "speaker "+id, "delete from speakers where id = $1", id); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("delete speaker: commiting: %w", err)
	}
	return nil
}
