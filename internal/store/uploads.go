package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

const uploadColumns = `id, meeting_id, original_filename, stored_filename, mime_type, size, storage_path,
	blake3_hash, duration_seconds, created_at`

func scanUpload(row rowScanner) (Upload, error) {
	var (
		u        Upload
		duration sql.NullFloat64
	)
	err := row.Scan(&u.ID, &u.MeetingID, &u.OriginalFilename, &u.StoredFilename, &u.MimeType, &u.Size,
		&u.StoragePath, &u.Blake3Hash, &duration, &u.CreatedAt)
	if duration.Valid {
		u.DurationSeconds = &duration.Float64
	}
	return u, err
}

func (s *implStore) CreateUpload(ctx context.Context, u *Upload) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.CreatedAt = now()

	_, err := s.db.ExecContext(ctx, `
		insert into uploads (id, meeting_id, original_filename, stored_filename, mime_type, size,
			storage_path, blake3_hash, created_at)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		u.ID, u.MeetingID, u.OriginalFilename, u.StoredFilename, u.MimeType, u.Size,
		u.StoragePath, u.Blake3Hash, u.CreatedAt)
	if err != nil {
		return fmt.Errorf("persisting upload into sqlite: %w", err)
	}
	return nil
}

func (s *implStore) ListUploads(ctx context.Context, meetingID string) ([]Upload, error) {
	rows, err := s.db.QueryContext(ctx,
		"select "+uploadColumns+" from uploads where meeting_id = $1 order by created_at", meetingID)
	if err != nil {
		return nil, fmt.Errorf("list uploads: %w", err)
	}
	defer rows.Close()

	var res []Upload
	for rows.Next() {
		u, err := scanUpload(rows)
		if err != nil {
			return nil, fmt.Errorf("scan upload: %w", err)
		}
		res = append(res, u)
	}
	return res, rows.Err()
}

func (s *implStore) FindUploadByHash(ctx context.Context, hash string) (Upload, error) {
	u, err := scanUpload(s.db.QueryRowContext(ctx,
		"select "+uploadColumns+" from uploads where blake3_hash = $1 order by created_at limit 1", hash))
	if errors.Is(err, sql.ErrNoRows) {
		return u, fmt.Errorf("upload with hash %s: %w", hash, ErrNotFound)
	}
	if err != nil {
		return u, fmt.Errorf("get upload by hash: %w", err)
	}
	return u, nil
}

func (s *implStore) SetUploadDuration(ctx context.Context, id string, seconds float64) error {
	return execOne(ctx, s.db, "upload "+id,
		"update uploads set duration_seconds = $1 where id = $2", seconds, id)
}
