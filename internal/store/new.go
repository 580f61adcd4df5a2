package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

type implStore struct {
	db *sql.DB
}

// OpenDB opens (creating if needed) the SQLite database at path. The pool is
// limited to one connection so writers never contend for the file lock; the
// queue shares the same handle.
func OpenDB(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=10000&_journal_mode=WAL&_foreign_keys=on&_synchronous=NORMAL", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`
	PRAGMA journal_size_limit = 200000000;
	PRAGMA temp_store         = MEMORY;
	PRAGMA cache_size         = -16000;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("configure sqlite: %w", err)
	}
	return db, nil
}

// New migrates the schema and returns a Store over db.
func New(ctx context.Context, db *sql.DB) (Store, error) {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("migrate store schema: %w", err)
	}
	return &implStore{db: db}, nil
}

const schema = `
	create table if not exists meetings (
		id text primary key not null,
		title text,
		description text,
		status text not null default 'UPLOADED',
		summary text,
		summary_phases text,
		formatted_lines text,
		raw_transcript text,
		api_payload text,
		extra text,
		total_segments integer not null default 0,
		completed_segments integer not null default 0,
		created_at timestamp not null,
		updated_at timestamp not null
	);

	create table if not exists uploads (
		id text primary key not null,
		meeting_id text not null references meetings(id) on delete cascade,
		original_filename text not null,
		stored_filename text not null,
		mime_type text not null,
		size integer not null,
		storage_path text not null,
		blake3_hash text not null,
		duration_seconds real,
		created_at timestamp not null
	);
	create index if not exists uploads_blake3_hash on uploads (blake3_hash);
	create index if not exists uploads_meeting on uploads (meeting_id);

	create table if not exists segments (
		id text primary key not null,
		meeting_id text not null references meetings(id) on delete cascade,
		segment_index integer not null,
		start_time real not null,
		end_time real not null,
		file_path text not null,
		status text not null default 'PENDING',
		transcript text,
		error text,
		created_at timestamp not null,
		updated_at timestamp not null,
		unique (meeting_id, segment_index)
	);

	create table if not exists utterances (
		id text primary key not null,
		meeting_id text not null references meetings(id) on delete cascade,
		position integer not null,
		speaker text not null,
		text text not null,
		timestamp text,
		start_time real,
		end_time real
	);
	create index if not exists utterances_meeting on utterances (meeting_id, position);

	create table if not exists speakers (
		id text primary key not null,
		name text not null unique,
		status text not null default 'PENDING',
		extra text,
		created_at timestamp not null,
		updated_at timestamp not null
	);

	create table if not exists speaker_samples (
		id text primary key not null,
		speaker_id text not null references speakers(id) on delete cascade,
		original_filename text not null,
		stored_filename text not null,
		mime_type text not null,
		size integer not null,
		storage_path text not null,
		blake3_hash text not null,
		created_at timestamp not null
	);
	create index if not exists speaker_samples_speaker on speaker_samples (speaker_id);`

func (s *implStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *implStore) Close() error {
	return s.db.Close()
}
