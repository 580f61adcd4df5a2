package watcher

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/nguyentantai21042004/meetflow/internal/logger"
	"github.com/nguyentantai21042004/meetflow/internal/meeting"
	"github.com/nguyentantai21042004/meetflow/internal/storage"
	"github.com/nguyentantai21042004/meetflow/internal/store"
)

// ProcessedDir is where ingested recordings are moved, under the inbox.
const ProcessedDir = "processed"

// NewInboxHandler creates meetings from recordings in the inbox. Files whose
// blake3 hash matches an existing upload are skipped and left in place.
func NewInboxHandler(svc meeting.Service, st store.Store, log logger.Logger) EventHandler {
	return func(ctx context.Context, path string) error {
		hash, err := storage.HashFile(path)
		if err != nil {
			return err
		}

		existing, err := st.FindUploadByHash(ctx, hash)
		if err == nil {
			log.Info(ctx, "Skipping %s: same content as upload of meeting %s", filepath.Base(path), existing.MeetingID)
			return nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open recording: %w", err)
		}
		defer f.Close()

		name := filepath.Base(path)
		m, err := svc.Create(ctx, meeting.CreateInput{
			Title:    strings.TrimSuffix(name, filepath.Ext(name)),
			Filename: name,
			MimeType: mime.TypeByExtension(strings.ToLower(filepath.Ext(name))),
			Body:     f,
			Extra:    map[string]any{"source": "inbox"},
		})
		if err != nil {
			return fmt.Errorf("create meeting: %w", err)
		}
		f.Close()

		log.Info(ctx, "Recording %s became meeting %s (%s)", name, m.ID, m.Status)
		return moveProcessed(path)
	}
}

func moveProcessed(path string) error {
	dir := filepath.Join(filepath.Dir(path), ProcessedDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create processed dir: %w", err)
	}
	if err := os.Rename(path, filepath.Join(dir, filepath.Base(path))); err != nil {
		return fmt.Errorf("move recording: %w", err)
	}
	return nil
}
