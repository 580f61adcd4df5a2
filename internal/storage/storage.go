package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// speakersDir holds enrollment samples, one directory per speaker.
const speakersDir = "speakers"

func (s *implStorage) Root() string {
	return s.root
}

func (s *implStorage) AbsPath(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(s.root, rel)
}

func (s *implStorage) SaveUpload(ctx context.Context, meetingID, originalName string, r io.Reader) (SavedFile, error) {
	return s.save(ctx, meetingID, originalName, r)
}

func (s *implStorage) SaveSpeakerSample(ctx context.Context, speakerID, originalName string, r io.Reader) (SavedFile, error) {
	return s.save(ctx, filepath.Join(speakersDir, speakerID), originalName, r)
}

// save streams r into {root}/{dir}/ under a unique name, hashing it on the way.
func (s *implStorage) save(ctx context.Context, dir, originalName string, r io.Reader) (SavedFile, error) {
	if err := os.MkdirAll(filepath.Join(s.root, dir), 0o755); err != nil {
		return SavedFile{}, fmt.Errorf("create upload dir: %w", err)
	}

	stored := fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), uuid.NewString(), strings.ToLower(filepath.Ext(originalName)))
	rel := filepath.Join(dir, stored)
	abs := filepath.Join(s.root, rel)

	f, err := os.Create(abs)
	if err != nil {
		return SavedFile{}, fmt.Errorf("create upload file: %w", err)
	}

	h := newHasher()
	size, err := io.Copy(io.MultiWriter(f, h), r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(abs)
		return SavedFile{}, fmt.Errorf("write upload: %w", err)
	}

	s.logger.Info(ctx, "Stored %s (%d bytes) as %s", originalName, size, rel)
	return SavedFile{
		StoredFilename: stored,
		RelativePath:   rel,
		AbsolutePath:   abs,
		Size:           size,
		Hash:           sumHex(h),
	}, nil
}

func (s *implStorage) SegmentPath(meetingID string, index int) (string, string, error) {
	dir := filepath.Join(s.root, meetingID, "segments")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("create segments dir: %w", err)
	}
	name := fmt.Sprintf("segment_%04d.wav", index)
	rel := filepath.Join(meetingID, "segments", name)
	return filepath.Join(s.root, rel), rel, nil
}

func (s *implStorage) SavePayload(meetingID, filename string, data []byte) (string, error) {
	dir := filepath.Join(s.root, meetingID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create meeting dir: %w", err)
	}
	path := filepath.Join(dir, filepath.Base(filename))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write payload: %w", err)
	}
	return path, nil
}

func (s *implStorage) Remove(rel string) error {
	if rel == "" {
		return nil
	}
	path := s.AbsPath(rel)
	if !s.within(path) {
		return fmt.Errorf("refusing to remove %s outside upload root", path)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", rel, err)
	}
	return nil
}

func (s *implStorage) RemoveMeeting(meetingID string) error {
	if !validID(meetingID) || meetingID == speakersDir {
		return fmt.Errorf("invalid meeting id %q", meetingID)
	}
	if err := os.RemoveAll(filepath.Join(s.root, meetingID)); err != nil {
		return fmt.Errorf("remove meeting dir: %w", err)
	}
	return nil
}

func (s *implStorage) RemoveSpeaker(speakerID string) error {
	if !validID(speakerID) {
		return fmt.Errorf("invalid speaker id %q", speakerID)
	}
	if err := os.RemoveAll(filepath.Join(s.root, speakersDir, speakerID)); err != nil {
		return fmt.Errorf("remove speaker dir: %w", err)
	}
	return nil
}

func validID(id string) bool {
	return id != "" && id != "." && id != ".." && !strings.ContainsAny(id, `/\`)
}

func (s *implStorage) within(path string) bool {
	rel, err := filepath.Rel(s.root, filepath.Clean(path))
	return err == nil && rel != "." && !strings.HasPrefix(rel, "..")
}
