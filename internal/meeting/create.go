package meeting

import (
	"context"
	"fmt"
	"strings"

	"github.com/nguyentantai21042004/meetflow/internal/store"
)

func (s *implService) Create(ctx context.Context, in CreateInput) (store.Meeting, error) {
	if in.Body == nil || strings.TrimSpace(in.Filename) == "" {
		return store.Meeting{}, fmt.Errorf("%w: audio file is required", ErrInvalidInput)
	}

	m := store.Meeting{
		Title:       in.Title,
		Description: in.Description,
		Status:      store.MeetingProcessing,
		Extra:       in.Extra,
	}
	if err := s.store.CreateMeeting(ctx, &m); err != nil {
		return m, err
	}

	saved, err := s.storage.SaveUpload(ctx, m.ID, in.Filename, in.Body)
	if err != nil {
		s.fail(ctx, m.ID, "Upload failed: "+err.Error())
		return m, fmt.Errorf("save upload: %w", err)
	}

	up := &store.Upload{
		MeetingID:        m.ID,
		OriginalFilename: in.Filename,
		StoredFilename:   saved.StoredFilename,
		MimeType:         in.MimeType,
		Size:             saved.Size,
		StoragePath:      saved.RelativePath,
		Blake3Hash:       saved.Hash,
	}
	if err := s.store.CreateUpload(ctx, up); err != nil {
		s.fail(ctx, m.ID, "Upload failed: "+err.Error())
		return m, err
	}

	s.logger.Info(ctx, "Meeting %s created from %s (%d bytes)", m.ID, in.Filename, saved.Size)

	if _, err := s.dispatcher.Dispatch(ctx, m.ID, saved.AbsolutePath); err != nil {
		s.fail(ctx, m.ID, "Job dispatch failed: "+err.Error())
		return s.reload(ctx, m), err
	}
	return s.reload(ctx, m), nil
}

func (s *implService) fail(ctx context.Context, id, reason string) {
	if err := s.store.MarkMeetingFailed(context.WithoutCancel(ctx), id, reason); err != nil {
		s.logger.Error(ctx, "Failed to mark meeting %s failed: %v", id, err)
	}
}

// reload returns the stored meeting, or m when it cannot be read.
func (s *implService) reload(ctx context.Context, m store.Meeting) store.Meeting {
	got, err := s.store.GetMeeting(ctx, m.ID)
	if err != nil {
		return m
	}
	return got
}
