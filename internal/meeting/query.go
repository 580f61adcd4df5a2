package meeting

import (
	"context"
	"fmt"

	"github.com/nguyentantai21042004/meetflow/internal/store"
)

func (s *implService) List(ctx context.Context) ([]store.Meeting, error) {
	return s.store.ListMeetings(ctx)
}

func (s *implService) Get(ctx context.Context, id string) (Detail, error) {
	m, err := s.store.GetMeeting(ctx, id)
	if err != nil {
		return Detail{}, err
	}
	d := Detail{Meeting: m}

	if d.Uploads, err = s.store.ListUploads(ctx, id); err != nil {
		return d, err
	}
	if d.Utterances, err = s.store.ListUtterances(ctx, id); err != nil {
		return d, err
	}
	if d.Segments, err = s.store.ListSegments(ctx, id); err != nil {
		return d, err
	}
	return d, nil
}

func (s *implService) Status(ctx context.Context, id string) (StatusView, error) {
	m, err := s.store.GetMeeting(ctx, id)
	if err != nil {
		return StatusView{}, err
	}
	return StatusView{
		ID:                m.ID,
		Status:            m.Status,
		TotalSegments:     m.TotalSegments,
		CompletedSegments: m.CompletedSegments,
		FailureReason:     m.FailureReason(),
		UpdatedAt:         m.UpdatedAt,
	}, nil
}

func (s *implService) UpdateExtra(ctx context.Context, id string, extra map[string]any) (store.Meeting, error) {
	if len(extra) == 0 {
		return s.store.GetMeeting(ctx, id)
	}
	return s.store.MergeMeetingExtra(ctx, id, extra)
}

func (s *implService) AudioFile(ctx context.Context, id string) (AudioFile, error) {
	uploads, err := s.store.ListUploads(ctx, id)
	if err != nil {
		return AudioFile{}, err
	}
	if len(uploads) == 0 {
		if _, err := s.store.GetMeeting(ctx, id); err != nil {
			return AudioFile{}, err
		}
		return AudioFile{}, fmt.Errorf("meeting %s: %w", id, ErrNoUpload)
	}

	u := uploads[0]
	mime := u.MimeType
	if mime == "" {
		mime = "application/octet-stream"
	}
	return AudioFile{Path: s.storage.AbsPath(u.StoragePath), Filename: u.OriginalFilename, MimeType: mime}, nil
}
