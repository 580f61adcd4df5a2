package speaker

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nguyentantai21042004/meetflow/internal/store"
	"github.com/nguyentantai21042004/meetflow/internal/transcription"
)

func (s *implService) List(ctx context.Context) ([]store.Speaker, error) {
	return s.store.ListSpeakers(ctx)
}

func (s *implService) Get(ctx context.Context, id string) (store.Speaker, error) {
	return s.store.GetSpeaker(ctx, id)
}

func (s *implService) Rename(ctx context.Context, id, name string) (store.Speaker, error) {
	if err := checkName(name); err != nil {
		return store.Speaker{}, err
	}
	if err := s.store.RenameSpeaker(ctx, id, name); err != nil {
		return store.Speaker{}, err
	}
	return s.store.GetSpeaker(ctx, id)
}

func (s *implService) Delete(ctx context.Context, id string) error {
	sp, err := s.store.GetSpeaker(ctx, id)
	if err != nil {
		return err
	}

	// The registry row goes regardless of what the service answers.
	err = s.client.RemoveEnrolledSpeaker(ctx, sp.Name)
	switch {
	case errors.Is(err, transcription.ErrSpeakerNotEnrolled):
		s.logger.Warn(ctx, "Speaker %s was not enrolled, deleting anyway", sp.Name)
	case err != nil:
		s.logger.Warn(ctx, "Failed to remove speaker %s from the service: %v", sp.Name, err)
	}
	return s.remove(ctx, sp)
}

func (s *implService) remove(ctx context.Context, sp store.Speaker) error {
	if err := s.store.DeleteSpeaker(ctx, sp.ID); err != nil {
		return err
	}
	if err := s.storage.RemoveSpeaker(sp.ID); err != nil {
		s.logger.Warn(ctx, "Failed to remove samples of speaker %s: %v", sp.ID, err)
	}
	s.logger.Info(ctx, "Speaker %s deleted", sp.Name)
	return nil
}

func (s *implService) Sync(ctx context.Context) (SyncResult, error) {
	names, err := s.client.ListEnrolledSpeakers(ctx)
	if err != nil {
		return SyncResult{}, fmt.Errorf("list enrolled speakers: %w", err)
	}

	var res SyncResult
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		res.Total++

		sp, err := s.store.FindSpeakerByName(ctx, name)
		switch {
		case errors.Is(err, store.ErrNotFound):
			sp = store.Speaker{
				Name:   name,
				Status: store.SpeakerActive,
				Extra: map[string]any{
					"syncedFromPkl": true,
					"syncedAt":      time.Now().UTC().Format(time.RFC3339),
				},
			}
			if err := s.store.CreateSpeaker(ctx, &sp); err != nil {
				return res, err
			}
			res.Created++
		case err != nil:
			return res, err
		case sp.Status == store.SpeakerFailed || sp.Status == store.SpeakerPending:
			if err := s.store.SetSpeakerStatus(ctx, sp.ID, store.SpeakerActive, nil); err != nil {
				return res, err
			}
			res.Updated++
		default:
			res.Skipped++
		}
	}

	s.logger.Info(ctx, "Speaker sync: %d created, %d updated, %d skipped of %d",
		res.Created, res.Updated, res.Skipped, res.Total)
	return res, nil
}

func (s *implService) HandleDeleted(ctx context.Context, token, name string) error {
	if s.token == "" || token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(s.token)) != 1 {
		return ErrInvalidToken
	}
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: speaker_name is required", ErrInvalidInput)
	}

	sp, err := s.store.FindSpeakerByName(ctx, name)
	if errors.Is(err, store.ErrNotFound) {
		s.logger.Info(ctx, "Speaker %s deleted by the service was not registered", name)
		return nil
	}
	if err != nil {
		return err
	}
	return s.remove(ctx, sp)
}
