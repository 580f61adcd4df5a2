package speaker

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"strings"
	"unicode/utf8"

	"github.com/nguyentantai21042004/meetflow/internal/store"
	"github.com/nguyentantai21042004/meetflow/internal/transcription"
)

func checkName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return fmt.Errorf("%w: name is longer than %d characters", ErrInvalidInput, maxNameLength)
	}
	return nil
}

func validate(in CreateInput) error {
	if err := checkName(in.Name); err != nil {
		return err
	}
	switch {
	case len(in.Samples) == 0:
		return fmt.Errorf("%w: at least one sample audio is required", ErrInvalidInput)
	case len(in.Samples) > maxSamples:
		return fmt.Errorf("%w: at most %d samples are accepted", ErrInvalidInput, maxSamples)
	}

	var bad []string
	for _, sample := range in.Samples {
		if sample.Body == nil {
			return fmt.Errorf("%w: sample %q is empty", ErrInvalidInput, sample.Filename)
		}
		if !audioMimeTypes[baseMime(sample.MimeType)] {
			bad = append(bad, sample.Filename)
		}
	}
	if len(bad) > 0 {
		return fmt.Errorf("%w: unsupported audio format: %s", ErrInvalidInput, strings.Join(bad, ", "))
	}
	return nil
}

// baseMime drops parameters such as "; codecs=opus".
func baseMime(v string) string {
	mt, _, err := mime.ParseMediaType(v)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(v))
	}
	return mt
}

func (s *implService) Create(ctx context.Context, in CreateInput) (store.Speaker, error) {
	if err := validate(in); err != nil {
		return store.Speaker{}, err
	}

	sp := store.Speaker{Name: in.Name, Status: store.SpeakerPending}
	if err := s.store.CreateSpeaker(ctx, &sp); err != nil {
		return sp, err
	}

	paths := make([]string, 0, len(in.Samples))
	for _, sample := range in.Samples {
		saved, err := s.storage.SaveSpeakerSample(ctx, sp.ID, sample.Filename, sample.Body)
		if err != nil {
			s.fail(ctx, sp.ID, "Upload failed: "+err.Error())
			return s.reload(ctx, sp), fmt.Errorf("save sample: %w", err)
		}
		row := &store.SpeakerSample{
			SpeakerID:        sp.ID,
			OriginalFilename: sample.Filename,
			StoredFilename:   saved.StoredFilename,
			MimeType:         baseMime(sample.MimeType),
			Size:             saved.Size,
			StoragePath:      saved.RelativePath,
			Blake3Hash:       saved.Hash,
		}
		if err := s.store.AddSpeakerSample(ctx, row); err != nil {
			s.fail(ctx, sp.ID, "Upload failed: "+err.Error())
			return s.reload(ctx, sp), err
		}
		paths = append(paths, saved.AbsolutePath)
	}

	if err := s.store.SetSpeakerStatus(ctx, sp.ID, store.SpeakerEnrolling, nil); err != nil {
		return s.reload(ctx, sp), err
	}
	err := s.client.EnrollSpeaker(ctx, transcription.EnrollRequest{
		SpeakerName: sp.Name,
		SamplePaths: paths,
		Force:       true,
	})
	if err != nil {
		msg := err.Error()
		if errors.Is(err, transcription.ErrEnrollmentRejected) {
			msg = "Enrollment failed: " + msg
		}
		s.logger.Error(ctx, "Failed to enroll speaker %s: %v", sp.Name, err)
		s.fail(ctx, sp.ID, msg)
		return s.reload(ctx, sp), nil
	}

	if err := s.store.SetSpeakerStatus(ctx, sp.ID, store.SpeakerActive, nil); err != nil {
		return s.reload(ctx, sp), err
	}
	s.logger.Info(ctx, "Speaker %s enrolled from %d samples", sp.Name, len(paths))
	return s.reload(ctx, sp), nil
}

func (s *implService) fail(ctx context.Context, id, reason string) {
	err := s.store.SetSpeakerStatus(context.WithoutCancel(ctx), id, store.SpeakerFailed,
		map[string]any{"enrollmentError": reason})
	if err != nil {
		s.logger.Error(ctx, "Failed to mark speaker %s failed: %v", id, err)
	}
}

// reload returns the stored speaker, or sp when it cannot be read.
func (s *implService) reload(ctx context.Context, sp store.Speaker) store.Speaker {
	got, err := s.store.GetSpeaker(ctx, sp.ID)
	if err != nil {
		return sp
	}
	return got
}
