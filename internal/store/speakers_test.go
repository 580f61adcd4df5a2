package store

import (
	"context"
	"errors"
	"testing"
)

func TestSpeakerLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	sp := Speaker{Name: "  Lan Anh "}
	if err := s.CreateSpeaker(ctx, &sp); err != nil {
		t.Fatalf("CreateSpeaker() error = %v", err)
	}
	if sp.Name != "Lan Anh" || sp.Status != SpeakerPending {
		t.Errorf("speaker = %+v", sp)
	}

	dup := Speaker{Name: "Lan Anh"}
	if err := s.CreateSpeaker(ctx, &dup); !errors.Is(err, ErrSpeakerExists) {
		t.Errorf("CreateSpeaker(duplicate) error = %v, want ErrSpeakerExists", err)
	}

	for _, name := range []string{"a.wav", "b.wav"} {
		sample := SpeakerSample{SpeakerID: sp.ID, OriginalFilename: name, StoredFilename: name,
			MimeType: "audio/wav", Size: 4, StoragePath: "speakers/" + sp.ID + "/" + name, Blake3Hash: "h-" + name}
		if err := s.AddSpeakerSample(ctx, &sample); err != nil {
			t.Fatalf("AddSpeakerSample() error = %v", err)
		}
	}

	if err := s.SetSpeakerStatus(ctx, sp.ID, SpeakerFailed, map[string]any{"enrollmentError": "409"}); err != nil {
		t.Fatal(err)
	}
	if err := s.SetSpeakerStatus(ctx, sp.ID, SpeakerActive, map[string]any{"enrolledAt": "now"}); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetSpeaker(ctx, sp.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != SpeakerActive || len(got.Samples) != 2 || got.Samples[0].OriginalFilename != "a.wav" {
		t.Errorf("GetSpeaker() = %+v", got)
	}
	if got.Extra["enrollmentError"] != "409" || got.Extra["enrolledAt"] != "now" {
		t.Errorf("extra not merged: %v", got.Extra)
	}

	byName, err := s.FindSpeakerByName(ctx, "Lan Anh")
	if err != nil || byName.ID != sp.ID {
		t.Errorf("FindSpeakerByName() = %+v, %v", byName, err)
	}

	other := Speaker{Name: "Minh", Status: SpeakerEnrolling}
	if err := s.CreateSpeaker(ctx, &other); err != nil {
		t.Fatal(err)
	}
	if err := s.RenameSpeaker(ctx, other.ID, "Lan Anh"); !errors.Is(err, ErrSpeakerExists) {
		t.Errorf("RenameSpeaker(taken) error = %v, want ErrSpeakerExists", err)
	}
	if err := s.RenameSpeaker(ctx, "missing", "X"); !errors.Is(err, ErrNotFound) {
		t.Errorf("RenameSpeaker(missing) error = %v, want ErrNotFound", err)
	}

	names, err := s.ActiveSpeakerNames(ctx)
	if err != nil || len(names) != 1 || names[0] != "Lan Anh" {
		t.Errorf("ActiveSpeakerNames() = %v, %v", names, err)
	}

	list, err := s.ListSpeakers(ctx)
	if err != nil || len(list) != 2 {
		t.Fatalf("ListSpeakers() = %+v, %v", list, err)
	}
	for _, l := range list {
		want := 0
		if l.ID == sp.ID {
			want = 2
		}
		if len(l.Samples) != want {
			t.Errorf("speaker %s samples = %d, want %d", l.Name, len(l.Samples), want)
		}
	}

	if err := s.DeleteSpeaker(ctx, sp.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetSpeaker(ctx, sp.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetSpeaker(deleted) error = %v", err)
	}
	if err := s.DeleteSpeaker(ctx, sp.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteSpeaker(twice) error = %v", err)
	}
}
