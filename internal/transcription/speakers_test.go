package transcription

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
)

func TestEnrollSpeaker(t *testing.T) {
	var got EnrollRequest
	var token string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/enroll-speaker" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		token = r.Header.Get(ServiceTokenHeader)
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"status":"enrolled"}`))
	}))

	err := c.EnrollSpeaker(context.Background(), EnrollRequest{
		SpeakerName: "Lan",
		SamplePaths: []string{`C:\data\speakers\1\a.wav`},
		Force:       true,
	})
	if err != nil {
		t.Fatalf("EnrollSpeaker() error = %v", err)
	}
	if token != "service-secret" {
		t.Errorf("token = %q", token)
	}
	if got.SpeakerName != "Lan" || !got.Force || len(got.SamplePaths) != 1 || got.SamplePaths[0] != "C:/data/speakers/1/a.wav" {
		t.Errorf("request = %+v", got)
	}
}

func TestEnrollSpeakerRejected(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"no voice found"}`, http.StatusConflict)
	}))

	err := c.EnrollSpeaker(context.Background(), EnrollRequest{SpeakerName: "Lan", SamplePaths: []string{"/a.wav"}})
	if !errors.Is(err, ErrEnrollmentRejected) {
		t.Fatalf("error = %v, want ErrEnrollmentRejected", err)
	}
}

func TestListEnrolledSpeakers(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/speakers/list" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		w.Write([]byte(`{"speakers":["Lan","Minh"]}`))
	}))

	names, err := c.ListEnrolledSpeakers(context.Background())
	if err != nil {
		t.Fatalf("ListEnrolledSpeakers() error = %v", err)
	}
	if len(names) != 2 || names[0] != "Lan" || names[1] != "Minh" {
		t.Errorf("names = %v", names)
	}
}

func TestRemoveEnrolledSpeaker(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{name: "removed", status: http.StatusOK},
		{name: "unknown", status: http.StatusNotFound, wantErr: ErrSpeakerNotEnrolled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var path string
			c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodDelete {
					t.Errorf("method = %s", r.Method)
				}
				path = r.URL.EscapedPath()
				w.WriteHeader(tt.status)
			}))

			err := c.RemoveEnrolledSpeaker(context.Background(), "Nguyễn Lan")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if path != "/speakers/Nguy%E1%BB%85n%20Lan" {
				t.Errorf("path = %q", path)
			}
		})
	}
}
