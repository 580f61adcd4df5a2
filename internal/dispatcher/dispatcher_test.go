package dispatcher

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nguyentantai21042004/meetflow/internal/config"
	"github.com/nguyentantai21042004/meetflow/internal/logger"
	"github.com/nguyentantai21042004/meetflow/internal/queue"
	"github.com/nguyentantai21042004/meetflow/internal/storage"
	"github.com/nguyentantai21042004/meetflow/internal/store"
	"github.com/nguyentantai21042004/meetflow/internal/transcription"
	"github.com/nguyentantai21042004/meetflow/internal/worker"
)

type clip struct {
	out             string
	start, duration float64
}

type fakeAudio struct {
	duration float64
	probeErr error
	clipErr  error
	clips    []clip
}

func (f *fakeAudio) Probe(context.Context, string) (float64, error) { return f.duration, f.probeErr }

func (f *fakeAudio) ExtractClip(_ context.Context, _, out string, start, duration float64) error {
	f.clips = append(f.clips, clip{out: out, start: start, duration: duration})
	return f.clipErr
}

func (f *fakeAudio) Check() error { return nil }

type fakeClient struct {
	transcription.Client
	healthy   bool
	processed []transcription.ProcessRequest
}

func (f *fakeClient) WaitHealthy(context.Context, config.HealthRetry) error {
	if !f.healthy {
		return transcription.ErrUnhealthy
	}
	return nil
}

func (f *fakeClient) Process(_ context.Context, req transcription.ProcessRequest) error {
	f.processed = append(f.processed, req)
	return nil
}

type fixture struct {
	store  store.Store
	queue  queue.Queue
	audio  *fakeAudio
	client *fakeClient
	disp   Dispatcher
}

func newFixture(t *testing.T, workers int) *fixture {
	t.Helper()
	dir := t.TempDir()
	ctx := context.Background()

	db, err := store.OpenDB(filepath.Join(dir, "meetflow.db"))
	if err != nil {
		t.Fatal(err)
	}
	st, err := store.New(ctx, db)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })
	q, err := queue.New(ctx, db, 10*time.Millisecond, logger.Nop())
	if err != nil {
		t.Fatal(err)
	}
	fs, err := storage.New(filepath.Join(dir, "uploads"), logger.Nop())
	if err != nil {
		t.Fatal(err)
	}

	cfg := &config.Config{Workers: config.WorkersConfig{Concurrency: workers}}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}

	f := &fixture{store: st, queue: q, audio: &fakeAudio{}, client: &fakeClient{healthy: true}}
	f.disp = New(cfg, Deps{Store: st, Queue: q, Storage: fs, Audio: f.audio, Client: f.client}, logger.Nop())
	return f
}

func (f *fixture) meeting(t *testing.T) store.Meeting {
	t.Helper()
	m := store.Meeting{Title: "sync", Status: store.MeetingUploaded}
	if err := f.store.CreateMeeting(context.Background(), &m); err != nil {
		t.Fatal(err)
	}
	return m
}

func TestDispatchShortFile(t *testing.T) {
	f := newFixture(t, 8)
	ctx := context.Background()
	m := f.meeting(t)
	f.audio.duration = 300

	res, err := f.disp.Dispatch(ctx, m.ID, "/uploads/a.mp3")
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if res.Mode != ModeDirect || res.Segments != 0 {
		t.Errorf("Dispatch() = %+v", res)
	}

	if len(f.client.processed) != 1 {
		t.Fatalf("Process calls = %d", len(f.client.processed))
	}
	req := f.client.processed[0]
	if req.CallbackURL != "http://localhost:3333/meetings/"+m.ID+"/callback" || req.AudioPath != "/uploads/a.mp3" {
		t.Errorf("request = %+v", req)
	}

	segs, _ := f.store.ListSegments(ctx, m.ID)
	counts, _ := f.queue.Counts(ctx)
	if len(segs) != 0 || counts[queue.StateWaiting] != 0 || len(f.audio.clips) != 0 {
		t.Errorf("short path created segments=%d jobs=%v clips=%d", len(segs), counts, len(f.audio.clips))
	}

	got, _ := f.store.GetMeeting(ctx, m.ID)
	if got.Status != store.MeetingProcessing {
		t.Errorf("status = %s", got.Status)
	}
}

func TestDispatchShortFileUnhealthy(t *testing.T) {
	f := newFixture(t, 8)
	m := f.meeting(t)
	f.audio.duration = 120
	f.client.healthy = false

	if _, err := f.disp.Dispatch(context.Background(), m.ID, "/a.wav"); !errors.Is(err, transcription.ErrUnhealthy) {
		t.Fatalf("Dispatch() error = %v", err)
	}
	got, _ := f.store.GetMeeting(context.Background(), m.ID)
	if got.Status != store.MeetingFailed || !strings.Contains(got.FailureReason(), "unavailable") {
		t.Errorf("meeting = %+v", got)
	}
}

func TestDispatchSegmented(t *testing.T) {
	f := newFixture(t, 4)
	ctx := context.Background()
	m := f.meeting(t)
	f.audio.duration = 1800

	res, err := f.disp.Dispatch(ctx, m.ID, "/uploads/long.m4a")
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if res.Mode != ModeSegmented || res.Segments != 4 {
		t.Fatalf("Dispatch() = %+v", res)
	}

	segs, _ := f.store.ListSegments(ctx, m.ID)
	if len(segs) != 4 {
		t.Fatalf("segments = %d", len(segs))
	}
	for i, s := range segs {
		if s.Index != i || s.StartTime != float64(i*450) || s.EndTime != float64((i+1)*450) || s.Status != store.SegmentPending {
			t.Errorf("segment %d = %+v", i, s)
		}

		job, err := f.queue.Get(ctx, worker.SegmentKey(m.ID, i))
		if err != nil {
			t.Fatalf("segment job %d: %v", i, err)
		}
		var p worker.SegmentPayload
		if err := job.Decode(&p); err != nil {
			t.Fatal(err)
		}
		if p.SegmentID != s.ID || p.SegmentStartTime != s.StartTime || !filepath.IsAbs(p.SegmentPath) {
			t.Errorf("payload %d = %+v", i, p)
		}
	}

	// padded extraction windows
	wantClips := []clip{{start: 0, duration: 450}, {start: 420, duration: 480}, {start: 870, duration: 480}, {start: 1320, duration: 480}}
	for i, c := range f.audio.clips {
		if c.start != wantClips[i].start || c.duration != wantClips[i].duration {
			t.Errorf("clip %d = %+v, want %+v", i, c, wantClips[i])
		}
	}

	merge, err := f.queue.Get(ctx, worker.MergeKey(m.ID))
	if err != nil {
		t.Fatalf("merge job: %v", err)
	}
	if merge.Options.Attempts != 10 || merge.Options.Delay != 5*time.Second {
		t.Errorf("merge options = %+v", merge.Options)
	}

	got, _ := f.store.GetMeeting(ctx, m.ID)
	if got.TotalSegments != 4 || got.CompletedSegments != 0 || got.Status != store.MeetingProcessing {
		t.Errorf("meeting = %+v", got)
	}
}

func TestDispatchFailures(t *testing.T) {
	tests := []struct {
		name  string
		setup func(f *fakeAudio)
	}{
		{"probe", func(f *fakeAudio) { f.probeErr = errors.New("invalid data found") }},
		{"extract", func(f *fakeAudio) { f.duration = 1800; f.clipErr = errors.New("ffmpeg exit 1") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, 4)
			m := f.meeting(t)
			tt.setup(f.audio)

			if _, err := f.disp.Dispatch(context.Background(), m.ID, "/a.wav"); err == nil {
				t.Fatal("expected error")
			}
			got, _ := f.store.GetMeeting(context.Background(), m.ID)
			if got.Status != store.MeetingFailed || got.FailureReason() == "" {
				t.Errorf("meeting = %+v", got)
			}
		})
	}
}

func TestDispatchMissingMeeting(t *testing.T) {
	f := newFixture(t, 4)
	if _, err := f.disp.Dispatch(context.Background(), "nope", "/a.wav"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Dispatch() error = %v, want ErrNotFound", err)
	}
}
