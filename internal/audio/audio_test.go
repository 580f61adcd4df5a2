package audio

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/nguyentantai21042004/meetflow/internal/config"
	"github.com/nguyentantai21042004/meetflow/internal/logger"
)

type fakeExecutor struct {
	out     string
	err     error
	missing map[string]bool
	calls   [][]string
}

func (f *fakeExecutor) Execute(ctx context.Context, name string, args ...string) (string, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	return f.out, f.err
}

func (f *fakeExecutor) ExecuteInDir(ctx context.Context, dir, name string, args ...string) (string, error) {
	return f.Execute(ctx, name, args...)
}

func (f *fakeExecutor) LookPath(name string) (string, error) {
	if f.missing[name] {
		return "", errors.New("not in PATH")
	}
	return "/usr/bin/" + name, nil
}

func testConfig() config.FFmpegConfig {
	return config.FFmpegConfig{FFmpeg: "ffmpeg", FFprobe: "ffprobe", SampleRate: 16000}
}

func TestProbe(t *testing.T) {
	tests := []struct {
		name    string
		out     string
		err     error
		want    float64
		wantErr error
	}{
		{"valid", "1834.512000\n", nil, 1834.512, nil},
		{"zero", "0.000\n", nil, 0, ErrInvalidDuration},
		{"not a number", "N/A\n", nil, 0, ErrInvalidDuration},
		{"ffprobe failure", "", errors.New("exit status 1"), 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := &fakeExecutor{out: tt.out, err: tt.err}
			tool := New(testConfig(), exec, logger.Nop())

			got, err := tool.Probe(context.Background(), "in.mp3")
			if tt.err != nil || tt.wantErr != nil {
				if err == nil {
					t.Fatal("Probe() expected error")
				}
				if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
					t.Errorf("Probe() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Probe() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Probe() = %v, want %v", got, tt.want)
			}
			if exec.calls[0][0] != "ffprobe" || exec.calls[0][len(exec.calls[0])-1] != "in.mp3" {
				t.Errorf("unexpected invocation %v", exec.calls[0])
			}
		})
	}
}

func TestExtractClip(t *testing.T) {
	exec := &fakeExecutor{}
	tool := New(testConfig(), exec, logger.Nop())

	if err := tool.ExtractClip(context.Background(), "in.m4a", "segment_0001.wav", 420, 480); err != nil {
		t.Fatalf("ExtractClip() error = %v", err)
	}

	got := strings.Join(exec.calls[0], " ")
	want := "ffmpeg -ss 420.000 -t 480.000 -i in.m4a -acodec pcm_s16le -ar 16000 -ac 1 -y segment_0001.wav"
	if got != want {
		t.Errorf("invocation = %q\nwant %q", got, want)
	}

	if err := tool.ExtractClip(context.Background(), "in.m4a", "x.wav", 0, 0); err == nil {
		t.Error("ExtractClip() should reject zero duration")
	}
}

func TestCheck(t *testing.T) {
	ok := New(testConfig(), &fakeExecutor{}, logger.Nop())
	if err := ok.Check(); err != nil {
		t.Errorf("Check() error = %v", err)
	}

	missing := New(testConfig(), &fakeExecutor{missing: map[string]bool{"ffprobe": true}}, logger.Nop())
	if err := missing.Check(); err == nil || !strings.Contains(err.Error(), "ffprobe") {
		t.Errorf("Check() error = %v, want ffprobe missing", err)
	}
}
