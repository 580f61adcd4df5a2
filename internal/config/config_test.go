package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:    "empty config gets defaults",
			config:  Config{},
			wantErr: false,
		},
		{
			name: "inverted segmentation bounds",
			config: Config{
				Segmentation: SegmentationConfig{Min: 400, IdealMin: 300},
			},
			wantErr: true,
		},
		{
			name: "parallel merges",
			config: Config{
				Workers: WorkersConfig{MergeConcurrency: 2},
			},
			wantErr: true,
		},
		{
			name: "negative merge concurrency",
			config: Config{
				Workers: WorkersConfig{MergeConcurrency: -1},
			},
			wantErr: true,
		},
		{
			name: "unknown backoff",
			config: Config{
				Retry: RetryConfig{SegmentJob: JobRetry{Backoff: "linear"}},
			},
			wantErr: true,
		},
		{
			name: "gemini without keys",
			config: Config{
				Summary: SummaryConfig{Backend: SummaryBackendGemini},
			},
			wantErr: true,
		},
		{
			name: "gemini with keys",
			config: Config{
				Summary: SummaryConfig{
					Backend: SummaryBackendGemini,
					Gemini:  GeminiConfig{APIKeys: []string{"k1"}},
				},
			},
			wantErr: false,
		},
		{
			name: "unknown summary backend",
			config: Config{
				Summary: SummaryConfig{Backend: "openai"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateDefaults(t *testing.T) {
	var cfg Config
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	if cfg.Segmentation.ShortFileThreshold != 600 || cfg.Segmentation.Overlap != 30 {
		t.Errorf("segmentation defaults = %+v", cfg.Segmentation)
	}
	if cfg.Workers.Concurrency != 8 || cfg.Workers.MergeConcurrency != 1 {
		t.Errorf("worker defaults = %+v", cfg.Workers)
	}
	if cfg.Retry.DispatchHealth.Attempts != 5 || cfg.Retry.DispatchHealth.Max != 10*time.Second {
		t.Errorf("dispatch health defaults = %+v", cfg.Retry.DispatchHealth)
	}
	if cfg.Retry.MergeInitial.Attempts != 10 || cfg.Retry.MergeInitial.Delay != 5*time.Second {
		t.Errorf("merge defaults = %+v", cfg.Retry.MergeInitial)
	}
	if cfg.Transcription.Language != "vi" {
		t.Errorf("Language = %q, want vi", cfg.Transcription.Language)
	}
	if cfg.Transcription.EnrollTimeout != 10*time.Minute {
		t.Errorf("EnrollTimeout = %v, want 10m", cfg.Transcription.EnrollTimeout)
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  callback_base_url: "http://api.internal:3333/"
  callback_token: "secret"

transcription:
  url: "http://asr:5000"
  segment_timeout: 5m

segmentation:
  overlap: 15

workers:
  concurrency: 4

logging:
  level: "debug"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.CallbackBaseURL != "http://api.internal:3333" {
		t.Errorf("CallbackBaseURL = %v", cfg.Server.CallbackBaseURL)
	}
	if cfg.Transcription.SegmentTimeout != 5*time.Minute {
		t.Errorf("SegmentTimeout = %v, want 5m", cfg.Transcription.SegmentTimeout)
	}
	if cfg.Segmentation.Overlap != 15 {
		t.Errorf("Overlap = %v, want 15", cfg.Segmentation.Overlap)
	}
	if cfg.Workers.Concurrency != 4 {
		t.Errorf("Concurrency = %v, want 4", cfg.Workers.Concurrency)
	}
}

func TestLoadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[server]
callback_token = "secret"

[summary]
backend = "gemini"

[summary.gemini]
api_keys = ["a", "b"]

[retry.merge_initial]
attempts = 12
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Summary.Backend != SummaryBackendGemini || len(cfg.Summary.Gemini.APIKeys) != 2 {
		t.Errorf("summary = %+v", cfg.Summary)
	}
	if cfg.Retry.MergeInitial.Attempts != 12 || cfg.Retry.MergeInitial.Backoff != "exponential" {
		t.Errorf("merge_initial = %+v", cfg.Retry.MergeInitial)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("MEETFLOW_CALLBACK_TOKEN", "from-env")
	t.Setenv("MEETFLOW_WORKER_CONCURRENCY", "2")
	t.Setenv("MEETFLOW_GEMINI_API_KEYS", "k1, k2,,")
	t.Setenv("MEETFLOW_SERVICE_TOKEN", "svc")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.CallbackToken != "from-env" {
		t.Errorf("CallbackToken = %q", cfg.Server.CallbackToken)
	}
	if cfg.Workers.Concurrency != 2 {
		t.Errorf("Concurrency = %d", cfg.Workers.Concurrency)
	}
	if cfg.Transcription.ServiceToken != "svc" {
		t.Errorf("ServiceToken = %q", cfg.Transcription.ServiceToken)
	}
	if len(cfg.Summary.Gemini.APIKeys) != 2 || cfg.Summary.Gemini.APIKeys[1] != "k2" {
		t.Errorf("APIKeys = %v", cfg.Summary.Gemini.APIKeys)
	}
}

func TestLoadInvalidFile(t *testing.T) {
	_, err := Load("nonexistent.yaml")
	if err == nil {
		t.Error("Load() should return error for nonexistent file")
	}
}

func TestLoadBadEnv(t *testing.T) {
	t.Setenv("MEETFLOW_WORKER_CONCURRENCY", "many")
	if _, err := Load(""); err == nil {
		t.Error("Load() should reject a non-numeric concurrency")
	}
}
