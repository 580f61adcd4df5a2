package config

import (
	"fmt"
	"strings"
	"time"
)

type Config struct {
	Server        ServerConfig        `yaml:"server" toml:"server"`
	Database      DatabaseConfig      `yaml:"database" toml:"database"`
	Transcription TranscriptionConfig `yaml:"transcription" toml:"transcription"`
	Segmentation  SegmentationConfig  `yaml:"segmentation" toml:"segmentation"`
	Workers       WorkersConfig       `yaml:"workers" toml:"workers"`
	Retry         RetryConfig         `yaml:"retry" toml:"retry"`
	Summary       SummaryConfig       `yaml:"summary" toml:"summary"`
	Watcher       WatcherConfig       `yaml:"watcher" toml:"watcher"`
	FFmpeg        FFmpegConfig        `yaml:"ffmpeg" toml:"ffmpeg"`
	Logging       LoggingConfig       `yaml:"logging" toml:"logging"`
}

type ServerConfig struct {
	Addr            string `yaml:"addr" toml:"addr"`
	CallbackBaseURL string `yaml:"callback_base_url" toml:"callback_base_url"`
	CallbackToken   string `yaml:"callback_token" toml:"callback_token"`
	UploadDir       string `yaml:"upload_dir" toml:"upload_dir"`
	MaxUploadMB     int64  `yaml:"max_upload_mb" toml:"max_upload_mb"`
}

type DatabaseConfig struct {
	Path string `yaml:"path" toml:"path"`
}

type TranscriptionConfig struct {
	URL            string        `yaml:"url" toml:"url"`
	Language       string        `yaml:"language" toml:"language"`
	HealthTimeout  time.Duration `yaml:"health_timeout" toml:"health_timeout"`
	ProcessTimeout time.Duration `yaml:"process_timeout" toml:"process_timeout"`
	SegmentTimeout time.Duration `yaml:"segment_timeout" toml:"segment_timeout"`
	SummaryTimeout time.Duration `yaml:"summary_timeout" toml:"summary_timeout"`
	EnrollTimeout  time.Duration `yaml:"enroll_timeout" toml:"enroll_timeout"`
	// ServiceToken is sent as x-service-token on every request.
	ServiceToken   string        `yaml:"service_token" toml:"service_token"`
}

// SegmentationConfig holds durations in seconds.
type SegmentationConfig struct {
	ShortFileThreshold float64 `yaml:"short_file_threshold" toml:"short_file_threshold"`
	Min                float64 `yaml:"min" toml:"min"`
	IdealMin           float64 `yaml:"ideal_min" toml:"ideal_min"`
	IdealMax           float64 `yaml:"ideal_max" toml:"ideal_max"`
	Max                float64 `yaml:"max" toml:"max"`
	Overlap            float64 `yaml:"overlap" toml:"overlap"`
	RoundTo            float64 `yaml:"round_to" toml:"round_to"`
}

type WorkersConfig struct {
	Concurrency      int           `yaml:"concurrency" toml:"concurrency"`
	MergeConcurrency int           `yaml:"merge_concurrency" toml:"merge_concurrency"`
	PollInterval     time.Duration `yaml:"poll_interval" toml:"poll_interval"`
}

// HealthRetry is a capped exponential wait: base, 2*base, 4*base ... up to Max.
type HealthRetry struct {
	Attempts int           `yaml:"attempts" toml:"attempts"`
	Base     time.Duration `yaml:"base" toml:"base"`
	Max      time.Duration `yaml:"max" toml:"max"`
}

type JobRetry struct {
	Attempts int           `yaml:"attempts" toml:"attempts"`
	Backoff  string        `yaml:"backoff" toml:"backoff"`
	Delay    time.Duration `yaml:"delay" toml:"delay"`
}

type RetryConfig struct {
	DispatchHealth HealthRetry `yaml:"dispatch_health" toml:"dispatch_health"`
	WorkerHealth   HealthRetry `yaml:"worker_health" toml:"worker_health"`
	SegmentJob     JobRetry    `yaml:"segment_job" toml:"segment_job"`
	MergeInitial   JobRetry    `yaml:"merge_initial" toml:"merge_initial"`
	MergeTrigger   JobRetry    `yaml:"merge_trigger" toml:"merge_trigger"`
}

type SummaryConfig struct {
	Backend string       `yaml:"backend" toml:"backend"`
	Gemini  GeminiConfig `yaml:"gemini" toml:"gemini"`
}

type GeminiConfig struct {
	Model   string   `yaml:"model" toml:"model"`
	APIKeys []string `yaml:"api_keys" toml:"api_keys"`
}

type WatcherConfig struct {
	Enabled bool   `yaml:"enabled" toml:"enabled"`
	Inbox   string `yaml:"inbox" toml:"inbox"`
}

type FFmpegConfig struct {
	FFmpeg     string `yaml:"ffmpeg" toml:"ffmpeg"`
	FFprobe    string `yaml:"ffprobe" toml:"ffprobe"`
	SampleRate int    `yaml:"sample_rate" toml:"sample_rate"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

const (
	SummaryBackendService = "service"
	SummaryBackendGemini  = "gemini"
)

// Validate checks required fields and fills in defaults.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		c.Server.Addr = ":3333"
	}
	if c.Server.CallbackBaseURL == "" {
		c.Server.CallbackBaseURL = "http://localhost:3333"
	}
	c.Server.CallbackBaseURL = strings.TrimRight(c.Server.CallbackBaseURL, "/")
	if c.Server.UploadDir == "" {
		c.Server.UploadDir = "uploads"
	}
	if c.Server.MaxUploadMB == 0 {
		c.Server.MaxUploadMB = 512
	}
	if c.Database.Path == "" {
		c.Database.Path = "data/meetflow.db"
	}

	if c.Transcription.URL == "" {
		c.Transcription.URL = "http://localhost:5000"
	}
	c.Transcription.URL = strings.TrimRight(c.Transcription.URL, "/")
	if c.Transcription.Language == "" {
		c.Transcription.Language = "vi"
	}
	if c.Transcription.HealthTimeout == 0 {
		c.Transcription.HealthTimeout = 5 * time.Second
	}
	if c.Transcription.ProcessTimeout == 0 {
		c.Transcription.ProcessTimeout = 60 * time.Second
	}
	if c.Transcription.SegmentTimeout == 0 {
		c.Transcription.SegmentTimeout = 10 * time.Minute
	}
	if c.Transcription.SummaryTimeout == 0 {
		c.Transcription.SummaryTimeout = 10 * time.Minute
	}
	if c.Transcription.EnrollTimeout == 0 {
		c.Transcription.EnrollTimeout = 10 * time.Minute
	}

	s := &c.Segmentation
	if s.ShortFileThreshold == 0 {
		s.ShortFileThreshold = 600
	}
	if s.Min == 0 {
		s.Min = 120
	}
	if s.IdealMin == 0 {
		s.IdealMin = 300
	}
	if s.IdealMax == 0 {
		s.IdealMax = 600
	}
	if s.Max == 0 {
		s.Max = 900
	}
	if s.Overlap == 0 {
		s.Overlap = 30
	}
	if s.RoundTo == 0 {
		s.RoundTo = 30
	}
	if !(s.Min <= s.IdealMin && s.IdealMin <= s.IdealMax && s.IdealMax <= s.Max) {
		return fmt.Errorf("segmentation: need min <= ideal_min <= ideal_max <= max")
	}
	if s.Overlap < 0 {
		return fmt.Errorf("segmentation.overlap must not be negative")
	}

	if c.Workers.Concurrency == 0 {
		c.Workers.Concurrency = 8
	}
	if c.Workers.MergeConcurrency == 0 {
		c.Workers.MergeConcurrency = 1
	}
	if c.Workers.PollInterval == 0 {
		c.Workers.PollInterval = 500 * time.Millisecond
	}
	if c.Workers.Concurrency < 1 {
		return fmt.Errorf("workers: concurrency must be at least 1")
	}
	// merges are serialized across all meetings
	if c.Workers.MergeConcurrency != 1 {
		return fmt.Errorf("workers.merge_concurrency must be 1, got %d", c.Workers.MergeConcurrency)
	}

	defaultHealth(&c.Retry.DispatchHealth, 5, time.Second, 10*time.Second)
	defaultHealth(&c.Retry.WorkerHealth, 3, time.Second, 5*time.Second)
	defaultJob(&c.Retry.SegmentJob, 3, 2*time.Second)
	defaultJob(&c.Retry.MergeInitial, 10, 5*time.Second)
	defaultJob(&c.Retry.MergeTrigger, 3, 2*time.Second)
	for name, jr := range map[string]JobRetry{
		"segment_job":   c.Retry.SegmentJob,
		"merge_initial": c.Retry.MergeInitial,
		"merge_trigger": c.Retry.MergeTrigger,
	} {
		if jr.Backoff != "exponential" && jr.Backoff != "fixed" {
			return fmt.Errorf("retry.%s.backoff must be exponential or fixed, got %q", name, jr.Backoff)
		}
	}

	if c.Summary.Backend == "" {
		c.Summary.Backend = SummaryBackendService
	}
	switch c.Summary.Backend {
	case SummaryBackendService:
	case SummaryBackendGemini:
		if len(c.Summary.Gemini.APIKeys) == 0 {
			return fmt.Errorf("summary.gemini.api_keys is required for the gemini backend")
		}
	default:
		return fmt.Errorf("summary.backend must be %q or %q", SummaryBackendService, SummaryBackendGemini)
	}
	if c.Summary.Gemini.Model == "" {
		c.Summary.Gemini.Model = "gemini-2.5-flash"
	}

	if c.Watcher.Inbox == "" {
		c.Watcher.Inbox = "data/inbox"
	}
	if c.FFmpeg.FFmpeg == "" {
		c.FFmpeg.FFmpeg = "ffmpeg"
	}
	if c.FFmpeg.FFprobe == "" {
		c.FFmpeg.FFprobe = "ffprobe"
	}
	if c.FFmpeg.SampleRate == 0 {
		c.FFmpeg.SampleRate = 16000
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}

	return nil
}

func defaultHealth(h *HealthRetry, attempts int, base, max time.Duration) {
	if h.Attempts == 0 {
		h.Attempts = attempts
	}
	if h.Base == 0 {
		h.Base = base
	}
	if h.Max == 0 {
		h.Max = max
	}
}

func defaultJob(j *JobRetry, attempts int, delay time.Duration) {
	if j.Attempts == 0 {
		j.Attempts = attempts
	}
	if j.Backoff == "" {
		j.Backoff = "exponential"
	}
	if j.Delay == 0 {
		j.Delay = delay
	}
}
