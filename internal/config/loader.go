package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Load reads a YAML or TOML file (chosen by extension), applies MEETFLOW_*
// environment overrides and validates the result. An empty path yields the
// defaults plus environment overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".toml":
			if _, err := toml.DecodeFile(path, cfg); err != nil {
				return nil, fmt.Errorf("decode toml config: %w", err)
			}
		default:
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("read config: %w", err)
			}
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("decode yaml config: %w", err)
			}
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("MEETFLOW_SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("MEETFLOW_CALLBACK_BASE_URL"); v != "" {
		cfg.Server.CallbackBaseURL = v
	}
	if v := os.Getenv("MEETFLOW_CALLBACK_TOKEN"); v != "" {
		cfg.Server.CallbackToken = v
	}
	if v := os.Getenv("MEETFLOW_UPLOAD_DIR"); v != "" {
		cfg.Server.UploadDir = v
	}
	if v := os.Getenv("MEETFLOW_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("MEETFLOW_TRANSCRIPTION_URL"); v != "" {
		cfg.Transcription.URL = v
	}
	if v := os.Getenv("MEETFLOW_SERVICE_TOKEN"); v != "" {
		cfg.Transcription.ServiceToken = v
	}
	if v := os.Getenv("MEETFLOW_LANGUAGE"); v != "" {
		cfg.Transcription.Language = v
	}
	if v := os.Getenv("MEETFLOW_WORKER_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("MEETFLOW_WORKER_CONCURRENCY: %w", err)
		}
		cfg.Workers.Concurrency = n
	}
	if v := os.Getenv("MEETFLOW_GEMINI_API_KEYS"); v != "" {
		var keys []string
		for _, k := range strings.Split(v, ",") {
			if k = strings.TrimSpace(k); k != "" {
				keys = append(keys, k)
			}
		}
		cfg.Summary.Gemini.APIKeys = keys
	}
	if v := os.Getenv("MEETFLOW_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	return nil
}
