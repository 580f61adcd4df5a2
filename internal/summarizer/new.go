package summarizer

import (
	"context"
	"fmt"
	"sync"

	"github.com/nguyentantai21042004/meetflow/internal/config"
	"github.com/nguyentantai21042004/meetflow/internal/logger"
	"github.com/nguyentantai21042004/meetflow/internal/transcription"
)

type implService struct {
	client transcription.Client
	logger logger.Logger
}

// generateFunc sends one prompt with one API key.
type generateFunc func(ctx context.Context, apiKey, model, prompt string) (string, error)

type implGemini struct {
	mu         sync.Mutex
	apiKeys    []string
	currentKey int
	model      string
	generate   generateFunc
	logger     logger.Logger
}

// New creates a new Summarizer instance for the configured backend.
func New(cfg config.SummaryConfig, client transcription.Client, log logger.Logger) (Summarizer, error) {
	switch cfg.Backend {
	case "", config.SummaryBackendService:
		if client == nil {
			return nil, fmt.Errorf("service summarizer needs a transcription client")
		}
		return NewService(client, log), nil
	case config.SummaryBackendGemini:
		return NewGemini(cfg.Gemini, log)
	default:
		return nil, fmt.Errorf("unknown summary backend %q", cfg.Backend)
	}
}

// NewService creates a Summarizer backed by the transcription service's
// /generate-summary endpoint.
func NewService(client transcription.Client, log logger.Logger) Summarizer {
	return &implService{client: client, logger: log}
}

// NewGemini creates a Summarizer that rotates through the supplied Gemini API keys.
func NewGemini(cfg config.GeminiConfig, log logger.Logger) (Summarizer, error) {
	if len(cfg.APIKeys) == 0 {
		return nil, fmt.Errorf("gemini summarizer needs at least one API key")
	}
	model := cfg.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}
	return &implGemini{
		apiKeys:  cfg.APIKeys,
		model:    model,
		generate: generateContent,
		logger:   log,
	}, nil
}
