package transcription

import (
	"context"
	"net/http"
	"time"

	"github.com/nguyentantai21042004/meetflow/internal/config"
	"github.com/nguyentantai21042004/meetflow/internal/logger"
)

type implClient struct {
	cfg    config.TranscriptionConfig
	http   *http.Client
	logger logger.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

// New creates a new Client instance
func New(cfg config.TranscriptionConfig, log logger.Logger) Client {
	return &implClient{
		cfg:    cfg,
		http:   &http.Client{},
		logger: log,
		sleep:  sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
