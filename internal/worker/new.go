package worker

import (
	"github.com/nguyentantai21042004/meetflow/internal/config"
	"github.com/nguyentantai21042004/meetflow/internal/logger"
	"github.com/nguyentantai21042004/meetflow/internal/merger"
	"github.com/nguyentantai21042004/meetflow/internal/store"
	"github.com/nguyentantai21042004/meetflow/internal/summarizer"
	"github.com/nguyentantai21042004/meetflow/internal/transcription"
)

type implWorker struct {
	store      store.Store
	client     transcription.Client
	merger     merger.Merger
	summarizer summarizer.Summarizer

	callbackBase string
	health       config.HealthRetry
	logger       logger.Logger
}

// Deps groups the collaborators of a Worker.
type Deps struct {
	Store      store.Store
	Client     transcription.Client
	Merger     merger.Merger
	Summarizer summarizer.Summarizer
}

// New creates a new Worker instance
func New(cfg *config.Config, deps Deps, log logger.Logger) Worker {
	return &implWorker{
		store:        deps.Store,
		client:       deps.Client,
		merger:       deps.Merger,
		summarizer:   deps.Summarizer,
		callbackBase: cfg.Server.CallbackBaseURL,
		health:       cfg.Retry.WorkerHealth,
		logger:       log,
	}
}
