package dispatcher

import (
	"github.com/nguyentantai21042004/meetflow/internal/audio"
	"github.com/nguyentantai21042004/meetflow/internal/config"
	"github.com/nguyentantai21042004/meetflow/internal/logger"
	"github.com/nguyentantai21042004/meetflow/internal/planner"
	"github.com/nguyentantai21042004/meetflow/internal/queue"
	"github.com/nguyentantai21042004/meetflow/internal/storage"
	"github.com/nguyentantai21042004/meetflow/internal/store"
	"github.com/nguyentantai21042004/meetflow/internal/transcription"
)

type implDispatcher struct {
	store   store.Store
	queue   queue.Queue
	storage storage.Storage
	audio   audio.Tool
	client  transcription.Client
	planner planner.Options

	callbackBase string
	workers      int
	health       config.HealthRetry
	segmentOpts  queue.Options
	mergeOpts    queue.Options

	logger logger.Logger
}

// Deps groups the collaborators of a Dispatcher.
type Deps struct {
	Store   store.Store
	Queue   queue.Queue
	Storage storage.Storage
	Audio   audio.Tool
	Client  transcription.Client
}

// New creates a new Dispatcher instance
func New(cfg *config.Config, deps Deps, log logger.Logger) Dispatcher {
	return &implDispatcher{
		store:        deps.Store,
		queue:        deps.Queue,
		storage:      deps.Storage,
		audio:        deps.Audio,
		client:       deps.Client,
		planner:      planner.FromConfig(cfg.Segmentation),
		callbackBase: cfg.Server.CallbackBaseURL,
		workers:      cfg.Workers.Concurrency,
		health:       cfg.Retry.DispatchHealth,
		segmentOpts:  queue.OptionsFromConfig(cfg.Retry.SegmentJob),
		mergeOpts:    queue.OptionsFromConfig(cfg.Retry.MergeInitial),
		logger:       log,
	}
}
