package meeting

import (
	"github.com/nguyentantai21042004/meetflow/internal/config"
	"github.com/nguyentantai21042004/meetflow/internal/dispatcher"
	"github.com/nguyentantai21042004/meetflow/internal/logger"
	"github.com/nguyentantai21042004/meetflow/internal/queue"
	"github.com/nguyentantai21042004/meetflow/internal/storage"
	"github.com/nguyentantai21042004/meetflow/internal/store"
)

type implService struct {
	store      store.Store
	queue      queue.Queue
	storage    storage.Storage
	dispatcher dispatcher.Dispatcher

	token       string
	triggerOpts queue.Options
	logger      logger.Logger
}

// Deps groups the collaborators of a Service.
type Deps struct {
	Store      store.Store
	Queue      queue.Queue
	Storage    storage.Storage
	Dispatcher dispatcher.Dispatcher
}

// New creates a new meeting Service instance
func New(cfg *config.Config, deps Deps, log logger.Logger) Service {
	opts := queue.OptionsFromConfig(cfg.Retry.MergeTrigger)
	opts.RemoveOnComplete = true

	return &implService{
		store:       deps.Store,
		queue:       deps.Queue,
		storage:     deps.Storage,
		dispatcher:  deps.Dispatcher,
		token:       cfg.Server.CallbackToken,
		triggerOpts: opts,
		logger:      log,
	}
}
