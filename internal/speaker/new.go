package speaker

import (
	"github.com/nguyentantai21042004/meetflow/internal/config"
	"github.com/nguyentantai21042004/meetflow/internal/logger"
	"github.com/nguyentantai21042004/meetflow/internal/storage"
	"github.com/nguyentantai21042004/meetflow/internal/store"
	"github.com/nguyentantai21042004/meetflow/internal/transcription"
)

type implService struct {
	store   store.Store
	storage storage.Storage
	client  transcription.Client

	token  string
	logger logger.Logger
}

// Deps groups the collaborators of a Service.
type Deps struct {
	Store   store.Store
	Storage storage.Storage
	Client  transcription.Client
}

// New creates a new speaker Service instance
func New(cfg *config.Config, deps Deps, log logger.Logger) Service {
	return &implService{
		store:   deps.Store,
		storage: deps.Storage,
		client:  deps.Client,
		token:   cfg.Server.CallbackToken,
		logger:  log,
	}
}
