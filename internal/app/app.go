package app

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/nguyentantai21042004/meetflow/internal/audio"
	"github.com/nguyentantai21042004/meetflow/internal/config"
	"github.com/nguyentantai21042004/meetflow/internal/dispatcher"
	"github.com/nguyentantai21042004/meetflow/internal/httpapi"
	"github.com/nguyentantai21042004/meetflow/internal/logger"
	"github.com/nguyentantai21042004/meetflow/internal/meeting"
	"github.com/nguyentantai21042004/meetflow/internal/merger"
	"github.com/nguyentantai21042004/meetflow/internal/queue"
	"github.com/nguyentantai21042004/meetflow/internal/report"
	"github.com/nguyentantai21042004/meetflow/internal/speaker"
	"github.com/nguyentantai21042004/meetflow/internal/storage"
	"github.com/nguyentantai21042004/meetflow/internal/store"
	"github.com/nguyentantai21042004/meetflow/internal/summarizer"
	"github.com/nguyentantai21042004/meetflow/internal/transcription"
	"github.com/nguyentantai21042004/meetflow/internal/worker"
	"github.com/nguyentantai21042004/meetflow/pkg/executor"
)

// App wires every component against one database.
type App struct {
	Config *config.Config
	Logger logger.Logger

	Store      store.Store
	Queue      queue.Queue
	Storage    storage.Storage
	Audio      audio.Tool
	Client     transcription.Client
	Dispatcher dispatcher.Dispatcher
	Worker     worker.Worker
	Meeting    meeting.Service
	Speaker    speaker.Service
	Report     report.Writer
	Server     httpapi.Server
}

// New opens the database and builds the component graph. Close releases it.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	log := logger.NewWithWriter(os.Stdout, cfg.Logging.Level, cfg.Logging.Format)
	return NewWithLogger(ctx, cfg, log)
}

// NewWithLogger is New with a caller supplied logger.
func NewWithLogger(ctx context.Context, cfg *config.Config, log logger.Logger) (*App, error) {
	db, err := store.OpenDB(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	a, err := build(ctx, cfg, db, log)
	if err != nil {
		db.Close()
		return nil, err
	}
	return a, nil
}

func build(ctx context.Context, cfg *config.Config, db *sql.DB, log logger.Logger) (*App, error) {
	st, err := store.New(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}
	q, err := queue.New(ctx, db, cfg.Workers.PollInterval, log.Named("queue"))
	if err != nil {
		return nil, fmt.Errorf("init queue: %w", err)
	}
	files, err := storage.New(cfg.Server.UploadDir, log.Named("storage"))
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	tool := audio.New(cfg.FFmpeg, executor.New(), log.Named("audio"))
	client := transcription.New(cfg.Transcription, log.Named("transcription"))

	sum, err := summarizer.New(cfg.Summary, client, log.Named("summarizer"))
	if err != nil {
		return nil, fmt.Errorf("init summarizer: %w", err)
	}

	disp := dispatcher.New(cfg, dispatcher.Deps{
		Store:   st,
		Queue:   q,
		Storage: files,
		Audio:   tool,
		Client:  client,
	}, log.Named("dispatcher"))

	wrk := worker.New(cfg, worker.Deps{
		Store:      st,
		Client:     client,
		Merger:     merger.New(log.Named("merger")),
		Summarizer: sum,
	}, log.Named("worker"))

	svc := meeting.New(cfg, meeting.Deps{
		Store:      st,
		Queue:      q,
		Storage:    files,
		Dispatcher: disp,
	}, log.Named("meeting"))

	speakers := speaker.New(cfg, speaker.Deps{
		Store:   st,
		Storage: files,
		Client:  client,
	}, log.Named("speaker"))

	rep := report.New(log.Named("report"))

	srv := httpapi.New(cfg.Server, httpapi.Deps{
		Meeting: svc,
		Speaker: speakers,
		Store:   st,
		Queue:   q,
		Report:  rep,
	}, log.Named("http"))

	return &App{
		Config:     cfg,
		Logger:     log,
		Store:      st,
		Queue:      q,
		Storage:    files,
		Audio:      tool,
		Client:     client,
		Dispatcher: disp,
		Worker:     wrk,
		Meeting:    svc,
		Speaker:    speakers,
		Report:     rep,
		Server:     srv,
	}, nil
}

// Close releases the database.
func (a *App) Close() error {
	return a.Store.Close()
}
