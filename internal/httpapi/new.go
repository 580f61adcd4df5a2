package httpapi

import (
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/nguyentantai21042004/meetflow/internal/config"
	"github.com/nguyentantai21042004/meetflow/internal/logger"
	"github.com/nguyentantai21042004/meetflow/internal/meeting"
	"github.com/nguyentantai21042004/meetflow/internal/queue"
	"github.com/nguyentantai21042004/meetflow/internal/report"
	"github.com/nguyentantai21042004/meetflow/internal/speaker"
	"github.com/nguyentantai21042004/meetflow/internal/store"
)

type implServer struct {
	cfg     config.ServerConfig
	echo    *echo.Echo
	meeting meeting.Service
	speaker speaker.Service
	store   store.Store
	queue   queue.Queue
	report  report.Writer
	logger  logger.Logger
}

// Deps groups the collaborators of a Server.
type Deps struct {
	Meeting meeting.Service
	Speaker speaker.Service
	Store   store.Store
	Queue   queue.Queue
	Report  report.Writer
}

// New creates a new HTTP Server instance
func New(cfg config.ServerConfig, deps Deps, log logger.Logger) Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &implServer{
		cfg:     cfg,
		echo:    e,
		meeting: deps.Meeting,
		speaker: deps.Speaker,
		store:   deps.Store,
		queue:   deps.Queue,
		report:  deps.Report,
		logger:  log,
	}

	e.Use(middleware.Recover())
	e.Use(s.requestLogger)
	if cfg.MaxUploadMB > 0 {
		e.Use(middleware.BodyLimit(fmt.Sprintf("%dM", cfg.MaxUploadMB)))
	}

	s.routes()
	return s
}
