package audio

import (
	"github.com/nguyentantai21042004/meetflow/internal/config"
	"github.com/nguyentantai21042004/meetflow/internal/logger"
	"github.com/nguyentantai21042004/meetflow/pkg/executor"
)

type implTool struct {
	cfg      config.FFmpegConfig
	executor executor.Executor
	logger   logger.Logger
}

// New creates a new Tool instance
func New(cfg config.FFmpegConfig, exec executor.Executor, log logger.Logger) Tool {
	return &implTool{
		cfg:      cfg,
		executor: exec,
		logger:   log,
	}
}
