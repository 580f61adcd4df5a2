package merger

import "github.com/nguyentantai21042004/meetflow/internal/logger"

type implMerger struct {
	logger logger.Logger
}

// New creates a new Merger instance
func New(log logger.Logger) Merger {
	return &implMerger{logger: log}
}
