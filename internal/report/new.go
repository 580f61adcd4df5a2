package report

import "github.com/nguyentantai21042004/meetflow/internal/logger"

type implWriter struct {
	logger logger.Logger
}

// New creates a new DOCX report Writer instance
func New(log logger.Logger) Writer {
	return &implWriter{logger: log}
}
