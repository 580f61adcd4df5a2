package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/nguyentantai21042004/meetflow/internal/logger"
)

type implStorage struct {
	root   string
	logger logger.Logger
}

// New creates the upload root if needed and returns a Storage rooted there.
func New(root string, log logger.Logger) (Storage, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve upload root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create upload root: %w", err)
	}
	return &implStorage{root: abs, logger: log}, nil
}
