package speaker

import (
	"errors"
	"io"
)

const (
	maxNameLength = 120
	maxSamples    = 5
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrInvalidToken = errors.New("invalid callback token")
)

// audioMimeTypes lists the sample formats the service can decode.
var audioMimeTypes = map[string]bool{
	"audio/wav":      true,
	"audio/wave":     true,
	"audio/x-wav":    true,
	"audio/mpeg":     true,
	"audio/mp3":      true,
	"audio/mpeg3":    true,
	"audio/x-mpeg-3": true,
	"audio/flac":     true,
	"audio/x-flac":   true,
	"audio/ogg":      true,
	"audio/webm":     true,
}

type CreateInput struct {
	Name    string
	Samples []Sample
}

type Sample struct {
	Filename string
	MimeType string
	Body     io.Reader
}

type SyncResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	Total   int `json:"total"`
}
