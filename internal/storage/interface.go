package storage

import (
	"context"
	"io"
)

// Storage manages the upload root: original uploads, extracted segment
// clips and raw callback payloads, all grouped under one directory per meeting,
// plus speaker enrollment samples.
type Storage interface {
	Root() string
	// AbsPath resolves a path relative to the upload root.
	AbsPath(rel string) string
	// SaveUpload streams r into {root}/{meetingID}/ and hashes it on the way.
	SaveUpload(ctx context.Context, meetingID, originalName string, r io.Reader) (SavedFile, error)
	// SaveSpeakerSample stores an enrollment sample under {root}/speakers/{speakerID}/.
	SaveSpeakerSample(ctx context.Context, speakerID, originalName string, r io.Reader) (SavedFile, error)
	// SegmentPath returns the clip location for a segment, creating its directory.
	SegmentPath(meetingID string, index int) (abs, rel string, err error)
	// SavePayload writes a raw callback body next to the meeting's upload.
	SavePayload(meetingID, filename string, data []byte) (string, error)
	// Remove deletes one file relative to the root. Missing files are ignored.
	Remove(rel string) error
	// RemoveMeeting deletes the meeting's whole directory.
	RemoveMeeting(meetingID string) error
	RemoveSpeaker(speakerID string) error
}

// SavedFile describes a persisted upload.
type SavedFile struct {
	StoredFilename string
	RelativePath   string
	AbsolutePath   string
	Size           int64
	Hash           string
}
