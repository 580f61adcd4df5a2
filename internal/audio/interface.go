package audio

import "context"

// Tool probes and cuts audio files with ffprobe/ffmpeg.
type Tool interface {
	// Probe returns the duration of the file in seconds.
	Probe(ctx context.Context, path string) (float64, error)
	// ExtractClip cuts [start, start+duration) of input into a mono PCM WAV at out.
	ExtractClip(ctx context.Context, input, out string, start, duration float64) error
	// Check verifies that both binaries are installed.
	Check() error
}
