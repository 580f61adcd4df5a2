package audio

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidDuration is returned when ffprobe reports an unusable duration.
var ErrInvalidDuration = errors.New("invalid audio duration")

func (t *implTool) Probe(ctx context.Context, path string) (float64, error) {
	args := []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	}

	out, err := t.executor.Execute(ctx, t.cfg.FFprobe, args...)
	if err != nil {
		return 0, fmt.Errorf("ffprobe duration: %w", err)
	}

	raw := strings.TrimSpace(out)
	duration, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(duration) || duration <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, raw)
	}

	t.logger.Debug(ctx, "Probed %s: %.2fs", path, duration)
	return duration, nil
}

// ExtractClip re-encodes instead of stream copying so that -ss seeks
// accurately regardless of the source codec.
func (t *implTool) ExtractClip(ctx context.Context, input, out string, start, duration float64) error {
	if duration <= 0 {
		return fmt.Errorf("extract clip: non-positive duration %v", duration)
	}

	args := []string{
		"-ss", formatSeconds(start),
		"-t", formatSeconds(duration),
		"-i", input,
		"-acodec", "pcm_s16le",
		"-ar", strconv.Itoa(t.cfg.SampleRate),
		"-ac", "1",
		"-y",
		out,
	}

	if _, err := t.executor.Execute(ctx, t.cfg.FFmpeg, args...); err != nil {
		return fmt.Errorf("ffmpeg extract clip: %w", err)
	}

	t.logger.Debug(ctx, "Extracted %s [%.2fs +%.2fs] -> %s", input, start, duration, out)
	return nil
}

func (t *implTool) Check() error {
	for _, bin := range []string{t.cfg.FFmpeg, t.cfg.FFprobe} {
		if _, err := t.executor.LookPath(bin); err != nil {
			return fmt.Errorf("%s not found: %w", bin, err)
		}
	}
	return nil
}

func formatSeconds(s float64) string {
	return strconv.FormatFloat(s, 'f', 3, 64)
}
