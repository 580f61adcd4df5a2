// Package planner splits a recording into time-bounded segments sized for
// the available worker pool.
package planner

import (
	"errors"
	"fmt"
	"math"

	"github.com/nguyentantai21042004/meetflow/internal/config"
)

// ErrInvalidDuration is returned for non-positive or non-finite durations.
var ErrInvalidDuration = errors.New("invalid audio duration")

// Segment is one planned unit of work. Logical bounds own the time range
// exclusively; extract bounds add the lookback pad used when cutting audio.
type Segment struct {
	Index        int
	LogicalStart float64
	LogicalEnd   float64
	ExtractStart float64
	ExtractEnd   float64
}

// Duration is the logical length of the segment.
func (s Segment) Duration() float64 { return s.LogicalEnd - s.LogicalStart }

// ExtractDuration is the length of the padded clip.
func (s Segment) ExtractDuration() float64 { return s.ExtractEnd - s.ExtractStart }

// Options are the sizing rules, in seconds.
type Options struct {
	ShortFileThreshold float64
	Min                float64
	IdealMin           float64
	IdealMax           float64
	Max                float64
	Overlap            float64
	RoundTo            float64
}

// DefaultOptions returns 600s short threshold, [120,900] hard bounds,
// [300,600] ideal band, 30s overlap and 30s rounding.
func DefaultOptions() Options {
	return Options{
		ShortFileThreshold: 600,
		Min:                120,
		IdealMin:           300,
		IdealMax:           600,
		Max:                900,
		Overlap:            30,
		RoundTo:            30,
	}
}

// FromConfig maps the segmentation config section onto Options.
func FromConfig(c config.SegmentationConfig) Options {
	return Options{
		ShortFileThreshold: c.ShortFileThreshold,
		Min:                c.Min,
		IdealMin:           c.IdealMin,
		IdealMax:           c.IdealMax,
		Max:                c.Max,
		Overlap:            c.Overlap,
		RoundTo:            c.RoundTo,
	}
}

// IsShort reports whether duration is handled as a single direct call.
func (o Options) IsShort(duration float64) bool {
	return duration <= o.ShortFileThreshold
}

// SegmentDuration computes the target step for a long recording.
// Short recordings return the duration itself.
func (o Options) SegmentDuration(duration float64, workers int) float64 {
	if o.IsShort(duration) {
		return duration
	}
	if workers < 1 {
		workers = 1
	}

	idealCount := int(math.Ceil(duration / o.IdealMax))
	if workers > idealCount {
		idealCount = workers
	}
	s := duration / float64(idealCount)

	switch {
	case s < o.Min:
		s = o.Min
	case s > o.Max:
		s = o.Max
	case s < o.IdealMin:
		s = o.IdealMin
	case s > o.IdealMax:
		s = o.IdealMax
	}

	if o.RoundTo > 0 {
		s = math.Round(s/o.RoundTo) * o.RoundTo
	}
	return s
}

// Plan returns the ordered segments covering [0, duration).
func (o Options) Plan(duration float64, workers int) ([]Segment, error) {
	if math.IsNaN(duration) || math.IsInf(duration, 0) || duration <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDuration, duration)
	}

	if o.IsShort(duration) {
		return []Segment{{
			Index:        0,
			LogicalStart: 0,
			LogicalEnd:   duration,
			ExtractStart: 0,
			ExtractEnd:   duration,
		}}, nil
	}

	step := o.SegmentDuration(duration, workers)
	if step <= 0 {
		return nil, fmt.Errorf("segment duration must be positive, got %v", step)
	}

	var segments []Segment
	for start, i := 0.0, 0; start < duration; i++ {
		end := math.Min(start+step, duration)
		segments = append(segments, Segment{
			Index:        i,
			LogicalStart: start,
			LogicalEnd:   end,
			ExtractStart: math.Max(0, start-o.Overlap),
			ExtractEnd:   end,
		})
		start = end
	}
	return segments, nil
}
