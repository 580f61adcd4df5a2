package merger

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/nguyentantai21042004/meetflow/internal/store"
)

// ErrNothingToMerge is returned when every segment is empty.
var ErrNothingToMerge = errors.New("no transcript data found in any segment")

const (
	lossThreshold       = 0.8
	sparseMinDuration   = 60.0
	sparseEntriesPerMin = 1.0
)

func (m *implMerger) Merge(ctx context.Context, segments []SegmentTranscript, enrolled []string) (Result, error) {
	known := make(map[string]bool, len(enrolled))
	for _, name := range enrolled {
		known[name] = true
	}

	ordered := make([]SegmentTranscript, len(segments))
	copy(ordered, segments)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Index < ordered[j].Index })

	res := Result{Speakers: map[string]string{}}
	for _, seg := range ordered {
		n := len(seg.Entries)
		res.TotalEntries += n

		duration := seg.End - seg.Start
		if duration > sparseMinDuration && float64(n)/(duration/60) < sparseEntriesPerMin {
			res.warn(ctx, m, "segment %d has very few entries (%d entries for %.2f minutes)", seg.Index, n, duration/60)
		}
		if n == 0 {
			res.SkippedSegments = append(res.SkippedSegments, seg.Index)
		}
	}
	if len(res.SkippedSegments) == len(ordered) {
		return res, ErrNothingToMerge
	}

	anonymous := 0
	merged := make([]store.TranscriptEntry, 0, res.TotalEntries)
	for _, seg := range ordered {
		if len(seg.Entries) == 0 {
			m.logger.Warn(ctx, "Skipping segment %d: no transcript data", seg.Index)
			continue
		}

		offset := decimal.NewFromFloat(seg.Start)
		labels := map[string]struct{}{}
		for _, e := range seg.Entries {
			labels[e.Speaker] = struct{}{}

			global, ok := res.Speakers[e.Speaker]
			switch {
			case ok:
			case known[e.Speaker]:
				global = e.Speaker
				res.Speakers[e.Speaker] = global
			default:
				global = fmt.Sprintf("SPEAKER_%02d", anonymous)
				anonymous++
				res.Speakers[e.Speaker] = global
			}

			start := shift(offset, e.Start)
			merged = append(merged, store.TranscriptEntry{
				Speaker:   global,
				Text:      e.Text,
				Start:     start,
				End:       shift(offset, e.End),
				Timestamp: FormatTimestamp(start),
			})
		}
		m.logger.Debug(ctx, "Segment %d: %d entries, %d raw speaker labels", seg.Index, len(seg.Entries), len(labels))
	}

	// stable: equal starts keep segment order, then entry order
	sort.SliceStable(merged, func(i, j int) bool { return merged[i].Start < merged[j].Start })

	if float64(len(merged)) < float64(res.TotalEntries)*lossThreshold {
		res.warn(ctx, m, "merged transcript has fewer entries (%d) than expected (%d), possible data loss",
			len(merged), res.TotalEntries)
	}

	res.Entries = merged
	m.logger.Info(ctx, "Merged %d entries from %d segments (%d skipped, %d speakers)",
		len(merged), len(ordered), len(res.SkippedSegments), len(res.Speakers))
	return res, nil
}

func (r *Result) warn(ctx context.Context, m *implMerger, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	r.Warnings = append(r.Warnings, msg)
	m.logger.Warn(ctx, "%s", msg)
}

// shift returns offset+local rounded to the millisecond, avoiding float
// drift such as 450.1+0.2 = 450.30000000000001.
func shift(offset decimal.Decimal, local float64) float64 {
	f, _ := offset.Add(decimal.NewFromFloat(local)).Round(3).Float64()
	return f
}

// FormatTimestamp renders seconds as [MM:SS], or [HH:MM:SS] from one hour on.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	total := int64(math.Floor(seconds))
	h, m, s := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("[%02d:%02d:%02d]", h, m, s)
	}
	return fmt.Sprintf("[%02d:%02d]", m, s)
}
