package summarizer

import (
	"context"
	"fmt"

	"github.com/nguyentantai21042004/meetflow/internal/store"
)

func (s *implService) Summarize(ctx context.Context, transcript []store.TranscriptEntry) (Summary, error) {
	resp, err := s.client.GenerateSummary(ctx, transcript)
	if err != nil {
		return Summary{}, fmt.Errorf("generate summary: %w", err)
	}

	lines := resp.FormattedLines
	if len(lines) == 0 {
		s.logger.Warn(ctx, "Summary service returned no formatted lines, building them from the transcript")
		lines = FormatLines(transcript)
	}
	return Summary{Text: resp.Summary, FormattedLines: lines}, nil
}
