package summarizer

import (
	"strings"

	"github.com/nguyentantai21042004/meetflow/internal/store"
)

// FormatLines builds speaker-attributed lines from a merged transcript,
// folding consecutive entries of the same speaker into one line.
func FormatLines(transcript []store.TranscriptEntry) []store.FormattedLine {
	var lines []store.FormattedLine
	for _, e := range transcript {
		text := strings.TrimSpace(e.Text)
		if text == "" {
			continue
		}
		if n := len(lines); n > 0 && lines[n-1].Speaker == e.Speaker {
			lines[n-1].Text += " " + text
			continue
		}
		lines = append(lines, store.FormattedLine{Speaker: e.Speaker, Text: text, Timestamp: e.Timestamp})
	}
	return lines
}

func renderTranscript(lines []store.FormattedLine) string {
	var b strings.Builder
	for _, l := range lines {
		if l.Timestamp != "" {
			b.WriteString(l.Timestamp)
			b.WriteByte(' ')
		}
		b.WriteString(l.Speaker)
		b.WriteString(": ")
		b.WriteString(l.Text)
		b.WriteByte('\n')
	}
	return b.String()
}
