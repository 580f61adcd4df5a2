package output

import (
	"fmt"
	"io"
	"time"

	"github.com/nguyentantai21042004/meetflow/internal/store"
)

type Formatter struct {
	w io.Writer
}

func NewFormatter(w io.Writer) *Formatter {
	return &Formatter{w: w}
}

func (f *Formatter) Error(msg string) {
	fmt.Fprintf(f.w, "❌ %s\n", msg)
}

func (f *Formatter) Info(msg string) {
	fmt.Fprintf(f.w, "ℹ️  %s\n", msg)
}

func (f *Formatter) Success(msg string) {
	fmt.Fprintf(f.w, "✅ %s\n", msg)
}

func (f *Formatter) Warning(msg string) {
	fmt.Fprintf(f.w, "⚠️  %s\n", msg)
}

func (f *Formatter) Check(name string, ok bool, detail string) {
	mark := "✅"
	if !ok {
		mark = "❌"
	}
	fmt.Fprintf(f.w, "%s %s: %s\n", mark, name, detail)
}

func (f *Formatter) MeetingListHeader() {
	fmt.Fprintf(f.w, "📁 Meetings:\n\n")
}

func (f *Formatter) MeetingListItem(m store.Meeting) {
	title := m.Title
	if title == "" {
		title = "(untitled)"
	}
	progress := ""
	if m.TotalSegments > 0 {
		progress = fmt.Sprintf(" %d/%d", m.CompletedSegments, m.TotalSegments)
	}
	fmt.Fprintf(f.w, "  %s  %-10s%s  %s  %s\n", m.ID, m.Status, progress, m.CreatedAt.Format(time.DateTime), title)
	if reason := m.FailureReason(); reason != "" && m.Status == store.MeetingFailed {
		fmt.Fprintf(f.w, "      %s\n", reason)
	}
}

func (f *Formatter) SpeakerListItem(sp store.Speaker) {
	fmt.Fprintf(f.w, "  %s  %-9s  %d samples  %s\n", sp.ID, sp.Status, len(sp.Samples), sp.Name)
	if msg, _ := sp.Extra["enrollmentError"].(string); msg != "" && sp.Status == store.SpeakerFailed {
		fmt.Fprintf(f.w, "      %s\n", msg)
	}
}

// FormatSeconds renders a probed duration as 1h02m03s or 4m05s.
func FormatSeconds(seconds float64) string {
	d := time.Duration(seconds * float64(time.Second)).Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}
