package report

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gomutex/godocx"

	"github.com/nguyentantai21042004/meetflow/internal/store"
)

// ErrNotCompleted is returned for meetings that have no final result yet.
var ErrNotCompleted = errors.New("meeting is not completed")

func (w *implWriter) WriteMeeting(ctx context.Context, m store.Meeting, outputPath string) error {
	if m.Status != store.MeetingCompleted {
		return fmt.Errorf("%w: %s is %s", ErrNotCompleted, m.ID, m.Status)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	doc, err := godocx.NewDocument()
	if err != nil {
		return fmt.Errorf("new document: %w", err)
	}

	title := m.Title
	if title == "" {
		title = m.ID
	}
	addStyledRun(doc.AddParagraph(""), title, true, 16)
	addStyledRun(doc.AddParagraph(""), m.CreatedAt.Format("2006-01-02 15:04"), false, fontSize)
	if m.Description != "" {
		addRichText(doc.AddParagraph(""), m.Description)
	}

	if m.Summary != nil && *m.Summary != "" {
		addStyledRun(doc.AddParagraph(""), "Tóm tắt", true, headingSize(1))
		writeMarkdown(doc, *m.Summary)
	}

	for _, phase := range m.SummaryPhases {
		addStyledRun(doc.AddParagraph(""), phase.Title, true, headingSize(2))
		for _, point := range phase.Points {
			addRichText(doc.AddParagraph(""), "• "+point)
		}
	}

	addStyledRun(doc.AddParagraph(""), "Nội dung cuộc họp", true, headingSize(1))
	lines := 0
	if len(m.FormattedLines) > 0 {
		for _, l := range m.FormattedLines {
			writeLine(doc, l.Timestamp, l.Speaker, l.Text)
			lines++
		}
	} else {
		for _, e := range m.RawTranscript {
			writeLine(doc, e.Timestamp, e.Speaker, e.Text)
			lines++
		}
	}

	if err := doc.SaveTo(outputPath); err != nil {
		return fmt.Errorf("save %s: %w", outputPath, err)
	}

	w.logger.Info(ctx, "Exported meeting %s (%d lines) -> %s", m.ID, lines, outputPath)
	return nil
}
