package cli

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/meetflow/internal/meeting"
	"github.com/nguyentantai21042004/meetflow/internal/output"
)

func NewIngestCmd(deps *Dependencies) *cobra.Command {
	var title, description string

	cmd := &cobra.Command{
		Use:   "ingest <audio-file>",
		Short: "Store a recording as a new meeting and dispatch it",
		Long:  "Store a recording as a new meeting and dispatch it. Segment jobs are only processed while a serve process is running against the same database.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := deps.App(cmd.Context())
			if err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			m, err := a.Meeting.Create(cmd.Context(), meeting.CreateInput{
				Title:       title,
				Description: description,
				Filename:    filepath.Base(args[0]),
				MimeType:    mime.TypeByExtension(filepath.Ext(args[0])),
				Body:        f,
				Extra:       map[string]any{"source": "cli"},
			})
			if err != nil {
				return err
			}

			out := output.NewFormatter(cmd.OutOrStdout())
			if reason := m.FailureReason(); reason != "" {
				out.Warning(fmt.Sprintf("Meeting %s created but failed: %s", m.ID, reason))
				return nil
			}
			out.Success(fmt.Sprintf("Meeting %s is %s", m.ID, m.Status))
			return nil
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "meeting title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "meeting description")
	return cmd
}
