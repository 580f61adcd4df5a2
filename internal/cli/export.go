package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/meetflow/internal/output"
)

func NewExportCmd(deps *Dependencies) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "export <meeting-id>",
		Short: "Write a completed meeting as a .docx report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := deps.App(cmd.Context())
			if err != nil {
				return err
			}
			m, err := a.Store.GetMeeting(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			path := outPath
			if path == "" {
				path = m.ID + ".docx"
			}
			if err := a.Report.WriteMeeting(cmd.Context(), m, path); err != nil {
				return err
			}
			output.NewFormatter(cmd.OutOrStdout()).Success(fmt.Sprintf("Report saved: %s", path))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "output", "o", "", "output path (default <meeting-id>.docx)")
	return cmd
}
