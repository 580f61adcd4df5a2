package cli

import (
	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/meetflow/internal/output"
)

func NewListCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List meetings, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := deps.App(cmd.Context())
			if err != nil {
				return err
			}
			meetings, err := a.Meeting.List(cmd.Context())
			if err != nil {
				return err
			}

			f := output.NewFormatter(cmd.OutOrStdout())
			if len(meetings) == 0 {
				f.Info("No meetings yet")
				return nil
			}
			f.MeetingListHeader()
			for _, m := range meetings {
				f.MeetingListItem(m)
			}
			return nil
		},
	}
}
