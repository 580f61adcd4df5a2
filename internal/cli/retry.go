package cli

import (
	"github.com/spf13/cobra"
)

func NewRetryCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "retry <meeting-id>",
		Short: "Drop a meeting's jobs and results and dispatch it again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := deps.App(cmd.Context())
			if err != nil {
				return err
			}
			res, err := a.Meeting.Retry(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printDispatch(cmd.OutOrStdout(), args[0], res)
			return nil
		},
	}
}
