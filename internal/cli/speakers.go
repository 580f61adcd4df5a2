package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/meetflow/internal/output"
)

func NewSpeakersCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "speakers",
		Short: "Manage enrolled speakers",
	}
	cmd.AddCommand(newSpeakersListCmd(deps))
	cmd.AddCommand(newSpeakersSyncCmd(deps))
	return cmd
}

func newSpeakersListCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered speakers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := deps.App(cmd.Context())
			if err != nil {
				return err
			}
			speakers, err := a.Speaker.List(cmd.Context())
			if err != nil {
				return err
			}

			f := output.NewFormatter(cmd.OutOrStdout())
			if len(speakers) == 0 {
				f.Info("No speakers yet")
				return nil
			}
			for _, sp := range speakers {
				f.SpeakerListItem(sp)
			}
			return nil
		},
	}
}

func newSpeakersSyncCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Import speakers already enrolled in the transcription service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := deps.App(cmd.Context())
			if err != nil {
				return err
			}
			res, err := a.Speaker.Sync(cmd.Context())
			if err != nil {
				return err
			}
			output.NewFormatter(cmd.OutOrStdout()).Success(fmt.Sprintf("%d created, %d updated, %d skipped of %d",
				res.Created, res.Updated, res.Skipped, res.Total))
			return nil
		},
	}
}
