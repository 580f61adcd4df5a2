package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/meetflow/internal/dispatcher"
	"github.com/nguyentantai21042004/meetflow/internal/meeting"
	"github.com/nguyentantai21042004/meetflow/internal/output"
)

func NewDispatchCmd(deps *Dependencies) *cobra.Command {
	var audioPath string

	cmd := &cobra.Command{
		Use:   "dispatch <meeting-id>",
		Short: "Dispatch a meeting's recording without resetting it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := deps.App(cmd.Context())
			if err != nil {
				return err
			}

			path := audioPath
			if path == "" {
				uploads, err := a.Store.ListUploads(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if len(uploads) == 0 {
					return meeting.ErrNoUpload
				}
				path = a.Storage.AbsPath(uploads[0].StoragePath)
			}

			res, err := a.Dispatcher.Dispatch(cmd.Context(), args[0], path)
			if err != nil {
				return err
			}
			printDispatch(cmd.OutOrStdout(), args[0], res)
			return nil
		},
	}

	cmd.Flags().StringVar(&audioPath, "audio", "", "audio file to dispatch instead of the stored upload")
	return cmd
}

func printDispatch(w io.Writer, meetingID string, res dispatcher.Result) {
	f := output.NewFormatter(w)
	if res.Mode == dispatcher.ModeSegmented {
		f.Success(fmt.Sprintf("Meeting %s dispatched as %d segments (%s)", meetingID, res.Segments, output.FormatSeconds(res.Duration)))
		return
	}
	f.Success(fmt.Sprintf("Meeting %s dispatched as one file (%s)", meetingID, output.FormatSeconds(res.Duration)))
}
