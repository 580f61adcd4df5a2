package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/meetflow/internal/output"
	"github.com/nguyentantai21042004/meetflow/internal/queue"
)

func NewDoctorCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check prerequisites",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := output.NewFormatter(cmd.OutOrStdout())
			ok := true

			a, err := deps.App(cmd.Context())
			if err != nil {
				f.Check("Config and database", false, err.Error())
				return err
			}
			cfg := a.Config
			f.Check("Database", true, cfg.Database.Path)

			if err := a.Audio.Check(); err != nil {
				f.Check("ffmpeg/ffprobe", false, err.Error())
				ok = false
			} else {
				f.Check("ffmpeg/ffprobe", true, "installed")
			}

			if err := a.Client.Health(cmd.Context()); err != nil {
				f.Check("Transcription service", false, fmt.Sprintf("%s: %v", cfg.Transcription.URL, err))
				ok = false
			} else {
				f.Check("Transcription service", true, cfg.Transcription.URL)
			}

			if cfg.Server.CallbackToken != "" {
				f.Check("Callback token", true, "configured")
			} else {
				f.Check("Callback token", false, "not set. Set MEETFLOW_CALLBACK_TOKEN or server.callback_token; callbacks are rejected")
				ok = false
			}

			f.Check("Summary backend", true, cfg.Summary.Backend)

			counts, err := a.Queue.Counts(cmd.Context())
			if err != nil {
				f.Check("Job queue", false, err.Error())
				ok = false
			} else {
				f.Check("Job queue", true, fmt.Sprintf("%d waiting, %d active, %d delayed, %d failed",
					counts[queue.StateWaiting], counts[queue.StateActive], counts[queue.StateDelayed], counts[queue.StateFailed]))
			}

			if ok {
				f.Success("\nAll prerequisites met.")
			} else {
				f.Warning("\nSome prerequisites are missing.")
			}
			return nil
		},
	}
}
