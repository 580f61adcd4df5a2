package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/meetflow/internal/app"
	"github.com/nguyentantai21042004/meetflow/internal/config"
	"github.com/nguyentantai21042004/meetflow/internal/version"
)

const defaultConfigPath = "config.yaml"

// Dependencies loads the configuration and the app on first use.
type Dependencies struct {
	ConfigPath string

	cfg *config.Config
	app *app.App
}

func (d *Dependencies) Config() (*config.Config, error) {
	if d.cfg != nil {
		return d.cfg, nil
	}
	path := d.ConfigPath
	if path == defaultConfigPath {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			path = ""
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	d.cfg = cfg
	return cfg, nil
}

func (d *Dependencies) App(ctx context.Context) (*app.App, error) {
	if d.app != nil {
		return d.app, nil
	}
	cfg, err := d.Config()
	if err != nil {
		return nil, err
	}
	a, err := app.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	d.app = a
	return a, nil
}

// Close releases the app if a command opened it.
func (d *Dependencies) Close() error {
	if d.app == nil {
		return nil
	}
	return d.app.Close()
}

func NewRootCmd(deps *Dependencies) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "meetflow",
		Short:         "Transcribe and summarize meeting recordings",
		Long:          "meetflow accepts meeting recordings, splits long ones into overlapping segments, sends them to a transcription service and assembles the transcript, summary and report.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.Version = version.Version
	rootCmd.SetVersionTemplate(version.Full() + "\n")

	if deps.ConfigPath == "" {
		deps.ConfigPath = defaultConfigPath
	}
	if v := os.Getenv("MEETFLOW_CONFIG"); v != "" {
		deps.ConfigPath = v
	}
	rootCmd.PersistentFlags().StringVarP(&deps.ConfigPath, "config", "c", deps.ConfigPath, "config file (.yaml or .toml)")

	rootCmd.AddCommand(NewServeCmd(deps))
	rootCmd.AddCommand(NewIngestCmd(deps))
	rootCmd.AddCommand(NewListCmd(deps))
	rootCmd.AddCommand(NewStatusCmd(deps))
	rootCmd.AddCommand(NewDispatchCmd(deps))
	rootCmd.AddCommand(NewRetryCmd(deps))
	rootCmd.AddCommand(NewExportCmd(deps))
	rootCmd.AddCommand(NewSpeakersCmd(deps))
	rootCmd.AddCommand(NewDoctorCmd(deps))
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}
