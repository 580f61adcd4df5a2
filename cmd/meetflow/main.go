package main

import (
	"context"
	"os"

	"github.com/nguyentantai21042004/meetflow/internal/cli"
	"github.com/nguyentantai21042004/meetflow/internal/output"
)

func main() {
	if err := run(); err != nil {
		output.NewFormatter(os.Stderr).Error(err.Error())
		os.Exit(1)
	}
}

func run() error {
	deps := &cli.Dependencies{}
	defer deps.Close()

	return cli.NewRootCmd(deps).ExecuteContext(context.Background())
}
