package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/benleb/autoscope/cmd"
	"github.com/benleb/autoscope/internal/autoscope"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	autoscope.AppVersion = version
	autoscope.CommitDate = buildDate
	autoscope.Commit = commit

	// ctrl+c cancels running commands
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd.Execute(ctx)
}
