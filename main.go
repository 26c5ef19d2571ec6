// main is the entry point for the viability CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/huangsam/viability/cmd"
	"github.com/huangsam/viability/internal/contract"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cmd.Execute(ctx)
	if shutdownErr := cmd.Shutdown(); shutdownErr != nil {
		contract.LogWarn("Cannot shut down cleanly", shutdownErr)
	}
	stop()
	if err != nil {
		contract.LogFatal("Cannot run viability", err)
	}
}
