// medqa answers Vietnamese health questions from the command line and
// serves the assistant as MCP tools.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/kirillkom/health-assistant/cmd/medqa/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cmd.Execute(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
