package main

import (
	"context"
	"os/signal"
	"syscall"

	"merek-automation/cmd/merek-cli/commands"
)

func main() {
	// Ctrl+C cancels the request in flight instead of leaving it half sent
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	commands.ExecuteContext(ctx)
}
