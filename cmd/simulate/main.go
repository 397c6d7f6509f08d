package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/crease/internal/simulate"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := simulate.NewCommand().ExecuteContext(ctx); err != nil {
		os.Stderr.WriteString("simulation failed: " + err.Error() + "\n")
		stop()
		os.Exit(1)
	}
}
