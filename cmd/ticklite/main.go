package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"ticklite/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCommand().ExecuteContext(ctx); err != nil {
		stop()
		fmt.Printf("error: %v\n", err)
		os.Exit(1)
	}
}
