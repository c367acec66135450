package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/athenactl/athenactl/internal/cli/athenactl"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	code := athenactl.Run(ctx, os.Args[1:], athenactl.Options{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	})
	stop()
	os.Exit(code)
}
