package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/subosito/gotenv"

	"github.com/garyjia/billed/internal/interfaces/cli"
)

func main() {
	// Optional .env, e.g. BILLED_API_URL
	_ = gotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	app := &cli.App{}
	err := cli.Execute(ctx, app, os.Args[1:], os.Stdout, os.Stderr)

	app.Close()
	if app.Logger != nil {
		app.Logger.Sync()
	}
	stop()

	if err != nil {
		os.Exit(1)
	}
}
