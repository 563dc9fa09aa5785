// Command mesto is a terminal client for the places photo feed.
//
// It reads MESTO_API_URL, MESTO_STATE_PATH, MESTO_HTTP_TIMEOUT and
// MESTO_LOG_LEVEL from the environment. Run it without arguments for the
// command list.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/sakif/mesto/internal/app"
	"github.com/sakif/mesto/internal/cli"
	"github.com/sakif/mesto/internal/client"
	"github.com/sakif/mesto/internal/config"
	"github.com/sakif/mesto/internal/repository/sqlite"
	"github.com/sakif/mesto/internal/session"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.LoadClient()
	if err != nil {
		fmt.Fprintf(os.Stderr, "mesto: %v\n", err)
		return cli.ExitError
	}

	// Logs go to stderr so stdout only carries the rendered view.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: config.ParseLogLevel(cfg.LogLevel),
	}))

	if err := os.MkdirAll(filepath.Dir(cfg.StatePath), 0o700); err != nil {
		logger.Error("failed to create state directory", slog.String("error", err.Error()))
		return cli.ExitError
	}
	state, err := sqlite.New(cfg.StatePath)
	if err != nil {
		logger.Error("failed to open state", slog.String("path", cfg.StatePath), slog.String("error", err.Error()))
		return cli.ExitError
	}
	defer state.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	tokens := session.NewStore(state.KV())

	ctrl := app.NewController(
		client.NewAuth(cfg.APIURL, httpClient, logger),
		client.NewAPI(cfg.APIURL, tokens.TokenSource(ctx), httpClient, logger),
		tokens,
		logger,
	)

	return cli.New(ctrl, os.Stdout, os.Stderr).Run(ctx, os.Args[1:])
}
