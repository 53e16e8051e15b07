package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/subcommands"

	"github.com/nkhyl/folio/bridge"
	"github.com/nkhyl/folio/logging"
	"github.com/nkhyl/folio/yahoo"
)

// serveCmd holds the flags for the 'serve' subcommand.
type serveCmd struct{}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "run the widget bridge server" }
func (*serveCmd) Usage() string {
	return `folio serve

  Runs the HTTP bridge the SiYuan widget talks to, and the scheduled
  refresh when FOLIO_REFRESH_CRON is set. Stops cleanly on SIGINT/SIGTERM.
`
}

func (*serveCmd) SetFlags(*flag.FlagSet) {}

func (c *serveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	log := newLogger(cfg)
	logging.SetGlobal(log)

	pipeline := bridge.RefreshPipeline{
		Config: cfg,
		Source: yahoo.New(log),
		Log:    log.With().Str("component", "pipeline").Logger(),
	}
	server := bridge.NewServer(cfg, pipeline, log)

	if cfg.RefreshCron != "" {
		scheduler := bridge.NewScheduler(log)
		if err := scheduler.AddJob(cfg.RefreshCron, bridge.RefreshJob{Pipeline: pipeline}); err != nil {
			fmt.Fprintf(os.Stderr, "Error: bad FOLIO_REFRESH_CRON: %v\n", err)
			return subcommands.ExitUsageError
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() { errc <- server.Start() }()

	select {
	case err := <-errc:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(os.Stderr, "Error: server failed: %v\n", err)
			return subcommands.ExitFailure
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Fprintf(os.Stderr, "Error: shutdown failed: %v\n", err)
			return subcommands.ExitFailure
		}
	}
	return subcommands.ExitSuccess
}
