// Package cmd implements the folio CLI.
package cmd

import (
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/nkhyl/folio"
	"github.com/nkhyl/folio/bridge"
	"github.com/nkhyl/folio/logging"
	"github.com/nkhyl/folio/siyuan"
	"github.com/rs/zerolog"
)

// Register the subcommands. The binary calls Register() and then Execute()
// on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&refreshCmd{}, "pipeline")
	c.Register(&eventsCmd{}, "pipeline")

	c.Register(&holdingsCmd{}, "reports")
	c.Register(&newsCmd{}, "reports")
	c.Register(&chartCmd{}, "reports")

	c.Register(&serveCmd{}, "bridge")

	c.Register(&assistCmd{}, "assistant")

	c.Register(&topicCmd{}, "documentation")
}

// loadConfig reads the FOLIO_* environment, .env fallback included. Every
// command goes through here so flags stay for per-run choices only.
func loadConfig() (bridge.Config, error) {
	cfg, err := bridge.LoadConfig()
	if err != nil {
		return bridge.Config{}, fmt.Errorf("could not load configuration: %w", err)
	}
	return cfg, nil
}

// newLogger builds the CLI-facing logger from the shared config.
func newLogger(cfg bridge.Config) zerolog.Logger {
	return logging.New(logging.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
}

// loadJournal imports the trade journal from the SiYuan attribute view.
// Per-row import trouble is reported to stderr and the row skipped.
func loadJournal(cfg bridge.Config) (*folio.Journal, error) {
	journal, warnings, err := siyuan.Load(cfg.AttributeViewPath())
	if err != nil {
		return nil, fmt.Errorf("could not import the trade journal: %w", err)
	}
	printWarnings(warnings)
	return journal, nil
}

func printWarnings(warnings []folio.Warning) {
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
	}
}
