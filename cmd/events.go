package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/nkhyl/folio"
)

// eventsCmd holds the flags for the 'events' subcommand.
type eventsCmd struct{}

func (*eventsCmd) Name() string     { return "events" }
func (*eventsCmd) Synopsis() string { return "dump the normalized trade journal as JSONL" }
func (*eventsCmd) Usage() string {
	return `folio events

  Imports the trade journal from the SiYuan attribute view and writes the
  normalized events to stdout, one JSON object per line, sorted by date.
  Useful to inspect what the lot accounting actually consumes.
`
}

func (*eventsCmd) SetFlags(*flag.FlagSet) {}

func (c *eventsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	journal, err := loadJournal(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	if err := folio.EncodeJournal(os.Stdout, journal); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing events: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
