package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"

	"github.com/nkhyl/folio/cmd"
	"github.com/nkhyl/folio/docs"
)

func main() {
	name := path.Base(os.Args[0])

	// Shell completion runs (and exits) before normal flag parsing.
	completion().Complete(name)

	commander := subcommands.NewCommander(flag.CommandLine, name)

	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

// completion declares the completion tree for posener/complete.
func completion() *complete.Command {
	topics, _ := docs.GetAllTopics()
	return &complete.Command{
		Sub: map[string]*complete.Command{
			"refresh":  {Flags: map[string]complete.Predictor{"d": predict.Something}},
			"events":   {},
			"holdings": {Flags: map[string]complete.Predictor{"d": predict.Something}},
			"news":     {},
			"chart":    {Flags: map[string]complete.Predictor{"o": predict.Files("*.html")}},
			"serve":    {},
			"assist":   {},
			"topic":    {Args: predict.Set(topics)},
		},
	}
}
