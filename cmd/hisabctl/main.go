// Command hisabctl runs operator tasks against the ledger database.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path"
	"syscall"

	"github.com/google/subcommands"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")

	commander.Register(&seedDemoCmd{}, "data")
	commander.Register(&exportCmd{}, "data")
	commander.Register(&reconcileCmd{}, "ledger")

	flag.Parse()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := commander.Execute(ctx)
	stop()
	os.Exit(int(code))
}
