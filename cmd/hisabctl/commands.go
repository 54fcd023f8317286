package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"
	"github.com/sangkips/hisab-api/internal/app"
	"github.com/sangkips/hisab-api/internal/config"
	"github.com/sangkips/hisab-api/internal/domain/account"
	"github.com/sangkips/hisab-api/internal/domain/repository"
)

// accountFlags selects the account a command operates on
type accountFlags struct {
	email string
}

func (a *accountFlags) setFlags(f *flag.FlagSet) {
	f.StringVar(&a.email, "email", "", "Email of the account to operate on (required)")
}

// open loads configuration, connects and resolves the account session. The
// returned container must be closed by the caller.
func (a *accountFlags) open(ctx context.Context) (*app.Container, *account.Session, error) {
	if a.email == "" {
		return nil, nil, fmt.Errorf("-email is required")
	}
	cfg := config.Load()
	container, err := app.New(ctx, cfg, config.NewLogger(&cfg.Log))
	if err != nil {
		return nil, nil, err
	}
	sess, err := container.SessionFor(ctx, a.email)
	if err != nil {
		container.Close()
		return nil, nil, err
	}
	return container, sess, nil
}

func fail(err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return subcommands.ExitFailure
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// seedDemoCmd loads the demo customers, products and store name
type seedDemoCmd struct {
	accountFlags
}

func (*seedDemoCmd) Name() string     { return "seed-demo" }
func (*seedDemoCmd) Synopsis() string { return "load demo customers, products and settings" }
func (*seedDemoCmd) Usage() string {
	return `hisabctl seed-demo -email <account>

  Adds two demo customers, two demo products and a store name to the account.
  Running it twice adds the demo records twice.
`
}

func (c *seedDemoCmd) SetFlags(f *flag.FlagSet) { c.setFlags(f) }

func (c *seedDemoCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	container, sess, err := c.open(ctx)
	if err != nil {
		return fail(err)
	}
	defer container.Close()

	result, err := container.Services.Demo.Load(ctx, sess)
	if err != nil {
		return fail(err)
	}
	fmt.Printf("loaded %d customers and %d products into %s\n", len(result.Customers), len(result.Products), sess.Email)
	return subcommands.ExitSuccess
}

// reconcileCmd compares customer balances with the ledger
type reconcileCmd struct {
	accountFlags
	repair bool
}

func (*reconcileCmd) Name() string     { return "reconcile" }
func (*reconcileCmd) Synopsis() string { return "check customer balances against the ledger" }
func (*reconcileCmd) Usage() string {
	return `hisabctl reconcile -email <account> [-repair]

  Lists customers whose total due differs from the sum of their ledger dues.
  With -repair the balances are rewritten from the ledger.
`
}

func (c *reconcileCmd) SetFlags(f *flag.FlagSet) {
	c.setFlags(f)
	f.BoolVar(&c.repair, "repair", false, "Rewrite drifted balances from the ledger")
}

func (c *reconcileCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	container, sess, err := c.open(ctx)
	if err != nil {
		return fail(err)
	}
	defer container.Close()

	result, err := container.Services.Ledger.Reconcile(ctx, sess, c.repair)
	if err != nil {
		return fail(err)
	}
	if err := printJSON(result); err != nil {
		return fail(err)
	}
	if len(result.Drift) > 0 && !result.Repaired {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// exportCmd writes one of the CSV exports
type exportCmd struct {
	accountFlags
	kind   string
	output string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export customers, products or transactions as CSV" }
func (*exportCmd) Usage() string {
	return `hisabctl export -email <account> -kind customers|products|transactions [-o file]

  Writes the CSV export to the file, or to stdout when -o is omitted.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	c.setFlags(f)
	f.StringVar(&c.kind, "kind", "customers", "What to export: customers, products or transactions")
	f.StringVar(&c.output, "o", "", "Output file (defaults to stdout)")
}

func (c *exportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	switch c.kind {
	case "customers", "products", "transactions":
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown kind %q\n", c.kind)
		return subcommands.ExitUsageError
	}

	container, sess, err := c.open(ctx)
	if err != nil {
		return fail(err)
	}
	defer container.Close()

	var w io.Writer = os.Stdout
	if c.output != "" {
		file, err := os.Create(c.output)
		if err != nil {
			return fail(err)
		}
		defer file.Close()
		w = file
	}

	transfer := container.Services.Transfer
	switch c.kind {
	case "customers":
		err = transfer.ExportCustomers(ctx, sess, w)
	case "products":
		err = transfer.ExportProducts(ctx, sess, w)
	case "transactions":
		err = transfer.ExportTransactions(ctx, sess, repository.TransactionFilter{}, w)
	}
	if err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}
