// Command dealdocs renders deal documents and hands them to a mail client.
//
//	dealdocs render <deal-id> <kind> [-format html|text|document]
//	dealdocs share  <deal-id> <kind>
//	dealdocs send   <deal-id> <kind> [-to address]
//	dealdocs clients
//	dealdocs use    <mail-client-id>
//	dealdocs serve
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrymomot/dealdocs/pkg/config"
)

const usage = `usage: dealdocs <command> [arguments]

commands:
  render <deal-id> <kind>   print the email payload of a document
  share  <deal-id> <kind>   copy a document and open the mail client
  send   <deal-id> <kind>   send a document directly
  clients                   list mail clients
  use    <mail-client-id>   set the preferred mail client
  serve                     run the HTTP server
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "dealdocs:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	if path := os.Getenv("DEALDOCS_ENV_FILE"); path != "" {
		if err := config.LoadEnv(path); err != nil {
			return err
		}
	}
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return err
	}

	a, err := newApp(ctx, cfg, os.Stdout)
	if err != nil {
		return err
	}
	defer a.close(context.WithoutCancel(ctx))

	return a.dispatch(ctx, args)
}
