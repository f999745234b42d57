package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dmitrymomot/dealdocs/pkg/config"
	"github.com/dmitrymomot/dealdocs/pkg/httpserver"
	"github.com/dmitrymomot/dealdocs/pkg/payload"
	"github.com/dmitrymomot/dealdocs/pkg/pipeline"
)

var (
	errUsage  = errors.New("usage")
	errFailed = errors.New("command failed")
)

func (a *app) dispatch(ctx context.Context, args []string) error {
	name, rest := args[0], args[1:]
	switch name {
	case "render":
		return a.render(ctx, rest)
	case "share":
		return a.share(ctx, rest)
	case "send":
		return a.send(ctx, rest)
	case "clients":
		return a.clients(ctx)
	case "use":
		return a.use(ctx, rest)
	case "serve":
		return a.serve(ctx)
	}
	return errUsage
}

// docArgs parses "<deal-id> <kind>" with flags in any position.
func docArgs(fs *flag.FlagSet, args []string) (string, string, error) {
	fs.SetOutput(io.Discard)
	var pos []string
	for {
		if err := fs.Parse(args); err != nil {
			return "", "", errors.Join(errUsage, err)
		}
		if fs.NArg() == 0 {
			break
		}
		pos = append(pos, fs.Arg(0))
		args = fs.Args()[1:]
	}
	if len(pos) != 2 {
		return "", "", errUsage
	}
	return pos[0], pos[1], nil
}

func (a *app) render(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	format := fs.String("format", "html", "html, text or document")
	dealID, kind, err := docArgs(fs, args)
	if err != nil {
		return err
	}

	prep, err := a.engine.Prepare(ctx, dealID, kind)
	if err != nil {
		return err
	}
	switch *format {
	case "html":
		_, err = fmt.Fprintln(a.out, prep.Payload.HTML)
	case "text":
		_, err = fmt.Fprintln(a.out, prep.Payload.PlainText)
	case "document":
		_, err = fmt.Fprint(a.out, payload.Document(prep.Payload, prep.Document.Subject))
	default:
		return fmt.Errorf("%w: unknown format %q", errUsage, *format)
	}
	return err
}

func (a *app) share(ctx context.Context, args []string) error {
	dealID, kind, err := docArgs(flag.NewFlagSet("share", flag.ContinueOnError), args)
	if err != nil {
		return err
	}
	return a.report(a.engine.CopyAndEmail(ctx, dealID, kind))
}

func (a *app) send(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("send", flag.ContinueOnError)
	to := fs.String("to", "", "recipient, defaults to the document recipient")
	dealID, kind, err := docArgs(fs, args)
	if err != nil {
		return err
	}
	return a.report(a.engine.Send(ctx, dealID, kind, *to))
}

// report prints the notice and the link. A failed run is an error; a run
// that copied but could not open the mail client is not.
func (a *app) report(res pipeline.Result) error {
	fmt.Fprintln(a.out, res.Notice)
	if res.URL != "" {
		fmt.Fprintln(a.out, res.URL)
	}
	if res.Status == pipeline.StatusFailed {
		return errors.Join(errFailed, res.Err)
	}
	return nil
}

func (a *app) clients(ctx context.Context) error {
	current, err := a.prefs.Get(ctx)
	if err != nil || current == "" {
		current = a.registry.Default().ID
	}
	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	for _, c := range a.registry.Clients() {
		mark := " "
		if c.ID == current {
			mark = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", mark, c.ID, c.Label)
	}
	return tw.Flush()
}

func (a *app) use(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	if err := a.prefs.Set(ctx, args[0]); err != nil {
		return err
	}
	d, _ := a.registry.Lookup(args[0])
	_, err := fmt.Fprintf(a.out, "%s will be used for new emails.\n", d.Label)
	return err
}

func (a *app) serve(ctx context.Context) error {
	var hcfg httpserver.Config
	if err := config.Load(&hcfg); err != nil {
		return err
	}
	srv, err := a.server()
	if err != nil {
		return err
	}
	return httpserver.NewFromConfig(hcfg, httpserver.WithLogger(a.log)).Run(ctx, srv.Handler())
}
