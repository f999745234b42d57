package mailclient

import (
	"context"
	"errors"
	"os/exec"
	"runtime"
)

// Opener hands a deep link to the environment.
type Opener interface {
	Open(ctx context.Context, url string) error
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(ctx context.Context, url string) error

func (f OpenerFunc) Open(ctx context.Context, url string) error { return f(ctx, url) }

// Passthrough opens nothing. Used when the caller hands the URL to a
// browser itself, as the HTTP surface does.
var Passthrough Opener = OpenerFunc(func(context.Context, string) error { return nil })

// BrowserOpener launches the desktop URL handler. The process is started
// and not waited for.
type BrowserOpener struct {
	// GOOS overrides the detected platform.
	GOOS string
}

func (o BrowserOpener) Open(ctx context.Context, url string) error {
	name, args := o.command(url)
	cmd := exec.CommandContext(context.WithoutCancel(ctx), name, args...)
	if err := cmd.Start(); err != nil {
		return errors.Join(ErrOpenBlocked, err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

func (o BrowserOpener) command(url string) (string, []string) {
	goos := o.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}
	switch goos {
	case "darwin":
		return "open", []string{url}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}
	default:
		return "xdg-open", []string{url}
	}
}
