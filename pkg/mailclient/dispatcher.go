package mailclient

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/dmitrymomot/dealdocs/pkg/logger"
)

// Link is a composed deep link and the client it targets.
type Link struct {
	URL    string
	Client Descriptor
}

// Dispatcher composes a deep link for the preferred mail client and opens
// it. The preference is read on every call.
type Dispatcher struct {
	registry *Registry
	store    PreferenceStore
	opener   Opener
	log      *slog.Logger
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

func WithRegistry(r *Registry) DispatcherOption {
	return func(d *Dispatcher) {
		if r != nil {
			d.registry = r
		}
	}
}

func WithOpener(o Opener) DispatcherOption {
	return func(d *Dispatcher) {
		if o != nil {
			d.opener = o
		}
	}
}

func WithLogger(l *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if l != nil {
			d.log = l
		}
	}
}

// NewDispatcher reads the preference from store. Defaults: built-in
// registry, BrowserOpener, discard logger.
func NewDispatcher(store PreferenceStore, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		registry: DefaultRegistry(),
		store:    store,
		opener:   BrowserOpener{},
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.store == nil {
		d.store = NewMemoryStore("")
	}
	return d
}

// Registry returns the registry in use.
func (d *Dispatcher) Registry() *Registry { return d.registry }

// Resolve returns the preferred descriptor. A missing, unreadable or stale
// preference resolves to the default descriptor.
func (d *Dispatcher) Resolve(ctx context.Context) Descriptor {
	id, err := d.store.Load(ctx)
	if err != nil {
		d.log.WarnContext(ctx, "reading mail client preference", logger.Error(err))
		return d.registry.Default()
	}
	if id == "" {
		return d.registry.Default()
	}
	desc, ok := d.registry.Lookup(id)
	if !ok {
		d.log.InfoContext(ctx, "unknown mail client preference, using default", logger.MailClient(id))
		return d.registry.Default()
	}
	return desc
}

// Compose builds the deep link without opening it.
func (d *Dispatcher) Compose(ctx context.Context, recipient, subject string) (Link, error) {
	if strings.TrimSpace(subject) == "" {
		return Link{}, errors.Join(ErrDispatch, ErrEmptySubject)
	}
	desc := d.Resolve(ctx)
	return Link{URL: desc.Compose(strings.TrimSpace(recipient), subject), Client: desc}, nil
}

// Open composes the deep link and hands it to the opener. When opening
// fails the link is still returned with an ErrOpenBlocked error.
func (d *Dispatcher) Open(ctx context.Context, recipient, subject string) (Link, error) {
	link, err := d.Compose(ctx, recipient, subject)
	if err != nil {
		return Link{}, err
	}
	if err := d.opener.Open(ctx, link.URL); err != nil {
		if !errors.Is(err, ErrOpenBlocked) {
			err = errors.Join(ErrOpenBlocked, err)
		}
		d.log.WarnContext(ctx, "mail client handoff failed",
			logger.MailClient(link.Client.ID), logger.Error(err))
		return link, errors.Join(ErrDispatch, err)
	}
	d.log.DebugContext(ctx, "mail client opened", logger.MailClient(link.Client.ID))
	return link, nil
}

// Dispatch opens the preferred mail client with recipient and subject
// pre-filled and returns the composed URL.
func (d *Dispatcher) Dispatch(ctx context.Context, recipient, subject string) (string, error) {
	link, err := d.Open(ctx, recipient, subject)
	return link.URL, err
}
