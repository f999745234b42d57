package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dmitrymomot/dealdocs/pkg/activity"
	"github.com/dmitrymomot/dealdocs/pkg/clipboard"
	"github.com/dmitrymomot/dealdocs/pkg/deal"
	"github.com/dmitrymomot/dealdocs/pkg/doctree"
	"github.com/dmitrymomot/dealdocs/pkg/email"
	"github.com/dmitrymomot/dealdocs/pkg/logger"
	"github.com/dmitrymomot/dealdocs/pkg/mailclient"
	"github.com/dmitrymomot/dealdocs/pkg/payload"
	"github.com/dmitrymomot/dealdocs/pkg/templates"
	"github.com/dmitrymomot/dealdocs/pkg/transport"
)

// Dispatcher opens the mail client. *mailclient.Dispatcher implements it.
type Dispatcher interface {
	Open(ctx context.Context, recipient, subject string) (mailclient.Link, error)
}

// Target is where a Copy & Email run delivers: one clipboard and one
// dispatcher, usually scoped to a device.
type Target struct {
	Clipboard  clipboard.Writer
	Dispatcher Dispatcher
}

// Prepared is a rendered document and its transport payload.
type Prepared struct {
	Document doctree.Document
	Payload  payload.Payload
}

// Engine is safe for concurrent use. Each run works on its own tree.
type Engine struct {
	deals      deal.Repository
	templates  *templates.Registry
	normalizer *transport.Normalizer
	target     Target
	sender     email.EmailSender
	recorder   activity.Recorder
	log        *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

func WithTemplates(r *templates.Registry) Option {
	return func(e *Engine) {
		if r != nil {
			e.templates = r
		}
	}
}

func WithNormalizer(n *transport.Normalizer) Option {
	return func(e *Engine) {
		if n != nil {
			e.normalizer = n
		}
	}
}

// WithTarget sets the default clipboard and dispatcher used by
// CopyAndEmail.
func WithTarget(t Target) Option {
	return func(e *Engine) {
		if t.Clipboard != nil {
			e.target.Clipboard = t.Clipboard
		}
		if t.Dispatcher != nil {
			e.target.Dispatcher = t.Dispatcher
		}
	}
}

// WithSender enables Send.
func WithSender(s email.EmailSender) Option {
	return func(e *Engine) { e.sender = s }
}

func WithRecorder(r activity.Recorder) Option {
	return func(e *Engine) {
		if r != nil {
			e.recorder = r
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// New creates an engine reading deals from repo. Defaults: built-in
// templates, strict normalizer without rasterization, an in-memory
// clipboard, a dispatcher with an unset preference and no activity log.
func New(repo deal.Repository, opts ...Option) *Engine {
	e := &Engine{
		deals:      repo,
		templates:  templates.Default(),
		normalizer: transport.New(),
		target: Target{
			Clipboard:  clipboard.NewMemory(),
			Dispatcher: mailclient.NewDispatcher(nil),
		},
		recorder: activity.Nop,
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.With(logger.Component("pipeline"))
	return e
}

// Templates returns the template registry.
func (e *Engine) Templates() *templates.Registry { return e.templates }

// Render loads the deal and renders the on-screen document.
func (e *Engine) Render(ctx context.Context, dealID, kind string) (doctree.Document, error) {
	tpl, err := e.templates.Lookup(kind)
	if err != nil {
		return doctree.Document{}, err
	}
	rec, err := e.deals.Get(ctx, dealID)
	if err != nil {
		return doctree.Document{}, err
	}
	return tpl.Render(rec)
}

// Prepare renders the document and builds its transport payload. The
// rendered tree is left untouched.
func (e *Engine) Prepare(ctx context.Context, dealID, kind string) (Prepared, error) {
	doc, err := e.Render(ctx, dealID, kind)
	if err != nil {
		return Prepared{}, err
	}
	return e.PrepareDocument(ctx, doc)
}

// PrepareDocument builds the transport payload of an already rendered
// document.
func (e *Engine) PrepareDocument(ctx context.Context, doc doctree.Document) (Prepared, error) {
	tree, err := e.normalizer.Normalize(ctx, doc.Tree)
	if err != nil {
		return Prepared{}, err
	}
	p, err := payload.Build(tree)
	if err != nil {
		return Prepared{}, err
	}
	return Prepared{Document: doc, Payload: p}, nil
}

// CopyAndEmail delivers to the default target.
func (e *Engine) CopyAndEmail(ctx context.Context, dealID, kind string) Result {
	return e.CopyAndEmailTo(ctx, e.target, dealID, kind)
}

// CopyAndEmailTo copies the document to t.Clipboard and, once the copy
// succeeded, opens the mail client through t.Dispatcher.
func (e *Engine) CopyAndEmailTo(ctx context.Context, t Target, dealID, kind string) Result {
	start := time.Now()
	res := e.copyAndEmail(ctx, t, dealID, kind)
	e.record(ctx, activity.Event{
		DealID:       dealID,
		DocumentKind: kind,
		Action:       activity.ActionCopyAndEmail,
		MailClient:   res.MailClient,
	}, res, start)
	return res
}

func (e *Engine) copyAndEmail(ctx context.Context, t Target, dealID, kind string) Result {
	if t.Clipboard == nil {
		t.Clipboard = e.target.Clipboard
	}
	if t.Dispatcher == nil {
		t.Dispatcher = e.target.Dispatcher
	}

	prep, err := e.Prepare(ctx, dealID, kind)
	if err != nil {
		return prepareFailure(err)
	}

	if err := t.Clipboard.Write(ctx, prep.Payload); err != nil {
		return failed(NoticeCopyFailed, err)
	}

	link, err := t.Dispatcher.Open(ctx, prep.Document.Recipient, prep.Document.Subject)
	if err != nil {
		notice := NoticeDispatchFailed
		if errors.Is(err, mailclient.ErrOpenBlocked) {
			notice = NoticeOpenBlocked
		}
		return Result{Status: StatusCopied, Notice: notice, URL: link.URL, MailClient: link.Client.ID, Err: err}
	}
	return Result{Status: StatusSucceeded, Notice: NoticeSucceeded, URL: link.URL, MailClient: link.Client.ID}
}

// Send emails the document directly. An empty to uses the document's
// recipient.
func (e *Engine) Send(ctx context.Context, dealID, kind, to string) Result {
	start := time.Now()
	res := e.send(ctx, dealID, kind, to)
	e.record(ctx, activity.Event{
		DealID:       dealID,
		DocumentKind: kind,
		Action:       activity.ActionSend,
	}, res, start)
	return res
}

func (e *Engine) send(ctx context.Context, dealID, kind, to string) Result {
	if e.sender == nil {
		return failed(NoticeSendFailed, ErrNoSender)
	}
	prep, err := e.Prepare(ctx, dealID, kind)
	if err != nil {
		return prepareFailure(err)
	}
	if to == "" {
		to = prep.Document.Recipient
	}
	if to == "" {
		return failed(NoticeNoRecipient, ErrNoRecipient)
	}

	err = e.sender.SendEmail(ctx, email.SendEmailParams{
		SendTo:   to,
		Subject:  prep.Document.Subject,
		BodyHTML: payload.Document(prep.Payload, prep.Document.Subject),
		BodyText: prep.Payload.PlainText,
		Tag:      prep.Document.Kind,
	})
	if err != nil {
		return failed(NoticeSendFailed, err)
	}
	return Result{Status: StatusSucceeded, Notice: NoticeSent}
}

func prepareFailure(err error) Result {
	switch {
	case errors.Is(err, deal.ErrNotFound), errors.Is(err, deal.ErrInvalidID):
		return failed(NoticeNotFound, err)
	case errors.Is(err, templates.ErrUnknownTemplate):
		return failed(NoticeUnknownKind, err)
	case errors.Is(err, templates.ErrMissingField):
		return failed(NoticeMissingData, err)
	}
	return failed(NoticeRenderFailed, err)
}

func (e *Engine) record(ctx context.Context, ev activity.Event, res Result, start time.Time) {
	ev.Status = string(res.Status)
	if res.Err != nil {
		ev.Error = res.Err.Error()
	}

	attrs := []any{
		logger.DealID(ev.DealID),
		logger.DocumentKind(ev.DocumentKind),
		slog.String("action", string(ev.Action)),
		logger.Status(ev.Status),
		logger.Duration(time.Since(start)),
	}
	if ev.MailClient != "" {
		attrs = append(attrs, logger.MailClient(ev.MailClient))
	}
	if res.Err != nil {
		attrs = append(attrs, logger.Error(res.Err))
		e.log.WarnContext(ctx, "document share did not complete", attrs...)
	} else {
		e.log.InfoContext(ctx, "document shared", attrs...)
	}

	if err := e.recorder.Record(ctx, ev); err != nil {
		e.log.ErrorContext(ctx, "recording activity", logger.Error(err))
	}
}
