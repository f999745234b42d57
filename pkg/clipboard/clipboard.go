package clipboard

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/dmitrymomot/dealdocs/pkg/payload"
)

var (
	// ErrClipboard wraps every write failure.
	ErrClipboard         = errors.New("clipboard: write failed")
	ErrPermissionDenied  = errors.New("clipboard: permission denied")
	ErrUnsupportedFormat = errors.New("clipboard: unsupported format")
	ErrEmpty             = errors.New("clipboard: empty")
)

// Format is the MIME type of one clipboard representation.
type Format string

const (
	FormatHTML  Format = "text/html"
	FormatPlain Format = "text/plain"
)

// Entry is a committed clipboard entry.
type Entry struct {
	ID        string    `json:"id"`
	HTML      string    `json:"-"`
	PlainText string    `json:"-"`
	CopiedAt  time.Time `json:"copied_at"`
}

// Get returns the representation for f.
func (e Entry) Get(f Format) (string, bool) {
	switch f {
	case FormatHTML:
		return e.HTML, e.HTML != ""
	case FormatPlain:
		return e.PlainText, true
	}
	return "", false
}

// Writer commits a payload as one entry.
type Writer interface {
	Write(ctx context.Context, p payload.Payload) error
}

// Reader returns the current entry.
type Reader interface {
	Read(ctx context.Context) (Entry, error)
}

// WriterFunc adapts a function to Writer.
type WriterFunc func(ctx context.Context, p payload.Payload) error

func (f WriterFunc) Write(ctx context.Context, p payload.Payload) error { return f(ctx, p) }

// Validate checks that p can be committed: the HTML representation must be
// present and both representations must be valid UTF-8.
func Validate(p payload.Payload) error {
	switch {
	case p.HTML == "":
		return fmt.Errorf("%w: %w: empty html", ErrClipboard, ErrUnsupportedFormat)
	case !utf8.ValidString(p.HTML):
		return fmt.Errorf("%w: %w: html is not valid UTF-8", ErrClipboard, ErrUnsupportedFormat)
	case !utf8.ValidString(p.PlainText):
		return fmt.Errorf("%w: %w: plain text is not valid UTF-8", ErrClipboard, ErrUnsupportedFormat)
	}
	return nil
}

// fail wraps err in ErrClipboard unless it already is one.
func fail(err error) error {
	if err == nil || errors.Is(err, ErrClipboard) {
		return err
	}
	return errors.Join(ErrClipboard, err)
}
