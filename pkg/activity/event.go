package activity

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Action names what the user asked for.
type Action string

const (
	ActionCopyAndEmail Action = "copy-and-email"
	ActionSend         Action = "send"
)

// Event is one recorded pipeline outcome.
type Event struct {
	ID           string    `json:"id"`
	DealID       string    `json:"deal_id"`
	DocumentKind string    `json:"document_kind"`
	Action       Action    `json:"action"`
	MailClient   string    `json:"mail_client,omitempty"`
	Status       string    `json:"status"`
	Error        string    `json:"error,omitempty"`
	At           time.Time `json:"at"`
}

// Validate checks the fields every event needs.
func (e Event) Validate() error {
	switch {
	case e.DealID == "":
		return fmt.Errorf("%w: deal id is required", ErrInvalidEvent)
	case e.DocumentKind == "":
		return fmt.Errorf("%w: document kind is required", ErrInvalidEvent)
	case e.Status == "":
		return fmt.Errorf("%w: status is required", ErrInvalidEvent)
	}
	return nil
}

// Stamp fills in a missing ID and timestamp.
func (e Event) Stamp() Event {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	return e
}

// Recorder stores events.
type Recorder interface {
	Record(ctx context.Context, e Event) error
}

// RecorderFunc adapts a function to Recorder.
type RecorderFunc func(ctx context.Context, e Event) error

func (f RecorderFunc) Record(ctx context.Context, e Event) error { return f(ctx, e) }

// Nop discards events.
var Nop Recorder = RecorderFunc(func(context.Context, Event) error { return nil })
