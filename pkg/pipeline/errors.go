package pipeline

import "errors"

var (
	ErrNoSender    = errors.New("pipeline: direct sending is not configured")
	ErrNoRecipient = errors.New("pipeline: document has no recipient")
)
