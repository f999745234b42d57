package mailclient

import "errors"

var (
	ErrUnknownClient   = errors.New("mailclient: unknown client")
	ErrInvalidRegistry = errors.New("mailclient: invalid registry")
	ErrPreferenceStore = errors.New("mailclient: preference store failure")

	// ErrDispatch wraps every dispatch failure. When it is returned together
	// with a non-empty URL the clipboard content is still valid.
	ErrDispatch     = errors.New("mailclient: dispatch failed")
	ErrEmptySubject = errors.New("mailclient: subject is required")
	ErrOpenBlocked  = errors.New("mailclient: could not open mail client")
)
