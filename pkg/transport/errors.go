package transport

import "errors"

var (
	// ErrStyleMapping means a block kind has no inline style rule.
	ErrStyleMapping  = errors.New("transport: no inline style rule for block kind")
	ErrDuplicateRule = errors.New("transport: duplicate style rule")
	ErrInvalidRule   = errors.New("transport: invalid style rule")
	ErrEmptyTree     = errors.New("transport: empty presentation tree")
)
