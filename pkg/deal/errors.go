package deal

import "errors"

var (
	ErrNotFound     = errors.New("deal: record not found")
	ErrInvalidID    = errors.New("deal: invalid record id")
	ErrUnknownField = errors.New("deal: unknown field")
	ErrInvalidValue = errors.New("deal: invalid field value")
	ErrStorage      = errors.New("deal: storage failure")
)
