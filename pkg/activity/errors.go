package activity

import "errors"

var (
	ErrInvalidEvent  = errors.New("activity: invalid event")
	ErrRecordFailed  = errors.New("activity: failed to record event")
	ErrRecorderClose = errors.New("activity: recorder is closed")
)
