package web

import "errors"

var (
	ErrNoEngine  = errors.New("web: pipeline engine is required")
	ErrNoCookies = errors.New("web: cookie manager is required")
	ErrBadBody   = errors.New("web: malformed request body")
)
