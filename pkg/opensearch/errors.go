package opensearch

import "errors"

var (
	ErrNoAddresses       = errors.New("opensearch: no addresses configured")
	ErrConnectionFailed  = errors.New("opensearch: connection failed")
	ErrHealthcheckFailed = errors.New("opensearch: healthcheck failed")
)
