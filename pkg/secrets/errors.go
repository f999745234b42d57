package secrets

import "errors"

var (
	ErrMasterTooShort      = errors.New("secrets: master secret must be at least 32 bytes")
	ErrEmptyPurpose        = errors.New("secrets: purpose is required")
	ErrKeyDerivationFailed = errors.New("secrets: key derivation failed")
	ErrKeyGeneration       = errors.New("secrets: random key generation failed")
)
