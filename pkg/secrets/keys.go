package secrets

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	// KeySize is the length of generated and derived keys.
	KeySize = 32

	// salt separates these keys from any other HKDF use of the same master.
	salt = "dealdocs-secrets-v1"
)

// GenerateKey returns KeySize random bytes.
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, errors.Join(ErrKeyGeneration, err)
	}
	return key, nil
}

// Derive returns a KeySize key bound to purpose. Equal inputs always give
// the same key.
func Derive(master []byte, purpose string) ([]byte, error) {
	if len(master) < KeySize {
		return nil, ErrMasterTooShort
	}
	if purpose == "" {
		return nil, ErrEmptyPurpose
	}

	key := make([]byte, KeySize)
	r := hkdf.New(sha256.New, master, []byte(salt), []byte(purpose))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, errors.Join(ErrKeyDerivationFailed, err)
	}
	return key, nil
}

// DeriveHex is Derive with a hex encoded result, for APIs taking string
// secrets.
func DeriveHex(master, purpose string) (string, error) {
	key, err := Derive([]byte(master), purpose)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(key), nil
}

// DeriveAll derives one hex key per master, keeping their order.
func DeriveAll(masters []string, purpose string) ([]string, error) {
	out := make([]string, 0, len(masters))
	for _, m := range masters {
		key, err := DeriveHex(m, purpose)
		if err != nil {
			return nil, err
		}
		out = append(out, key)
	}
	return out, nil
}
