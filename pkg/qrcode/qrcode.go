package qrcode

import (
	"encoding/base64"
	"errors"
	"net/url"
	"strings"

	skipqrcode "github.com/skip2/go-qrcode"
)

var (
	ErrEmptyContent   = errors.New("qrcode: content cannot be empty")
	ErrInvalidURL     = errors.New("qrcode: invalid link")
	ErrFailedToEncode = errors.New("qrcode: failed to generate QR code")
)

// DefaultSize is the edge length in pixels used when no size is given.
const DefaultSize = 256

// Option configures encoding.
type Option func(*options)

type options struct {
	size  int
	level skipqrcode.RecoveryLevel
}

// WithSize sets the image edge length in pixels. Non-positive sizes are ignored.
func WithSize(px int) Option {
	return func(o *options) {
		if px > 0 {
			o.size = px
		}
	}
}

// WithHighRecovery raises error correction so the code survives scaling
// and recompression by mail clients.
func WithHighRecovery() Option {
	return func(o *options) { o.level = skipqrcode.High }
}

// PNG encodes content as a PNG QR code.
func PNG(content string, opts ...Option) ([]byte, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	o := options{size: DefaultSize, level: skipqrcode.Medium}
	for _, opt := range opts {
		opt(&o)
	}
	png, err := skipqrcode.Encode(content, o.level, o.size)
	if err != nil {
		return nil, errors.Join(ErrFailedToEncode, err)
	}
	return png, nil
}

// DataURI encodes content as a base64 PNG data URI.
func DataURI(content string, opts ...Option) (string, error) {
	png, err := PNG(content, opts...)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

// Link encodes an absolute http(s) link as a data URI.
func Link(rawURL string, opts ...Option) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", errors.Join(ErrInvalidURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", ErrInvalidURL
	}
	return DataURI(u.String(), opts...)
}
