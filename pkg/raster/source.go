package raster

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"
)

// Source fetches raw image bytes for one URI scheme.
type Source interface {
	Fetch(ctx context.Context, ref *url.URL) ([]byte, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, ref *url.URL) ([]byte, error)

func (f SourceFunc) Fetch(ctx context.Context, ref *url.URL) ([]byte, error) {
	return f(ctx, ref)
}

// decodeDataURI returns the payload of a data: URI.
func decodeDataURI(raw string) ([]byte, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(raw), "data:")
	if !ok {
		return nil, fmt.Errorf("%w: not a data URI", ErrUnsupportedSource)
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, fmt.Errorf("%w: malformed data URI", ErrDecode)
	}
	if strings.HasSuffix(meta, ";base64") {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, errors.Join(ErrDecode, err)
		}
		return data, nil
	}
	data, err := url.PathUnescape(payload)
	if err != nil {
		return nil, errors.Join(ErrDecode, err)
	}
	return []byte(data), nil
}

// HTTPSource loads images over http(s) from allow-listed origins only.
type HTTPSource struct {
	client   *http.Client
	allowed  []string
	anyHost  bool
	maxBytes int64
}

// HTTPOption configures an HTTPSource.
type HTTPOption func(*HTTPSource)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(s *HTTPSource) {
		if c != nil {
			s.client = c
		}
	}
}

// WithMaxBytes bounds the response body size.
func WithMaxBytes(n int64) HTTPOption {
	return func(s *HTTPSource) {
		if n > 0 {
			s.maxBytes = n
		}
	}
}

// NewHTTPSource allows the given origins ("https://cdn.example.com"). The
// origin "*" allows every host.
func NewHTTPSource(origins []string, opts ...HTTPOption) *HTTPSource {
	s := &HTTPSource{
		client:   &http.Client{Timeout: 10 * time.Second},
		maxBytes: 10 << 20,
	}
	for _, o := range origins {
		o = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(o)), "/")
		switch o {
		case "":
		case "*":
			s.anyHost = true
		default:
			s.allowed = append(s.allowed, o)
		}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Allowed reports whether ref belongs to an allow-listed origin.
func (s *HTTPSource) Allowed(ref *url.URL) bool {
	if s.anyHost {
		return true
	}
	origin := strings.ToLower(ref.Scheme + "://" + ref.Host)
	return slices.Contains(s.allowed, origin)
}

func (s *HTTPSource) Fetch(ctx context.Context, ref *url.URL) ([]byte, error) {
	if !s.Allowed(ref) {
		return nil, fmt.Errorf("%w: %s://%s", ErrCrossOrigin, ref.Scheme, ref.Host)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "image/*")
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, ref)
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "image/") && !strings.HasPrefix(ct, "application/octet-stream") {
		return nil, fmt.Errorf("%w: content type %q", ErrDecode, ct)
	}
	return readLimited(resp.Body, s.maxBytes)
}

func readLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, ErrTooLarge
	}
	return data, nil
}
