package raster

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// LocalSource serves file: URIs from a base directory. Every resolved path
// must stay inside that directory.
type LocalSource struct {
	baseDir  string
	maxBytes int64
}

// NewLocalSource resolves baseDir to an absolute path.
func NewLocalSource(baseDir string) (*LocalSource, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("%w: empty local image directory", ErrInvalidConfig)
	}
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, errors.Join(ErrInvalidConfig, err)
	}
	return &LocalSource{baseDir: abs, maxBytes: 10 << 20}, nil
}

func (s *LocalSource) Fetch(ctx context.Context, ref *url.URL) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.resolve(ref)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, ref)
	}
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return readLimited(f, s.maxBytes)
}

// resolve maps file:///logos/a.png and file:logos/a.png to a path under
// baseDir.
func (s *LocalSource) resolve(ref *url.URL) (string, error) {
	p := ref.Path
	if p == "" {
		p = ref.Opaque
	}
	if p == "" {
		return "", fmt.Errorf("%w: empty path", ErrSourceNotFound)
	}
	abs := filepath.Join(s.baseDir, filepath.Clean("/"+p))
	if !strings.HasPrefix(abs, s.baseDir+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: path escapes base directory: %s", ErrCrossOrigin, p)
	}
	return abs, nil
}
