package raster

import (
	"errors"
	"fmt"
)

var (
	// ErrImageLoad is the umbrella for every failure to produce a rasterized
	// image. Callers keep the original reference when they see it.
	ErrImageLoad = errors.New("raster: image could not be loaded")

	ErrInvalidWidth      = errors.New("raster: target width must be positive")
	ErrCrossOrigin       = errors.New("raster: origin not allowed")
	ErrUnsupportedSource = errors.New("raster: unsupported source scheme")
	ErrTimeout           = errors.New("raster: image load timed out")
	ErrDecode            = errors.New("raster: image could not be decoded")
	ErrInvalidDimensions = errors.New("raster: invalid image dimensions")
	ErrTooLarge          = errors.New("raster: image exceeds size limit")
	ErrSourceNotFound    = errors.New("raster: image source not found")
	ErrInvalidConfig     = errors.New("raster: invalid configuration")
	ErrEncode            = errors.New("raster: image could not be encoded")
)

// LoadError reports a failed rasterization together with whatever was
// learned about the source before the failure. It matches ErrImageLoad.
type LoadError struct {
	Ref Reference
	Err error
}

func (e *LoadError) Error() string {
	src := e.Ref.SourceURI
	if IsDataURI(src) && len(src) > 32 {
		src = src[:32] + "..."
	}
	return fmt.Sprintf("%s: %s: %v", ErrImageLoad, src, e.Err)
}

func (e *LoadError) Unwrap() []error {
	return []error{ErrImageLoad, e.Err}
}

func loadError(ref Reference, err error) error {
	return &LoadError{Ref: ref, Err: err}
}
