package raster

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"log/slog"
	"math"
	"net/url"
	"strings"
	"time"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/dmitrymomot/dealdocs/pkg/logger"
)

// Transformer downsamples images to a bounded display width and re-encodes
// them as data URIs. Safe for concurrent use.
type Transformer struct {
	sources   map[string]Source
	timeout   time.Duration
	maxPixels int
	quality   int
	cache     *imageCache
	log       *slog.Logger
}

// Option configures a Transformer.
type Option func(*Transformer)

// WithSource registers src for a URI scheme ("https", "file", "s3").
func WithSource(scheme string, src Source) Option {
	return func(t *Transformer) {
		if src != nil {
			t.sources[strings.ToLower(scheme)] = src
		}
	}
}

// WithHTTP registers src for both http and https.
func WithHTTP(src *HTTPSource) Option {
	return func(t *Transformer) {
		if src != nil {
			t.sources["http"] = src
			t.sources["https"] = src
		}
	}
}

// WithTimeout bounds each Resize call.
func WithTimeout(d time.Duration) Option {
	return func(t *Transformer) {
		if d > 0 {
			t.timeout = d
		}
	}
}

// WithCacheSize sets the memoization capacity. Zero disables caching.
func WithCacheSize(n int) Option {
	return func(t *Transformer) { t.cache = newImageCache(n) }
}

// WithMaxPixels rejects sources whose decoded size exceeds n pixels.
func WithMaxPixels(n int) Option {
	return func(t *Transformer) {
		if n > 0 {
			t.maxPixels = n
		}
	}
}

// WithJPEGQuality sets the JPEG encoder quality (1..100).
func WithJPEGQuality(q int) Option {
	return func(t *Transformer) {
		if q >= 1 && q <= 100 {
			t.quality = q
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(t *Transformer) {
		if l != nil {
			t.log = l
		}
	}
}

// New creates a transformer. Data URIs are always supported; other schemes
// need a registered Source.
func New(opts ...Option) *Transformer {
	t := &Transformer{
		sources:   map[string]Source{},
		timeout:   5 * time.Second,
		maxPixels: 40_000_000,
		quality:   85,
		cache:     newImageCache(256),
		log:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// FromConfig builds a transformer from cfg plus extra options.
func FromConfig(cfg Config, opts ...Option) (*Transformer, error) {
	base := []Option{
		WithTimeout(cfg.Timeout),
		WithCacheSize(cfg.CacheSize),
		WithMaxPixels(cfg.MaxPixels),
		WithJPEGQuality(cfg.JPEGQuality),
		WithHTTP(NewHTTPSource(cfg.AllowedOrigins, WithMaxBytes(cfg.MaxBytes))),
	}
	if cfg.LocalDir != "" {
		local, err := NewLocalSource(cfg.LocalDir)
		if err != nil {
			return nil, err
		}
		base = append(base, WithSource("file", local))
	}
	return New(append(base, opts...)...), nil
}

type result struct {
	img Image
	err error
}

// Resize loads sourceURI and scales it to targetWidth, keeping the aspect
// ratio. Every load failure, including exceeding the configured wait,
// matches ErrImageLoad; errors.As with *LoadError exposes the natural size
// when it was learned.
func (t *Transformer) Resize(ctx context.Context, sourceURI string, targetWidth int) (Image, error) {
	if targetWidth <= 0 {
		return Image{}, ErrInvalidWidth
	}
	key := cacheKey{uri: sourceURI, width: targetWidth}
	if img, ok := t.cache.get(key); ok {
		return img, nil
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	start := time.Now()
	done := make(chan result, 1)
	ref := Reference{SourceURI: sourceURI}
	go func() {
		img, err := t.resize(ctx, &ref, targetWidth)
		done <- result{img: img, err: err}
	}()

	select {
	case <-ctx.Done():
		err := ctx.Err()
		if errors.Is(err, context.DeadlineExceeded) {
			err = errors.Join(ErrTimeout, err)
		}
		t.log.WarnContext(ctx, "image load abandoned",
			logger.ImageSource(sourceURI), logger.Duration(time.Since(start)), logger.Error(err))
		return Image{}, loadError(Reference{SourceURI: sourceURI}, err)
	case res := <-done:
		if res.err != nil {
			t.log.WarnContext(ctx, "image load failed",
				logger.ImageSource(sourceURI), logger.Error(res.err))
			return Image{}, res.err
		}
		t.cache.put(key, res.img)
		t.log.DebugContext(ctx, "image rasterized",
			logger.ImageSource(sourceURI),
			slog.Int("width", res.img.Width),
			slog.Int("height", res.img.Height),
			logger.Duration(time.Since(start)))
		return res.img, nil
	}
}

// Probe reads the natural dimensions of sourceURI without resampling.
func (t *Transformer) Probe(ctx context.Context, sourceURI string) (Reference, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	ref := Reference{SourceURI: sourceURI}
	data, err := t.fetch(ctx, sourceURI)
	if err != nil {
		return ref, loadError(ref, err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return ref, loadError(ref, errors.Join(ErrDecode, err))
	}
	ref.NaturalWidth, ref.NaturalHeight = cfg.Width, cfg.Height
	return ref, nil
}

// resize runs in its own goroutine; ref is owned by it until it returns.
func (t *Transformer) resize(ctx context.Context, ref *Reference, targetWidth int) (Image, error) {
	data, err := t.fetch(ctx, ref.SourceURI)
	if err != nil {
		return Image{}, loadError(*ref, err)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Image{}, loadError(*ref, errors.Join(ErrDecode, err))
	}
	ref.NaturalWidth, ref.NaturalHeight = cfg.Width, cfg.Height
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return Image{}, loadError(*ref, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, cfg.Width, cfg.Height))
	}
	if cfg.Width*cfg.Height > t.maxPixels {
		return Image{}, loadError(*ref, fmt.Errorf("%w: %dx%d", ErrTooLarge, cfg.Width, cfg.Height))
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Image{}, loadError(*ref, errors.Join(ErrDecode, err))
	}
	if err := ctx.Err(); err != nil {
		return Image{}, loadError(*ref, err)
	}

	w, h := ScaledSize(cfg.Width, cfg.Height, targetWidth)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	var buf bytes.Buffer
	mime := "image/png"
	if isOpaque(src) {
		mime = "image/jpeg"
		err = jpeg.Encode(&buf, dst, &jpeg.Options{Quality: t.quality})
	} else {
		err = png.Encode(&buf, dst)
	}
	if err != nil {
		return Image{}, loadError(*ref, errors.Join(ErrEncode, err))
	}

	return Image{
		DataURI:  "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(buf.Bytes()),
		Width:    w,
		Height:   h,
		MIMEType: mime,
	}, nil
}

func (t *Transformer) fetch(ctx context.Context, uri string) ([]byte, error) {
	if IsDataURI(uri) {
		return decodeDataURI(uri)
	}
	ref, err := url.Parse(strings.TrimSpace(uri))
	if err != nil {
		return nil, errors.Join(ErrUnsupportedSource, err)
	}
	src, ok := t.sources[strings.ToLower(ref.Scheme)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedSource, ref.Scheme)
	}
	return src.Fetch(ctx, ref)
}

// ScaledSize returns the output size for a natural size scaled to
// targetWidth: the height keeps the aspect ratio, rounded half away from
// zero and floored at one pixel. An unknown natural width gives a one
// pixel height.
func ScaledSize(naturalWidth, naturalHeight, targetWidth int) (int, int) {
	if naturalWidth <= 0 {
		return targetWidth, 1
	}
	scale := float64(targetWidth) / float64(naturalWidth)
	h := int(math.Round(float64(naturalHeight) * scale))
	return targetWidth, max(1, h)
}

// isOpaque reports whether every pixel of img is fully opaque.
func isOpaque(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return o.Opaque()
	}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a != 0xffff {
				return false
			}
		}
	}
	return true
}
