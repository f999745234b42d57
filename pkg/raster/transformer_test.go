package raster_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/dealdocs/pkg/raster"
)

func pngBytes(t *testing.T, w, h int, alpha uint8) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 200, A: alpha})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func dataURI(data []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(data)
}

func decodeResult(t *testing.T, img raster.Image) image.Image {
	t.Helper()
	_, payload, ok := strings.Cut(img.DataURI, ",")
	require.True(t, ok)
	raw, err := base64.StdEncoding.DecodeString(payload)
	require.NoError(t, err)
	out, _, err := image.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	return out
}

func TestScaledSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		w, h, target int
		wantH        int
	}{
		{"half height rounds up", 1000, 500, 175, 88},
		{"square", 400, 400, 175, 175},
		{"upscale", 100, 50, 175, 88},
		{"floored at one pixel", 5000, 1, 175, 1},
		{"tall", 175, 1000, 175, 1000},
		{"zero natural width", 0, 300, 175, 1},
		{"negative natural width", -10, 300, 175, 1},
		{"zero natural height", 400, 0, 175, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			w, h := raster.ScaledSize(tt.w, tt.h, tt.target)
			assert.Equal(t, tt.target, w)
			assert.Equal(t, tt.wantH, h)
		})
	}
}

func TestResize(t *testing.T) {
	t.Parallel()

	t.Run("opaque image becomes jpeg with bounded size", func(t *testing.T) {
		t.Parallel()

		tr := raster.New()
		img, err := tr.Resize(context.Background(), dataURI(pngBytes(t, 1000, 500, 255)), 175)
		require.NoError(t, err)

		assert.Equal(t, 175, img.Width)
		assert.Equal(t, 88, img.Height)
		assert.Equal(t, "image/jpeg", img.MIMEType)
		assert.True(t, strings.HasPrefix(img.DataURI, "data:image/jpeg;base64,"))

		out := decodeResult(t, img)
		assert.Equal(t, 175, out.Bounds().Dx())
		assert.Equal(t, 88, out.Bounds().Dy())
	})

	t.Run("transparent image stays png", func(t *testing.T) {
		t.Parallel()

		tr := raster.New()
		img, err := tr.Resize(context.Background(), dataURI(pngBytes(t, 200, 100, 128)), 50)
		require.NoError(t, err)
		assert.Equal(t, "image/png", img.MIMEType)
		assert.Equal(t, 25, img.Height)
		decodeResult(t, img)
	})

	t.Run("invalid width", func(t *testing.T) {
		t.Parallel()

		_, err := raster.New().Resize(context.Background(), dataURI(pngBytes(t, 10, 10, 255)), 0)
		assert.ErrorIs(t, err, raster.ErrInvalidWidth)
	})

	t.Run("undecodable data", func(t *testing.T) {
		t.Parallel()

		_, err := raster.New().Resize(context.Background(), "data:image/png;base64,"+base64.StdEncoding.EncodeToString([]byte("nope")), 175)
		assert.ErrorIs(t, err, raster.ErrImageLoad)
		assert.ErrorIs(t, err, raster.ErrDecode)
	})

	t.Run("unsupported scheme", func(t *testing.T) {
		t.Parallel()

		_, err := raster.New().Resize(context.Background(), "ftp://example.com/a.png", 175)
		assert.ErrorIs(t, err, raster.ErrImageLoad)
		assert.ErrorIs(t, err, raster.ErrUnsupportedSource)
	})

	t.Run("natural size is reported on failure", func(t *testing.T) {
		t.Parallel()

		tr := raster.New(raster.WithMaxPixels(100))
		_, err := tr.Resize(context.Background(), dataURI(pngBytes(t, 1000, 500, 255)), 175)
		require.ErrorIs(t, err, raster.ErrTooLarge)

		var le *raster.LoadError
		require.True(t, errors.As(err, &le))
		assert.Equal(t, 1000, le.Ref.NaturalWidth)
		assert.Equal(t, 500, le.Ref.NaturalHeight)
	})

	t.Run("bounded wait", func(t *testing.T) {
		t.Parallel()

		release := make(chan struct{})
		t.Cleanup(func() { close(release) })

		tr := raster.New(
			raster.WithTimeout(50*time.Millisecond),
			raster.WithSource("slow", raster.SourceFunc(func(ctx context.Context, _ *url.URL) ([]byte, error) {
				<-release
				return nil, errors.New("released")
			})),
		)

		start := time.Now()
		_, err := tr.Resize(context.Background(), "slow://never/resolves.png", 175)
		assert.ErrorIs(t, err, raster.ErrImageLoad)
		assert.ErrorIs(t, err, raster.ErrTimeout)
		assert.Less(t, time.Since(start), 2*time.Second)
	})

	t.Run("results are memoized", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		data := pngBytes(t, 40, 20, 255)
		tr := raster.New(raster.WithSource("mem", raster.SourceFunc(func(context.Context, *url.URL) ([]byte, error) {
			calls.Add(1)
			return data, nil
		})))

		for range 3 {
			_, err := tr.Resize(context.Background(), "mem://logo", 20)
			require.NoError(t, err)
		}
		_, err := tr.Resize(context.Background(), "mem://logo", 30)
		require.NoError(t, err)
		assert.Equal(t, int32(2), calls.Load())
	})
}

func TestProbe(t *testing.T) {
	t.Parallel()

	ref, err := raster.New().Probe(context.Background(), dataURI(pngBytes(t, 64, 32, 255)))
	require.NoError(t, err)
	assert.True(t, ref.KnownSize())
	assert.Equal(t, 64, ref.NaturalWidth)
	assert.Equal(t, 32, ref.NaturalHeight)
}

func TestHTTPSource(t *testing.T) {
	t.Parallel()

	data := pngBytes(t, 100, 100, 255)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/logo.png":
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(data)
		case "/page.html":
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html></html>"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	t.Run("allowed origin", func(t *testing.T) {
		t.Parallel()

		tr := raster.New(raster.WithHTTP(raster.NewHTTPSource([]string{srv.URL + "/"})))
		img, err := tr.Resize(context.Background(), srv.URL+"/logo.png", 50)
		require.NoError(t, err)
		assert.Equal(t, 50, img.Height)
	})

	t.Run("cross origin", func(t *testing.T) {
		t.Parallel()

		tr := raster.New(raster.WithHTTP(raster.NewHTTPSource([]string{"https://cdn.example.com"})))
		_, err := tr.Resize(context.Background(), srv.URL+"/logo.png", 50)
		assert.ErrorIs(t, err, raster.ErrImageLoad)
		assert.ErrorIs(t, err, raster.ErrCrossOrigin)
	})

	t.Run("wildcard", func(t *testing.T) {
		t.Parallel()

		tr := raster.New(raster.WithHTTP(raster.NewHTTPSource([]string{"*"})))
		_, err := tr.Resize(context.Background(), srv.URL+"/logo.png", 50)
		assert.NoError(t, err)
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()

		tr := raster.New(raster.WithHTTP(raster.NewHTTPSource([]string{"*"})))
		_, err := tr.Resize(context.Background(), srv.URL+"/missing.png", 50)
		assert.ErrorIs(t, err, raster.ErrSourceNotFound)
	})

	t.Run("not an image", func(t *testing.T) {
		t.Parallel()

		tr := raster.New(raster.WithHTTP(raster.NewHTTPSource([]string{"*"})))
		_, err := tr.Resize(context.Background(), srv.URL+"/page.html", 50)
		assert.ErrorIs(t, err, raster.ErrDecode)
	})

	t.Run("size limit", func(t *testing.T) {
		t.Parallel()

		tr := raster.New(raster.WithHTTP(raster.NewHTTPSource([]string{"*"}, raster.WithMaxBytes(16))))
		_, err := tr.Resize(context.Background(), srv.URL+"/logo.png", 50)
		assert.ErrorIs(t, err, raster.ErrTooLarge)
	})
}

func TestLocalSource(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "logos"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "logos", "acme.png"), pngBytes(t, 350, 100, 255), 0o644))

	local, err := raster.NewLocalSource(dir)
	require.NoError(t, err)
	tr := raster.New(raster.WithSource("file", local))

	img, err := tr.Resize(context.Background(), "file:///logos/acme.png", 175)
	require.NoError(t, err)
	assert.Equal(t, 50, img.Height)

	_, err = tr.Resize(context.Background(), "file:///../../etc/passwd", 175)
	assert.ErrorIs(t, err, raster.ErrImageLoad)

	_, err = raster.NewLocalSource("")
	assert.ErrorIs(t, err, raster.ErrInvalidConfig)
}

type fakeS3 struct {
	objects map[string][]byte
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[*in.Bucket+"/"+*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func TestS3Source(t *testing.T) {
	t.Parallel()

	var jpg bytes.Buffer
	src := image.NewRGBA(image.Rect(0, 0, 600, 400))
	require.NoError(t, jpeg.Encode(&jpg, src, nil))

	client := &fakeS3{objects: map[string][]byte{"photos/elm.jpg": jpg.Bytes()}}
	tr := raster.New(raster.WithSource("s3", raster.NewS3Source(client)))

	img, err := tr.Resize(context.Background(), "s3://photos/elm.jpg", 300)
	require.NoError(t, err)
	assert.Equal(t, 200, img.Height)
	assert.Equal(t, "image/jpeg", img.MIMEType)

	_, err = tr.Resize(context.Background(), "s3://photos/missing.jpg", 300)
	assert.ErrorIs(t, err, raster.ErrSourceNotFound)
}
