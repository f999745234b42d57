// Package raster downsamples images to a bounded display width and embeds
// them as data URIs so documents stay self-contained inside email size
// limits.
//
// Sources are pluggable per URI scheme: data URIs are built in, http(s)
// loads from allow-listed origins only (HTTPSource), file: reads below a
// base directory (LocalSource) and s3:// reads objects from a bucket
// (S3Source). Every Resize call is bounded by the configured timeout and
// memoized by source and width.
//
// Opaque images are exported as JPEG; images with transparency stay PNG.
//
//	tr := raster.New(
//	    raster.WithHTTP(raster.NewHTTPSource([]string{"https://cdn.example.com"})),
//	    raster.WithTimeout(5*time.Second),
//	)
//	img, err := tr.Resize(ctx, "https://cdn.example.com/logo.png", raster.DefaultWidth)
//	if errors.Is(err, raster.ErrImageLoad) {
//	    // keep the original reference
//	}
package raster
