package raster

import "strings"

// DefaultWidth is the display width of letterhead images.
const DefaultWidth = 175

// Reference describes a source image before rasterization. Natural
// dimensions are zero when unknown.
type Reference struct {
	SourceURI     string
	NaturalWidth  int
	NaturalHeight int
}

// KnownSize reports whether the natural dimensions are known.
func (r Reference) KnownSize() bool {
	return r.NaturalWidth > 0 && r.NaturalHeight > 0
}

// Image is a self-contained rasterized image.
type Image struct {
	DataURI  string
	Width    int
	Height   int
	MIMEType string
}

// IsDataURI reports whether uri embeds its payload.
func IsDataURI(uri string) bool {
	return strings.HasPrefix(strings.TrimSpace(uri), "data:")
}
