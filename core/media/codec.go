package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
)

// ErrUndecodable is returned when payload bytes cannot be decoded as a
// supported raster image.
var ErrUndecodable = errors.New("media: undecodable image payload")

// Image is a normalized raster ready for document assembly. Data always
// holds JPEG bytes regardless of the source format.
type Image struct {
	Data   []byte
	Width  int
	Height int
}

// Codec normalizes incoming raster payloads: decodes JPEG or PNG,
// downscales oversized images, and re-encodes everything as JPEG so the
// rest of the pipeline deals with a single format.
type Codec struct {
	// BoundPx caps the longer side of an image in pixels. Images already
	// within the bound keep their dimensions; nothing is ever upscaled.
	BoundPx int
	// JPEGQuality is passed to the JPEG encoder (1-100).
	JPEGQuality int
}

// NewCodec returns a codec with the provided bound and quality,
// falling back to safe defaults for zeroed values.
func NewCodec(boundPx, quality int) *Codec {
	if boundPx <= 0 {
		boundPx = 1200
	}
	if quality <= 0 || quality > 100 {
		quality = 85
	}
	return &Codec{BoundPx: boundPx, JPEGQuality: quality}
}

// Normalize decodes, optionally downscales, and re-encodes the payload.
func (c *Codec) Normalize(data []byte) (*Image, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUndecodable, err)
	}

	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: empty bounds", ErrUndecodable)
	}

	targetW, targetH := fitWithin(width, height, c.BoundPx)
	if targetW != width || targetH != height {
		dst := image.NewRGBA(image.Rect(0, 0, targetW, targetH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
		src = dst
		width, height = targetW, targetH
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, src, &jpeg.Options{Quality: c.JPEGQuality}); err != nil {
		return nil, fmt.Errorf("media: jpeg encode: %w", err)
	}

	return &Image{
		Data:   buf.Bytes(),
		Width:  width,
		Height: height,
	}, nil
}

// fitWithin scales (w, h) proportionally so the longer side does not
// exceed bound. Dimensions within the bound are returned unchanged.
func fitWithin(w, h, bound int) (int, int) {
	if bound <= 0 {
		return w, h
	}
	longer := w
	if h > longer {
		longer = h
	}
	if longer <= bound {
		return w, h
	}

	scale := float64(bound) / float64(longer)
	nw := int(float64(w)*scale + 0.5)
	nh := int(float64(h)*scale + 0.5)
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}
	return nw, nh
}
