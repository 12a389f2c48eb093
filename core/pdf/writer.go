// Package pdf wraps document generation behind a small writer type so
// the assembly pipeline never touches the generator library directly.
package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
)

// ErrSizeExceeded signals that the produced document grew past the
// configured byte ceiling mid-stream.
var ErrSizeExceeded = errors.New("pdf: document size limit exceeded")

// Writer builds a multi-page document where each page matches its image:
// page dimensions are the image pixel dimensions converted to points at
// the configured DPI, and the image fills the page edge to edge.
type Writer struct {
	doc   *gofpdf.Fpdf
	dpi   float64
	pages int
}

// NewWriter returns a writer producing pages at the given DPI.
func NewWriter(dpi int) *Writer {
	if dpi <= 0 {
		dpi = 96
	}
	doc := gofpdf.New("P", "pt", "A4", "")
	doc.SetMargins(0, 0, 0)
	doc.SetAutoPageBreak(false, 0)
	return &Writer{doc: doc, dpi: float64(dpi)}
}

// AddImage appends one page sized to the JPEG image and draws the image
// across the full page.
func (w *Writer) AddImage(jpegData []byte, widthPx, heightPx int) error {
	if len(jpegData) == 0 {
		return errors.New("pdf: empty image data")
	}
	if widthPx <= 0 || heightPx <= 0 {
		return fmt.Errorf("pdf: invalid image dimensions %dx%d", widthPx, heightPx)
	}

	wpt := float64(widthPx) * 72 / w.dpi
	hpt := float64(heightPx) * 72 / w.dpi

	orientation := "P"
	if wpt > hpt {
		orientation = "L"
		// AddPageFormat expects portrait-ordered dimensions for landscape pages.
		wpt, hpt = hpt, wpt
	}
	w.doc.AddPageFormat(orientation, gofpdf.SizeType{Wd: wpt, Ht: hpt})

	pageW, pageH := w.doc.GetPageSize()
	name := fmt.Sprintf("page-%d", w.pages)
	opts := gofpdf.ImageOptions{ImageType: "JPG"}
	w.doc.RegisterImageOptionsReader(name, opts, bytes.NewReader(jpegData))
	w.doc.ImageOptions(name, 0, 0, pageW, pageH, false, opts, 0, "")

	if err := w.doc.Error(); err != nil {
		return fmt.Errorf("pdf: add image: %w", err)
	}
	w.pages++
	return nil
}

// PageCount reports the number of pages added so far.
func (w *Writer) PageCount() int {
	return w.pages
}

// Output renders the document into out. A maxBytes greater than zero
// caps the stream; the write is aborted with ErrSizeExceeded as soon as
// the cap is crossed, without buffering the full document first.
func (w *Writer) Output(out io.Writer, maxBytes int64) error {
	var capped *cappedWriter
	dst := out
	if maxBytes > 0 {
		capped = &cappedWriter{w: out, remaining: maxBytes}
		dst = capped
	}
	if err := w.doc.Output(dst); err != nil {
		if capped != nil && capped.exceeded {
			return ErrSizeExceeded
		}
		return fmt.Errorf("pdf: output: %w", err)
	}
	return nil
}

type cappedWriter struct {
	w         io.Writer
	remaining int64
	exceeded  bool
}

func (c *cappedWriter) Write(p []byte) (int, error) {
	if int64(len(p)) > c.remaining {
		c.exceeded = true
		return 0, ErrSizeExceeded
	}
	n, err := c.w.Write(p)
	c.remaining -= int64(n)
	return n, err
}
