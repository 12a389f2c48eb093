package pdf

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"
	"testing"
)

func sampleJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

func TestWriterProducesOnePagePerImage(t *testing.T) {
	w := NewWriter(96)

	if err := w.AddImage(sampleJPEG(t, 200, 300), 200, 300); err != nil {
		t.Fatalf("add portrait image: %v", err)
	}
	if err := w.AddImage(sampleJPEG(t, 400, 100), 400, 100); err != nil {
		t.Fatalf("add landscape image: %v", err)
	}
	if got := w.PageCount(); got != 2 {
		t.Fatalf("page count = %d, want 2", got)
	}

	var buf bytes.Buffer
	if err := w.Output(&buf, 0); err != nil {
		t.Fatalf("output: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatal("output does not start with a PDF header")
	}
}

func TestWriterRejectsBadInput(t *testing.T) {
	w := NewWriter(96)

	if err := w.AddImage(nil, 100, 100); err == nil {
		t.Fatal("expected error for empty data")
	}
	if err := w.AddImage([]byte{1}, 0, 100); err == nil {
		t.Fatal("expected error for zero width")
	}
	if got := w.PageCount(); got != 0 {
		t.Fatalf("rejected input counted as page: %d", got)
	}
}

func TestOutputHonorsSizeCap(t *testing.T) {
	w := NewWriter(96)
	if err := w.AddImage(sampleJPEG(t, 300, 300), 300, 300); err != nil {
		t.Fatalf("add image: %v", err)
	}

	var buf bytes.Buffer
	err := w.Output(&buf, 16)
	if !errors.Is(err, ErrSizeExceeded) {
		t.Fatalf("expected ErrSizeExceeded, got %v", err)
	}
}
