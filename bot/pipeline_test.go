package bot

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"testing"
	"time"

	"github.com/pdfgram/pdfgram/bot/assemble"
	"github.com/pdfgram/pdfgram/bot/intake"
	"github.com/pdfgram/pdfgram/bot/session"
	"github.com/pdfgram/pdfgram/core/media"
	"github.com/pdfgram/pdfgram/core/pdf"
)

// stubFetcher serves canned JPEG payloads keyed by file ID.
type stubFetcher struct {
	files map[string][]byte
}

func (f *stubFetcher) Fetch(_ context.Context, fileID string) ([]byte, error) {
	return f.files[fileID], nil
}

func jpegBytes(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

// Three photos in, one three-page PDF out, empty buffer afterwards.
func TestThreePhotosToSinglePDF(t *testing.T) {
	fetch := &stubFetcher{files: map[string][]byte{
		"p1": jpegBytes(t, 320, 240, color.RGBA{R: 255, A: 255}),
		"p2": jpegBytes(t, 240, 320, color.RGBA{G: 255, A: 255}),
		"p3": jpegBytes(t, 300, 300, color.RGBA{B: 255, A: 255}),
	}}

	store := session.NewStore(24*time.Hour, 50)
	pipeline := intake.New(store, fetch, media.NewCodec(1200, 85))
	assembler := assemble.New(store, func() assemble.DocumentWriter {
		return pdf.NewWriter(96)
	}, 45<<20)

	const userID = int64(1001)
	ctx := context.Background()

	for i, fileID := range []string{"p1", "p2", "p3"} {
		count, err := pipeline.AcceptPhoto(ctx, userID, fileID)
		if err != nil {
			t.Fatalf("intake %s: %v", fileID, err)
		}
		if count != i+1 {
			t.Fatalf("intake %s: count = %d, want %d", fileID, count, i+1)
		}
	}

	res, err := assembler.Convert(ctx, userID)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if res.Pages != 3 {
		t.Fatalf("pages = %d, want 3", res.Pages)
	}
	if !bytes.HasPrefix(res.Data, []byte("%PDF-")) {
		t.Fatal("result is not a PDF stream")
	}
	if got := store.Len(userID); got != 0 {
		t.Fatalf("session not consumed: len = %d", got)
	}

	// Converting again without new uploads must fail cleanly.
	if _, err := assembler.Convert(ctx, userID); err == nil {
		t.Fatal("expected NothingToConvert on drained session")
	}
}
