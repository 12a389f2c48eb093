package media

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

func TestNormalizeKeepsSmallImages(t *testing.T) {
	codec := NewCodec(1200, 85)

	out, err := codec.Normalize(encodePNG(t, 640, 480))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if out.Width != 640 || out.Height != 480 {
		t.Fatalf("dimensions changed: got %dx%d", out.Width, out.Height)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(out.Data))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if format != "jpeg" {
		t.Fatalf("expected jpeg output, got %s", format)
	}
	if cfg.Width != 640 || cfg.Height != 480 {
		t.Fatalf("encoded dimensions mismatch: %dx%d", cfg.Width, cfg.Height)
	}
}

func TestNormalizeDownscalesLongerSide(t *testing.T) {
	codec := NewCodec(1200, 85)

	out, err := codec.Normalize(encodeJPEG(t, 2400, 1600))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if out.Width != 1200 {
		t.Fatalf("longer side not bounded: got %d", out.Width)
	}
	if out.Height != 800 {
		t.Fatalf("aspect ratio broken: got height %d", out.Height)
	}
}

func TestNormalizePortraitOrientation(t *testing.T) {
	codec := NewCodec(1000, 85)

	out, err := codec.Normalize(encodePNG(t, 500, 2000))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if out.Height != 1000 {
		t.Fatalf("longer side not bounded: got %d", out.Height)
	}
	if out.Width != 250 {
		t.Fatalf("aspect ratio broken: got width %d", out.Width)
	}
}

func TestNormalizeNeverUpscales(t *testing.T) {
	codec := NewCodec(4000, 85)

	out, err := codec.Normalize(encodeJPEG(t, 100, 80))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if out.Width != 100 || out.Height != 80 {
		t.Fatalf("image was upscaled: got %dx%d", out.Width, out.Height)
	}
}

func TestNormalizeRejectsGarbage(t *testing.T) {
	codec := NewCodec(1200, 85)

	if _, err := codec.Normalize([]byte("definitely not an image")); err == nil {
		t.Fatal("expected error for undecodable payload")
	}
}

func TestFitWithinRounding(t *testing.T) {
	cases := []struct {
		w, h, bound  int
		wantW, wantH int
	}{
		{3000, 2000, 1200, 1200, 800},
		{2000, 3000, 1200, 800, 1200},
		{1200, 1200, 1200, 1200, 1200},
		{1201, 1, 1200, 1200, 1},
		{10, 10, 0, 10, 10},
	}
	for _, tc := range cases {
		gotW, gotH := fitWithin(tc.w, tc.h, tc.bound)
		if gotW != tc.wantW || gotH != tc.wantH {
			t.Errorf("fitWithin(%d, %d, %d) = %dx%d, want %dx%d",
				tc.w, tc.h, tc.bound, gotW, gotH, tc.wantW, tc.wantH)
		}
	}
}
