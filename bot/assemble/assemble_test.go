package assemble

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/pdfgram/pdfgram/bot/session"
	"github.com/pdfgram/pdfgram/core/media"
	"github.com/pdfgram/pdfgram/core/pdf"
)

// fakeWriter records pages and emits one marker line per image so tests
// can check ordering and exercise the size ceiling without a real encoder.
type fakeWriter struct {
	pages     [][]byte
	addErr    error
	outputErr error
}

func (f *fakeWriter) AddImage(data []byte, _, _ int) error {
	if f.addErr != nil {
		return f.addErr
	}
	f.pages = append(f.pages, data)
	return nil
}

func (f *fakeWriter) PageCount() int { return len(f.pages) }

func (f *fakeWriter) Output(out io.Writer, maxBytes int64) error {
	if f.outputErr != nil {
		return f.outputErr
	}
	var written int64
	for i, p := range f.pages {
		line := fmt.Sprintf("page %d: %s\n", i, p)
		written += int64(len(line))
		if maxBytes > 0 && written > maxBytes {
			return pdf.ErrSizeExceeded
		}
		if _, err := io.WriteString(out, line); err != nil {
			return err
		}
	}
	return nil
}

func seedStore(t *testing.T, n int) *session.Store {
	t.Helper()
	store := session.NewStore(time.Hour, 50)
	for i := 0; i < n; i++ {
		img := &media.Image{Data: []byte{'a' + byte(i)}, Width: 10, Height: 10}
		if _, err := store.Append(42, img); err != nil {
			t.Fatalf("seed append %d: %v", i, err)
		}
	}
	return store
}

func TestConvertClearsSessionOnSuccess(t *testing.T) {
	store := seedStore(t, 3)
	fw := &fakeWriter{}
	a := New(store, func() DocumentWriter { return fw }, 1<<20)
	a.SetClock(func() time.Time {
		return time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	})

	res, err := a.Convert(context.Background(), 42)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if res.Pages != 3 {
		t.Fatalf("pages = %d, want 3", res.Pages)
	}
	if res.FileName != "images_20260301_093000.pdf" {
		t.Fatalf("file name = %q", res.FileName)
	}
	if len(res.Data) == 0 {
		t.Fatal("empty document data")
	}
	if got := store.Len(42); got != 0 {
		t.Fatalf("session not cleared: len = %d", got)
	}
}

func TestConvertPreservesArrivalOrder(t *testing.T) {
	store := seedStore(t, 3)
	fw := &fakeWriter{}
	a := New(store, func() DocumentWriter { return fw }, 0)

	if _, err := a.Convert(context.Background(), 42); err != nil {
		t.Fatalf("convert: %v", err)
	}
	for i, p := range fw.pages {
		if p[0] != 'a'+byte(i) {
			t.Fatalf("page %d out of order: %q", i, p)
		}
	}
}

func TestConvertEmptyBuffer(t *testing.T) {
	store := session.NewStore(time.Hour, 50)
	a := New(store, func() DocumentWriter { return &fakeWriter{} }, 0)

	_, err := a.Convert(context.Background(), 42)
	var nothing *NothingToConvertError
	if !errors.As(err, &nothing) {
		t.Fatalf("expected NothingToConvertError, got %v", err)
	}
	if nothing.Code() != "NOTHING_TO_CONVERT" {
		t.Fatalf("code = %s", nothing.Code())
	}
}

func TestConvertSizeLimitKeepsSession(t *testing.T) {
	store := seedStore(t, 3)
	a := New(store, func() DocumentWriter { return &fakeWriter{} }, 10)

	_, err := a.Convert(context.Background(), 42)
	var sizeErr *SizeLimitError
	if !errors.As(err, &sizeErr) {
		t.Fatalf("expected SizeLimitError, got %v", err)
	}
	if got := store.Len(42); got != 3 {
		t.Fatalf("session cleared on failure: len = %d", got)
	}
}

func TestConvertImageBytesCeiling(t *testing.T) {
	store := session.NewStore(time.Hour, 50)
	big := &media.Image{Data: make([]byte, 100), Width: 10, Height: 10}
	if _, err := store.Append(7, big); err != nil {
		t.Fatalf("append: %v", err)
	}

	fw := &fakeWriter{}
	a := New(store, func() DocumentWriter { return fw }, 50)

	_, err := a.Convert(context.Background(), 7)
	var sizeErr *SizeLimitError
	if !errors.As(err, &sizeErr) {
		t.Fatalf("expected SizeLimitError, got %v", err)
	}
	if len(fw.pages) != 0 {
		t.Fatalf("pages rendered past the ceiling: %d", len(fw.pages))
	}
	if got := store.Len(7); got != 1 {
		t.Fatalf("session cleared on failure: len = %d", got)
	}
}

func TestConvertWriterFailureKeepsSession(t *testing.T) {
	store := seedStore(t, 2)
	fw := &fakeWriter{addErr: errors.New("corrupt stream")}
	a := New(store, func() DocumentWriter { return fw }, 0)

	_, err := a.Convert(context.Background(), 42)
	var asmErr *Error
	if !errors.As(err, &asmErr) {
		t.Fatalf("expected assembly Error, got %v", err)
	}
	if asmErr.Code() != "ASSEMBLY_FAILED" {
		t.Fatalf("code = %s", asmErr.Code())
	}
	if got := store.Len(42); got != 2 {
		t.Fatalf("session cleared on failure: len = %d", got)
	}
}
