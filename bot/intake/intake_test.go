package intake

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pdfgram/pdfgram/bot/session"
	"github.com/pdfgram/pdfgram/core/media"
)

type fakeFetcher struct {
	data  []byte
	err   error
	calls int
}

func (f *fakeFetcher) Fetch(_ context.Context, _ string) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.data, nil
}

type fakeCodec struct {
	err error
}

func (f *fakeCodec) Normalize(data []byte) (*media.Image, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &media.Image{Data: data, Width: 100, Height: 100}, nil
}

func newPipeline(maxImages int, fetch *fakeFetcher, codec *fakeCodec) (*Pipeline, *session.Store) {
	store := session.NewStore(time.Hour, maxImages)
	return New(store, fetch, codec), store
}

func TestAcceptPhotoStoresImage(t *testing.T) {
	fetch := &fakeFetcher{data: []byte("jpeg-bytes")}
	p, store := newPipeline(10, fetch, &fakeCodec{})

	count, err := p.AcceptPhoto(context.Background(), 1, "file-1")
	if err != nil {
		t.Fatalf("accept photo: %v", err)
	}
	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}
	if got := store.Len(1); got != 1 {
		t.Fatalf("store len = %d", got)
	}
}

func TestFullBufferSkipsDownload(t *testing.T) {
	fetch := &fakeFetcher{data: []byte("x")}
	p, _ := newPipeline(1, fetch, &fakeCodec{})

	if _, err := p.AcceptPhoto(context.Background(), 1, "file-1"); err != nil {
		t.Fatalf("first accept: %v", err)
	}

	count, err := p.AcceptPhoto(context.Background(), 1, "file-2")
	var capErr *session.CapacityError
	if !errors.As(err, &capErr) {
		t.Fatalf("expected CapacityError, got %v", err)
	}
	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}
	if fetch.calls != 1 {
		t.Fatalf("rejected upload still downloaded: %d calls", fetch.calls)
	}
}

func TestDocumentValidationBeforeDownload(t *testing.T) {
	fetch := &fakeFetcher{data: []byte("x")}
	p, store := newPipeline(10, fetch, &fakeCodec{})

	_, err := p.AcceptDocument(context.Background(), 1, "file-1", "application/pdf", "scan.pdf")
	var unsupported *UnsupportedFormatError
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected UnsupportedFormatError, got %v", err)
	}
	if fetch.calls != 0 {
		t.Fatalf("rejected document was downloaded: %d calls", fetch.calls)
	}
	if got := store.Len(1); got != 0 {
		t.Fatalf("rejection mutated buffer: len = %d", got)
	}
}

func TestDocumentExtensionFallback(t *testing.T) {
	cases := []struct {
		mime, name string
		ok         bool
	}{
		{"image/jpeg", "anything.bin", true},
		{"image/png", "shot", true},
		{"IMAGE/JPEG", "x.jpg", true},
		{"", "photo.JPG", true},
		{"", "photo.jpeg", true},
		{"", "photo.png", true},
		{"", "archive.zip", false},
		{"", "noext", false},
		{"text/plain", "photo.jpg", false},
	}
	for _, tc := range cases {
		if got := supportedUpload(tc.mime, tc.name); got != tc.ok {
			t.Errorf("supportedUpload(%q, %q) = %v, want %v", tc.mime, tc.name, got, tc.ok)
		}
	}
}

func TestFetchFailureLeavesBufferUntouched(t *testing.T) {
	fetch := &fakeFetcher{err: errors.New("telegram: file not found")}
	p, store := newPipeline(10, fetch, &fakeCodec{})

	_, err := p.AcceptPhoto(context.Background(), 1, "file-1")
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if fetchErr.Code() != "FETCH_FAILED" {
		t.Fatalf("code = %s", fetchErr.Code())
	}
	if got := store.Len(1); got != 0 {
		t.Fatalf("failed fetch mutated buffer: len = %d", got)
	}
}

func TestUndecodablePayloadRejected(t *testing.T) {
	fetch := &fakeFetcher{data: []byte("garbage")}
	p, store := newPipeline(10, fetch, &fakeCodec{err: media.ErrUndecodable})

	_, err := p.AcceptDocument(context.Background(), 1, "file-1", "image/png", "fake.png")
	var unsupported *UnsupportedFormatError
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected UnsupportedFormatError, got %v", err)
	}
	if got := store.Len(1); got != 0 {
		t.Fatalf("rejection mutated buffer: len = %d", got)
	}
}
