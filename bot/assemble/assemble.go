// Package assemble turns a session's buffered images into a single
// document, one image per page, in arrival order.
package assemble

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/pdfgram/pdfgram/bot/session"
	"github.com/pdfgram/pdfgram/core/logger"
	"github.com/pdfgram/pdfgram/core/pdf"
)

// NothingToConvertError reports a conversion request on an empty buffer.
type NothingToConvertError struct{}

func (e *NothingToConvertError) Error() string { return "no images buffered for conversion" }

// Code identifies the error class for logging and user replies.
func (e *NothingToConvertError) Code() string { return "NOTHING_TO_CONVERT" }

// SizeLimitError reports a document that would exceed the byte ceiling.
type SizeLimitError struct {
	MaxBytes int64
}

func (e *SizeLimitError) Error() string {
	return fmt.Sprintf("document exceeds the %d MiB limit", e.MaxBytes/(1<<20))
}

// Code identifies the error class for logging and user replies.
func (e *SizeLimitError) Code() string { return "SIZE_LIMIT_EXCEEDED" }

// Error reports an internal assembly failure.
type Error struct {
	Err error
}

func (e *Error) Error() string { return fmt.Sprintf("document assembly failed: %v", e.Err) }
func (e *Error) Unwrap() error { return e.Err }

// Code identifies the error class for logging and user replies.
func (e *Error) Code() string { return "ASSEMBLY_FAILED" }

// DocumentWriter builds the output document page by page.
type DocumentWriter interface {
	AddImage(jpegData []byte, widthPx, heightPx int) error
	PageCount() int
	Output(out io.Writer, maxBytes int64) error
}

// WriterFactory produces a fresh DocumentWriter per conversion.
type WriterFactory func() DocumentWriter

// Result is a finished conversion ready to be sent back to the user.
type Result struct {
	Data     []byte
	FileName string
	Pages    int
}

// Assembler converts session buffers into documents. The buffer is
// cleared only after a conversion fully succeeds, so any failure leaves
// the user's images intact for another attempt.
type Assembler struct {
	store     *session.Store
	newWriter WriterFactory
	maxBytes  int64
	now       func() time.Time
}

// New builds an assembler with the given byte ceiling for the output.
func New(store *session.Store, factory WriterFactory, maxBytes int64) *Assembler {
	return &Assembler{
		store:     store,
		newWriter: factory,
		maxBytes:  maxBytes,
		now:       time.Now,
	}
}

// SetClock overrides the time source used for output file names. Test use only.
func (a *Assembler) SetClock(now func() time.Time) {
	a.now = now
}

// Convert assembles the user's buffered images into one document.
func (a *Assembler) Convert(ctx context.Context, userID int64) (*Result, error) {
	start := time.Now()

	images := a.store.Images(userID)
	if len(images) == 0 {
		return nil, &NothingToConvertError{}
	}

	w := a.newWriter()
	var imageBytes int64
	for _, img := range images {
		imageBytes += int64(len(img.Data))
		if a.maxBytes > 0 && imageBytes > a.maxBytes {
			// The embedded streams alone already exceed the ceiling;
			// abort before rendering the rest.
			return nil, &SizeLimitError{MaxBytes: a.maxBytes}
		}
		if err := w.AddImage(img.Data, img.Width, img.Height); err != nil {
			return nil, &Error{Err: err}
		}
	}

	var buf bytes.Buffer
	if err := w.Output(&buf, a.maxBytes); err != nil {
		if errors.Is(err, pdf.ErrSizeExceeded) {
			return nil, &SizeLimitError{MaxBytes: a.maxBytes}
		}
		return nil, &Error{Err: err}
	}

	a.store.Clear(userID)

	res := &Result{
		Data:     buf.Bytes(),
		FileName: fmt.Sprintf("images_%s.pdf", a.now().Format("20060102_150405")),
		Pages:    w.PageCount(),
	}

	logger.LogEvent(ctx, logger.Asm, slog.LevelInfo, "convert.done",
		slog.Int("images", len(images)),
		slog.Int("pages", res.Pages),
		slog.Int("bytes", len(res.Data)),
		slog.String("file_name", res.FileName),
		slog.Duration("duration", logger.Took(start)),
	)
	return res, nil
}
