// Package intake validates, downloads, and normalizes incoming image
// uploads before they land in a session buffer.
package intake

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/pdfgram/pdfgram/bot/session"
	"github.com/pdfgram/pdfgram/core/logger"
	"github.com/pdfgram/pdfgram/core/media"
)

// UnsupportedFormatError reports a document upload that is not a
// supported raster image.
type UnsupportedFormatError struct {
	MIME     string
	FileName string
}

func (e *UnsupportedFormatError) Error() string {
	if e.MIME != "" {
		return fmt.Sprintf("unsupported file type %q", e.MIME)
	}
	return fmt.Sprintf("unsupported file %q", e.FileName)
}

// Code identifies the error class for logging and user replies.
func (e *UnsupportedFormatError) Code() string { return "UNSUPPORTED_FORMAT" }

// FetchError wraps a failed download from the Telegram file API.
type FetchError struct {
	Err error
}

func (e *FetchError) Error() string { return fmt.Sprintf("file download failed: %v", e.Err) }
func (e *FetchError) Unwrap() error { return e.Err }

// Code identifies the error class for logging and user replies.
func (e *FetchError) Code() string { return "FETCH_FAILED" }

// FileFetcher downloads file content by Telegram file ID.
type FileFetcher interface {
	Fetch(ctx context.Context, fileID string) ([]byte, error)
}

// Codec normalizes raw upload bytes into a stored image.
type Codec interface {
	Normalize(data []byte) (*media.Image, error)
}

// Pipeline accepts uploads into session buffers. The order is fixed:
// capacity first, format validation second, download last, so a full
// buffer or a bad file type never costs a download.
type Pipeline struct {
	store *session.Store
	fetch FileFetcher
	codec Codec
}

// New wires a pipeline over the given store, fetcher, and codec.
func New(store *session.Store, fetch FileFetcher, codec Codec) *Pipeline {
	return &Pipeline{store: store, fetch: fetch, codec: codec}
}

// AcceptPhoto ingests a compressed photo upload. Telegram already
// transcodes photos to JPEG, so no format validation is needed.
func (p *Pipeline) AcceptPhoto(ctx context.Context, userID int64, fileID string) (int, error) {
	if err := p.store.CheckCapacity(userID); err != nil {
		return p.store.Len(userID), err
	}
	return p.ingest(ctx, userID, fileID)
}

// AcceptDocument ingests an uncompressed image sent as a document.
// The declared MIME type is checked first; when Telegram omits it the
// file extension decides.
func (p *Pipeline) AcceptDocument(ctx context.Context, userID int64, fileID, mime, fileName string) (int, error) {
	if err := p.store.CheckCapacity(userID); err != nil {
		return p.store.Len(userID), err
	}
	if !supportedUpload(mime, fileName) {
		return p.store.Len(userID), &UnsupportedFormatError{MIME: mime, FileName: fileName}
	}
	return p.ingest(ctx, userID, fileID)
}

func (p *Pipeline) ingest(ctx context.Context, userID int64, fileID string) (int, error) {
	data, err := p.fetch.Fetch(ctx, fileID)
	if err != nil {
		return p.store.Len(userID), &FetchError{Err: err}
	}

	img, err := p.codec.Normalize(data)
	if err != nil {
		// Decodable-looking metadata but broken bytes: treat as unsupported.
		return p.store.Len(userID), &UnsupportedFormatError{FileName: fileID}
	}

	count, err := p.store.Append(userID, img)
	if err != nil {
		return count, err
	}

	logger.LogEvent(ctx, logger.Intake, slog.LevelInfo, "intake.accepted",
		slog.String("file_id", fileID),
		slog.Int("width", img.Width),
		slog.Int("height", img.Height),
		slog.Int("bytes", len(img.Data)),
		slog.Int("images", count),
	)
	return count, nil
}

var supportedMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

var supportedExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

func supportedUpload(mime, fileName string) bool {
	if mime != "" {
		return supportedMIME[strings.ToLower(strings.TrimSpace(mime))]
	}
	ext := strings.ToLower(filepath.Ext(fileName))
	return supportedExt[ext]
}
