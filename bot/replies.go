package bot

import (
	"errors"
	"fmt"
)

const (
	replyWelcome = "Hi! Send me images and I will merge them into a single PDF.\n\n" +
		"Send photos or image files (JPEG/PNG), then use /convert to get the document.\n" +
		"/cancel drops everything you have sent so far."

	replyHelp = "Send me up to %d images as photos or files (JPEG/PNG).\n" +
		"/convert — merge the buffered images into one PDF\n" +
		"/cancel — drop the buffered images\n\n" +
		"The PDF keeps the order you sent the images in. " +
		"Buffers are kept for %d hours after your last message."

	replyCancelled     = "Cleared. Send new images whenever you like."
	replyNothingCancel = "Nothing to clear, your buffer is already empty."
	replyExpired       = "Your previous images expired and were dropped. Starting fresh."

	replyNothingToConvert = "You have no images buffered. Send some first, then use /convert."
	replyCapacity         = "That's the limit: %d images per document. Use /convert to get your PDF, or /cancel to start over."
	replyUnsupported      = "I can only work with JPEG and PNG images. Send photos or .jpg/.png files."
	replyFetchFailed      = "I couldn't download that file from Telegram. Please send it again."
	replySizeLimit        = "The resulting PDF would be too large (over %d MiB). Remove some images with /cancel and try fewer at once."
	replyFailure          = "Something went wrong while building your PDF. Your images are still buffered, try /convert again."

	replyUnknownText = "Send me images, or use /help to see what I can do."
)

func replyReceived(count, max int) string {
	return fmt.Sprintf("Image %d of %d saved. Send /convert when you're done.", count, max)
}

// coded is the error contract shared by the session, intake, and
// assemble packages.
type coded interface {
	error
	Code() string
}

// replyForError maps a pipeline error to the user-facing message.
func (h *Handlers) replyForError(err error) string {
	var c coded
	if !errors.As(err, &c) {
		return replyFailure
	}
	switch c.Code() {
	case "CAPACITY_EXCEEDED":
		return fmt.Sprintf(replyCapacity, h.cfg.Bot.MaxImages)
	case "UNSUPPORTED_FORMAT":
		return replyUnsupported
	case "FETCH_FAILED":
		return replyFetchFailed
	case "NOTHING_TO_CONVERT":
		return replyNothingToConvert
	case "SIZE_LIMIT_EXCEEDED":
		return fmt.Sprintf(replySizeLimit, h.cfg.Bot.MaxDocumentMB)
	default:
		return replyFailure
	}
}
