package bot

import (
	"errors"
	"strings"
	"testing"

	"github.com/pdfgram/pdfgram/bot/assemble"
	"github.com/pdfgram/pdfgram/bot/intake"
	"github.com/pdfgram/pdfgram/bot/session"
	coreconfig "github.com/pdfgram/pdfgram/core/config"
)

func TestReplyForErrorMapping(t *testing.T) {
	h := &Handlers{cfg: &coreconfig.Config{
		Bot: coreconfig.BotConfig{MaxImages: 50, MaxDocumentMB: 45},
	}}

	cases := []struct {
		err  error
		want string
	}{
		{&session.CapacityError{Max: 50}, "50 images"},
		{&intake.UnsupportedFormatError{MIME: "application/pdf"}, "JPEG and PNG"},
		{&intake.FetchError{Err: errors.New("timeout")}, "download"},
		{&assemble.NothingToConvertError{}, "no images"},
		{&assemble.SizeLimitError{MaxBytes: 45 << 20}, "45 MiB"},
		{&assemble.Error{Err: errors.New("boom")}, "went wrong"},
		{errors.New("unclassified"), "went wrong"},
	}
	for _, tc := range cases {
		got := h.replyForError(tc.err)
		if !strings.Contains(got, tc.want) {
			t.Errorf("replyForError(%v) = %q, expected to mention %q", tc.err, got, tc.want)
		}
	}
}
