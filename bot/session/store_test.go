package session

import (
	"errors"
	"testing"
	"time"

	"github.com/pdfgram/pdfgram/core/media"
)

func img(n int) *media.Image {
	return &media.Image{Data: []byte{byte(n)}, Width: 10, Height: 10}
}

func TestAppendKeepsArrivalOrder(t *testing.T) {
	s := NewStore(time.Hour, 10)

	for i := 0; i < 3; i++ {
		count, err := s.Append(7, img(i))
		if err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
		if count != i+1 {
			t.Fatalf("append %d: count = %d", i, count)
		}
	}

	images := s.Images(7)
	if len(images) != 3 {
		t.Fatalf("images len = %d", len(images))
	}
	for i, im := range images {
		if im.Data[0] != byte(i) {
			t.Fatalf("order broken at %d: got %d", i, im.Data[0])
		}
	}
}

func TestAppendRejectsWhenFull(t *testing.T) {
	s := NewStore(time.Hour, 2)

	if _, err := s.Append(1, img(0)); err != nil {
		t.Fatalf("append: %v", err)
	}
	if _, err := s.Append(1, img(1)); err != nil {
		t.Fatalf("append: %v", err)
	}

	count, err := s.Append(1, img(2))
	var capErr *CapacityError
	if !errors.As(err, &capErr) {
		t.Fatalf("expected CapacityError, got %v", err)
	}
	if capErr.Max != 2 {
		t.Fatalf("CapacityError.Max = %d", capErr.Max)
	}
	if count != 2 {
		t.Fatalf("count after rejection = %d, want 2", count)
	}
	if got := s.Len(1); got != 2 {
		t.Fatalf("buffer mutated on rejection: len = %d", got)
	}
}

func TestAcquireExpiresIdleSession(t *testing.T) {
	s := NewStore(time.Hour, 10)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.SetClock(func() time.Time { return now })

	if expired := s.Acquire(5); expired {
		t.Fatal("fresh session reported expired")
	}
	if _, err := s.Append(5, img(0)); err != nil {
		t.Fatalf("append: %v", err)
	}

	now = now.Add(30 * time.Minute)
	if expired := s.Acquire(5); expired {
		t.Fatal("session within TTL reported expired")
	}
	if got := s.Len(5); got != 1 {
		t.Fatalf("buffer dropped within TTL: len = %d", got)
	}

	now = now.Add(2 * time.Hour)
	if expired := s.Acquire(5); !expired {
		t.Fatal("idle session not reported expired")
	}
	if got := s.Len(5); got != 0 {
		t.Fatalf("expired buffer not dropped: len = %d", got)
	}

	// A second acquire right after must not report expiry again.
	if expired := s.Acquire(5); expired {
		t.Fatal("expiry reported twice")
	}
}

func TestAcquireEmptyExpiredSessionIsSilent(t *testing.T) {
	s := NewStore(time.Hour, 10)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.SetClock(func() time.Time { return now })

	s.Acquire(9)
	now = now.Add(3 * time.Hour)

	if expired := s.Acquire(9); expired {
		t.Fatal("empty session expiry should not be reported")
	}
}

func TestClearKeepsSessionAlive(t *testing.T) {
	s := NewStore(time.Hour, 10)

	if _, err := s.Append(3, img(0)); err != nil {
		t.Fatalf("append: %v", err)
	}
	s.Clear(3)

	if got := s.Len(3); got != 0 {
		t.Fatalf("len after clear = %d", got)
	}
	if got := s.Active(); got != 1 {
		t.Fatalf("active after clear = %d", got)
	}
}

func TestCountsAndSweep(t *testing.T) {
	s := NewStore(time.Hour, 10)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.SetClock(func() time.Time { return now })

	s.Append(1, img(0))
	s.Append(1, img(1))
	s.Append(2, img(0))

	sessions, images := s.Counts()
	if sessions != 2 || images != 3 {
		t.Fatalf("counts = %d sessions, %d images", sessions, images)
	}

	now = now.Add(2 * time.Hour)
	s.Append(2, img(1)) // touches user 2 only

	if got := s.Active(); got != 1 {
		t.Fatalf("active = %d, want 1", got)
	}
	if evicted := s.Sweep(); evicted != 1 {
		t.Fatalf("sweep evicted = %d, want 1", evicted)
	}
	sessions, images = s.Counts()
	if sessions != 1 || images != 2 {
		t.Fatalf("counts after sweep = %d sessions, %d images", sessions, images)
	}
}

func TestImagesReturnsCopy(t *testing.T) {
	s := NewStore(time.Hour, 10)
	s.Append(4, img(0))

	snapshot := s.Images(4)
	snapshot[0] = img(99)

	if got := s.Images(4)[0].Data[0]; got != 0 {
		t.Fatalf("snapshot mutation leaked into store: %d", got)
	}
}
