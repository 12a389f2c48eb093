// Package session keeps per-user image buffers in process memory.
// Nothing is persisted; a restart drops all sessions by design of the
// deployment, and idle sessions expire lazily on next access.
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/pdfgram/pdfgram/core/media"
)

// CapacityError reports a rejected append on a full session buffer.
type CapacityError struct {
	Max int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("session buffer is full (max %d images)", e.Max)
}

// Code identifies the error class for logging and user replies.
func (e *CapacityError) Code() string { return "CAPACITY_EXCEEDED" }

type entry struct {
	images   []*media.Image
	lastSeen time.Time
}

// Store is a mutex-guarded map of user sessions keyed by Telegram user ID.
type Store struct {
	mu        sync.Mutex
	sessions  map[int64]*entry
	ttl       time.Duration
	maxImages int
	now       func() time.Time
}

// NewStore builds a store with the given idle TTL and per-session image cap.
func NewStore(ttl time.Duration, maxImages int) *Store {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if maxImages <= 0 {
		maxImages = 50
	}
	return &Store{
		sessions:  make(map[int64]*entry),
		ttl:       ttl,
		maxImages: maxImages,
		now:       time.Now,
	}
}

// SetClock overrides the time source. Test use only.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Acquire touches the user's session, creating it when absent. When the
// existing session sat idle past the TTL its buffer is dropped and
// expired reports true so the caller can tell the user.
func (s *Store) Acquire(userID int64) (expired bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	e, ok := s.sessions[userID]
	if !ok {
		s.sessions[userID] = &entry{lastSeen: now}
		return false
	}

	if now.Sub(e.lastSeen) > s.ttl {
		expired = len(e.images) > 0
		e.images = nil
	}
	e.lastSeen = now
	return expired
}

// Append stores one image at the end of the user's buffer and returns
// the new count. A full buffer rejects the append without mutation.
func (s *Store) Append(userID int64, img *media.Image) (int, error) {
	if img == nil {
		return 0, fmt.Errorf("session: nil image")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	e, ok := s.sessions[userID]
	if !ok {
		e = &entry{lastSeen: now}
		s.sessions[userID] = e
	}

	if len(e.images) >= s.maxImages {
		e.lastSeen = now
		return len(e.images), &CapacityError{Max: s.maxImages}
	}

	e.images = append(e.images, img)
	e.lastSeen = now
	return len(e.images), nil
}

// CheckCapacity reports whether the user's buffer can take one more
// image. Callers use it to reject an upload before paying for the
// download.
func (s *Store) CheckCapacity(userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.sessions[userID]; ok && len(e.images) >= s.maxImages {
		return &CapacityError{Max: s.maxImages}
	}
	return nil
}

// Images returns the user's buffered images in arrival order.
// The slice is a copy; the buffer itself stays untouched.
func (s *Store) Images(userID int64) []*media.Image {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[userID]
	if !ok || len(e.images) == 0 {
		return nil
	}
	out := make([]*media.Image, len(e.images))
	copy(out, e.images)
	return out
}

// Len reports how many images the user has buffered.
func (s *Store) Len(userID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.sessions[userID]; ok {
		return len(e.images)
	}
	return 0
}

// Clear drops the user's buffer but keeps the session alive.
func (s *Store) Clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.sessions[userID]; ok {
		e.images = nil
		e.lastSeen = s.now()
	}
}

// Active counts sessions still within their idle TTL.
func (s *Store) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	active := 0
	for _, e := range s.sessions {
		if now.Sub(e.lastSeen) <= s.ttl {
			active++
		}
	}
	return active
}

// Counts reports active sessions and the total number of buffered images
// across them.
func (s *Store) Counts() (sessions, images int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for _, e := range s.sessions {
		if now.Sub(e.lastSeen) <= s.ttl {
			sessions++
			images += len(e.images)
		}
	}
	return sessions, images
}

// Sweep removes sessions idle past the TTL and returns how many were evicted.
// Expiry stays correct without it; the sweep only reclaims memory earlier.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	evicted := 0
	for id, e := range s.sessions {
		if now.Sub(e.lastSeen) > s.ttl {
			delete(s.sessions, id)
			evicted++
		}
	}
	return evicted
}
