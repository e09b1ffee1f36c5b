// Package bag holds item bag sessions and the in-memory store that serves them.
package bag

import (
	"crypto/rand"
	"encoding/base32"
	"strings"
	"time"

	"toybox/pkg/realtime"
)

// EventGrid is published whenever a bag's placement changes.
const EventGrid = "grid"

// Store holds bags and delegates to realtime.RoomStore for lookup and broadcast.
type Store struct {
	r *realtime.RoomStore[*Bag]
}

// NewStore creates an empty in-memory bag store.
func NewStore() *Store {
	return &Store{r: realtime.NewRoomStore[*Bag]()}
}

// CreateBag initializes a bag and registers its broadcaster.
func (s *Store) CreateBag(rows, cols int) *Bag {
	b := NewBag(rows, cols)
	s.r.Create(b.ID, b)
	return b
}

// GetBag returns a bag by ID if it exists.
func (s *Store) GetBag(id string) (*Bag, bool) {
	room, ok := s.r.Get(id)
	if !ok {
		return nil, false
	}
	return room.State, true
}

// Len returns the number of live bags.
func (s *Store) Len() int {
	return s.r.Len()
}

// Broadcaster returns the SSE broadcaster for a bag, or nil if it is gone.
func (s *Store) Broadcaster(id string) *realtime.Broadcaster {
	return s.r.Broadcaster(id)
}

// Publish notifies subscribers of a bag update.
func (s *Store) Publish(id string, event string) {
	s.r.Publish(id, event)
}

// Mount attaches a new view to the bag. Closing the view lets the reaper
// re-evaluate the bag's idle deadline.
func (s *Store) Mount(b *Bag, opts MountOptions) *View {
	onClose := opts.OnClose
	opts.OnClose = func() {
		if onClose != nil {
			onClose()
		}
		s.r.Wake(b.ID)
	}
	return b.Mount(opts)
}

// Remove unmounts a bag: open views get ErrClosed and SSE streams end.
func (s *Store) Remove(id string) bool {
	room, ok := s.r.Delete(id)
	if !ok {
		return false
	}
	room.State.close()
	return true
}

// EnsureReaper removes the bag once it has had no activity, no mounted views
// and no stream subscribers for ttl. A non-positive ttl disables reaping.
func (s *Store) EnsureReaper(id string, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	getState := func() *Bag {
		b, _ := s.GetBag(id)
		return b
	}
	tick := func(b *Bag, now time.Time) (time.Time, []string, bool) {
		if b == nil {
			return time.Time{}, nil, true
		}
		if b.Views() > 0 || s.subscribers(id) > 0 {
			b.Touch(now)
			return now.Add(ttl), nil, false
		}
		deadline := b.LastSeen().Add(ttl)
		if now.Before(deadline) {
			return deadline, nil, false
		}
		s.Remove(id)
		return time.Time{}, nil, true
	}
	s.r.RunLoop(id, getState, tick)
}

func (s *Store) subscribers(id string) int {
	hub := s.Broadcaster(id)
	if hub == nil {
		return 0
	}
	return hub.Len()
}

func newID() string {
	// 10 bytes -> 16 chars of base32, short and url-safe.
	buf := make([]byte, 10)
	_, _ = rand.Read(buf)
	encoder := base32.StdEncoding.WithPadding(base32.NoPadding)
	return strings.ToLower(encoder.EncodeToString(buf))
}
