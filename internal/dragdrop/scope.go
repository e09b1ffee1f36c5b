package dragdrop

import (
	"errors"
	"fmt"
	"sync"
)

// Kind names a native drag event.
type Kind string

const (
	KindDrag      Kind = "drag"
	KindDragStart Kind = "dragstart"
	KindDragEnd   Kind = "dragend"
	KindDragOver  Kind = "dragover"
	KindDragEnter Kind = "dragenter"
	KindDragLeave Kind = "dragleave"
	KindDrop      Kind = "drop"
)

// Kinds lists every drag event kind.
func Kinds() []Kind {
	return []Kind{KindDrag, KindDragStart, KindDragEnd, KindDragOver, KindDragEnter, KindDragLeave, KindDrop}
}

var ErrUnknownKind = errors.New("unknown drag event")

// ParseKind maps an event name to its Kind.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds() {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Event is one drag event delivered to a scope.
type Event struct {
	Kind   Kind
	Target *Node

	defaultPrevented bool
}

// PreventDefault suppresses the platform's default handling of the event.
func (e *Event) PreventDefault() { e.defaultPrevented = true }

func (e *Event) DefaultPrevented() bool { return e.defaultPrevented }

// Listener handles an event. Later listeners still run when one fails.
type Listener func(*Event) error

type entry struct {
	id int
	fn Listener
}

// Scope is an ambient event target, the document of one mounted widget.
type Scope struct {
	mu        sync.Mutex
	next      int
	listeners map[Kind][]entry
}

// NewScope creates a scope with no listeners.
func NewScope() *Scope {
	return &Scope{listeners: make(map[Kind][]entry)}
}

// Listen registers fn for kind and returns the func that removes it.
func (s *Scope) Listen(kind Kind, fn Listener) func() {
	s.mu.Lock()
	s.next++
	id := s.next
	s.listeners[kind] = append(s.listeners[kind], entry{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		list := s.listeners[kind]
		for i, e := range list {
			if e.id == id {
				s.listeners[kind] = append(list[:i:i], list[i+1:]...)
				break
			}
		}
		if len(s.listeners[kind]) == 0 {
			delete(s.listeners, kind)
		}
	}
}

// Dispatch runs the listeners for ev.Kind in registration order.
func (s *Scope) Dispatch(ev *Event) error {
	s.mu.Lock()
	list := append([]entry(nil), s.listeners[ev.Kind]...)
	s.mu.Unlock()

	var errs []error
	for _, e := range list {
		if err := e.fn(ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Len returns the number of registered listeners.
func (s *Scope) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, list := range s.listeners {
		n += len(list)
	}
	return n
}
