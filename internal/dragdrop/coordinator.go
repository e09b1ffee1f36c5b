// Package dragdrop turns native drag events into placement changes for an
// item bag.
package dragdrop

import (
	"errors"
	"fmt"
	"sync"

	"toybox/internal/placement"
)

// Invariant violations. These mean the page was rendered or wired wrong.
var (
	ErrNoDragSession     = errors.New("drop without an active drag")
	ErrMissingTransfer   = errors.New("dragged element has no transfer data")
	ErrMissingDropTarget = errors.New("drop zone has no drop index")
)

const (
	LiftedOpacity       = "0.5"
	HighlightBackground = "#b39ddb"
)

// Model is the placement state a coordinator reads and replaces.
type Model interface {
	Placement() placement.Placement
	Replace(placement.Placement)
}

type State int

const (
	Idle State = iota
	Dragging
)

func (s State) String() string {
	if s == Dragging {
		return "dragging"
	}
	return "idle"
}

type Options struct {
	Logger *Logger
}

// Coordinator tracks one drag session at a time and applies drops to its
// model. It is not safe for concurrent use; its scope must deliver events one
// at a time.
type Coordinator struct {
	model Model
	log   *Logger

	// dragged is the session's source element, set at dragstart and cleared
	// by drop or dragend.
	dragged *Node
	// lifted keeps the dimmed element until dragend restores it.
	lifted  *Node
	restore string
}

// Attach subscribes a new coordinator to every drag event on scope. The
// returned func detaches it and may be called more than once.
func Attach(scope *Scope, model Model, opts Options) (*Coordinator, func()) {
	c := &Coordinator{model: model, log: opts.Logger}
	handlers := map[Kind]Listener{
		KindDrag:      c.onDrag,
		KindDragStart: c.onDragStart,
		KindDragEnd:   c.onDragEnd,
		KindDragOver:  c.onDragOver,
		KindDragEnter: c.onDragEnter,
		KindDragLeave: c.onDragLeave,
		KindDrop:      c.onDrop,
	}
	unlisten := make([]func(), 0, len(handlers))
	for _, k := range Kinds() {
		unlisten = append(unlisten, scope.Listen(k, handlers[k]))
	}
	var once sync.Once
	return c, func() {
		once.Do(func() {
			for _, fn := range unlisten {
				fn()
			}
		})
	}
}

// State reports whether a drag session is active.
func (c *Coordinator) State() State {
	if c.dragged != nil {
		return Dragging
	}
	return Idle
}

// Dragged returns the current session's source element, or nil.
func (c *Coordinator) Dragged() *Node { return c.dragged }

func (c *Coordinator) onDrag(ev *Event) error {
	c.log.Log(ev.Kind, ev.Target, nil)
	return nil
}

func (c *Coordinator) onDragStart(ev *Event) error {
	c.log.Log(ev.Kind, ev.Target, nil)
	if !ev.Target.Is(MarkerDraggable) {
		return nil
	}
	c.release()
	c.dragged = ev.Target
	c.lifted = ev.Target
	c.restore = ev.Target.Style.Opacity
	ev.Target.SetOpacity(LiftedOpacity)
	return nil
}

func (c *Coordinator) onDragEnd(ev *Event) error {
	c.log.Log(ev.Kind, ev.Target, nil)
	c.release()
	return nil
}

// release ends the session: the dimmed element gets its opacity back.
func (c *Coordinator) release() {
	if c.lifted != nil {
		c.lifted.SetOpacity(c.restore)
	}
	c.lifted = nil
	c.restore = ""
	c.dragged = nil
}

// Drops only fire on targets whose dragover default was prevented.
func (c *Coordinator) onDragOver(ev *Event) error {
	ev.PreventDefault()
	c.log.Log(ev.Kind, ev.Target, nil)
	return nil
}

func (c *Coordinator) onDragEnter(ev *Event) error {
	c.log.Log(ev.Kind, ev.Target, nil)
	if ev.Target.Is(MarkerDropZone) {
		ev.Target.SetBackground(HighlightBackground)
	}
	return nil
}

func (c *Coordinator) onDragLeave(ev *Event) error {
	c.log.Log(ev.Kind, ev.Target, nil)
	if ev.Target.Is(MarkerDropZone) {
		ev.Target.SetBackground("")
	}
	return nil
}

func (c *Coordinator) onDrop(ev *Event) error {
	ev.PreventDefault()
	c.log.Log(ev.Kind, ev.Target, nil)
	if !ev.Target.Is(MarkerDropZone) {
		return nil
	}
	defer ev.Target.SetBackground("")
	err := c.resolve(ev.Target)
	c.dragged = nil
	return err
}

func (c *Coordinator) resolve(zone *Node) error {
	src := c.dragged
	if src == nil {
		return ErrNoDragSession
	}
	if src.Transfer == nil {
		return fmt.Errorf("%w: %q", ErrMissingTransfer, src.ID)
	}
	if err := src.Transfer.Validate(); err != nil {
		return fmt.Errorf("%w: %q: %w", ErrMissingTransfer, src.ID, err)
	}
	if zone.Drop == nil {
		return fmt.Errorf("%w: %q", ErrMissingDropTarget, zone.ID)
	}
	t, dst := *src.Transfer, zone.Drop.DropIndex
	current := c.model.Placement()

	switch t.Origin {
	case OriginBag:
		next, err := placement.Exchange(t.SourceIndex, dst, current)
		if err != nil {
			return err
		}
		// The source slot may have changed since the drag began; first wins.
		if item, ok := current.At(t.SourceIndex).Item(); !ok || item.ID != t.ItemID {
			return nil
		}
		c.model.Replace(next)
	case OriginStore:
		// First wins: a store item never replaces what a cell already shows.
		if zone.HasChild || current.At(dst).Occupied() {
			return nil
		}
		next, err := placement.Insert(dst, t.ItemID, current)
		if err != nil {
			return err
		}
		c.model.Replace(next)
	}
	return nil
}
