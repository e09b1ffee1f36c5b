package dragdrop

import (
	"errors"
	"fmt"
	"slices"
	"sort"

	"toybox/internal/placement"
)

// Origin says which region a dragged item came from.
type Origin string

const (
	OriginStore Origin = "store"
	OriginBag   Origin = "bag"
)

// Marker is a class name that gives a node a drag capability.
type Marker string

const (
	MarkerDraggable Marker = "draggable"
	MarkerDropZone  Marker = "dropzone"
)

var errInvalidTransfer = errors.New("invalid transfer data")

// Transfer is the data stamped on a draggable element at render time.
// SourceIndex is a slot index for bag items and a display index for store items.
type Transfer struct {
	Origin      Origin           `json:"itemType"`
	SourceIndex int              `json:"sourceIndex"`
	ItemID      placement.ItemID `json:"itemId"`
}

// Validate checks the fields a drop needs.
func (t Transfer) Validate() error {
	switch t.Origin {
	case OriginStore, OriginBag:
	default:
		return fmt.Errorf("%w: item type %q", errInvalidTransfer, t.Origin)
	}
	if t.SourceIndex < 0 {
		return fmt.Errorf("%w: source index %d", errInvalidTransfer, t.SourceIndex)
	}
	if !t.ItemID.Valid() {
		return fmt.Errorf("%w: item id %d", errInvalidTransfer, int(t.ItemID))
	}
	return nil
}

// DropTarget is the data stamped on a drop-zone cell.
type DropTarget struct {
	DropIndex int `json:"dropIndex"`
}

// Style is the subset of inline style the coordinator touches.
type Style struct {
	Opacity    string `json:"opacity"`
	Background string `json:"background"`
}

// Node stands in for one rendered element.
type Node struct {
	ID       string
	Classes  []string
	Transfer *Transfer
	Drop     *DropTarget
	// HasChild reports whether the element currently renders a child, which
	// for a bag cell means it shows an item.
	HasChild bool
	Style    Style

	dirty bool
}

// Is reports whether the node carries the marker class.
func (n *Node) Is(m Marker) bool {
	return n != nil && slices.Contains(n.Classes, string(m))
}

func (n *Node) SetOpacity(v string) {
	if n.Style.Opacity != v {
		n.Style.Opacity = v
		n.dirty = true
	}
}

func (n *Node) SetBackground(v string) {
	if n.Style.Background != v {
		n.Style.Background = v
		n.dirty = true
	}
}

// NodeSpec is how a client describes an event target on the wire.
type NodeSpec struct {
	ID        string    `json:"id"`
	Classes   []string  `json:"classes"`
	Transfer  *Transfer `json:"transfer,omitempty"`
	DropIndex *int      `json:"dropIndex,omitempty"`
	HasChild  bool      `json:"hasChild"`
}

// Registry keeps one Node per element id so references held across events
// (the dragged element) stay the same object.
type Registry struct {
	nodes map[string]*Node
}

func NewRegistry() *Registry {
	return &Registry{nodes: make(map[string]*Node)}
}

// Resolve returns the node for spec.ID, refreshing its structured data while
// keeping identity and style. An empty id yields a detached node.
func (r *Registry) Resolve(spec NodeSpec) *Node {
	n, ok := r.nodes[spec.ID]
	if !ok || spec.ID == "" {
		n = &Node{ID: spec.ID}
		if spec.ID != "" {
			r.nodes[spec.ID] = n
		}
	}
	n.Classes = append(n.Classes[:0], spec.Classes...)
	n.Transfer = nil
	if spec.Transfer != nil {
		t := *spec.Transfer
		n.Transfer = &t
	}
	n.Drop = nil
	if spec.DropIndex != nil {
		n.Drop = &DropTarget{DropIndex: *spec.DropIndex}
	}
	n.HasChild = spec.HasChild
	return n
}

// Effect is a style change to apply to a rendered element.
type Effect struct {
	ID string `json:"id"`
	Style
}

// Flush returns the style of every node changed since the last flush, in id order.
func (r *Registry) Flush() []Effect {
	var out []Effect
	for id, n := range r.nodes {
		if !n.dirty {
			continue
		}
		n.dirty = false
		out = append(out, Effect{ID: id, Style: n.Style})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *Registry) Len() int { return len(r.nodes) }
