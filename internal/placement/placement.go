// Package placement models the contents of an item bag: a fixed grid of slots,
// each either holding an item or empty.
package placement

import (
	"errors"
	"fmt"
)

var (
	ErrSlotOutOfRange = errors.New("slot out of range")
	ErrUnknownItem    = errors.New("unknown item")
)

// ItemID identifies a kind of placeable item.
type ItemID int

const (
	Food ItemID = iota
	Drink
	Cookie
)

var itemNames = [...]string{"food", "drink", "cookie"}
var itemGlyphs = [...]string{"🍔", "🥤", "🍪"}

// Valid reports whether id is one of the known item kinds.
func (id ItemID) Valid() bool {
	return id >= Food && int(id) < len(itemNames)
}

func (id ItemID) String() string {
	if !id.Valid() {
		return fmt.Sprintf("item(%d)", int(id))
	}
	return itemNames[id]
}

// Glyph returns the icon rendered for the item.
func (id ItemID) Glyph() string {
	if !id.Valid() {
		return "?"
	}
	return itemGlyphs[id]
}

// Item is a placed object of a given kind.
type Item struct {
	ID ItemID
}

// Catalog lists the items offered by the store, in id order.
func Catalog() []Item {
	out := make([]Item, 0, len(itemNames))
	for i := range itemNames {
		out = append(out, Item{ID: ItemID(i)})
	}
	return out
}

// Slot holds an item or nothing. The zero value is empty.
type Slot struct {
	item    Item
	present bool
}

func Filled(item Item) Slot { return Slot{item: item, present: true} }

func Empty() Slot { return Slot{} }

// Item returns the slot's item and whether one is present.
func (s Slot) Item() (Item, bool) {
	return s.item, s.present
}

func (s Slot) Occupied() bool { return s.present }

// Placement is the sparse slot sequence of a bag. Its length is fixed at
// creation so slot indices map 1:1 to grid cells.
type Placement []Slot

// New returns a placement of size empty slots, with the leading slots filled
// from seed.
func New(size int, seed ...Item) Placement {
	if size < 0 {
		size = 0
	}
	p := make(Placement, size)
	for i, item := range seed {
		if i >= size {
			break
		}
		p[i] = Filled(item)
	}
	return p
}

// Clone returns an independent copy of p.
func (p Placement) Clone() Placement {
	out := make(Placement, len(p))
	copy(out, p)
	return out
}

// At returns the slot at i, or an empty slot when i is out of range.
func (p Placement) At(i int) Slot {
	if i < 0 || i >= len(p) {
		return Empty()
	}
	return p[i]
}

func (p Placement) checkIndex(i int) error {
	if i < 0 || i >= len(p) {
		return fmt.Errorf("%w: %d (size %d)", ErrSlotOutOfRange, i, len(p))
	}
	return nil
}

// Exchange swaps the contents of slots i and j. Swapping with an empty slot
// moves the item.
func Exchange(i, j int, p Placement) (Placement, error) {
	if err := p.checkIndex(i); err != nil {
		return nil, err
	}
	if err := p.checkIndex(j); err != nil {
		return nil, err
	}
	out := p.Clone()
	out[i], out[j] = out[j], out[i]
	return out, nil
}

// Insert puts a new item of kind id into slot i, replacing whatever was there.
func Insert(i int, id ItemID, p Placement) (Placement, error) {
	if err := p.checkIndex(i); err != nil {
		return nil, err
	}
	if !id.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownItem, int(id))
	}
	out := p.Clone()
	out[i] = Filled(Item{ID: id})
	return out, nil
}

// OccupiedCount counts the slots holding an item.
func OccupiedCount(p Placement) int {
	n := 0
	for _, s := range p {
		if s.present {
			n++
		}
	}
	return n
}

// Equal reports whether a and b have the same length and slot contents.
func Equal(a, b Placement) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
