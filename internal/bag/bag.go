package bag

import (
	"errors"
	"sync"
	"time"

	"toybox/internal/dragdrop"
	"toybox/internal/placement"
)

var ErrClosed = errors.New("bag closed")

// Bag is one mounted item bag: a rows x cols grid of slots.
type Bag struct {
	mu        sync.Mutex
	ID        string
	Rows      int
	Cols      int
	CreatedAt time.Time
	lastSeen  time.Time
	items     placement.Placement
	revision  int
	views     int
	closed    bool
}

// NewBag creates a bag with its first slot already holding food, so the grid
// never renders fully empty.
func NewBag(rows, cols int) *Bag {
	now := time.Now().UTC()
	return &Bag{
		ID:        newID(),
		Rows:      rows,
		Cols:      cols,
		CreatedAt: now,
		lastSeen:  now,
		items:     placement.New(rows*cols, placement.Item{ID: placement.Food}),
	}
}

// Snapshot captures the state needed for rendering.
type Snapshot struct {
	ID       string
	Rows     int
	Cols     int
	Slots    placement.Placement
	Occupied int
	Revision int
}

// Snapshot returns a consistent copy of the bag.
func (b *Bag) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Snapshot{
		ID:       b.ID,
		Rows:     b.Rows,
		Cols:     b.Cols,
		Slots:    b.items.Clone(),
		Occupied: placement.OccupiedCount(b.items),
		Revision: b.revision,
	}
}

// Touch records activity at now.
func (b *Bag) Touch(now time.Time) {
	b.mu.Lock()
	b.lastSeen = now
	b.mu.Unlock()
}

// LastSeen returns the time of the last activity.
func (b *Bag) LastSeen() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastSeen
}

// Views returns the number of mounted views.
func (b *Bag) Views() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.views
}

func (b *Bag) close() {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
}

// model adapts the bag for the coordinator. Callers hold b.mu.
type model struct{ b *Bag }

func (m model) Placement() placement.Placement { return m.b.items }

func (m model) Replace(p placement.Placement) {
	if placement.Equal(m.b.items, p) {
		return
	}
	m.b.items = p
	m.b.revision++
}

type MountOptions struct {
	Logger *dragdrop.Logger
	// OnClose runs once after the view is torn down.
	OnClose func()
}

// View is one client's mounted copy of the bag widget. It owns the drag
// session for that client; the placement is shared by every view.
type View struct {
	bag      *Bag
	nodes    *dragdrop.Registry
	scope    *dragdrop.Scope
	coord    *dragdrop.Coordinator
	teardown func()
	onClose  func()
	once     sync.Once
}

// Mount attaches a drag coordinator for a new view of the bag.
func (b *Bag) Mount(opts MountOptions) *View {
	scope := dragdrop.NewScope()
	coord, teardown := dragdrop.Attach(scope, model{b: b}, dragdrop.Options{Logger: opts.Logger})
	b.mu.Lock()
	b.views++
	b.mu.Unlock()
	return &View{
		bag:      b,
		nodes:    dragdrop.NewRegistry(),
		scope:    scope,
		coord:    coord,
		teardown: teardown,
		onClose:  opts.OnClose,
	}
}

// Result is the outcome of one dispatched event.
type Result struct {
	Effects        []dragdrop.Effect
	PreventDefault bool
	Changed        bool
}

// Dispatch delivers one drag event to the view. Events from all views of the
// bag are serialized.
func (v *View) Dispatch(kind dragdrop.Kind, target dragdrop.NodeSpec, now time.Time) (Result, error) {
	b := v.bag
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return Result{}, ErrClosed
	}
	b.lastSeen = now
	before := b.revision
	ev := &dragdrop.Event{Kind: kind, Target: v.nodes.Resolve(target)}
	err := v.scope.Dispatch(ev)
	return Result{
		Effects:        v.nodes.Flush(),
		PreventDefault: ev.DefaultPrevented(),
		Changed:        b.revision != before,
	}, err
}

// State reports the view's drag state.
func (v *View) State() dragdrop.State {
	v.bag.mu.Lock()
	defer v.bag.mu.Unlock()
	return v.coord.State()
}

// Close detaches the view's listeners. It is safe to call more than once.
func (v *View) Close() {
	v.once.Do(func() {
		v.bag.mu.Lock()
		v.teardown()
		v.bag.views--
		v.bag.mu.Unlock()
		if v.onClose != nil {
			v.onClose()
		}
	})
}
