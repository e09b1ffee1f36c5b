package dragdrop

import (
	"errors"
	"testing"

	"toybox/internal/placement"
)

type memModel struct {
	p        placement.Placement
	replaced int
}

func (m *memModel) Placement() placement.Placement { return m.p }

func (m *memModel) Replace(p placement.Placement) {
	m.p = p
	m.replaced++
}

func draggable(id string, origin Origin, src int, item placement.ItemID) *Node {
	return &Node{
		ID:       id,
		Classes:  []string{string(MarkerDraggable)},
		Transfer: &Transfer{Origin: origin, SourceIndex: src, ItemID: item},
		Style:    Style{Opacity: "1"},
	}
}

func cell(i int, hasChild bool) *Node {
	return &Node{
		ID:       "cell",
		Classes:  []string{string(MarkerDropZone)},
		Drop:     &DropTarget{DropIndex: i},
		HasChild: hasChild,
	}
}

func setup(t *testing.T, p placement.Placement) (*Scope, *Coordinator, *memModel) {
	t.Helper()
	scope := NewScope()
	model := &memModel{p: p}
	c, teardown := Attach(scope, model, Options{})
	t.Cleanup(teardown)
	return scope, c, model
}

func fire(t *testing.T, scope *Scope, kind Kind, target *Node) *Event {
	t.Helper()
	ev := &Event{Kind: kind, Target: target}
	if err := scope.Dispatch(ev); err != nil {
		t.Fatalf("%s: %v", kind, err)
	}
	return ev
}

func TestAttach_TeardownDetachesListeners(t *testing.T) {
	scope := NewScope()
	_, teardown := Attach(scope, &memModel{}, Options{})
	if got := scope.Len(); got != len(Kinds()) {
		t.Fatalf("listeners %d, want %d", got, len(Kinds()))
	}
	teardown()
	teardown()
	if got := scope.Len(); got != 0 {
		t.Errorf("listeners after teardown %d, want 0", got)
	}
}

func TestAttach_InstancesDoNotShareState(t *testing.T) {
	scopeA, scopeB := NewScope(), NewScope()
	a, tearA := Attach(scopeA, &memModel{p: placement.New(4)}, Options{})
	b, tearB := Attach(scopeB, &memModel{p: placement.New(4)}, Options{})
	defer tearA()
	defer tearB()

	fire(t, scopeA, KindDragStart, draggable("a", OriginStore, 0, placement.Food))
	if a.State() != Dragging {
		t.Errorf("a state %v, want dragging", a.State())
	}
	if b.State() != Idle {
		t.Errorf("b state %v, want idle", b.State())
	}
}

func TestDragOver_PreventsDefault(t *testing.T) {
	scope, _, _ := setup(t, placement.New(4))
	ev := fire(t, scope, KindDragOver, &Node{ID: "anything"})
	if !ev.DefaultPrevented() {
		t.Error("dragover must prevent default so drops can fire")
	}
}

func TestDragStart_LiftsDraggable(t *testing.T) {
	scope, c, _ := setup(t, placement.New(4))
	item := draggable("store-item-0", OriginStore, 0, placement.Food)

	fire(t, scope, KindDragStart, item)
	if c.State() != Dragging {
		t.Fatalf("state %v, want dragging", c.State())
	}
	if c.Dragged() != item {
		t.Error("dragged reference not stored")
	}
	if item.Style.Opacity != LiftedOpacity {
		t.Errorf("opacity %q, want %q", item.Style.Opacity, LiftedOpacity)
	}
}

func TestDragStart_IgnoresPlainNodes(t *testing.T) {
	scope, c, _ := setup(t, placement.New(4))
	fire(t, scope, KindDragStart, &Node{ID: "text"})
	if c.State() != Idle {
		t.Errorf("state %v, want idle", c.State())
	}
}

func TestDragEnd_WithoutDropClearsSession(t *testing.T) {
	scope, c, model := setup(t, placement.New(4))
	item := draggable("bag-item-0", OriginBag, 0, placement.Food)

	fire(t, scope, KindDragStart, item)
	fire(t, scope, KindDragEnd, item)

	if c.Dragged() != nil {
		t.Error("dragged reference should be cleared")
	}
	if c.State() != Idle {
		t.Errorf("state %v, want idle", c.State())
	}
	if item.Style.Opacity != "1" {
		t.Errorf("opacity %q, want restored 1", item.Style.Opacity)
	}
	if model.replaced != 0 {
		t.Errorf("model replaced %d times, want 0", model.replaced)
	}
}

func TestDragEnd_AfterDropRestoresOpacity(t *testing.T) {
	scope, c, _ := setup(t, placement.New(4))
	item := draggable("store-item-1", OriginStore, 1, placement.Drink)

	fire(t, scope, KindDragStart, item)
	fire(t, scope, KindDrop, cell(2, false))
	if c.State() != Idle {
		t.Errorf("state after drop %v, want idle", c.State())
	}
	if item.Style.Opacity != LiftedOpacity {
		t.Errorf("opacity %q, want lifted until dragend", item.Style.Opacity)
	}
	fire(t, scope, KindDragEnd, item)
	if item.Style.Opacity != "1" {
		t.Errorf("opacity %q, want restored 1", item.Style.Opacity)
	}
}

func TestDragEnterLeave_Highlight(t *testing.T) {
	scope, _, _ := setup(t, placement.New(4))
	zone := cell(1, false)
	plain := &Node{ID: "header"}

	fire(t, scope, KindDragEnter, zone)
	fire(t, scope, KindDragEnter, plain)
	if zone.Style.Background != HighlightBackground {
		t.Errorf("background %q, want highlight", zone.Style.Background)
	}
	if plain.Style.Background != "" {
		t.Errorf("non drop zone got background %q", plain.Style.Background)
	}

	fire(t, scope, KindDragLeave, zone)
	if zone.Style.Background != "" {
		t.Errorf("background %q after leave, want empty", zone.Style.Background)
	}
}

func TestDrop_StoreOntoOccupiedSlotIsNoop(t *testing.T) {
	p := placement.New(9)
	p[5] = placement.Filled(placement.Item{ID: placement.Drink})

	cases := []struct {
		name     string
		hasChild bool
	}{
		{"rendered child", true},
		{"stale render", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			scope, _, model := setup(t, p)
			zone := cell(5, tc.hasChild)
			zone.Style.Background = HighlightBackground

			fire(t, scope, KindDragStart, draggable("store-item-2", OriginStore, 2, placement.Cookie))
			fire(t, scope, KindDrop, zone)

			if !placement.Equal(model.p, p) {
				t.Errorf("placement changed to %v", model.p)
			}
			if zone.Style.Background != "" {
				t.Error("highlight should be cleared even when nothing happens")
			}
		})
	}
}

func TestDrop_BagIntoEmptySlotMovesItem(t *testing.T) {
	p := placement.New(9)
	p[2] = placement.Filled(placement.Item{ID: placement.Drink})
	scope, _, model := setup(t, p)

	fire(t, scope, KindDragStart, draggable("bag-item-2", OriginBag, 2, placement.Drink))
	fire(t, scope, KindDrop, cell(7, false))

	if item, ok := model.p[7].Item(); !ok || item.ID != placement.Drink {
		t.Errorf("slot 7 = %v %v, want drink", item, ok)
	}
	if model.p[2].Occupied() {
		t.Error("slot 2 should be empty")
	}
}

func TestDrop_BagFromStaleSlotIsNoop(t *testing.T) {
	p := placement.New(3)
	p[2] = placement.Filled(placement.Item{ID: placement.Food})

	cases := []struct {
		name string
		src  *Node
	}{
		{"source emptied", draggable("bag-item-0", OriginBag, 0, placement.Food)},
		{"source holds another item", draggable("bag-item-2", OriginBag, 2, placement.Drink)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			scope, _, model := setup(t, p)
			fire(t, scope, KindDragStart, tc.src)
			fire(t, scope, KindDrop, cell(1, false))
			if model.replaced != 0 {
				t.Errorf("model replaced with %v, want untouched", model.p)
			}
		})
	}
}

func TestDrop_Scenario(t *testing.T) {
	scope, _, model := setup(t, placement.New(3, placement.Item{ID: placement.Food}))

	store := draggable("store-item-2", OriginStore, 2, placement.Cookie)
	fire(t, scope, KindDragStart, store)
	fire(t, scope, KindDragEnter, cell(1, false))
	fire(t, scope, KindDragOver, cell(1, false))
	fire(t, scope, KindDrop, cell(1, false))
	fire(t, scope, KindDragEnd, store)

	want := placement.Placement{
		placement.Filled(placement.Item{ID: placement.Food}),
		placement.Filled(placement.Item{ID: placement.Cookie}),
		placement.Empty(),
	}
	if !placement.Equal(model.p, want) {
		t.Fatalf("after store drop got %v, want %v", model.p, want)
	}

	bag := draggable("bag-item-0", OriginBag, 0, placement.Food)
	fire(t, scope, KindDragStart, bag)
	fire(t, scope, KindDrop, cell(2, false))
	fire(t, scope, KindDragEnd, bag)

	want = placement.Placement{
		placement.Empty(),
		placement.Filled(placement.Item{ID: placement.Cookie}),
		placement.Filled(placement.Item{ID: placement.Food}),
	}
	if !placement.Equal(model.p, want) {
		t.Errorf("after exchange got %v, want %v", model.p, want)
	}
}

func TestDrop_OnPlainNodeIsIgnored(t *testing.T) {
	scope, c, model := setup(t, placement.New(4))
	fire(t, scope, KindDragStart, draggable("store-item-0", OriginStore, 0, placement.Food))
	ev := fire(t, scope, KindDrop, &Node{ID: "header"})
	if !ev.DefaultPrevented() {
		t.Error("drop should prevent default")
	}
	if model.replaced != 0 {
		t.Error("drop on a plain node must not touch the model")
	}
	if c.State() != Dragging {
		t.Error("session should wait for dragend")
	}
}

func TestDrop_InvariantViolations(t *testing.T) {
	t.Run("no session", func(t *testing.T) {
		scope, _, _ := setup(t, placement.New(4))
		zone := cell(1, false)
		zone.Style.Background = HighlightBackground
		err := scope.Dispatch(&Event{Kind: KindDrop, Target: zone})
		if !errors.Is(err, ErrNoDragSession) {
			t.Errorf("err %v, want ErrNoDragSession", err)
		}
		if zone.Style.Background != "" {
			t.Error("highlight should be cleared")
		}
	})
	t.Run("missing transfer", func(t *testing.T) {
		scope, _, _ := setup(t, placement.New(4))
		fire(t, scope, KindDragStart, &Node{ID: "x", Classes: []string{string(MarkerDraggable)}})
		err := scope.Dispatch(&Event{Kind: KindDrop, Target: cell(1, false)})
		if !errors.Is(err, ErrMissingTransfer) {
			t.Errorf("err %v, want ErrMissingTransfer", err)
		}
	})
	t.Run("malformed transfer", func(t *testing.T) {
		scope, _, _ := setup(t, placement.New(4))
		fire(t, scope, KindDragStart, draggable("x", Origin("shelf"), 0, placement.Food))
		err := scope.Dispatch(&Event{Kind: KindDrop, Target: cell(1, false)})
		if !errors.Is(err, ErrMissingTransfer) {
			t.Errorf("err %v, want ErrMissingTransfer", err)
		}
	})
	t.Run("missing drop index", func(t *testing.T) {
		scope, _, _ := setup(t, placement.New(4))
		fire(t, scope, KindDragStart, draggable("x", OriginBag, 0, placement.Food))
		zone := &Node{ID: "cell", Classes: []string{string(MarkerDropZone)}}
		err := scope.Dispatch(&Event{Kind: KindDrop, Target: zone})
		if !errors.Is(err, ErrMissingDropTarget) {
			t.Errorf("err %v, want ErrMissingDropTarget", err)
		}
	})
	t.Run("out of range", func(t *testing.T) {
		scope, _, model := setup(t, placement.New(4))
		fire(t, scope, KindDragStart, draggable("x", OriginBag, 0, placement.Food))
		err := scope.Dispatch(&Event{Kind: KindDrop, Target: cell(12, false)})
		if !errors.Is(err, placement.ErrSlotOutOfRange) {
			t.Errorf("err %v, want ErrSlotOutOfRange", err)
		}
		if model.replaced != 0 {
			t.Error("model must not change on a rejected drop")
		}
	})
}
