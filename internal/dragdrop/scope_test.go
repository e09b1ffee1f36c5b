package dragdrop

import (
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func TestScope_DispatchOrderAndUnlisten(t *testing.T) {
	s := NewScope()
	var got []string
	s.Listen(KindDrop, func(*Event) error { got = append(got, "a"); return nil })
	off := s.Listen(KindDrop, func(*Event) error { got = append(got, "b"); return nil })
	s.Listen(KindDragOver, func(*Event) error { got = append(got, "over"); return nil })

	if err := s.Dispatch(&Event{Kind: KindDrop}); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("got %v, want [a b]", got)
	}

	off()
	off()
	got = nil
	_ = s.Dispatch(&Event{Kind: KindDrop})
	if len(got) != 1 || got[0] != "a" {
		t.Errorf("got %v after unlisten, want [a]", got)
	}
	if s.Len() != 2 {
		t.Errorf("Len %d, want 2", s.Len())
	}
}

func TestScope_DispatchCollectsErrors(t *testing.T) {
	s := NewScope()
	boom := errors.New("boom")
	ran := false
	s.Listen(KindDrop, func(*Event) error { return boom })
	s.Listen(KindDrop, func(*Event) error { ran = true; return nil })

	err := s.Dispatch(&Event{Kind: KindDrop})
	if !errors.Is(err, boom) {
		t.Errorf("err %v, want boom", err)
	}
	if !ran {
		t.Error("second listener should still run")
	}
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("dragenter")
	if err != nil || k != KindDragEnter {
		t.Errorf("ParseKind = %q, %v", k, err)
	}
	if _, err := ParseKind("click"); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("err %v, want ErrUnknownKind", err)
	}
}

func TestRegistry_ResolveKeepsIdentity(t *testing.T) {
	r := NewRegistry()
	idx := 3
	first := r.Resolve(NodeSpec{ID: "cell-3", Classes: []string{"dropzone"}, DropIndex: &idx})
	first.SetBackground(HighlightBackground)

	second := r.Resolve(NodeSpec{ID: "cell-3", Classes: []string{"dropzone"}, DropIndex: &idx, HasChild: true})
	if first != second {
		t.Fatal("same id should resolve to the same node")
	}
	if !second.HasChild || second.Drop == nil || second.Drop.DropIndex != 3 {
		t.Errorf("node data not refreshed: %+v", second)
	}
	if second.Style.Background != HighlightBackground {
		t.Error("style should survive a refresh")
	}

	detached := r.Resolve(NodeSpec{})
	if detached == r.Resolve(NodeSpec{}) {
		t.Error("empty ids should not be shared")
	}
	if r.Len() != 1 {
		t.Errorf("Len %d, want 1", r.Len())
	}
}

func TestRegistry_Flush(t *testing.T) {
	r := NewRegistry()
	a := r.Resolve(NodeSpec{ID: "b"})
	b := r.Resolve(NodeSpec{ID: "a"})
	a.SetOpacity(LiftedOpacity)
	b.SetBackground(HighlightBackground)
	b.SetBackground(HighlightBackground)

	effects := r.Flush()
	if len(effects) != 2 {
		t.Fatalf("effects %d, want 2", len(effects))
	}
	if effects[0].ID != "a" || effects[0].Background != HighlightBackground {
		t.Errorf("effects[0] = %+v", effects[0])
	}
	if effects[1].ID != "b" || effects[1].Opacity != LiftedOpacity {
		t.Errorf("effects[1] = %+v", effects[1])
	}
	if len(r.Flush()) != 0 {
		t.Error("second flush should be empty")
	}
}

func TestLogger_Filter(t *testing.T) {
	base, hook := test.NewNullLogger()
	base.SetLevel(logrus.DebugLevel)
	l := NewLogger(logrus.NewEntry(base), []string{"drop", "bogus"})

	var seen *Node
	target := cell(4, false)
	l.Log(KindDragOver, target, func(n *Node) { seen = n })
	if len(hook.Entries) != 0 || seen != nil {
		t.Fatal("dragover is not enabled")
	}
	l.Log(KindDrop, target, func(n *Node) { seen = n })
	if len(hook.Entries) != 1 {
		t.Fatalf("entries %d, want 1", len(hook.Entries))
	}
	if seen != target {
		t.Error("callback should receive the target")
	}
	if got := hook.LastEntry().Data["drop_index"]; got != 4 {
		t.Errorf("drop_index %v, want 4", got)
	}
}

func TestLogger_AllAndNone(t *testing.T) {
	base, hook := test.NewNullLogger()
	base.SetLevel(logrus.DebugLevel)
	entry := logrus.NewEntry(base)

	NewLogger(entry, []string{"all"}).Log(KindDrag, nil, nil)
	if len(hook.Entries) != 1 {
		t.Errorf("all: entries %d, want 1", len(hook.Entries))
	}
	NewLogger(entry, []string{"drop", "none"}).Log(KindDrop, nil, nil)
	if len(hook.Entries) != 1 {
		t.Errorf("none: entries %d, want 1", len(hook.Entries))
	}

	var nilLogger *Logger
	nilLogger.Log(KindDrop, nil, nil)
}
