package history

import (
	"reflect"
	"testing"
)

func cloneInts(v []int) []int { return append([]int(nil), v...) }

func TestUndoRedoRoundTrip(t *testing.T) {
	h := New(0, cloneInts)
	state := []int{1}

	h.Record(state)
	state = []int{1, 2}

	prev, ok := h.Undo(state)
	if !ok || !reflect.DeepEqual(prev, []int{1}) {
		t.Fatalf("expected undo to [1], got %v (ok=%v)", prev, ok)
	}
	next, ok := h.Redo(prev)
	if !ok || !reflect.DeepEqual(next, []int{1, 2}) {
		t.Fatalf("expected redo to [1 2], got %v (ok=%v)", next, ok)
	}
	if h.UndoDepth() != 1 || h.RedoDepth() != 0 {
		t.Errorf("expected depths 1/0, got %d/%d", h.UndoDepth(), h.RedoDepth())
	}
}

func TestEmptyStacksReportFailure(t *testing.T) {
	h := New(3, cloneInts)
	if _, ok := h.Undo(nil); ok {
		t.Error("expected undo on empty stack to fail")
	}
	if _, ok := h.Redo(nil); ok {
		t.Error("expected redo on empty stack to fail")
	}
	if h.CanUndo() || h.CanRedo() {
		t.Error("expected nothing to undo or redo")
	}
}

func TestRecordClearsRedo(t *testing.T) {
	h := New(5, cloneInts)
	h.Record([]int{0})
	h.Undo([]int{1})
	if h.RedoDepth() != 1 {
		t.Fatalf("expected redo depth 1, got %d", h.RedoDepth())
	}
	h.Record([]int{0})
	if h.RedoDepth() != 0 {
		t.Errorf("expected record to clear redo, got depth %d", h.RedoDepth())
	}
}

func TestLimitEvictsOldest(t *testing.T) {
	const limit = 4
	h := New(limit, cloneInts)
	for i := 0; i <= limit; i++ {
		h.Record([]int{i})
	}

	undone := 0
	var last []int
	for {
		v, ok := h.Undo(nil)
		if !ok {
			break
		}
		last = v
		undone++
	}
	if undone != limit {
		t.Errorf("expected exactly %d undos, got %d", limit, undone)
	}
	if !reflect.DeepEqual(last, []int{1}) {
		t.Errorf("expected oldest surviving snapshot [1], got %v", last)
	}
}

func TestSnapshotsAreIsolated(t *testing.T) {
	h := New(2, cloneInts)
	state := []int{1, 2, 3}
	h.Record(state)
	state[0] = 99

	prev, _ := h.Undo(state)
	if prev[0] != 1 {
		t.Errorf("expected snapshot to be unaffected by later mutation, got %v", prev)
	}
}

func TestDefaultLimit(t *testing.T) {
	if got := New[int](-1, nil).Limit(); got != DefaultLimit {
		t.Errorf("expected default limit %d, got %d", DefaultLimit, got)
	}
}

func TestClear(t *testing.T) {
	h := New(2, cloneInts)
	h.Record([]int{1})
	h.Undo([]int{2})
	h.Record([]int{3})
	h.Clear()
	if h.UndoDepth() != 0 || h.RedoDepth() != 0 {
		t.Errorf("expected empty stacks after Clear, got %d/%d", h.UndoDepth(), h.RedoDepth())
	}
}
