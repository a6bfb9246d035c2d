// Package history implements bounded snapshot-based undo/redo.
package history

// DefaultLimit is the undo depth used when a non-positive limit is given.
const DefaultLimit = 10

// Stack keeps deep snapshots of a value on an undo and a redo stack.
// History is linear: recording after an undo discards the redo stack.
type Stack[T any] struct {
	clone func(T) T
	limit int
	past  []T
	next  []T
}

// New returns an empty Stack that snapshots values with clone and keeps at
// most limit undo entries.
func New[T any](limit int, clone func(T) T) *Stack[T] {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if clone == nil {
		clone = func(v T) T { return v }
	}
	return &Stack[T]{clone: clone, limit: limit}
}

// Limit returns the maximum undo depth.
func (s *Stack[T]) Limit() int { return s.limit }

// Record snapshots v as the state to return to on the next Undo. The redo
// stack is cleared and the oldest entry is evicted past the limit.
func (s *Stack[T]) Record(v T) {
	s.past = append(s.past, s.clone(v))
	if over := len(s.past) - s.limit; over > 0 {
		var zero T
		for i := 0; i < over; i++ {
			s.past[i] = zero
		}
		s.past = append(s.past[:0], s.past[over:]...)
	}
	s.next = nil
}

// Undo pops the most recent snapshot and pushes current onto the redo stack.
// It reports false and leaves both stacks untouched when there is nothing to undo.
func (s *Stack[T]) Undo(current T) (T, bool) {
	v, ok := pop(&s.past)
	if !ok {
		return v, false
	}
	s.next = append(s.next, s.clone(current))
	return v, true
}

// Redo is the mirror of Undo.
func (s *Stack[T]) Redo(current T) (T, bool) {
	v, ok := pop(&s.next)
	if !ok {
		return v, false
	}
	s.past = append(s.past, s.clone(current))
	return v, true
}

// UndoDepth returns how many Undo calls would currently succeed.
func (s *Stack[T]) UndoDepth() int { return len(s.past) }

// RedoDepth returns how many Redo calls would currently succeed.
func (s *Stack[T]) RedoDepth() int { return len(s.next) }

// CanUndo reports whether UndoDepth is non-zero.
func (s *Stack[T]) CanUndo() bool { return len(s.past) > 0 }

// CanRedo reports whether RedoDepth is non-zero.
func (s *Stack[T]) CanRedo() bool { return len(s.next) > 0 }

// Clear drops every snapshot.
func (s *Stack[T]) Clear() {
	s.past = nil
	s.next = nil
}

func pop[T any](stack *[]T) (T, bool) {
	var zero T
	n := len(*stack)
	if n == 0 {
		return zero, false
	}
	v := (*stack)[n-1]
	(*stack)[n-1] = zero
	*stack = (*stack)[:n-1]
	return v, true
}
