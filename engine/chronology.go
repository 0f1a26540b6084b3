package engine

// stack is a LIFO buffer.
type stack[T any] struct {
	items []T
}

func (s *stack[T]) push(v T) {
	s.items = append(s.items, v)
}

func (s *stack[T]) pop() (T, bool) {
	var zero T
	if len(s.items) == 0 {
		return zero, false
	}
	v := s.items[len(s.items)-1]
	s.items = s.items[:len(s.items)-1]
	return v, true
}

// Reverse returns items in reverse order by pushing them all onto a stack and popping
// them back out. Used for newest-first history views.
func Reverse[T any](items []T) []T {
	s := &stack[T]{items: make([]T, 0, len(items))}
	for _, it := range items {
		s.push(it)
	}
	out := make([]T, 0, len(items))
	for {
		v, ok := s.pop()
		if !ok {
			return out
		}
		out = append(out, v)
	}
}
