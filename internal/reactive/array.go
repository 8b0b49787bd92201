package reactive

import (
	"sort"
	"sync"
)

// Slice is the ordered reactive sequence. The in-place mutating methods
// are intercepted: each delegates to the plain slice operation, observes
// any inserted elements and fires the owner's shape dep. Reads record the
// shape dep, which is the sequence's only dep.
type Slice struct {
	mu     sync.RWMutex
	items  []any
	ob     *Observer
	sealed bool
}

// NewSlice returns an empty sequence.
func NewSlice() *Slice {
	return &Slice{}
}

// NewSliceOf deep-converts the given items into a reactive sequence.
func NewSliceOf(items ...any) *Slice {
	s := &Slice{items: make([]any, len(items))}
	for i, v := range items {
		s.items[i] = convert(v)
	}
	return s
}

// Seal marks the sequence non-extensible; it will never be observed.
func (s *Slice) Seal() {
	s.mu.Lock()
	s.sealed = true
	s.mu.Unlock()
}

// Sealed reports whether the sequence was sealed.
func (s *Slice) Sealed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sealed
}

func (s *Slice) observeItems() {
	s.mu.RLock()
	items := make([]any, len(s.items))
	copy(items, s.items)
	s.mu.RUnlock()
	for _, v := range items {
		Observe(v, false)
	}
}

func (s *Slice) shapeDepend() {
	if s.ob != nil {
		s.ob.dep.Depend()
	}
}

func (s *Slice) notifyShape() {
	if s.ob != nil {
		s.ob.dep.Notify()
	}
}

func (s *Slice) observeInserted(items []any) {
	if s.ob == nil {
		return
	}
	for _, v := range items {
		Observe(v, false)
	}
}

// dependSlice records the shape dep of a sequence and of every nested
// sequence, on behalf of a reader that obtained it through a keyed slot.
func dependSlice(s *Slice) {
	s.shapeDepend()
	s.mu.RLock()
	items := make([]any, len(s.items))
	copy(items, s.items)
	s.mu.RUnlock()
	for _, e := range items {
		if ob := ObserverOf(e); ob != nil {
			ob.dep.Depend()
		}
		if nested, ok := e.(*Slice); ok {
			dependSlice(nested)
		}
	}
}

// Len returns the element count.
func (s *Slice) Len() int {
	s.shapeDepend()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Index returns the element at i, or nil when out of range.
func (s *Slice) Index(i int) any {
	s.shapeDepend()
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i < 0 || i >= len(s.items) {
		return nil
	}
	v := s.items[i]
	if ob := ObserverOf(v); ob != nil && currentTarget() != nil {
		ob.dep.Depend()
	}
	return v
}

// Snapshot returns a copy of the backing slice without recording a
// dependency.
func (s *Slice) Snapshot() []any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]any, len(s.items))
	copy(items, s.items)
	return items
}

// Push appends values and returns the new length.
func (s *Slice) Push(values ...any) int {
	s.mu.Lock()
	s.items = append(s.items, values...)
	n := len(s.items)
	s.mu.Unlock()
	s.observeInserted(values)
	s.notifyShape()
	return n
}

// Pop removes and returns the last element, or nil when empty.
func (s *Slice) Pop() any {
	s.mu.Lock()
	if len(s.items) == 0 {
		s.mu.Unlock()
		return nil
	}
	last := s.items[len(s.items)-1]
	s.items = s.items[:len(s.items)-1]
	s.mu.Unlock()
	s.notifyShape()
	return last
}

// Shift removes and returns the first element, or nil when empty.
func (s *Slice) Shift() any {
	s.mu.Lock()
	if len(s.items) == 0 {
		s.mu.Unlock()
		return nil
	}
	head := s.items[0]
	s.items = append(s.items[:0], s.items[1:]...)
	s.mu.Unlock()
	s.notifyShape()
	return head
}

// Unshift prepends values and returns the new length.
func (s *Slice) Unshift(values ...any) int {
	s.mu.Lock()
	s.items = append(append(make([]any, 0, len(values)+len(s.items)), values...), s.items...)
	n := len(s.items)
	s.mu.Unlock()
	s.observeInserted(values)
	s.notifyShape()
	return n
}

// Splice removes deleteCount elements at start, inserts values in their
// place and returns the removed elements. A negative start counts from
// the end; out-of-range arguments are clamped.
func (s *Slice) Splice(start, deleteCount int, values ...any) []any {
	s.mu.Lock()
	n := len(s.items)
	if start < 0 {
		start += n
		if start < 0 {
			start = 0
		}
	}
	if start > n {
		start = n
	}
	if deleteCount < 0 {
		deleteCount = 0
	}
	if deleteCount > n-start {
		deleteCount = n - start
	}

	removed := make([]any, deleteCount)
	copy(removed, s.items[start:start+deleteCount])

	next := make([]any, 0, n-deleteCount+len(values))
	next = append(next, s.items[:start]...)
	next = append(next, values...)
	next = append(next, s.items[start+deleteCount:]...)
	s.items = next
	s.mu.Unlock()

	s.observeInserted(values)
	s.notifyShape()
	return removed
}

// Sort orders the elements in place with a stable sort and returns the
// sequence.
func (s *Slice) Sort(less func(a, b any) bool) *Slice {
	s.mu.Lock()
	sort.SliceStable(s.items, func(i, j int) bool { return less(s.items[i], s.items[j]) })
	s.mu.Unlock()
	s.notifyShape()
	return s
}

// Reverse reverses the elements in place and returns the sequence.
func (s *Slice) Reverse() *Slice {
	s.mu.Lock()
	for i, j := 0, len(s.items)-1; i < j; i, j = i+1, j-1 {
		s.items[i], s.items[j] = s.items[j], s.items[i]
	}
	s.mu.Unlock()
	s.notifyShape()
	return s
}

// SetIndex assigns the element at i without notification. Index
// assignment is not observed; use Set for a reactive replace.
func (s *Slice) SetIndex(i int, v any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.items) {
		return
	}
	s.items[i] = v
}

// Truncate shortens the sequence to n elements without notification.
func (s *Slice) Truncate(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n < 0 || n >= len(s.items) {
		return
	}
	s.items = s.items[:n]
}

// extend grows the backing slice to at least n elements, raw.
func (s *Slice) extend(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for len(s.items) < n {
		s.items = append(s.items, nil)
	}
}

// rawLen reports length without recording a dependency.
func (s *Slice) rawLen() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
