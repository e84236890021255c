package reactor

import (
	"iter"
	"sync"
)

// SetOp identifies the kind of mutation a SetChange describes.
type SetOp int

const (
	SetAdded SetOp = iota
	SetRemoved
)

// SetChange describes a single mutation of an RSet[E].
type SetChange[E comparable] struct {
	Op   SetOp
	Elem E
}

// RSet is a reactive set of unique elements, wrapping a
// Reactor[func(SetChange[E])] around a Go map[E]struct{}.
type RSet[E comparable] struct {
	mu         sync.Mutex
	r          *Reactor[func(SetChange[E])]
	items      map[E]struct{}
	sizeView   *Value[int]
	containsViews map[E]*Value[bool]
}

// NewRSet creates an empty reactive set.
func NewRSet[E comparable]() *RSet[E] {
	return &RSet[E]{
		r:     NewReactor[func(SetChange[E])](func(SetChange[E]) {}),
		items: make(map[E]struct{}),
	}
}

// WrapRSet creates a reactive set pre-populated from elems. The input
// is copied; subsequent mutation goes only through the returned RSet.
func WrapRSet[E comparable](elems []E) *RSet[E] {
	s := NewRSet[E]()
	for _, e := range elems {
		s.items[e] = struct{}{}
	}
	return s
}

// Len returns the current number of elements.
func (s *RSet[E]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Contains reports whether e is a member.
func (s *RSet[E]) Contains(e E) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.items[e]
	return ok
}

// Connect registers fn to run on every subsequent change.
func (s *RSet[E]) Connect(fn func(SetChange[E])) Connection {
	return connectListener(s.r, fn, 0)
}

// ConnectNotify registers fn, then immediately replays the current
// contents as Added events, then behaves like Connect.
func (s *RSet[E]) ConnectNotify(fn func(SetChange[E])) Connection {
	conn := s.Connect(fn)
	s.mu.Lock()
	snapshot := make([]E, 0, len(s.items))
	for e := range s.items {
		snapshot = append(snapshot, e)
	}
	s.mu.Unlock()
	for _, e := range snapshot {
		fn(SetChange[E]{Op: SetAdded, Elem: e})
	}
	return conn
}

func (s *RSet[E]) emit(ch SetChange[E]) error {
	err := s.r.Notify(func(fn func(SetChange[E])) error {
		fn(ch)
		return nil
	})
	s.updateSizeView()
	s.updateContainsView(ch.Elem)
	return err
}

func (s *RSet[E]) updateSizeView() {
	if s.sizeView == nil {
		return
	}
	s.mu.Lock()
	n := len(s.items)
	s.mu.Unlock()
	_ = s.sizeView.Update(n)
}

func (s *RSet[E]) updateContainsView(e E) {
	s.mu.Lock()
	v, ok := s.containsViews[e]
	if !ok {
		s.mu.Unlock()
		return
	}
	_, present := s.items[e]
	s.mu.Unlock()
	_ = v.Update(present)
}

// SizeView returns a lazily initialized Value tracking the set's size,
// refreshed after each notify.
func (s *RSet[E]) SizeView() *Value[int] {
	s.mu.Lock()
	if s.sizeView == nil {
		s.sizeView = NewValue(len(s.items))
	}
	v := s.sizeView
	s.mu.Unlock()
	return v
}

// ContainsView returns a derived Value[bool] tracking e's membership.
func (s *RSet[E]) ContainsView(e E) *Value[bool] {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.containsViews == nil {
		s.containsViews = make(map[E]*Value[bool])
	}
	v, ok := s.containsViews[e]
	if !ok {
		_, present := s.items[e]
		v = NewValue(present)
		s.containsViews[e] = v
	}
	return v
}

// Add inserts e, emitting Added(e) only if e was not already present.
func (s *RSet[E]) Add(e E) (bool, error) {
	s.mu.Lock()
	if _, present := s.items[e]; present {
		s.mu.Unlock()
		return false, nil
	}
	s.items[e] = struct{}{}
	s.mu.Unlock()
	return true, s.emit(SetChange[E]{Op: SetAdded, Elem: e})
}

// AddForce inserts e and always emits Added(e).
func (s *RSet[E]) AddForce(e E) error {
	s.mu.Lock()
	s.items[e] = struct{}{}
	s.mu.Unlock()
	return s.emit(SetChange[E]{Op: SetAdded, Elem: e})
}

// Remove deletes e, emitting Removed(e) only if e was present.
func (s *RSet[E]) Remove(e E) (bool, error) {
	s.mu.Lock()
	if _, present := s.items[e]; !present {
		s.mu.Unlock()
		return false, nil
	}
	delete(s.items, e)
	s.mu.Unlock()
	return true, s.emit(SetChange[E]{Op: SetRemoved, Elem: e})
}

// RemoveForce deletes e and always emits Removed(e).
func (s *RSet[E]) RemoveForce(e E) error {
	s.mu.Lock()
	delete(s.items, e)
	s.mu.Unlock()
	return s.emit(SetChange[E]{Op: SetRemoved, Elem: e})
}

// Clear removes every element, emitting one Removed per element against
// an already-empty backing store (snapshot-then-clear).
func (s *RSet[E]) Clear() error {
	s.mu.Lock()
	snapshot := make([]E, 0, len(s.items))
	for e := range s.items {
		snapshot = append(snapshot, e)
	}
	s.items = make(map[E]struct{})
	s.mu.Unlock()

	var errs []error
	for _, e := range snapshot {
		if err := s.emit(SetChange[E]{Op: SetRemoved, Elem: e}); err != nil {
			errs = append(errs, err)
		}
	}
	return newMultiFailure(errs)
}

// Elements returns an iterator over the set's current contents. Order
// is unspecified.
func (s *RSet[E]) Elements() iter.Seq[E] {
	s.mu.Lock()
	snapshot := make([]E, 0, len(s.items))
	for e := range s.items {
		snapshot = append(snapshot, e)
	}
	s.mu.Unlock()

	return func(yield func(E) bool) {
		for _, e := range snapshot {
			if !yield(e) {
				return
			}
		}
	}
}

// HasConnections reports whether any listener is currently connected.
func (s *RSet[E]) HasConnections() bool { return s.r.HasConnections() }

// ClearConnections removes every connection.
func (s *RSet[E]) ClearConnections() error { return s.r.ClearConnections() }
