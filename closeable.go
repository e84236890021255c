package reactor

import "sync"

// Closeable is a single-method cancellation capability. Connection
// satisfies it trivially; it exists separately so non-reactor resources
// (a file handle, a subprocess, a plain callback) can be aggregated
// alongside connections with the same Set/Join machinery.
type Closeable interface {
	Close() error
}

// CloseableFunc adapts a plain func() error to Closeable.
type CloseableFunc func() error

// Close invokes the wrapped function.
func (f CloseableFunc) Close() error { return f() }

type noop struct{}

func (noop) Close() error { return nil }

// NOOP is a Closeable whose Close is always a no-op, for the
// "uninitialized" placeholder pattern (spec.md §4.7).
var NOOP Closeable = noop{}

// CloseableSet aggregates multiple closeables. Closing the set closes
// each member in turn, accumulates any failures into a MultiFailure,
// clears its contents, and then returns the aggregate — grounded on the
// teacher's Owner child-list walk (internal/owner.go's DisposeChildren),
// generalized from "dispose children" to "close members, accumulate,
// clear".
type CloseableSet struct {
	mu      sync.Mutex
	members []Closeable
}

// NewCloseableSet creates an empty set, optionally seeded with members.
func NewCloseableSet(members ...Closeable) *CloseableSet {
	return &CloseableSet{members: append([]Closeable(nil), members...)}
}

// Add registers c as a member of the set.
func (s *CloseableSet) Add(c Closeable) {
	s.mu.Lock()
	s.members = append(s.members, c)
	s.mu.Unlock()
}

// Close closes every member in registration order, clears the set, and
// returns an aggregate failure (single or MultiFailure) if any member
// failed to close.
func (s *CloseableSet) Close() error {
	s.mu.Lock()
	members := s.members
	s.members = nil
	s.mu.Unlock()

	var errs []error
	for _, m := range members {
		if m == nil {
			continue
		}
		if err := m.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return newMultiFailure(errs)
}

// joinedCloseables implements Closeable by closing every member.
type joinedCloseables struct {
	members []Closeable
}

func (j joinedCloseables) Close() error {
	var errs []error
	for _, m := range j.members {
		if m == nil {
			continue
		}
		if err := m.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return newMultiFailure(errs)
}

// JoinCloseables returns a single Closeable that closes every argument,
// the Closeable-level analogue of Join for Connection.
func JoinCloseables(members ...Closeable) Closeable {
	return joinedCloseables{members: append([]Closeable(nil), members...)}
}

// CloseAndReplace closes *slot (if non-nil) and installs NOOP in its
// place, so a subsequent call is always a no-op — the idempotence
// property spec.md §8 names ("Closeable::Util::close(c) returns a NOOP
// whose close is a no-op").
func CloseAndReplace(slot *Closeable) error {
	if slot == nil || *slot == nil {
		if slot != nil {
			*slot = NOOP
		}
		return nil
	}
	c := *slot
	*slot = NOOP
	return c.Close()
}

// Toggler is a Value[bool] with a Toggle method flipping its current
// state, the "toggler" combinator spec.md §2's component table lists
// alongside and/or/not/as_value.
type Toggler struct {
	*Value[bool]
}

// NewToggler creates a toggler initialised to v.
func NewToggler(v bool) *Toggler {
	return &Toggler{Value: NewValue(v)}
}

// Toggle flips the current state and returns the new value.
func (t *Toggler) Toggle() bool {
	next := !t.Get()
	_ = t.Update(next)
	return next
}

// AndValues derives a Value[bool] that is true iff every input is true,
// updating whenever any input changes.
func AndValues(inputs ...*Value[bool]) *Value[bool] {
	return combineValues(inputs, func(vs []bool) bool {
		for _, v := range vs {
			if !v {
				return false
			}
		}
		return true
	})
}

// OrValues derives a Value[bool] that is true iff any input is true,
// updating whenever any input changes.
func OrValues(inputs ...*Value[bool]) *Value[bool] {
	return combineValues(inputs, func(vs []bool) bool {
		for _, v := range vs {
			if v {
				return true
			}
		}
		return false
	})
}

// NotValue derives a Value[bool] tracking the logical negation of src.
func NotValue(src *Value[bool]) *Value[bool] {
	return MapValue(src, func(v bool) bool { return !v })
}

// AsValue wraps a Signal into a Value by pairing it with the most
// recently emitted value (or, before any emission, init). Useful when a
// combinator (And/Or/not) needs Value semantics but the source is a
// plain event stream.
//
// Unlike MapValue/FlatMapValue, this connects to src immediately and
// keeps that connection for its own lifetime rather than attaching
// lazily on out's first subscriber: a Signal carries no gettable
// "current state" of its own, so there is nothing to pull from on a Get
// while detached — an emission missed while unsubscribed is gone for
// good. Staying subscribed is what keeps out.Get() accurate.
func AsValue[T any](src *Signal[T], init T) *Value[T] {
	out := NewValue(init)
	src.Connect(func(v T) {
		_ = out.UpdateForce(v)
	})
	return out
}

func combineValues(inputs []*Value[bool], combine func([]bool) bool) *Value[bool] {
	snapshot := func() []bool {
		vs := make([]bool, len(inputs))
		for i, in := range inputs {
			vs[i] = in.Get()
		}
		return vs
	}

	out := NewValue(combine(snapshot()))
	out.pull = func() bool { return combine(snapshot()) }
	var upstreams []Connection

	out.r.SetActivationHooks(
		func() {
			out.current = combine(snapshot())
			upstreams = make([]Connection, len(inputs))
			for i, in := range inputs {
				upstreams[i] = in.Connect(func(bool, bool) {
					_ = out.Update(combine(snapshot()))
				})
			}
		},
		func() {
			for _, c := range upstreams {
				_ = c.Close()
			}
			upstreams = nil
		},
	)
	return out
}
