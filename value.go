package reactor

import "reflect"

// ValueListener is the callback shape a Value[T] invokes with the
// (newValue, oldValue) pair on each change.
type ValueListener[T any] func(newValue, oldValue T)

// Value holds a current T and notifies listeners of changes. Update
// compares the candidate against the current value with deepEqual and
// is a no-op when they are equal; UpdateForce always emits (spec.md
// §2's Value semantics).
//
// Grounded on the teacher's internal/signal.go Signal (value + pending
// write + equality-gated commit) generalized from `==` to
// reflect.DeepEqual so T need not be comparable.
type Value[T any] struct {
	r       *Reactor[ValueListener[T]]
	current T

	// pull, when set, recomputes a derived value's current state directly
	// from its upstream. Derived values (MapValue, FlatMapValue, and the
	// combinators built on them) only keep current fresh by pushing
	// updates through an upstream connection that exists while someone is
	// subscribed (spec.md §2's lazy attach/detach). Get must not trust
	// that stale cache once nobody is listening, so it falls back to
	// pull instead (spec.md §4.4, §8 scenario 5).
	pull func() T
}

// NewValue creates a value initialised to v.
func NewValue[T any](v T) *Value[T] {
	return &Value[T]{
		r:       NewReactor[ValueListener[T]](func(T, T) {}),
		current: v,
	}
}

// Get returns the current value: the live cache while at least one
// listener is subscribed (kept fresh by push), or a fresh recomputation
// from upstream for a derived value nobody is currently subscribed to.
func (v *Value[T]) Get() T {
	if v.pull != nil && !v.r.HasConnections() {
		return v.pull()
	}
	return v.current
}

// Connect registers fn to run on every subsequent change, without an
// immediate call for the current value.
func (v *Value[T]) Connect(fn ValueListener[T]) Connection {
	return connectListener(v.r, fn, 0)
}

// ConnectAtPrio registers fn at an explicit dispatch priority.
func (v *Value[T]) ConnectAtPrio(fn ValueListener[T], prio int) Connection {
	return connectListener(v.r, fn, prio)
}

// ConnectNotify registers fn and immediately invokes it once with
// (current, current), then behaves exactly like Connect (spec.md §4.3's
// "subscribe and receive the present state without waiting for the next
// change").
func (v *Value[T]) ConnectNotify(fn ValueListener[T]) Connection {
	conn := v.Connect(fn)

	// If the immediate call panics, close the just-added connection
	// before the panic propagates (spec.md §4.4) — otherwise a failed
	// first notification would leave a dead listener registered forever.
	defer func() {
		if rec := recover(); rec != nil {
			_ = conn.Close()
			panic(rec)
		}
	}()
	current := v.Get()
	fn(current, current)
	return conn
}

// deepEqual reports structural equality, generalized from the
// teacher's bare `==` (internal/signal.go's isEqual) so that
// non-comparable T (slices, maps, structs containing them) never
// panics Update.
func deepEqual[T any](a, b T) bool {
	return reflect.DeepEqual(a, b)
}

// Update sets the value to next, emitting a change if, and only if,
// next differs from the current value under deep equality.
func (v *Value[T]) Update(next T) error {
	if deepEqual(v.current, next) {
		return nil
	}
	return v.UpdateForce(next)
}

// UpdateForce sets the value to next and always emits a change, even
// if next deep-equals the current value (spec.md §4.3).
func (v *Value[T]) UpdateForce(next T) error {
	old := v.current
	v.current = next
	return v.r.Notify(func(fn ValueListener[T]) error {
		fn(next, old)
		return nil
	})
}

// HasConnections reports whether any listener is currently connected.
func (v *Value[T]) HasConnections() bool { return v.r.HasConnections() }

// ClearConnections removes every connection.
func (v *Value[T]) ClearConnections() error { return v.r.ClearConnections() }

// Changes returns a Signal that re-emits this value's new value on
// every change, bridging Value's change-gated semantics into a plain
// event stream (spec.md §4.3).
func (v *Value[T]) Changes() *Signal[T] {
	out := NewSignal[T]()
	var upstream Connection

	out.r.SetActivationHooks(
		func() {
			upstream = v.Connect(func(newValue, _ T) {
				_ = out.Emit(newValue)
			})
		},
		func() {
			_ = upstream.Close()
		},
	)
	return out
}

// When returns a Future that completes with the first value (current
// or future) satisfying pred.
func (v *Value[T]) When(pred func(T) bool) *Future[T] {
	p := NewPromise[T]()
	current := v.Get()
	if pred(current) {
		_ = p.Succeed(current)
		return p.Future()
	}

	var conn Connection
	conn = v.Connect(func(newValue, _ T) {
		if pred(newValue) {
			_ = p.Succeed(newValue)
			_ = conn.Close()
		}
	})
	return p.Future()
}

// MapValue derives a value that tracks f(src.Get()), recomputed on
// every upstream change, attaching to src lazily on first subscriber
// (spec.md §2). A free function: Go methods cannot introduce the new
// type parameter U.
func MapValue[T, U any](src *Value[T], f func(T) U) *Value[U] {
	out := NewValue(f(src.Get()))
	out.pull = func() U { return f(src.Get()) }
	var upstream Connection

	out.r.SetActivationHooks(
		func() {
			out.current = f(src.Get())
			upstream = src.Connect(func(newValue, _ T) {
				_ = out.Update(f(newValue))
			})
		},
		func() {
			_ = upstream.Close()
		},
	)
	return out
}

// FlatMapValue derives a value that tracks whichever inner Value f
// currently selects, re-subscribing to the newly selected inner value on
// every outer change and re-emitting on every change of the current
// inner value (spec.md §4.3's dynamic value-of-values case).
func FlatMapValue[T, U any](src *Value[T], f func(T) *Value[U]) *Value[U] {
	inner := f(src.Get())
	out := NewValue(inner.Get())
	out.pull = func() U { return f(src.Get()).Get() }
	var outerConn, innerConn Connection

	attachInner := func(iv *Value[U]) {
		if innerConn.c != nil {
			_ = innerConn.Close()
		}
		inner = iv
		_ = out.Update(inner.Get())
		innerConn = inner.Connect(func(newValue, _ U) {
			_ = out.Update(newValue)
		})
	}

	out.r.SetActivationHooks(
		func() {
			attachInner(f(src.Get()))
			outerConn = src.Connect(func(newValue, _ T) {
				attachInner(f(newValue))
			})
		},
		func() {
			_ = outerConn.Close()
			if innerConn.c != nil {
				_ = innerConn.Close()
			}
		},
	)
	return out
}
