package reactor

// SignalListener is the callback shape a Signal[T] invokes on each
// emission.
type SignalListener[T any] func(T)

// Signal is a pure event stream: it carries no current value, only a
// history of emissions observed by whoever is connected at the moment
// of each Emit (spec.md §2). It wraps a Reactor[SignalListener[T]]
// exactly the way the teacher's Signal (internal/signal.go) wraps a
// bare value — only the payload differs.
type Signal[T any] struct {
	r *Reactor[SignalListener[T]]
}

// NewSignal creates an empty signal with no connections.
func NewSignal[T any]() *Signal[T] {
	return &Signal[T]{r: NewReactor[SignalListener[T]](func(T) {})}
}

// Connect registers fn to run on every subsequent Emit, at the default
// priority (0).
func (s *Signal[T]) Connect(fn SignalListener[T]) Connection {
	return connectListener(s.r, fn, 0)
}

// ConnectAtPrio registers fn at an explicit dispatch priority; higher
// runs first.
func (s *Signal[T]) ConnectAtPrio(fn SignalListener[T], prio int) Connection {
	return connectListener(s.r, fn, prio)
}

// Emit dispatches value to every connected listener, in priority order,
// and returns an aggregated failure if any listener panicked.
func (s *Signal[T]) Emit(value T) error {
	return s.r.Notify(func(fn SignalListener[T]) error {
		fn(value)
		return nil
	})
}

// HasConnections reports whether any listener is currently connected.
func (s *Signal[T]) HasConnections() bool { return s.r.HasConnections() }

// ClearConnections removes every connection.
func (s *Signal[T]) ClearConnections() error { return s.r.ClearConnections() }

// Next returns a Future that completes with the next value this signal
// emits, then disconnects itself (spec.md §4.4 bridging a push stream
// into a one-shot pull).
func (s *Signal[T]) Next() *Future[T] {
	p := NewPromise[T]()
	conn := s.Connect(func(v T) {
		_ = p.Succeed(v)
	})
	conn.Once()
	return p.Future()
}

// UnitListener is the callback shape of a UnitSignal: a pure
// notification carrying no payload.
type UnitListener func()

// UnitSignal is a Signal[struct{}] specialisation for events that carry
// no data, avoiding a pointless struct{} everywhere a caller just wants
// "this happened" (spec.md §2 Glossary: "Unit Signal").
type UnitSignal struct {
	r *Reactor[UnitListener]
}

// NewUnitSignal creates an empty unit signal.
func NewUnitSignal() *UnitSignal {
	return &UnitSignal{r: NewReactor[UnitListener](func() {})}
}

// Connect registers fn to run on every subsequent Emit.
func (s *UnitSignal) Connect(fn UnitListener) Connection {
	return connectListener(s.r, fn, 0)
}

// ConnectAtPrio registers fn at an explicit dispatch priority.
func (s *UnitSignal) ConnectAtPrio(fn UnitListener, prio int) Connection {
	return connectListener(s.r, fn, prio)
}

// Emit notifies every connected listener.
func (s *UnitSignal) Emit() error {
	return s.r.Notify(func(fn UnitListener) error {
		fn()
		return nil
	})
}

// HasConnections reports whether any listener is currently connected.
func (s *UnitSignal) HasConnections() bool { return s.r.HasConnections() }

// ClearConnections removes every connection.
func (s *UnitSignal) ClearConnections() error { return s.r.ClearConnections() }

// MapSignal derives a new signal that re-emits every value of src
// transformed by f. The derived signal lazily connects to src on its
// own first subscriber and disconnects when its last subscriber leaves
// (spec.md §2's "derived reactors attach lazily"). A free function,
// since Go forbids a method from introducing a new type parameter U.
func MapSignal[T, U any](src *Signal[T], f func(T) U) *Signal[U] {
	out := NewSignal[U]()
	var upstream Connection

	out.r.SetActivationHooks(
		func() {
			upstream = src.Connect(func(v T) {
				_ = out.Emit(f(v))
			})
		},
		func() {
			_ = upstream.Close()
		},
	)
	return out
}

// FilterSignal derives a new signal that re-emits only the values of
// src for which pred returns true.
func FilterSignal[T any](src *Signal[T], pred func(T) bool) *Signal[T] {
	out := NewSignal[T]()
	var upstream Connection

	out.r.SetActivationHooks(
		func() {
			upstream = src.Connect(func(v T) {
				if pred(v) {
					_ = out.Emit(v)
				}
			})
		},
		func() {
			_ = upstream.Close()
		},
	)
	return out
}
