package reactor

import (
	"fmt"
	"sync"

	"github.com/petermattis/goid"
)

// dispatchState is the listener-list pointer's state machine (spec.md
// §4.1/§9): Idle(head) -> Dispatching(snapshot) -> Idle(head'). The
// source embeds this as a sentinel value inside the list pointer itself;
// Design Notes §9 calls an explicit {list, state} record an equally
// valid, clearer alternative, which is what this type is.
type dispatchState int

const (
	stateIdle dispatchState = iota
	stateDispatching
)

// registration is a node in a Reactor's priority-sorted singly-linked
// list: a listener hold (strong or weak), a priority, a one-shot flag,
// and a back-reference to the owning reactor, exactly the shape spec.md
// §3 describes. The manual next-pointer bookkeeping continues the
// teacher's style of hand-rolled linked structures (internal/node.go's
// DependencyLink, internal/heap.go's heapNode) rather than reaching for
// container/list.
type registration[L any] struct {
	owner  *Reactor[L]
	holder listenerHolder[L]
	prio   int
	seq    uint64
	once   bool
	closed bool
	next   *registration[L]
}

func (reg *registration[L]) close() error      { return reg.owner.closeRegistration(reg) }
func (reg *registration[L]) markOnce() error   { return reg.owner.markOnce(reg) }
func (reg *registration[L]) atPrio(n int) error { return reg.owner.atPrio(reg, n) }
func (reg *registration[L]) holdWeakly() error { return reg.owner.holdWeakly(reg) }

// Reactor is the dispatch core: it owns an ordered list of listener
// registrations of shape L (a function type whose arity matches the
// owning entity's listener signature) and performs safe re-entrant
// notification per spec.md §4.1.
//
// Unlike the teacher's internal package, which erases everything to
// `any` and relies on a runtime "notifier" object to cast back (the
// Kotlin source's own trick), Reactor is parameterized directly by the
// listener's Go function type: Design Notes §9 explicitly invites this
// divergence ("no erased dispatch is required" in a statically typed
// target). The small invoke closure passed to Notify plays the role of
// the source's polymorphic notifier record.
type Reactor[L any] struct {
	mu sync.Mutex

	state          dispatchState
	dispatchingGID int64

	head     *registration[L]
	liveCount int
	seqNext  uint64
	deferred []func()

	placeholder L

	onActivate   func()
	onDeactivate func()
}

// NewReactor creates an empty reactor. placeholder is the typed no-op
// listener invoked in place of a weakly-held listener reclaimed
// mid-dispatch (spec.md §4.1 "Placeholder listener").
func NewReactor[L any](placeholder L) *Reactor[L] {
	return &Reactor[L]{placeholder: placeholder}
}

// SetActivationHooks installs the zero-to-one / one-to-zero subscriber
// transition callbacks derived reactors use to lazily attach to, and
// detach from, their upstream (spec.md §2: "they hold no connection to
// their upstream while they themselves have no subscribers").
func (r *Reactor[L]) SetActivationHooks(onActivate, onDeactivate func()) {
	r.mu.Lock()
	r.onActivate = onActivate
	r.onDeactivate = onDeactivate
	r.mu.Unlock()
}

// HasConnections reports whether any live (non-closed) registration
// remains.
func (r *Reactor[L]) HasConnections() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for reg := r.head; reg != nil; reg = reg.next {
		if !reg.closed {
			return true
		}
	}
	return false
}

// ClearConnections removes every registration, failing with
// IllegalState while a dispatch frame is active or deferred operations
// remain pending (spec.md §4.1, §7; Design Notes §9 "preserve the
// throw for explicitness").
func (r *Reactor[L]) ClearConnections() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == stateDispatching {
		return illegalState("ClearConnections", goroutineReason("reactor is dispatching", r.dispatchingGID))
	}
	if len(r.deferred) > 0 {
		return illegalState("ClearConnections", "deferred operations are still pending")
	}

	for reg := r.head; reg != nil; reg = reg.next {
		reg.closed = true
	}
	r.head = nil
	r.liveCount = 0
	return nil
}

func goroutineReason(msg string, gid int64) string {
	return fmt.Sprintf("%s (dispatch frame on goroutine %d)", msg, gid)
}

// connect registers fn at priority prio and returns its registration
// node. Panics with ErrNullListener if fn is nil, per §7's treatment of
// NullListener as a synchronous precondition rather than a Try failure.
func connect[L any](r *Reactor[L], fn L, prio int) *registration[L] {
	if isNilListener(fn) {
		panic(ErrNullListener)
	}

	reg := &registration[L]{owner: r, holder: newStrongHolder(fn), prio: prio}
	r.add(reg)
	return reg
}

func connectListener[L any](r *Reactor[L], fn L, prio int) Connection {
	return Connection{c: connect(r, fn, prio)}
}

// add inserts reg into the sorted list. During an active dispatch frame
// the insertion is deferred: "Adds performed during dispatch are not
// visible to the current frame; they are installed when the frame ends"
// (spec.md §4.1).
func (r *Reactor[L]) add(reg *registration[L]) {
	apply := func() {
		r.mu.Lock()
		reg.seq = r.seqNext
		r.seqNext++
		r.insertSortedLocked(reg)
		activated := r.liveCount == 1
		hook := r.onActivate
		r.mu.Unlock()

		if activated && hook != nil {
			hook()
		}
	}

	r.mu.Lock()
	if r.state == stateDispatching {
		r.deferred = append(r.deferred, apply)
		r.mu.Unlock()
		return
	}
	r.mu.Unlock()
	apply()
}

// insertSortedLocked inserts reg keeping the list sorted by priority
// descending, ties broken by insertion order ascending (earlier wins).
// Must be called with r.mu held.
func (r *Reactor[L]) insertSortedLocked(reg *registration[L]) {
	r.liveCount++

	if r.head == nil || reg.prio > r.head.prio {
		reg.next = r.head
		r.head = reg
		return
	}

	cur := r.head
	for cur.next != nil && cur.next.prio >= reg.prio {
		cur = cur.next
	}
	reg.next = cur.next
	cur.next = reg
}

// unlinkLocked physically removes reg from the list. Must be called
// with r.mu held.
func (r *Reactor[L]) unlinkLocked(reg *registration[L]) {
	if r.head == reg {
		r.head = reg.next
		reg.next = nil
		return
	}
	for cur := r.head; cur != nil; cur = cur.next {
		if cur.next == reg {
			cur.next = reg.next
			reg.next = nil
			return
		}
	}
}

// closeRegistration closes reg. Outside a dispatch frame the closed flag
// and the list unlink both take effect immediately. During an active
// frame, both are deferred together as one unit until the frame's walk
// finishes: per spec.md §8 scenario 3, a listener closed by an
// earlier-priority listener within the same frame still fires in that
// frame (the walk is effectively against a snapshot of who was live when
// the frame began), and only becomes genuinely closed starting with the
// next frame. Deferring the unlink alone, while flipping closed
// synchronously, would make the in-progress walk skip a node closed
// moments earlier in the same frame — which is the bug this avoids.
func (r *Reactor[L]) closeRegistration(reg *registration[L]) error {
	r.mu.Lock()
	if reg.closed {
		r.mu.Unlock()
		return nil
	}

	if r.state == stateDispatching {
		r.deferred = append(r.deferred, func() { r.finalizeClose(reg) })
		r.mu.Unlock()
		return nil
	}
	r.mu.Unlock()

	r.finalizeClose(reg)
	return nil
}

// finalizeClose applies the closed flag, the list unlink, and the
// liveCount/onDeactivate bookkeeping as a single atomic step. Safe to
// call more than once for the same reg; only the first call has effect.
func (r *Reactor[L]) finalizeClose(reg *registration[L]) {
	r.mu.Lock()
	if reg.closed {
		r.mu.Unlock()
		return
	}
	reg.closed = true
	r.unlinkLocked(reg)
	r.liveCount--
	deactivated := r.liveCount == 0
	hook := r.onDeactivate
	r.mu.Unlock()

	if deactivated && hook != nil {
		hook()
	}
}

func (r *Reactor[L]) markOnce(reg *registration[L]) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if reg.closed {
		return nil
	}
	reg.once = true
	return nil
}

// atPrio repositions reg, implemented as remove-then-reinsert because
// priority is a sort key of the list (spec.md §4.2). A re-entrant call
// made during an active dispatch frame is itself deferred so the
// current frame's walk is unaffected (Design Notes §9).
func (r *Reactor[L]) atPrio(reg *registration[L], prio int) error {
	r.mu.Lock()
	if reg.closed {
		r.mu.Unlock()
		return illegalState("AtPrio", "connection already closed")
	}
	dispatching := r.state == stateDispatching
	r.mu.Unlock()

	apply := func() {
		r.mu.Lock()
		r.unlinkLocked(reg)
		reg.prio = prio
		reg.seq = r.seqNext
		r.seqNext++
		// unlinkLocked only touches the list, not liveCount; insertSortedLocked
		// increments it on every call, so compensate since reg is already live.
		r.insertSortedLocked(reg)
		r.liveCount--
		r.mu.Unlock()
	}

	if dispatching {
		r.mu.Lock()
		r.deferred = append(r.deferred, apply)
		r.mu.Unlock()
		return nil
	}
	apply()
	return nil
}

func (r *Reactor[L]) holdWeakly(reg *registration[L]) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if reg.closed {
		return illegalState("HoldWeakly", "connection already closed")
	}
	reg.holder.makeWeak()
	return nil
}

// Notify runs one dispatch frame: every live listener, in
// priority-descending / insertion-ascending order, is invoked via
// invoke. Listener panics are captured and continue the walk; if the
// frame (or its deferred drain) accumulated any failures, Notify returns
// a single failure or a MultiFailure per spec.md §7.
//
// Re-entrant calls (a nested emit from within a listener, or concurrent
// access from another goroutine) are queued on the deferred-ops FIFO and
// processed after the active frame's walk completes, before the
// original Notify call returns — spec.md §4.1 steps 1 and 5, and the
// re-entrancy invariant in §5.
func (r *Reactor[L]) Notify(invoke func(L) error) error {
	r.mu.Lock()
	if r.state == stateDispatching {
		r.deferred = append(r.deferred, func() {
			if err := r.Notify(invoke); err != nil {
				panic(deferredNotifyFailure{err: err})
			}
		})
		r.mu.Unlock()
		return nil
	}

	head := r.head
	r.state = stateDispatching
	r.dispatchingGID = goid.Get()
	r.mu.Unlock()

	var failures []error

	for reg := head; reg != nil; reg = reg.next {
		r.mu.Lock()
		closed := reg.closed
		r.mu.Unlock()
		if closed {
			continue
		}

		listener, ok := reg.holder.get()
		if !ok {
			// Weakly-held listener reclaimed mid-dispatch: self-close
			// (through the same deferred machinery as any other close, so
			// liveCount/onDeactivate stay consistent) and invoke the
			// placeholder instead (spec.md §4.1 step 3).
			_ = r.closeRegistration(reg)
			listener = r.placeholder
		}

		if err := r.invokeOne(invoke, listener); err != nil {
			failures = append(failures, err)
		}

		if reg.once {
			_ = r.closeRegistration(reg)
		}
	}

	r.mu.Lock()
	r.state = stateIdle
	r.head = head
	pending := r.deferred
	r.deferred = nil
	r.mu.Unlock()

	// Drain to fixed point: each deferred op may itself enqueue more.
	// Bounded to guard against a pathological listener that re-enqueues
	// forever, echoing the teacher's internal/scheduler.go Run loop's
	// own infinite-update-loop guard.
	const drainLimit = 100000
	drained := 0
	for len(pending) > 0 {
		drained++
		if drained > drainLimit {
			failures = append(failures, illegalState("Notify", "possible infinite deferred-operation loop"))
			break
		}

		next := pending
		pending = nil
		for _, op := range next {
			if err := runDeferred(op); err != nil {
				failures = append(failures, err)
			}
		}

		r.mu.Lock()
		pending = r.deferred
		r.deferred = nil
		r.mu.Unlock()
	}

	return newMultiFailure(failures)
}

func (r *Reactor[L]) invokeOne(invoke func(L) error, listener L) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = &ListenerFailure{Cause: rec}
		}
	}()
	return invoke(listener)
}

// deferredNotifyFailure carries a queued nested Notify's returned failure
// out of its deferred op, so the draining frame accumulates it as is.
type deferredNotifyFailure struct{ err error }

func runDeferred(op func()) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			if df, ok := rec.(deferredNotifyFailure); ok {
				err = df.err
				return
			}
			err = &ListenerFailure{Cause: rec}
		}
	}()
	op()
	return nil
}
