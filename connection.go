package reactor

// closer is the non-generic interface each *registration[L] satisfies by
// delegating to its owning Reactor. Connection wraps closer rather than embedding
// a *registration[L] directly so that a single, non-parameterized
// Connection type can represent a listener hookup to ANY signal, value,
// future, or collection regardless of that entity's listener shape —
// required for Join(conns ...Connection) to mix connections harvested
// from differently-typed sources (spec.md §3).
type closer interface {
	close() error
	markOnce() error
	atPrio(n int) error
	holdWeakly() error
}

// Connection represents a single listener registration. It is returned
// by every Connect-family method across Signal, Value, Future, and the
// reactive collections.
type Connection struct {
	c closer
}

// Close unregisters the listener. Idempotent: closing an
// already-closed connection is a no-op.
func (c Connection) Close() error {
	if c.c == nil {
		return nil
	}
	return c.c.close()
}

// Once arranges for the connection to close itself after its first
// invocation (spec.md §3 "one-shot connections").
func (c Connection) Once() Connection {
	if c.c != nil {
		_ = c.c.markOnce()
	}
	return c
}

// AtPrio repositions the connection within its reactor's dispatch
// order. Returns IllegalStateError if the connection is already closed.
func (c Connection) AtPrio(prio int) error {
	if c.c == nil {
		return illegalState("AtPrio", "connection is empty")
	}
	return c.c.atPrio(prio)
}

// HoldWeakly converts the connection to hold its listener weakly, where
// the host platform supports it (see WeakHoldingSupported).
func (c Connection) HoldWeakly() error {
	if c.c == nil {
		return illegalState("HoldWeakly", "connection is empty")
	}
	return c.c.holdWeakly()
}

// joinedConnections implements closer by fanning every operation out to
// a fixed set of member connections, the mechanism behind Join.
type joinedConnections struct {
	members []Connection
}

func (j *joinedConnections) close() error {
	var errs []error
	for _, m := range j.members {
		if err := m.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return newMultiFailure(errs)
}

func (j *joinedConnections) markOnce() error {
	var errs []error
	for _, m := range j.members {
		if m.c == nil {
			continue
		}
		if err := m.c.markOnce(); err != nil {
			errs = append(errs, err)
		}
	}
	return newMultiFailure(errs)
}

func (j *joinedConnections) atPrio(prio int) error {
	var errs []error
	for _, m := range j.members {
		if err := m.AtPrio(prio); err != nil {
			errs = append(errs, err)
		}
	}
	return newMultiFailure(errs)
}

func (j *joinedConnections) holdWeakly() error {
	var errs []error
	for _, m := range j.members {
		if err := m.HoldWeakly(); err != nil {
			errs = append(errs, err)
		}
	}
	return newMultiFailure(errs)
}

// Join combines several connections into one: closing (or
// repositioning, or weak-holding) the result applies the operation to
// every member. Grounded on the teacher's Owner child-list aggregation
// (internal/owner.go's DisposeChildren walks every child the same way).
func Join(conns ...Connection) Connection {
	members := make([]Connection, 0, len(conns))
	for _, c := range conns {
		if c.c != nil {
			members = append(members, c)
		}
	}
	return Connection{c: &joinedConnections{members: members}}
}
