package reactor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReactor_PriorityOrdering(t *testing.T) {
	var order []int
	s := NewUnitSignal()

	s.ConnectAtPrio(func() { order = append(order, 2) }, 2)
	s.ConnectAtPrio(func() { order = append(order, 4) }, 4)
	s.ConnectAtPrio(func() { order = append(order, 3) }, 3)
	s.ConnectAtPrio(func() { order = append(order, 1) }, 1)

	err := s.Emit()

	assert.NoError(t, err)
	assert.Equal(t, []int{4, 3, 2, 1}, order)
}

func TestReactor_AddDuringDispatch(t *testing.T) {
	var events []int
	s := NewSignal[int]()

	var l2 Connection
	l1 := s.Connect(func(v int) {
		l2 = s.Connect(func(v int) { events = append(events, v) })
	})
	l1.Once()

	_ = s.Emit(5)
	assert.Empty(t, events, "listener added mid-dispatch must not see the triggering emission")

	_ = s.Emit(42)
	assert.Equal(t, []int{42}, events)

	_ = l2.Close()
}

func TestReactor_RemoveDuringDispatch(t *testing.T) {
	var seen []int
	s := NewSignal[int]()

	var remConn Connection
	remConn = s.Connect(func(v int) { seen = append(seen, v) })
	s.ConnectAtPrio(func(int) { _ = remConn.Close() }, 1)

	_ = s.Emit(5)
	assert.Equal(t, []int{5}, seen)

	_ = s.Emit(42)
	assert.Equal(t, []int{5}, seen, "closer fires first at higher priority, removing the listener before it sees 42")

	_ = s.Emit(9)
	assert.Equal(t, []int{5}, seen)
}

func TestReactor_OneShotFiresOnce(t *testing.T) {
	count := 0
	s := NewUnitSignal()
	s.Connect(func() { count++ }).Once()

	_ = s.Emit()
	_ = s.Emit()
	_ = s.Emit()

	assert.Equal(t, 1, count)
}

func TestReactor_CloseIsIdempotent(t *testing.T) {
	s := NewUnitSignal()
	conn := s.Connect(func() {})

	assert.NoError(t, conn.Close())
	assert.NoError(t, conn.Close())
	assert.False(t, s.HasConnections())
}

func TestReactor_ListenerPanicBecomesFailure(t *testing.T) {
	s := NewUnitSignal()
	s.Connect(func() { panic("boom") })

	err := s.Emit()
	assert.Error(t, err)

	var lf *ListenerFailure
	ok := false
	if e, is := err.(*ListenerFailure); is {
		lf = e
		ok = true
	}
	assert.True(t, ok, "expected a *ListenerFailure, got %T", err)
	assert.Equal(t, "boom", lf.Cause)
}

func TestReactor_MultipleFailuresAggregate(t *testing.T) {
	s := NewUnitSignal()
	s.Connect(func() { panic("first") })
	s.Connect(func() { panic("second") })

	err := s.Emit()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "first")
	assert.Contains(t, err.Error(), "second")
}

func TestReactor_NullListenerPanics(t *testing.T) {
	s := NewSignal[int]()
	assert.PanicsWithValue(t, ErrNullListener, func() {
		s.Connect(nil)
	})
}

func TestReactor_ClearConnectionsWhileDispatching(t *testing.T) {
	s := NewUnitSignal()
	var captured error
	s.Connect(func() {
		captured = s.ClearConnections()
	})

	_ = s.Emit()

	assert.Error(t, captured)
	var ise *IllegalStateError
	ok := false
	if e, is := captured.(*IllegalStateError); is {
		ise = e
		ok = true
	}
	assert.True(t, ok)
	assert.Equal(t, "ClearConnections", ise.Op)
}
