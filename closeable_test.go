package reactor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCloseableSet_ClosesAllAndAggregates(t *testing.T) {
	var closed []string
	set := NewCloseableSet(
		CloseableFunc(func() error { closed = append(closed, "a"); return nil }),
		CloseableFunc(func() error { closed = append(closed, "b"); return errors.New("b failed") }),
	)

	err := set.Close()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "b failed")
	assert.Equal(t, []string{"a", "b"}, closed)
}

func TestCloseableSet_ClearsAfterClose(t *testing.T) {
	calls := 0
	set := NewCloseableSet(CloseableFunc(func() error { calls++; return nil }))

	_ = set.Close()
	_ = set.Close()

	assert.Equal(t, 1, calls)
}

func TestNOOP_IsNoOp(t *testing.T) {
	assert.NoError(t, NOOP.Close())
}

func TestCloseAndReplace_Idempotent(t *testing.T) {
	calls := 0
	var slot Closeable = CloseableFunc(func() error { calls++; return nil })

	assert.NoError(t, CloseAndReplace(&slot))
	assert.Equal(t, 1, calls)
	assert.Equal(t, NOOP, slot)

	assert.NoError(t, CloseAndReplace(&slot))
	assert.Equal(t, 1, calls, "second close is a no-op")
}

func TestJoinCloseables(t *testing.T) {
	var closed []string
	joined := JoinCloseables(
		CloseableFunc(func() error { closed = append(closed, "x"); return nil }),
		CloseableFunc(func() error { closed = append(closed, "y"); return nil }),
	)

	assert.NoError(t, joined.Close())
	assert.Equal(t, []string{"x", "y"}, closed)
}

func TestToggler(t *testing.T) {
	tg := NewToggler(false)
	assert.False(t, tg.Get())

	assert.True(t, tg.Toggle())
	assert.True(t, tg.Get())

	assert.False(t, tg.Toggle())
}

func TestAndOrNotValues(t *testing.T) {
	a := NewValue(true)
	b := NewValue(false)

	and := AndValues(a, b)
	or := OrValues(a, b)
	not := NotValue(a)

	and.Connect(func(bool, bool) {})
	or.Connect(func(bool, bool) {})
	not.Connect(func(bool, bool) {})

	assert.False(t, and.Get())
	assert.True(t, or.Get())
	assert.False(t, not.Get())

	_ = b.Update(true)
	assert.True(t, and.Get())
	assert.True(t, or.Get())
}

func TestAndOrValues_RecomputeWhenUnsubscribed(t *testing.T) {
	a := NewValue(true)
	b := NewValue(false)

	and := AndValues(a, b)
	or := OrValues(a, b)

	assert.False(t, and.Get())
	assert.True(t, or.Get())

	_ = b.Update(true)
	assert.True(t, and.Get(), "no subscriber to and: Get must recompute from its inputs rather than return a stale cache")
	assert.True(t, or.Get())
}

func TestAsValue(t *testing.T) {
	src := NewSignal[int]()
	v := AsValue(src, -1)

	var got []int
	v.Connect(func(n, _ int) { got = append(got, n) })

	assert.Equal(t, -1, v.Get())

	_ = src.Emit(1)
	_ = src.Emit(1)

	assert.Equal(t, []int{1, 1}, got, "AsValue uses UpdateForce so repeated emissions still notify")
}
