package reactor

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func ExampleValue() {
	v := NewValue(0)
	v.Connect(func(newValue, old int) { fmt.Println(old, "->", newValue) })

	_ = v.Update(1)
	_ = v.Update(1) // no-op, equal to current
	_ = v.Update(2)

	// Output:
	// 0 -> 1
	// 1 -> 2
}

func TestValue_UpdateNoOpWhenEqual(t *testing.T) {
	calls := 0
	v := NewValue(5)
	v.Connect(func(int, int) { calls++ })

	_ = v.Update(5)
	assert.Equal(t, 0, calls)
	assert.Equal(t, 5, v.Get())
}

func TestValue_UpdateForceAlwaysEmits(t *testing.T) {
	calls := 0
	v := NewValue(5)
	v.Connect(func(int, int) { calls++ })

	_ = v.UpdateForce(5)
	assert.Equal(t, 1, calls)
}

func TestValue_ConnectNotify(t *testing.T) {
	v := NewValue(3)
	var seen [][2]int
	v.ConnectNotify(func(newValue, old int) { seen = append(seen, [2]int{newValue, old}) })

	assert.Equal(t, [][2]int{{3, 3}}, seen)

	_ = v.Update(4)
	assert.Equal(t, [][2]int{{3, 3}, {4, 3}}, seen)
}

func TestValue_Changes(t *testing.T) {
	v := NewValue(0)
	changes := v.Changes()

	var got []int
	changes.Connect(func(n int) { got = append(got, n) })

	_ = v.Update(1)
	_ = v.Update(1)
	_ = v.Update(2)

	assert.Equal(t, []int{1, 2}, got)
}

func TestValue_When(t *testing.T) {
	v := NewValue(0)
	fut := v.When(func(n int) bool { return n >= 3 })

	assert.False(t, fut.IsCompleteNow())

	_ = v.Update(1)
	_ = v.Update(2)
	assert.False(t, fut.IsCompleteNow())

	_ = v.Update(3)
	assert.True(t, fut.IsCompleteNow())

	result, ok := fut.Result().Get()
	assert.True(t, ok)
	assert.Equal(t, 3, result.Get())
}

func TestValue_WhenAlreadySatisfied(t *testing.T) {
	v := NewValue(10)
	fut := v.When(func(n int) bool { return n >= 3 })
	assert.True(t, fut.IsCompleteNow())
}

func TestMapValue(t *testing.T) {
	src := NewValue(2)
	doubled := MapValue(src, func(v int) int { return v * 2 })

	assert.Equal(t, 4, doubled.Get())

	var got []int
	doubled.Connect(func(n, _ int) { got = append(got, n) })

	_ = src.Update(5)
	assert.Equal(t, []int{10}, got)
}

func TestFlatMapValue(t *testing.T) {
	useFirst := NewValue(true)
	first := NewValue("a")
	second := NewValue("b")

	selected := FlatMapValue(useFirst, func(use bool) *Value[string] {
		if use {
			return first
		}
		return second
	})

	var got []string
	selected.Connect(func(n, _ string) { got = append(got, n) })

	_ = first.Update("a2")
	assert.Equal(t, []string{"a2"}, got)

	_ = useFirst.Update(false)
	assert.Equal(t, []string{"a2", "b"}, got)

	_ = second.Update("b2")
	assert.Equal(t, []string{"a2", "b", "b2"}, got)

	_ = first.Update("a3")
	assert.Equal(t, []string{"a2", "b", "b2"}, got, "no longer tracking first once switched away")
}

func TestMapValue_RecomputesWhenUnsubscribed(t *testing.T) {
	src := NewValue(2)
	doubled := MapValue(src, func(v int) int { return v * 2 })

	assert.Equal(t, 4, doubled.Get())

	_ = src.Update(5)
	assert.Equal(t, 10, doubled.Get(), "no subscriber to doubled: Get must recompute from src rather than return a stale cache")
}

func TestFlatMapValue_RecomputesWhenUnsubscribed(t *testing.T) {
	// spec.md §8 scenario 5.
	toggle := NewValue(true)
	v1 := NewValue(42)
	v2 := NewValue(24)

	fm := FlatMapValue(toggle, func(use bool) *Value[int] {
		if use {
			return v1
		}
		return v2
	})

	assert.Equal(t, 42, fm.Get())

	_ = toggle.Update(false)
	assert.Equal(t, 24, fm.Get(), "no listener connected to fm: Get must still reflect the newly selected inner value")
}

func TestValue_ConnectNotifyClosesOnPanic(t *testing.T) {
	v := NewValue(1)

	assert.Panics(t, func() {
		v.ConnectNotify(func(int, int) { panic("boom") })
	})
	assert.False(t, v.HasConnections(), "the just-added connection must be closed before the panic propagates")
}

func TestDeepEqual_NonComparable(t *testing.T) {
	v := NewValue([]int{1, 2, 3})
	calls := 0
	v.Connect(func([]int, []int) { calls++ })

	assert.NotPanics(t, func() {
		_ = v.Update([]int{1, 2, 3})
	})
	assert.Equal(t, 0, calls)

	_ = v.Update([]int{1, 2, 4})
	assert.Equal(t, 1, calls)
}
