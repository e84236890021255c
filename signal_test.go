package reactor

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func ExampleSignal() {
	evens := NewSignal[int]()
	evens.Connect(func(v int) { fmt.Println("got", v) })

	_ = evens.Emit(2)
	_ = evens.Emit(4)

	// Output:
	// got 2
	// got 4
}

func TestSignal_HasConnections(t *testing.T) {
	s := NewSignal[int]()
	assert.False(t, s.HasConnections())

	conn := s.Connect(func(int) {})
	assert.True(t, s.HasConnections())

	_ = conn.Close()
	assert.False(t, s.HasConnections())
}

func TestSignal_Next(t *testing.T) {
	s := NewSignal[int]()
	fut := s.Next()

	assert.False(t, fut.IsCompleteNow())

	_ = s.Emit(1)
	_ = s.Emit(2)

	result := fut.Result()
	v, ok := result.Get()
	assert.True(t, ok)
	assert.Equal(t, 1, v.Get())
	assert.False(t, s.HasConnections(), "Next's connection is one-shot")
}

func TestMapSignal_LazyAttach(t *testing.T) {
	src := NewSignal[int]()
	doubled := MapSignal(src, func(v int) int { return v * 2 })

	assert.False(t, src.HasConnections())

	var got []int
	conn := doubled.Connect(func(v int) { got = append(got, v) })
	assert.True(t, src.HasConnections())

	_ = src.Emit(3)
	assert.Equal(t, []int{6}, got)

	_ = conn.Close()
	assert.False(t, src.HasConnections(), "upstream disconnects once the last subscriber leaves")
}

func TestFilterSignal(t *testing.T) {
	src := NewSignal[int]()
	odds := FilterSignal(src, func(v int) bool { return v%2 != 0 })

	var got []int
	odds.Connect(func(v int) { got = append(got, v) })

	for i := 1; i <= 5; i++ {
		_ = src.Emit(i)
	}

	assert.Equal(t, []int{1, 3, 5}, got)
}

func TestUnitSignal_Emit(t *testing.T) {
	fired := 0
	s := NewUnitSignal()
	s.Connect(func() { fired++ })

	_ = s.Emit()
	_ = s.Emit()

	assert.Equal(t, 2, fired)
}
