package reactor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOption_SomeNone(t *testing.T) {
	some := Some(7)
	none := None[int]()

	v, ok := some.Get()
	assert.True(t, ok)
	assert.Equal(t, 7, v)
	assert.True(t, some.IsSome())
	assert.False(t, some.IsNone())

	_, ok = none.Get()
	assert.False(t, ok)
	assert.True(t, none.IsNone())
}
