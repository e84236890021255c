package reactor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewMultiFailure_Empty(t *testing.T) {
	assert.NoError(t, newMultiFailure(nil))
}

func TestNewMultiFailure_Single(t *testing.T) {
	boom := errors.New("boom")
	err := newMultiFailure([]error{boom})
	assert.Equal(t, boom, err)
}

func TestNewMultiFailure_Multiple(t *testing.T) {
	a := errors.New("a")
	b := errors.New("b")
	err := newMultiFailure([]error{a, b})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "a")
	assert.Contains(t, err.Error(), "b")
}

func TestIllegalStateError_Message(t *testing.T) {
	err := illegalState("Complete", "already complete")
	assert.Contains(t, err.Error(), "Complete")
	assert.Contains(t, err.Error(), "already complete")
}
