package sched

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingCanceller struct {
	requests int
}

func (c *countingCanceller) RequestCancel() {
	c.requests++
}

func TestCancelTokenCancelIsIdempotent(t *testing.T) {
	tok := NewCancelToken()
	c := &countingCanceller{}
	tok.register(c)

	tok.Cancel()
	tok.Cancel()
	tok.Cancel()

	assert.True(t, tok.Canceled())
	assert.Equal(t, 1, c.requests)
}

func TestCancelTokenRegisterAfterCancelCancelsImmediately(t *testing.T) {
	tok := NewCancelToken()
	tok.Cancel()

	c := &countingCanceller{}
	tok.register(c)

	assert.Equal(t, 1, c.requests)
}

func TestInvokeShortCircuitsOnCanceledToken(t *testing.T) {
	tok := NewCancelToken()
	tok.Cancel()

	ran := false
	_, err := Invoke(tok, &countingCanceller{}, func() (int, error) {
		ran = true
		return 1, nil
	})

	assert.False(t, ran)
	assert.ErrorIs(t, err, ErrCanceled)
}

func TestInvokeRunsAndUnregisters(t *testing.T) {
	tok := NewCancelToken()
	c := &countingCanceller{}

	v, err := Invoke(tok, c, func() (int, error) {
		return 5, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 5, v)

	tok.Cancel()
	assert.Equal(t, 0, c.requests, "canceller must be unregistered once its op completes")
}

func TestInvokeWithNilTokenRunsUnconditionally(t *testing.T) {
	v, err := Invoke[int](nil, nil, func() (int, error) { return 3, nil })
	require.NoError(t, err)
	assert.Equal(t, 3, v)
}
