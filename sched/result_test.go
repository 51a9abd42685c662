package sched

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResultOkUnwrap(t *testing.T) {
	r := Ok(10)
	v, err := r.Unwrap()
	assert.NoError(t, err)
	assert.Equal(t, 10, v)
	assert.True(t, r.IsOk())
}

func TestResultErrUnwrap(t *testing.T) {
	sentinel := errors.New("fail")
	r := Err[int](sentinel)
	v, err := r.Unwrap()
	assert.Equal(t, sentinel, err)
	assert.Equal(t, 0, v)
	assert.False(t, r.IsOk())
}
