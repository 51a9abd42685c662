package sched

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorIsMatchesOnKindRegardlessOfCause(t *testing.T) {
	cause := fmt.Errorf("underlying: %w", errors.New("epipe"))
	err := Wrap(BrokenPipe, cause)
	assert.ErrorIs(t, err, New(BrokenPipe))
	assert.False(t, errors.Is(err, New(TimedOut)))
}

func TestErrorUnwrapExposesCause(t *testing.T) {
	cause := errors.New("underlying")
	err := Wrap(IoError, cause)
	assert.Same(t, cause, errors.Unwrap(err))
}

func TestKindOfDefaultsToIoErrorForForeignErrors(t *testing.T) {
	assert.Equal(t, IoError, KindOf(errors.New("something else")))
}

func TestKindOfNilIsEmpty(t *testing.T) {
	assert.Equal(t, ErrorKind(""), KindOf(nil))
}

func TestKindOfExtractsSchedError(t *testing.T) {
	assert.Equal(t, Canceled, KindOf(New(Canceled)))
}
