package sched

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAwaitReturnsValue(t *testing.T) {
	task := Spawn(func() (int, error) {
		return 42, nil
	})
	v, err := Await(context.Background(), task)
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestAwaitPropagatesError(t *testing.T) {
	sentinel := errors.New("boom")
	task := Spawn(func() (int, error) {
		return 0, sentinel
	})
	_, err := Await(context.Background(), task)
	assert.ErrorIs(t, err, sentinel)
}

func TestAwaitCanceledByContext(t *testing.T) {
	block := make(chan struct{})
	task := Spawn(func() (int, error) {
		<-block
		return 1, nil
	})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := Await(ctx, task)
	assert.Equal(t, Canceled, KindOf(err))
	close(block)
}

func TestDoneReportsCompletion(t *testing.T) {
	done := make(chan struct{})
	task := Spawn(func() (int, error) {
		<-done
		return 0, nil
	})
	assert.False(t, task.Done())
	close(done)
	_, _ = Await(context.Background(), task)
	assert.True(t, task.Done())
}

func TestWhenAllPreservesOrder(t *testing.T) {
	t1 := Spawn(func() (int, error) { return 1, nil })
	t2 := Spawn(func() (int, error) { return 2, nil })
	t3 := Spawn(func() (int, error) { return 3, nil })

	results, err := WhenAll(context.Background(), t1, t2, t3)
	require.NoError(t, err)
	require.Len(t, results, 3)
	v1, _ := results[0].Unwrap()
	v2, _ := results[1].Unwrap()
	v3, _ := results[2].Unwrap()
	assert.Equal(t, []int{1, 2, 3}, []int{v1, v2, v3})
}
