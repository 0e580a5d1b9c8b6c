package workerpool

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunAll_ExecutesEveryTask(t *testing.T) {
	pool, err := New(&Config{Workers: 4}, nil)
	require.NoError(t, err)
	defer pool.Release()

	var counter int64
	tasks := make([]func(), 32)
	for i := range tasks {
		tasks[i] = func() { atomic.AddInt64(&counter, 1) }
	}

	pool.RunAll(tasks...)
	assert.Equal(t, int64(32), atomic.LoadInt64(&counter))
}

func TestRunAll_MoreTasksThanWorkers(t *testing.T) {
	pool, err := New(&Config{Workers: 1}, nil)
	require.NoError(t, err)
	defer pool.Release()

	var counter int64
	pool.RunAll(
		func() { atomic.AddInt64(&counter, 1) },
		func() { atomic.AddInt64(&counter, 1) },
		func() { atomic.AddInt64(&counter, 1) },
	)
	assert.Equal(t, int64(3), atomic.LoadInt64(&counter))
}

func TestRunAll_ClosedPoolFallsBackInline(t *testing.T) {
	pool, err := New(&Config{Workers: 2}, nil)
	require.NoError(t, err)
	pool.Release()

	var counter int64
	pool.RunAll(func() { atomic.AddInt64(&counter, 1) })
	assert.Equal(t, int64(1), atomic.LoadInt64(&counter))
}

func TestSubmit_ClosedPool(t *testing.T) {
	pool, err := New(nil, nil)
	require.NoError(t, err)
	pool.Release()

	assert.ErrorIs(t, pool.Submit(func() {}), ErrPoolClosed)
}
