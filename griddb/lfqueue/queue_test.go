package lfqueue

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_NewRejectsNonPowerOfTwo(t *testing.T) {
	_, err := New[int](3)
	assert.Error(t, err)
}

func Test_PushPopFIFO(t *testing.T) {
	q, err := New[int](4)
	require.NoError(t, err)

	require.True(t, q.Push(1))
	require.True(t, q.Push(2))

	v, ok := q.Pop()
	require.True(t, ok)
	assert.Equal(t, 1, v)

	v, ok = q.Pop()
	require.True(t, ok)
	assert.Equal(t, 2, v)

	_, ok = q.Pop()
	assert.False(t, ok)
}

func Test_PushFailsWhenFull(t *testing.T) {
	q, err := New[int](2)
	require.NoError(t, err)

	require.True(t, q.Push(1))
	require.True(t, q.Push(2))
	assert.False(t, q.Push(3))
}

func Test_ConcurrentProducersConsumers(t *testing.T) {
	q, err := New[int](1024)
	require.NoError(t, err)

	const n = 2000
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			q.PushRetry(v)
		}(i)
	}

	seen := make(chan int, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				if v, ok := q.Pop(); ok {
					seen <- v
					return
				}
			}
		}()
	}
	wg.Wait()
	close(seen)

	count := 0
	for range seen {
		count++
	}
	assert.Equal(t, n, count)
}
