package bufpool

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferAllocation(t *testing.T) {
	t.Run("AllocatesSmallBuffer", func(t *testing.T) {
		buf := Get(100)
		defer Put(buf)
		assert.GreaterOrEqual(t, len(buf), 100)
		assert.Equal(t, DefaultSmallSize, cap(buf))
	})

	t.Run("AllocatesMediumBuffer", func(t *testing.T) {
		buf := Get(10 * 1024)
		defer Put(buf)
		assert.Equal(t, DefaultMediumSize, cap(buf))
	})

	t.Run("AllocatesLargeBuffer", func(t *testing.T) {
		buf := Get(100 * 1024)
		defer Put(buf)
		assert.Equal(t, DefaultLargeSize, cap(buf))
	})

	t.Run("AllocatesOversizedBuffer", func(t *testing.T) {
		buf := Get(2 * 1024 * 1024)
		defer Put(buf)
		assert.Equal(t, len(buf), cap(buf))
	})
}

func TestBufferSizeClassBoundaries(t *testing.T) {
	assert.Equal(t, DefaultSmallSize, cap(Get(DefaultSmallSize)))
	assert.Equal(t, DefaultMediumSize, cap(Get(DefaultSmallSize+1)))
	assert.Equal(t, DefaultLargeSize, cap(Get(DefaultMediumSize+1)))
}

func TestBufferPutAndReuse(t *testing.T) {
	buf1 := Get(1024)
	Put(buf1)
	buf2 := Get(1024)
	Put(buf2)
	assert.Equal(t, cap(buf1), cap(buf2))

	require.NotPanics(t, func() { Put(nil) })
	require.NotPanics(t, func() { Put([]byte{}) })
}

func TestCustomPool(t *testing.T) {
	pool := NewPool(&Config{SmallSize: 1024, MediumSize: 8192, LargeSize: 65536})

	small := pool.Get(500)
	assert.Equal(t, 1024, cap(small))
	pool.Put(small)

	large := pool.Get(10000)
	assert.Equal(t, 65536, cap(large))
	pool.Put(large)
}

func TestBufferPoolConcurrency(t *testing.T) {
	const numGoroutines = 10
	const iterations = 50

	var wg sync.WaitGroup
	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func(id int) {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				size := (id*100 + j) % (500 * 1024)
				buf := Get(size)
				if len(buf) > 0 {
					buf[0] = byte(id)
				}
				Put(buf)
			}
		}(i)
	}
	wg.Wait()
}
