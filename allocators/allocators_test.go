package allocators

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goort/goort/status"
)

func TestCPUAlloc(t *testing.T) {
	for _, alloc := range []*CPU{NewCPU(), NewArena()} {
		buf, err := alloc.Alloc(100)
		require.NoError(t, err)
		require.Len(t, buf, 100)
		for i := range buf {
			buf[i] = byte(i)
		}
		require.NoError(t, alloc.Free(buf))

		empty, err := alloc.Alloc(0)
		require.NoError(t, err)
		require.Len(t, empty, 0)

		_, err = alloc.Alloc(-1)
		require.Equal(t, status.InvalidArgument, status.CodeOf(err))
	}
}

func TestDescriptors(t *testing.T) {
	require.Equal(t, Descriptor{Name: "Cpu", Kind: DeviceAllocator, MemType: MemTypeDefault}, NewCPU().Info())
	require.Equal(t, ArenaAllocator, NewArena().Info().Kind)
	assert.Equal(t, "Cpu(Arena, Default)", NewArena().Info().String())
}

func TestArenaRecycles(t *testing.T) {
	arena := NewArena()
	buf, err := arena.Alloc(1000)
	require.NoError(t, err)
	require.Equal(t, 1024, cap(buf))
	require.NoError(t, arena.Free(buf))

	// Same size class: the recycled buffer comes back.
	again, err := arena.Alloc(600)
	require.NoError(t, err)
	require.Len(t, again, 600)
	require.Equal(t, 1024, cap(again))
}

func TestConcurrentAllocFree(t *testing.T) {
	arena := NewArena()
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 200 {
				buf, err := arena.Alloc(i * 16)
				assert.NoError(t, err)
				assert.NoError(t, arena.Free(buf))
			}
		}()
	}
	wg.Wait()
}
