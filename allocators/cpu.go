package allocators

import (
	"math/bits"
	"sync"
	"sync/atomic"

	"github.com/dustin/go-humanize"
	"k8s.io/klog/v2"
)

// CPUAllocatorName is the descriptor name shared by the CPU allocators.
const CPUAllocatorName = "Cpu"

// CPU is the default host-memory allocator.
//
// The plain variant (NewCPU) hands every request to the Go runtime and lets
// the garbage collector reclaim freed buffers. The arena variant (NewArena)
// recycles freed buffers through per-size-class pools, which pays off when
// many same-shaped tensors are created and released in a loop.
type CPU struct {
	desc    Descriptor
	pooling bool

	// pools maps a power-of-two size class to a *sync.Pool of []byte.
	pools sync.Map

	allocs     atomic.Int64
	frees      atomic.Int64
	bytesAlloc atomic.Uint64
}

var _ Allocator = (*CPU)(nil)

// NewCPU returns a plain CPU allocator.
func NewCPU() *CPU {
	return &CPU{
		desc: Descriptor{Name: CPUAllocatorName, Kind: DeviceAllocator, MemType: MemTypeDefault},
	}
}

// NewArena returns a pooling CPU allocator. Freed buffers are recycled for
// later allocations of the same size class.
func NewArena() *CPU {
	return &CPU{
		desc:    Descriptor{Name: CPUAllocatorName, Kind: ArenaAllocator, MemType: MemTypeDefault},
		pooling: true,
	}
}

// sizeClass returns the power-of-two exponent of the smallest class that
// fits size bytes.
func sizeClass(size int) int {
	if size <= 1 {
		return 0
	}
	return bits.Len(uint(size - 1))
}

func (a *CPU) pool(class int) *sync.Pool {
	if p, ok := a.pools.Load(class); ok {
		return p.(*sync.Pool)
	}
	p, _ := a.pools.LoadOrStore(class, &sync.Pool{})
	return p.(*sync.Pool)
}

// Alloc returns a buffer of exactly size bytes. Contents are unspecified:
// recycled buffers keep whatever bytes they held before.
func (a *CPU) Alloc(size int) ([]byte, error) {
	if err := checkSize(size); err != nil {
		return nil, err
	}
	a.allocs.Add(1)
	a.bytesAlloc.Add(uint64(size))
	if size == 0 {
		return []byte{}, nil
	}
	if !a.pooling {
		return make([]byte, size), nil
	}
	class := sizeClass(size)
	if recycled := a.pool(class).Get(); recycled != nil {
		return recycled.([]byte)[:size], nil
	}
	klog.V(4).Infof("allocators: %s pool miss, new %s buffer (class 2^%d)",
		a.desc, humanize.Bytes(uint64(size)), class)
	return make([]byte, size, 1<<class), nil
}

// Free releases a buffer obtained from Alloc. For the arena variant the
// buffer is returned to its size-class pool; otherwise the garbage
// collector reclaims it once the caller drops its references.
func (a *CPU) Free(buf []byte) error {
	a.frees.Add(1)
	if !a.pooling || cap(buf) == 0 {
		return nil
	}
	full := buf[:cap(buf)]
	a.pool(sizeClass(cap(buf))).Put(full)
	return nil
}

// Info returns the allocator's descriptor.
func (a *CPU) Info() Descriptor { return a.desc }

// String summarizes the allocator and its lifetime statistics.
func (a *CPU) String() string {
	return a.desc.String() + ": " +
		humanize.Bytes(a.bytesAlloc.Load()) + " allocated over " +
		humanize.Comma(a.allocs.Load()) + " allocations, " +
		humanize.Comma(a.frees.Load()) + " frees"
}
