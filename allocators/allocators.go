// Package allocators defines the Allocator capability object through which
// tensor buffers are obtained and released, and provides the default CPU
// implementations.
//
// An Allocator is injectable: the engine never assumes a single global
// allocator, and callers may provide their own implementation. All
// implementations must be safe for concurrent Alloc/Free from multiple
// goroutines.
package allocators

import (
	"fmt"

	"github.com/goort/goort/status"
)

// Kind distinguishes plain device allocators from arena (pooling)
// allocators.
type Kind int32

const (
	DeviceAllocator Kind = iota
	ArenaAllocator
)

func (k Kind) String() string {
	switch k {
	case DeviceAllocator:
		return "Device"
	case ArenaAllocator:
		return "Arena"
	}
	return fmt.Sprintf("Kind(%d)", int32(k))
}

// MemType describes the memory an allocator serves. CPUInput and CPUOutput
// exist for non-CPU allocators that still hand out CPU-accessible staging
// memory.
type MemType int32

const (
	MemTypeCPUInput  MemType = -2
	MemTypeCPUOutput MemType = -1
	MemTypeDefault   MemType = 0
)

func (m MemType) String() string {
	switch m {
	case MemTypeCPUInput:
		return "CPUInput"
	case MemTypeCPUOutput:
		return "CPUOutput"
	case MemTypeDefault:
		return "Default"
	}
	return fmt.Sprintf("MemType(%d)", int32(m))
}

// Descriptor identifies an allocator: tensors remember the descriptor of
// the allocator that created their buffer (or the one the caller declared
// for a borrowed buffer).
type Descriptor struct {
	Name    string
	Kind    Kind
	MemType MemType
}

func (d Descriptor) String() string {
	return fmt.Sprintf("%s(%s, %s)", d.Name, d.Kind, d.MemType)
}

// Allocator is the capability object for buffer memory.
//
// Alloc returns a buffer of exactly size bytes; its contents are
// unspecified. Free returns a buffer previously obtained from Alloc on the
// same allocator; freeing a buffer twice, or one from another allocator, is
// a caller error.
type Allocator interface {
	Alloc(size int) ([]byte, error)
	Free(buf []byte) error
	Info() Descriptor
}

// checkSize validates an allocation size request.
func checkSize(size int) error {
	if size < 0 {
		return status.Errorf(status.InvalidArgument, "cannot allocate %d bytes", size)
	}
	return nil
}
