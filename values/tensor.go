// Package values implements the runtime value system exchanged with
// execution engines: dense tensors, homogeneous sequences and key/value
// maps, carried by a tagged Value container, plus the Fence token ordering
// producer/consumer access to a value across execution contexts.
//
// Every constructor validates sizes with overflow guards before touching an
// allocator, and every accessor reports misuse as a status error (see
// package status) -- no panic crosses this package's API.
//
// Ownership is explicit: a tensor built through an Allocator owns its buffer
// and releases it through that allocator on Release; a tensor built over a
// caller-supplied buffer never frees it.
package values

import (
	"unsafe"

	"github.com/gomlx/gopjrt/dtypes/bfloat16"
	"github.com/x448/float16"

	"github.com/goort/goort/allocators"
	"github.com/goort/goort/status"
	"github.com/goort/goort/types/dtypes"
	"github.com/goort/goort/types/shapes"
)

// Tensor is a dense array of one element type.
//
// Numeric (fixed-width) tensors are backed by a raw byte buffer; string
// tensors by a slice of Go strings, one slot per element. The shape is
// immutable after construction; contents may be mutated in place.
//
// A Tensor is owned by a single goroutine at a time: this layer takes no
// locks (see Fence for cross-context ordering).
type Tensor struct {
	shape shapes.Shape
	count int64

	// Exactly one of data/strs backs the tensor, depending on the dtype.
	data []byte
	strs []string

	// alloc is non-nil only when the tensor owns data and must release it
	// through the allocator.
	alloc allocators.Allocator
	desc  allocators.Descriptor

	released bool
}

// NewTensor builds a tensor of the given element type and dimensions,
// allocating its buffer through alloc. The tensor owns the buffer and
// releases it on Release.
//
// Numeric buffers are left uninitialized; string tensors get one empty
// string per element slot.
//
// Fails with NotImplemented for element types outside the registered set
// (including Complex64/Complex128), and with InvalidArgument for malformed
// shapes or byte sizes that overflow.
func NewTensor(alloc allocators.Allocator, dtype dtypes.DType, dims ...int64) (*Tensor, error) {
	if alloc == nil {
		return nil, status.New(status.InvalidArgument, "allocator cannot be nil")
	}
	if !dtype.Supported() {
		return nil, status.Errorf(status.NotImplemented, "type %s is not supported in this function", dtype)
	}
	shape := shapes.Make(dtype, dims...)
	count, err := shape.NumElements()
	if err != nil {
		return nil, err
	}
	t := &Tensor{shape: shape, count: count, alloc: alloc, desc: alloc.Info()}
	if dtype == dtypes.String {
		t.strs = make([]string, count)
		t.alloc = nil // string slots live in Go memory, nothing to Free.
		return t, nil
	}
	nbytes, err := shape.SizeBytes()
	if err != nil {
		return nil, err
	}
	t.data, err = alloc.Alloc(nbytes)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// NewTensorFromBuffer builds a tensor over a caller-supplied buffer. The
// tensor borrows the buffer: it never frees it, existing bytes are
// preserved, and the buffer must outlive the tensor. desc declares where
// the memory lives.
//
// Fails with InvalidArgument when the buffer is smaller than the shape
// requires, and for String element types, which cannot alias raw caller
// memory.
func NewTensorFromBuffer(buf []byte, desc allocators.Descriptor, dtype dtypes.DType, dims ...int64) (*Tensor, error) {
	if !dtype.Supported() {
		return nil, status.Errorf(status.NotImplemented, "type %s is not supported in this function", dtype)
	}
	if dtype == dtypes.String {
		return nil, status.New(status.InvalidArgument,
			"string tensors cannot be built over a preallocated buffer")
	}
	shape := shapes.Make(dtype, dims...)
	count, err := shape.NumElements()
	if err != nil {
		return nil, err
	}
	nbytes, err := shape.SizeBytes()
	if err != nil {
		return nil, err
	}
	if len(buf) < nbytes {
		return nil, status.Errorf(status.InvalidArgument,
			"the preallocated buffer is not large enough: expected %d bytes, got %d, tensor shape: %s",
			nbytes, len(buf), shape)
	}
	return &Tensor{shape: shape, count: count, data: buf[:nbytes], desc: desc}, nil
}

// FromFlat builds an allocator-backed tensor with the flat values copied
// in. The element type is inferred from T. Mostly a convenience for tests
// and engine implementations.
func FromFlat[T dtypes.Supported](alloc allocators.Allocator, flat []T, dims ...int64) (*Tensor, error) {
	t, err := NewTensor(alloc, dtypes.FromGenericsType[T](), dims...)
	if err != nil {
		return nil, err
	}
	if int64(len(flat)) != t.count {
		_ = t.Release()
		return nil, status.Errorf(status.InvalidArgument,
			"flat data has %d values but shape %s requires %d", len(flat), t.shape, t.count)
	}
	dst, err := Data[T](t)
	if err != nil {
		_ = t.Release()
		return nil, err
	}
	copy(dst, flat)
	return t, nil
}

// Shape of the tensor, including its element type.
func (t *Tensor) Shape() shapes.Shape { return t.shape }

// DType is a shortcut for Shape().DType.
func (t *Tensor) DType() dtypes.DType { return t.shape.DType }

// Rank is a shortcut for Shape().Rank().
func (t *Tensor) Rank() int { return t.shape.Rank() }

// NumElements returns the number of elements, the product of all
// dimensions.
func (t *Tensor) NumElements() int64 { return t.count }

// Descriptor of the allocator that created the buffer, or the one the
// caller declared for a borrowed buffer.
func (t *Tensor) Descriptor() allocators.Descriptor { return t.desc }

// OwnsBuffer reports whether the tensor owns its buffer (allocator-backed)
// as opposed to borrowing caller memory.
func (t *Tensor) OwnsBuffer() bool { return t.alloc != nil }

func (t *Tensor) checkValid() error {
	if t == nil {
		return status.New(status.Fail, "tensor is nil")
	}
	if t.released {
		return status.New(status.Fail, "tensor was already released")
	}
	return nil
}

// MutableBytes returns the tensor's raw storage for reading or writing in
// place. The slice aliases the tensor buffer; it is only valid until
// Release. String tensors have no raw byte representation and fail.
func (t *Tensor) MutableBytes() ([]byte, error) {
	if err := t.checkValid(); err != nil {
		return nil, err
	}
	if t.shape.DType == dtypes.String {
		return nil, status.New(status.Fail, "string tensors have no raw byte buffer")
	}
	return t.data, nil
}

// Data returns the tensor's elements as a typed flat slice aliasing the
// underlying storage. T must match the tensor's element type exactly;
// a mismatch fails.
func Data[T dtypes.Supported](t *Tensor) ([]T, error) {
	if err := t.checkValid(); err != nil {
		return nil, err
	}
	want := dtypes.FromGenericsType[T]()
	if t.shape.DType != want {
		return nil, status.Errorf(status.Fail,
			"tensor holds %s elements, accessed as %s", t.shape.DType, want)
	}
	if want == dtypes.String {
		return any(t.strs).([]T), nil
	}
	return bytesAs[T](t.data), nil
}

// bytesAs views a byte buffer as a flat slice of fixed-width elements.
func bytesAs[T any](data []byte) []T {
	var v T
	n := len(data) / int(unsafe.Sizeof(v))
	if n == 0 {
		return nil
	}
	return unsafe.Slice((*T)(unsafe.Pointer(unsafe.SliceData(data))), n)
}

// Release frees the tensor's storage: allocator-backed buffers go back to
// their allocator, borrowed buffers are left untouched for the caller.
// The creator must call Release exactly once; a second call fails.
func (t *Tensor) Release() error {
	if err := t.checkValid(); err != nil {
		return err
	}
	t.released = true
	data := t.data
	t.data, t.strs = nil, nil
	if t.alloc != nil {
		return t.alloc.Free(data)
	}
	return nil
}

// The scalar accessors route through dispatchers to the concrete instance
// for each element type. The tables are closed: they are filled for exactly
// the registered set during package init.
var (
	dispatchGetElement = dtypes.NewDispatcher("GetElement")
	dispatchSetElement = dtypes.NewDispatcher("SetElement")
)

func registerElementAccess[T dtypes.Supported]() {
	dtype := dtypes.FromGenericsType[T]()
	dispatchGetElement.Register(dtype, func(params ...any) any {
		t := params[0].(*Tensor)
		index := params[1].(int64)
		flat, err := Data[T](t)
		if err != nil {
			return err
		}
		return flat[index]
	})
	dispatchSetElement.Register(dtype, func(params ...any) any {
		t := params[0].(*Tensor)
		index := params[1].(int64)
		value, ok := params[2].(T)
		if !ok {
			return status.Errorf(status.Fail, "cannot store %T into a %s tensor", params[2], t.shape.DType)
		}
		flat, err := Data[T](t)
		if err != nil {
			return err
		}
		flat[index] = value
		return nil
	})
}

func init() {
	registerElementAccess[bool]()
	registerElementAccess[int8]()
	registerElementAccess[int16]()
	registerElementAccess[int32]()
	registerElementAccess[int64]()
	registerElementAccess[uint8]()
	registerElementAccess[uint16]()
	registerElementAccess[uint32]()
	registerElementAccess[uint64]()
	registerElementAccess[float16.Float16]()
	registerElementAccess[bfloat16.BFloat16]()
	registerElementAccess[float32]()
	registerElementAccess[float64]()
	registerElementAccess[string]()
}

// Element returns the scalar at the flat index, boxed as any.
func (t *Tensor) Element(index int64) (any, error) {
	if err := t.checkValid(); err != nil {
		return nil, err
	}
	if index < 0 || index >= t.count {
		return nil, status.Errorf(status.Fail, "element index %d out of range for %s", index, t.shape)
	}
	result, err := dispatchGetElement.Dispatch(t.shape.DType, t, index)
	if err != nil {
		return nil, err
	}
	if err, ok := result.(error); ok {
		return nil, err
	}
	return result, nil
}

// SetElement stores a scalar at the flat index. The value's Go type must
// match the tensor's element type.
func (t *Tensor) SetElement(index int64, value any) error {
	if err := t.checkValid(); err != nil {
		return err
	}
	if index < 0 || index >= t.count {
		return status.Errorf(status.Fail, "element index %d out of range for %s", index, t.shape)
	}
	result, err := dispatchSetElement.Dispatch(t.shape.DType, t, index, value)
	if err != nil {
		return err
	}
	if err, ok := result.(error); ok {
		return err
	}
	return nil
}
