package values

import (
	"fmt"

	"github.com/goort/goort/allocators"
	"github.com/goort/goort/status"
)

// Kind tags the payload a Value carries.
type Kind int32

const (
	UnknownKind Kind = iota
	TensorKind
	SequenceKind
	MapKind
)

func (k Kind) String() string {
	switch k {
	case UnknownKind:
		return "Unknown"
	case TensorKind:
		return "Tensor"
	case SequenceKind:
		return "Sequence"
	case MapKind:
		return "Map"
	}
	return fmt.Sprintf("Kind(%d)", int32(k))
}

// NumMapParts is the number of sub-values a map decomposes into: the keys
// tensor and the values tensor.
const NumMapParts = 2

// Value is the tagged container exchanged with execution engines: exactly
// one of tensor, sequence or map, plus an optional Fence ordering access
// to it across execution contexts.
type Value struct {
	kind   Kind
	tensor *Tensor
	seq    *Sequence
	mp     *Map
	fence  Fence
}

// NewTensorValue wraps a tensor. The value takes over the caller's
// release obligation: releasing the value releases the tensor.
func NewTensorValue(t *Tensor) *Value {
	return &Value{kind: TensorKind, tensor: t}
}

// Kind of the payload.
func (v *Value) Kind() Kind {
	if v == nil {
		return UnknownKind
	}
	return v.kind
}

// IsTensor reports whether the value carries a tensor.
func (v *Value) IsTensor() bool { return v.Kind() == TensorKind }

// Tensor returns the payload as a tensor, failing for other kinds.
func (v *Value) Tensor() (*Tensor, error) {
	if v.Kind() != TensorKind {
		return nil, status.Errorf(status.Fail, "value is a %s, not a tensor", v.Kind())
	}
	return v.tensor, nil
}

// Sequence returns the payload as a sequence, failing for other kinds.
func (v *Value) Sequence() (*Sequence, error) {
	if v.Kind() != SequenceKind {
		return nil, status.Errorf(status.Fail, "value is a %s, not a sequence", v.Kind())
	}
	return v.seq, nil
}

// Map returns the payload as a map, failing for other kinds.
func (v *Value) Map() (*Map, error) {
	if v.Kind() != MapKind {
		return nil, status.Errorf(status.Fail, "value is a %s, not a map", v.Kind())
	}
	return v.mp, nil
}

// Count returns the number of sub-values: the element count for a
// sequence, NumMapParts for a map. Tensors have no sub-values.
func (v *Value) Count() (int, error) {
	switch v.Kind() {
	case SequenceKind:
		return v.seq.Len(), nil
	case MapKind:
		return NumMapParts, nil
	}
	return 0, status.New(status.Fail, "value is not of type sequence or map")
}

// At extracts sub-value index as a fresh tensor value allocated through
// alloc: a single-element tensor for a sequence, the sorted keys tensor
// (index 0) or the matching values tensor (index 1) for a map. The caller
// owns the returned value.
func (v *Value) At(index int, alloc allocators.Allocator) (*Value, error) {
	switch v.Kind() {
	case SequenceKind:
		return v.seq.At(index, alloc)
	case MapKind:
		return v.mp.At(index, alloc)
	}
	return nil, status.New(status.Fail, "value is not of type sequence or map")
}

// Fence returns the fence attached to the value, or nil.
func (v *Value) Fence() Fence {
	if v == nil {
		return nil
	}
	return v.fence
}

// SetFence attaches a fence ordering producer/consumer access to the
// value. The gateway honors it on every run the value participates in.
func (v *Value) SetFence(f Fence) { v.fence = f }

// Release frees the payload. For tensors this releases the underlying
// buffer; sequences and maps only drop their references. Exactly once per
// value; a second call fails.
func (v *Value) Release() error {
	if v == nil {
		return status.New(status.Fail, "value is nil")
	}
	switch v.kind {
	case TensorKind:
		return v.tensor.Release()
	case SequenceKind, MapKind:
		if v.seq == nil && v.mp == nil {
			return status.Errorf(status.Fail, "%s value was already released", v.kind)
		}
		v.seq, v.mp = nil, nil
		return nil
	}
	return status.New(status.Fail, "value has no payload to release")
}
