package values

import (
	"github.com/goort/goort/allocators"
	"github.com/goort/goort/status"
	"github.com/goort/goort/types/dtypes"
)

// Sequence is a homogeneous ordered collection built from tensor values
// (one scalar per input tensor) or from map values. Tensor-backed
// sequences are restricted to String, Int64, Float32 and Float64
// elements.
//
// The sequence copies its elements at construction: it stays valid after
// the inputs are released.
type Sequence struct {
	kind  Kind // TensorKind or MapKind
	dtype dtypes.DType

	// Exactly one of these holds the elements, selected by kind/dtype.
	strs []string
	i64s []int64
	f32s []float32
	f64s []float64
	maps []*Map
}

// seqScalars copies the leading scalar out of each input tensor.
func seqScalars[T dtypes.Supported](in []*Value) ([]T, error) {
	elems := make([]T, 0, len(in))
	for _, v := range in {
		t, err := v.Tensor()
		if err != nil {
			return nil, err
		}
		flat, err := Data[T](t)
		if err != nil {
			return nil, err
		}
		if len(flat) == 0 {
			return nil, status.New(status.Fail, "sequence elements must hold at least one value")
		}
		elems = append(elems, flat[0])
	}
	return elems, nil
}

// NewSequence builds a sequence value from the given elements. All inputs
// must share one kind and, for tensors, one element type; anything else
// fails. The inputs are copied and stay owned by the caller.
func NewSequence(in []*Value) (*Value, error) {
	if len(in) == 0 {
		return nil, status.New(status.Fail, "a sequence needs at least one element")
	}
	kind := in[0].Kind()
	for _, v := range in {
		if v.Kind() != kind {
			return nil, status.Errorf(status.Fail,
				"sequence elements must all be of one kind, got %s and %s", kind, v.Kind())
		}
	}
	seq := &Sequence{kind: kind}
	switch kind {
	case MapKind:
		// Sequences of maps are restricted to map<string,float32> and
		// map<int64,float32>, all elements sharing one key type.
		seq.maps = make([]*Map, 0, len(in))
		var keyType dtypes.DType
		for i, v := range in {
			m, err := v.Map()
			if err != nil {
				return nil, err
			}
			if m.ValueType() != dtypes.Float32 {
				return nil, status.Errorf(status.Fail,
					"sequences only hold maps with Float32 values, got %s", m.ValueType())
			}
			if i == 0 {
				keyType = m.KeyType()
			} else if m.KeyType() != keyType {
				return nil, status.Errorf(status.Fail,
					"sequence elements must all have %s keys, got %s", keyType, m.KeyType())
			}
			seq.maps = append(seq.maps, m.clone())
		}
	case TensorKind:
		first, err := in[0].Tensor()
		if err != nil {
			return nil, err
		}
		seq.dtype = first.DType()
		for _, v := range in[1:] {
			t, err := v.Tensor()
			if err != nil {
				return nil, err
			}
			if t.DType() != seq.dtype {
				return nil, status.Errorf(status.Fail,
					"sequence elements must all be %s tensors, got %s", seq.dtype, t.DType())
			}
		}
		switch seq.dtype {
		case dtypes.String:
			seq.strs, err = seqScalars[string](in)
		case dtypes.Int64:
			seq.i64s, err = seqScalars[int64](in)
		case dtypes.Float32:
			seq.f32s, err = seqScalars[float32](in)
		case dtypes.Float64:
			seq.f64s, err = seqScalars[float64](in)
		default:
			err = status.Errorf(status.Fail,
				"sequences of %s tensors are not supported", seq.dtype)
		}
		if err != nil {
			return nil, err
		}
	default:
		return nil, status.Errorf(status.Fail, "cannot build a sequence of %s values", kind)
	}
	return &Value{kind: SequenceKind, seq: seq}, nil
}

// Len returns the number of elements.
func (s *Sequence) Len() int {
	switch {
	case s.kind == MapKind:
		return len(s.maps)
	case s.dtype == dtypes.String:
		return len(s.strs)
	case s.dtype == dtypes.Int64:
		return len(s.i64s)
	case s.dtype == dtypes.Float32:
		return len(s.f32s)
	}
	return len(s.f64s)
}

// ElementKind returns the kind of the elements, TensorKind or MapKind.
func (s *Sequence) ElementKind() Kind { return s.kind }

// DType returns the element type of a tensor-backed sequence, or
// InvalidDType for a sequence of maps.
func (s *Sequence) DType() dtypes.DType { return s.dtype }

func seqTensorAt[T dtypes.Supported](elems []T, index int, alloc allocators.Allocator) (*Value, error) {
	t, err := FromFlat(alloc, []T{elems[index]}, 1)
	if err != nil {
		return nil, err
	}
	return NewTensorValue(t), nil
}

// At extracts element index as a fresh value owned by the caller: a
// single-element rank-1 tensor allocated through alloc, or a copy of the
// map for sequences of maps.
func (s *Sequence) At(index int, alloc allocators.Allocator) (*Value, error) {
	if index < 0 || index >= s.Len() {
		return nil, status.Errorf(status.Fail,
			"sequence index %d out of range, sequence has %d elements", index, s.Len())
	}
	if s.kind == MapKind {
		return &Value{kind: MapKind, mp: s.maps[index].clone()}, nil
	}
	switch s.dtype {
	case dtypes.String:
		return seqTensorAt(s.strs, index, alloc)
	case dtypes.Int64:
		return seqTensorAt(s.i64s, index, alloc)
	case dtypes.Float32:
		return seqTensorAt(s.f32s, index, alloc)
	}
	return seqTensorAt(s.f64s, index, alloc)
}
