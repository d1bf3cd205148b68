package values

import (
	"maps"
	"slices"

	"golang.org/x/exp/constraints"

	"github.com/goort/goort/allocators"
	"github.com/goort/goort/status"
	"github.com/goort/goort/types/dtypes"
)

// mapKey constrains map keys to the orderable element types a map accepts.
type mapKey interface {
	constraints.Ordered
	string | int64
}

// mapValue constrains the element types a map accepts as values.
type mapValue interface {
	string | int64 | float32 | float64
}

// Map is an associative value built from a pair of tensors: keys and
// values of equal element count, rank at most 1. Keys are String or Int64;
// values are String, Int64, Float32 or Float64.
//
// Entries are deduplicated at construction, the first occurrence of a key
// wins. Iteration through At is in ascending key order.
type Map struct {
	keyType   dtypes.DType
	valueType dtypes.DType
	impl      mapImpl
}

// mapImpl erases the key/value type parameters of orderedMap.
type mapImpl interface {
	count() int
	keys(alloc allocators.Allocator) (*Value, error)
	values(alloc allocators.Allocator) (*Value, error)
	clone() mapImpl
}

type orderedMap[K mapKey, V mapValue] struct {
	entries map[K]V
}

func buildMap[K mapKey, V mapValue](ks []K, vs []V) *orderedMap[K, V] {
	m := &orderedMap[K, V]{entries: make(map[K]V, len(ks))}
	for i, k := range ks {
		if _, dup := m.entries[k]; dup {
			continue // first occurrence wins
		}
		m.entries[k] = vs[i]
	}
	return m
}

func (m *orderedMap[K, V]) count() int { return len(m.entries) }

func (m *orderedMap[K, V]) sortedKeys() []K {
	ks := make([]K, 0, len(m.entries))
	for k := range m.entries {
		ks = append(ks, k)
	}
	slices.Sort(ks)
	return ks
}

func (m *orderedMap[K, V]) keys(alloc allocators.Allocator) (*Value, error) {
	ks := m.sortedKeys()
	t, err := FromFlat(alloc, ks, int64(len(ks)))
	if err != nil {
		return nil, err
	}
	return NewTensorValue(t), nil
}

func (m *orderedMap[K, V]) values(alloc allocators.Allocator) (*Value, error) {
	ks := m.sortedKeys()
	vs := make([]V, len(ks))
	for i, k := range ks {
		vs[i] = m.entries[k]
	}
	t, err := FromFlat(alloc, vs, int64(len(vs)))
	if err != nil {
		return nil, err
	}
	return NewTensorValue(t), nil
}

func (m *orderedMap[K, V]) clone() mapImpl {
	return &orderedMap[K, V]{entries: maps.Clone(m.entries)}
}

// mapFor builds the typed map implementation once the key type is pinned.
func mapFor[K mapKey](kt, vt *Tensor) (mapImpl, error) {
	ks, err := Data[K](kt)
	if err != nil {
		return nil, err
	}
	switch vt.DType() {
	case dtypes.String:
		vs, err := Data[string](vt)
		if err != nil {
			return nil, err
		}
		return buildMap(ks, vs), nil
	case dtypes.Int64:
		vs, err := Data[int64](vt)
		if err != nil {
			return nil, err
		}
		return buildMap(ks, vs), nil
	case dtypes.Float32:
		vs, err := Data[float32](vt)
		if err != nil {
			return nil, err
		}
		return buildMap(ks, vs), nil
	case dtypes.Float64:
		vs, err := Data[float64](vt)
		if err != nil {
			return nil, err
		}
		return buildMap(ks, vs), nil
	}
	return nil, status.Errorf(status.Fail,
		"map values must be String, Int64, Float32 or Float64 tensors, got %s", vt.DType())
}

// NewMap builds a map value from a keys tensor and a values tensor of
// equal element count, each of rank at most 1. The tensors are copied and
// stay owned by the caller.
func NewMap(keys, vals *Value) (*Value, error) {
	kt, err := keys.Tensor()
	if err != nil {
		return nil, err
	}
	vt, err := vals.Tensor()
	if err != nil {
		return nil, err
	}
	if kt.Rank() > 1 || vt.Rank() > 1 {
		return nil, status.New(status.Fail, "map keys and values must be scalars or vectors")
	}
	if kt.NumElements() != vt.NumElements() {
		return nil, status.Errorf(status.Fail,
			"map keys and values must have the same element count, got %d keys and %d values",
			kt.NumElements(), vt.NumElements())
	}
	var impl mapImpl
	switch kt.DType() {
	case dtypes.String:
		impl, err = mapFor[string](kt, vt)
	case dtypes.Int64:
		impl, err = mapFor[int64](kt, vt)
	default:
		err = status.Errorf(status.Fail,
			"map keys must be String or Int64 tensors, got %s", kt.DType())
	}
	if err != nil {
		return nil, err
	}
	mp := &Map{keyType: kt.DType(), valueType: vt.DType(), impl: impl}
	return &Value{kind: MapKind, mp: mp}, nil
}

// Len returns the number of entries after key deduplication.
func (m *Map) Len() int { return m.impl.count() }

// KeyType returns the element type of the keys.
func (m *Map) KeyType() dtypes.DType { return m.keyType }

// ValueType returns the element type of the values.
func (m *Map) ValueType() dtypes.DType { return m.valueType }

// At extracts one of the map's two facets as a fresh rank-1 tensor value
// allocated through alloc: index 0 is the keys in ascending order, index 1
// the values in matching order. The caller owns the returned value.
func (m *Map) At(index int, alloc allocators.Allocator) (*Value, error) {
	switch index {
	case 0:
		return m.impl.keys(alloc)
	case 1:
		return m.impl.values(alloc)
	}
	return nil, status.Errorf(status.Fail,
		"map sub-value index must be 0 (keys) or 1 (values), got %d", index)
}

func (m *Map) clone() *Map {
	return &Map{keyType: m.keyType, valueType: m.valueType, impl: m.impl.clone()}
}
