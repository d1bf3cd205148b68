// Package dtypes defines DType, the closed enumeration of element types a
// tensor may hold, and the registry that maps each type tag to its byte size
// and Go representation.
//
// The set is fixed at compile time: there is no registration API. Adding a
// type means extending the table here, nothing else.
//
// Float16 uses the github.com/x448/float16 representation and BFloat16 the
// github.com/gomlx/gopjrt/dtypes/bfloat16 one.
package dtypes

import (
	"reflect"

	"github.com/gomlx/gopjrt/dtypes/bfloat16"
	"github.com/x448/float16"
)

// DType is the tag of an element type. The zero value is InvalidDType.
type DType int32

//go:generate go tool enumer -type=DType

const (
	InvalidDType DType = iota
	Bool
	Int8
	Int16
	Int32
	Int64
	Uint8
	Uint16
	Uint32
	Uint64
	Float16
	BFloat16
	Float32
	Float64
	String

	// Complex64 and Complex128 are recognized tags but no value can be
	// constructed with them: operations report NotImplemented.
	Complex64
	Complex128
)

// NumDTypes is the size of the enumeration, including InvalidDType.
const NumDTypes = int(Complex128) + 1

// registry is the closed table behind every generic entry point. A zero
// entry (nil goType) means the tag cannot be used to construct values.
var registry = [NumDTypes]struct {
	size   int // bytes per element; 0 for String (variable length).
	goType reflect.Type
}{
	Bool:     {1, reflect.TypeOf(false)},
	Int8:     {1, reflect.TypeOf(int8(0))},
	Int16:    {2, reflect.TypeOf(int16(0))},
	Int32:    {4, reflect.TypeOf(int32(0))},
	Int64:    {8, reflect.TypeOf(int64(0))},
	Uint8:    {1, reflect.TypeOf(uint8(0))},
	Uint16:   {2, reflect.TypeOf(uint16(0))},
	Uint32:   {4, reflect.TypeOf(uint32(0))},
	Uint64:   {8, reflect.TypeOf(uint64(0))},
	Float16:  {2, reflect.TypeOf(float16.Float16(0))},
	BFloat16: {2, reflect.TypeOf(bfloat16.BFloat16(0))},
	Float32:  {4, reflect.TypeOf(float32(0))},
	Float64:  {8, reflect.TypeOf(float64(0))},
	String:   {0, reflect.TypeOf("")},
}

// Size returns the fixed byte width of one element, or 0 for String (whose
// elements are variable length) and for tags outside the registered set.
func (dtype DType) Size() int {
	if dtype < 0 || int(dtype) >= NumDTypes {
		return 0
	}
	return registry[dtype].size
}

// GoType returns the Go type used to represent one element, or nil for tags
// outside the registered set.
func (dtype DType) GoType() reflect.Type {
	if dtype < 0 || int(dtype) >= NumDTypes {
		return nil
	}
	return registry[dtype].goType
}

// Supported returns whether values can be constructed with this tag.
// Complex64, Complex128 and InvalidDType are recognized but not supported.
func (dtype DType) Supported() bool {
	return dtype.GoType() != nil
}

// IsFixedSize returns whether elements have a fixed byte width -- every
// supported type except String.
func (dtype DType) IsFixedSize() bool {
	return dtype.Supported() && dtype != String
}

// IsFloat returns whether dtype is one of the supported floating point types.
func (dtype DType) IsFloat() bool {
	return dtype == Float16 || dtype == BFloat16 || dtype == Float32 || dtype == Float64
}

// IsInt returns whether dtype is one of the supported signed or unsigned
// integer types.
func (dtype DType) IsInt() bool {
	switch dtype {
	case Int8, Int16, Int32, Int64, Uint8, Uint16, Uint32, Uint64:
		return true
	}
	return false
}

// Supported lists the Go types an element may take. Used as a generics
// constraint by the typed tensor accessors.
type Supported interface {
	bool | int8 | int16 | int32 | int64 | uint8 | uint16 | uint32 | uint64 |
		float16.Float16 | bfloat16.BFloat16 | float32 | float64 | string
}

// Fixed is the Supported constraint minus string: the types with a fixed
// byte width that can live in a raw buffer.
type Fixed interface {
	bool | int8 | int16 | int32 | int64 | uint8 | uint16 | uint32 | uint64 |
		float16.Float16 | bfloat16.BFloat16 | float32 | float64
}

// FromGenericsType returns the DType for the Go type T.
func FromGenericsType[T Supported]() DType {
	var t T
	return FromGoType(reflect.TypeOf(t))
}

// FromGoType returns the DType represented by the Go type t, or InvalidDType
// if t is not one of the registered representations.
func FromGoType(t reflect.Type) DType {
	for dtype, entry := range registry {
		if entry.goType == t {
			return DType(dtype)
		}
	}
	return InvalidDType
}
