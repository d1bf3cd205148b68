// Package shapes defines Shape, the element type plus ordered dimensions of
// a tensor, and the checked size arithmetic used before any buffer is
// allocated.
//
// Dimensions are int64 and must be non-negative; a zero dimension yields an
// empty (but valid) tensor. A scalar has rank 0 and one element.
//
// Element counts and byte sizes are always computed with overflow guards:
// NumElements and SizeBytes return an InvalidArgument status instead of
// silently wrapping, so no caller ever allocates from a wrapped size.
package shapes

import (
	"fmt"
	"math"
	"math/bits"
	"slices"
	"strings"

	"github.com/goort/goort/status"
	"github.com/goort/goort/types/dtypes"
)

// Shape of a tensor: element type and the size of each axis.
//
// Use Make to create one. Shape is a value type; its Dimensions slice must
// not be mutated after creation.
type Shape struct {
	DType      dtypes.DType
	Dimensions []int64
}

// Make returns a Shape with the given element type and dimensions. The
// dimensions are stored as given; validity (non-negative dimensions,
// overflow-free sizes) is checked by NumElements and SizeBytes so that
// builders can report malformed shapes as statuses instead of panicking.
func Make(dtype dtypes.DType, dimensions ...int64) Shape {
	return Shape{DType: dtype, Dimensions: slices.Clone(dimensions)}
}

// Scalar returns a rank-0 shape of the given element type.
func Scalar(dtype dtypes.DType) Shape {
	return Shape{DType: dtype}
}

// Invalid returns an invalid shape: Invalid().Ok() == false.
func Invalid() Shape { return Shape{DType: dtypes.InvalidDType} }

// Ok returns whether this is a valid shape. The zero value Shape{} is not.
func (s Shape) Ok() bool { return s.DType != dtypes.InvalidDType }

// Rank of the shape: the number of axes. Scalars have rank 0.
func (s Shape) Rank() int { return len(s.Dimensions) }

// IsScalar returns whether the shape has no axes.
func (s Shape) IsScalar() bool { return s.Ok() && s.Rank() == 0 }

// Dim returns the dimension of the given axis. Negative axis counts from the
// end, as in slice indexing.
func (s Shape) Dim(axis int) int64 {
	adjusted := axis
	if adjusted < 0 {
		adjusted += s.Rank()
	}
	return s.Dimensions[adjusted]
}

// Clone returns a deep copy of the shape.
func (s Shape) Clone() Shape {
	return Shape{DType: s.DType, Dimensions: slices.Clone(s.Dimensions)}
}

// Equal compares element type and dimensions.
func (s Shape) Equal(other Shape) bool {
	return s.DType == other.DType && slices.Equal(s.Dimensions, other.Dimensions)
}

// String implements fmt.Stringer, pretty-printing the shape as e.g.
// "(Float32)[2 3]".
func (s Shape) String() string {
	if s.Rank() == 0 {
		return fmt.Sprintf("(%s)", s.DType)
	}
	return fmt.Sprintf("(%s)%v", s.DType, s.Dimensions)
}

// dimsString formats dimensions the way error messages quote them: "[2,3]".
func (s Shape) dimsString() string {
	parts := make([]string, 0, s.Rank())
	for _, dim := range s.Dimensions {
		parts = append(parts, fmt.Sprintf("%d", dim))
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// NumElements returns the product of all dimensions, checking that every
// dimension is non-negative and that the product does not overflow the
// addressable size. Scalars report one element.
func (s Shape) NumElements() (int64, error) {
	count := uint64(1)
	for _, dim := range s.Dimensions {
		if dim < 0 {
			return 0, status.Errorf(status.InvalidArgument,
				"tensor shape %s is invalid", s.dimsString())
		}
		hi, lo := bits.Mul64(count, uint64(dim))
		if hi != 0 || lo > math.MaxInt64 {
			return 0, status.Errorf(status.InvalidArgument,
				"tensor shape %s is invalid", s.dimsString())
		}
		count = lo
	}
	return int64(count), nil
}

// SizeBytes returns the number of bytes needed to store the shape's
// elements contiguously, guarding the multiplication against overflow. It
// fails with InvalidArgument for malformed shapes, for size overflow, and
// for element types without a fixed width (String).
func (s Shape) SizeBytes() (int, error) {
	if !s.DType.IsFixedSize() {
		return 0, status.Errorf(status.InvalidArgument,
			"element type %s has no fixed byte size", s.DType)
	}
	count, err := s.NumElements()
	if err != nil {
		return 0, err
	}
	hi, lo := bits.Mul64(uint64(count), uint64(s.DType.Size()))
	if hi != 0 || lo > uint64(math.MaxInt) {
		return 0, status.New(status.InvalidArgument, "size overflow")
	}
	return int(lo), nil
}
