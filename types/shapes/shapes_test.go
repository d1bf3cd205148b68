package shapes

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/goort/goort/status"
	"github.com/goort/goort/types/dtypes"
)

func TestShape(t *testing.T) {
	require.False(t, Invalid().Ok())

	scalar := Scalar(dtypes.Float64)
	require.True(t, scalar.Ok())
	require.True(t, scalar.IsScalar())
	require.Equal(t, 0, scalar.Rank())
	count, err := scalar.NumElements()
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
	size, err := scalar.SizeBytes()
	require.NoError(t, err)
	require.Equal(t, 8, size)

	shape := Make(dtypes.Float32, 4, 3, 2)
	require.Equal(t, 3, shape.Rank())
	require.Equal(t, int64(4), shape.Dim(0))
	require.Equal(t, int64(2), shape.Dim(-1))
	count, err = shape.NumElements()
	require.NoError(t, err)
	require.Equal(t, int64(4*3*2), count)
	size, err = shape.SizeBytes()
	require.NoError(t, err)
	require.Equal(t, 4*4*3*2, size)
	require.Equal(t, "(Float32)[4 3 2]", shape.String())

	require.True(t, shape.Equal(shape.Clone()))
	require.False(t, shape.Equal(Make(dtypes.Float32, 4, 3)))
	require.False(t, shape.Equal(Make(dtypes.Float64, 4, 3, 2)))
}

func TestZeroDimension(t *testing.T) {
	shape := Make(dtypes.Int64, 0, 7)
	count, err := shape.NumElements()
	require.NoError(t, err)
	require.Equal(t, int64(0), count)
	size, err := shape.SizeBytes()
	require.NoError(t, err)
	require.Equal(t, 0, size)
}

func TestNegativeDimension(t *testing.T) {
	shape := Make(dtypes.Float32, 2, -1)
	_, err := shape.NumElements()
	require.Equal(t, status.InvalidArgument, status.CodeOf(err))
	_, err = shape.SizeBytes()
	require.Equal(t, status.InvalidArgument, status.CodeOf(err))
}

func TestSizeOverflow(t *testing.T) {
	// Element count itself overflows int64.
	shape := Make(dtypes.Int8, math.MaxInt64, 3)
	_, err := shape.NumElements()
	require.Equal(t, status.InvalidArgument, status.CodeOf(err))

	// Element count fits but the byte size does not.
	shape = Make(dtypes.Float64, math.MaxInt64/4)
	count, err := shape.NumElements()
	require.NoError(t, err)
	require.Equal(t, int64(math.MaxInt64/4), count)
	_, err = shape.SizeBytes()
	require.Equal(t, status.InvalidArgument, status.CodeOf(err))
	require.Contains(t, err.Error(), "size overflow")
}

func TestSizeBytesOnStrings(t *testing.T) {
	_, err := Make(dtypes.String, 3).SizeBytes()
	require.Equal(t, status.InvalidArgument, status.CodeOf(err))
}
