package values

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/goort/goort/allocators"
	"github.com/goort/goort/status"
	"github.com/goort/goort/types/dtypes"
)

func TestStringTensorRoundTrip(t *testing.T) {
	tensor, err := NewTensor(allocators.NewCPU(), dtypes.String, 3)
	require.NoError(t, err)

	// Slots start out as empty strings.
	total, err := StringDataLength(tensor)
	require.NoError(t, err)
	require.Equal(t, int64(0), total)

	require.NoError(t, FillStrings(tensor, []string{"ab", "c", ""}))
	total, err = StringDataLength(tensor)
	require.NoError(t, err)
	require.Equal(t, int64(3), total)

	dst := make([]byte, total)
	offsets := make([]int64, 3)
	require.NoError(t, StringContent(tensor, dst, offsets))
	require.Equal(t, "abc", string(dst))
	require.Equal(t, []int64{0, 2, 3}, offsets)

	// Element slots are regular Go strings.
	strs, err := Data[string](tensor)
	require.NoError(t, err)
	require.Equal(t, []string{"ab", "c", ""}, strs)
	require.NoError(t, tensor.Release())
}

func TestFillStringsTooShort(t *testing.T) {
	tensor, err := NewTensor(allocators.NewCPU(), dtypes.String, 3)
	require.NoError(t, err)
	err = FillStrings(tensor, []string{"only", "two"})
	require.Equal(t, status.InvalidArgument, status.CodeOf(err))
	require.Contains(t, err.Error(), "input array is too short")
	require.NoError(t, tensor.Release())
}

func TestStringContentSpace(t *testing.T) {
	tensor, err := NewTensor(allocators.NewCPU(), dtypes.String, 2)
	require.NoError(t, err)
	require.NoError(t, FillStrings(tensor, []string{"hello", "world"}))

	err = StringContent(tensor, make([]byte, 5), make([]int64, 2))
	require.Equal(t, status.Fail, status.CodeOf(err))
	require.Contains(t, err.Error(), "space is not enough")

	err = StringContent(tensor, make([]byte, 10), make([]int64, 1))
	require.Equal(t, status.Fail, status.CodeOf(err))
	require.NoError(t, tensor.Release())
}

func TestStringOpsOnNumericTensor(t *testing.T) {
	tensor, err := NewTensor(allocators.NewCPU(), dtypes.Float32, 2)
	require.NoError(t, err)
	_, err = StringDataLength(tensor)
	require.Equal(t, status.InvalidArgument, status.CodeOf(err))
	err = FillStrings(tensor, []string{"a", "b"})
	require.Equal(t, status.InvalidArgument, status.CodeOf(err))
	_, err = tensor.MutableBytes()
	require.NoError(t, err)
	require.NoError(t, tensor.Release())
}

func TestStringTensorHasNoRawBytes(t *testing.T) {
	tensor, err := NewTensor(allocators.NewCPU(), dtypes.String, 2)
	require.NoError(t, err)
	_, err = tensor.MutableBytes()
	require.Equal(t, status.Fail, status.CodeOf(err))
	require.NoError(t, tensor.Release())
}
