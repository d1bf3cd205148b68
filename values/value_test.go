package values

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/goort/goort/allocators"
	"github.com/goort/goort/status"
	"github.com/goort/goort/types/dtypes"
)

func TestValueKinds(t *testing.T) {
	tv := tensorValue(t, float32(1))
	require.Equal(t, TensorKind, tv.Kind())
	require.True(t, tv.IsTensor())

	_, err := tv.Sequence()
	require.Equal(t, status.Fail, status.CodeOf(err))
	_, err = tv.Map()
	require.Equal(t, status.Fail, status.CodeOf(err))

	// Tensors have no sub-values.
	_, err = tv.Count()
	require.Equal(t, status.Fail, status.CodeOf(err))
	require.Contains(t, err.Error(), "not of type sequence or map")
	_, err = tv.At(0, allocators.NewCPU())
	require.Equal(t, status.Fail, status.CodeOf(err))

	require.Equal(t, "Tensor", TensorKind.String())
	require.Equal(t, "Sequence", SequenceKind.String())
	require.Equal(t, "Map", MapKind.String())
}

func TestValueRelease(t *testing.T) {
	tv := tensorValue(t, int64(1))
	require.NoError(t, tv.Release())
	require.Equal(t, status.Fail, status.CodeOf(tv.Release()))

	seq, err := NewSequence([]*Value{tensorValue(t, int64(1))})
	require.NoError(t, err)
	require.NoError(t, seq.Release())
	require.Equal(t, status.Fail, status.CodeOf(seq.Release()))
}

func TestValueFence(t *testing.T) {
	tv := tensorValue(t, int64(1))
	require.Nil(t, tv.Fence())
	fence := NewCompletionFence()
	tv.SetFence(fence)
	require.Same(t, Fence(fence), tv.Fence())
}

func TestStringTensorValue(t *testing.T) {
	tensor, err := NewTensor(allocators.NewCPU(), dtypes.String, 2)
	require.NoError(t, err)
	require.NoError(t, FillStrings(tensor, []string{"x", "y"}))
	tv := NewTensorValue(tensor)
	got, err := tv.Tensor()
	require.NoError(t, err)
	require.Same(t, tensor, got)
	require.NoError(t, tv.Release())
}
