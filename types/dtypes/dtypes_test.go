package dtypes

import (
	"testing"

	"github.com/gomlx/gopjrt/dtypes/bfloat16"
	"github.com/stretchr/testify/require"
	"github.com/x448/float16"

	"github.com/goort/goort/status"
)

func TestRegistrySizes(t *testing.T) {
	sizes := map[DType]int{
		Bool: 1, Int8: 1, Int16: 2, Int32: 4, Int64: 8,
		Uint8: 1, Uint16: 2, Uint32: 4, Uint64: 8,
		Float16: 2, BFloat16: 2, Float32: 4, Float64: 8,
	}
	for dtype, want := range sizes {
		require.Equalf(t, want, dtype.Size(), "size of %s", dtype)
		require.True(t, dtype.Supported())
		require.True(t, dtype.IsFixedSize())
	}

	require.True(t, String.Supported())
	require.False(t, String.IsFixedSize())

	for _, dtype := range []DType{InvalidDType, Complex64, Complex128, DType(999)} {
		require.Falsef(t, dtype.Supported(), "%s must not be constructible", dtype)
	}
}

func TestFromGenericsType(t *testing.T) {
	require.Equal(t, Float32, FromGenericsType[float32]())
	require.Equal(t, Int64, FromGenericsType[int64]())
	require.Equal(t, String, FromGenericsType[string]())
	require.Equal(t, Float16, FromGenericsType[float16.Float16]())
	require.Equal(t, BFloat16, FromGenericsType[bfloat16.BFloat16]())

	for _, dtype := range DTypeValues() {
		if !dtype.Supported() {
			continue
		}
		require.Equal(t, dtype, FromGoType(dtype.GoType()))
	}
}

func TestDispatcher(t *testing.T) {
	d := NewDispatcher("Double")
	d.Register(Int64, func(params ...any) any {
		return params[0].(int64) * 2
	})

	got, err := d.Dispatch(Int64, int64(21))
	require.NoError(t, err)
	require.Equal(t, int64(42), got)

	// Unregistered and out-of-enumeration tags are NotImplemented.
	for _, dtype := range []DType{Complex64, Complex128, Float32, DType(100)} {
		_, err = d.Dispatch(dtype)
		require.Equal(t, status.NotImplemented, status.CodeOf(err))
	}

	require.Panics(t, func() { d.Register(DType(100), nil) })
}
