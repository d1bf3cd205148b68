package goengine_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/goort/goort/allocators"
	"github.com/goort/goort/engines"
	"github.com/goort/goort/engines/goengine"
	"github.com/goort/goort/status"
	"github.com/goort/goort/types/dtypes"
	"github.com/goort/goort/values"
)

func tensorValue[T int64 | float32 | float64](t *testing.T, flat ...T) *values.Value {
	t.Helper()
	tensor, err := values.FromFlat(allocators.NewCPU(), flat, int64(len(flat)))
	require.NoError(t, err)
	return values.NewTensorValue(tensor)
}

func flatOf[T int64 | float32 | float64](t *testing.T, v *values.Value) []T {
	t.Helper()
	tensor, err := v.Tensor()
	require.NoError(t, err)
	flat, err := values.Data[T](tensor)
	require.NoError(t, err)
	return flat
}

func TestEchoRun(t *testing.T) {
	engine, err := engines.NewWithConfig("go")
	require.NoError(t, err)
	defer engine.Finalize()
	require.Equal(t, "go", engine.Name())
	require.Equal(t, "input", engine.Inputs()[0].Name)
	require.Equal(t, "output", engine.Outputs()[0].Name)

	in := tensorValue(t, float32(1), 2, 3)
	fetches := make([]*values.Value, 1)
	require.NoError(t, engine.Run(nil, []string{"input"}, []*values.Value{in},
		[]string{"output"}, fetches))
	require.NotNil(t, fetches[0])
	require.Equal(t, []float32{1, 2, 3}, flatOf[float32](t, fetches[0]))

	// The output is a copy, not an alias.
	flatOf[float32](t, in)[0] = 99
	require.Equal(t, []float32{1, 2, 3}, flatOf[float32](t, fetches[0]))
	require.NoError(t, fetches[0].Release())
	require.NoError(t, in.Release())
}

func TestDoubleRun(t *testing.T) {
	engine, err := engines.NewWithConfig("go:double")
	require.NoError(t, err)
	defer engine.Finalize()

	in := tensorValue(t, int64(1), 2, 3)
	fetches := make([]*values.Value, 1)
	require.NoError(t, engine.Run(&engines.RunOptions{Tag: "test"},
		[]string{"input"}, []*values.Value{in}, []string{"output"}, fetches))
	require.Equal(t, []int64{2, 4, 6}, flatOf[int64](t, fetches[0]))
}

func TestPreallocatedOutput(t *testing.T) {
	engine, err := engines.NewWithConfig("go:double")
	require.NoError(t, err)
	defer engine.Finalize()

	in := tensorValue(t, float64(0.5), 1.5)
	out := tensorValue(t, float64(0), 0)
	fence := values.NewCompletionFence()
	out.SetFence(fence)
	fence.BeforeUsingAsOutput(engines.CPUExecutionProvider, 0)

	fetches := []*values.Value{out}
	require.NoError(t, engine.Run(nil, []string{"input"}, []*values.Value{in},
		[]string{"output"}, fetches))
	require.Same(t, out, fetches[0])
	require.Equal(t, []float64{1, 3}, flatOf[float64](t, out))

	// The engine signalled the fence after writing.
	done := make(chan struct{})
	go func() {
		fence.BeforeUsingAsInput(engines.CPUExecutionProvider, 0)
		close(done)
	}()
	<-done
}

func TestPreallocatedShapeMismatch(t *testing.T) {
	engine, err := engines.NewWithConfig("go")
	require.NoError(t, err)
	defer engine.Finalize()

	in := tensorValue(t, int64(1), 2, 3)
	out := tensorValue(t, int64(0), 0)
	err = engine.Run(nil, []string{"input"}, []*values.Value{in},
		[]string{"output"}, []*values.Value{out})
	require.Equal(t, status.InvalidArgument, status.CodeOf(err))
}

func TestRunErrors(t *testing.T) {
	engine, err := engines.NewWithConfig("go")
	require.NoError(t, err)

	// Missing feed for a declared input.
	err = engine.Run(nil, nil, nil, []string{"output"}, make([]*values.Value, 1))
	require.Equal(t, status.InvalidArgument, status.CodeOf(err))
	require.Contains(t, err.Error(), "was not fed")

	// Unknown fetch name.
	in := tensorValue(t, int64(1))
	err = engine.Run(nil, []string{"input"}, []*values.Value{in},
		[]string{"nope"}, make([]*values.Value, 1))
	require.Equal(t, status.EngineError, status.CodeOf(err))

	// Mismatched name/value lengths.
	err = engine.Run(nil, []string{"input"}, nil, nil, nil)
	require.Equal(t, status.InvalidArgument, status.CodeOf(err))

	// A finalized engine refuses to run.
	engine.Finalize()
	err = engine.Run(nil, []string{"input"}, []*values.Value{in},
		[]string{"output"}, make([]*values.Value, 1))
	require.Equal(t, status.EngineError, status.CodeOf(err))
}

func TestDoubleRejectsStrings(t *testing.T) {
	engine, err := engines.NewWithConfig("go:double")
	require.NoError(t, err)
	defer engine.Finalize()

	tensor, err := values.NewTensor(allocators.NewCPU(), dtypes.String, 1)
	require.NoError(t, err)
	require.NoError(t, values.FillStrings(tensor, []string{"abc"}))
	err = engine.Run(nil, []string{"input"}, []*values.Value{values.NewTensorValue(tensor)},
		[]string{"output"}, make([]*values.Value, 1))
	require.Equal(t, status.InvalidArgument, status.CodeOf(err))
}

func TestRegistry(t *testing.T) {
	require.Contains(t, engines.List(), "go")

	_, err := engines.NewWithConfig("nope")
	require.Equal(t, status.InvalidArgument, status.CodeOf(err))
	require.Contains(t, err.Error(), "unknown engine")

	_, err = engines.NewWithConfig("go:nope")
	require.Equal(t, status.InvalidArgument, status.CodeOf(err))

	t.Setenv(engines.ConfigEnvVar, "go:double")
	engine, err := engines.New()
	require.NoError(t, err)
	require.Equal(t, "go", engine.Name())
	engine.Finalize()
}

func TestCustomModel(t *testing.T) {
	model := &goengine.Model{
		Name:    "sum",
		Inputs:  []engines.Info{{Name: "a"}, {Name: "b"}},
		Outputs: []engines.Info{{Name: "sum"}},
		Apply: func(alloc allocators.Allocator, feeds map[string]*values.Value) (map[string]*values.Value, error) {
			a, err := feeds["a"].Tensor()
			if err != nil {
				return nil, err
			}
			b, err := feeds["b"].Tensor()
			if err != nil {
				return nil, err
			}
			aFlat, err := values.Data[float32](a)
			if err != nil {
				return nil, err
			}
			bFlat, err := values.Data[float32](b)
			if err != nil {
				return nil, err
			}
			out := make([]float32, len(aFlat))
			for i := range out {
				out[i] = aFlat[i] + bFlat[i]
			}
			tensor, err := values.FromFlat(alloc, out, int64(len(out)))
			if err != nil {
				return nil, err
			}
			return map[string]*values.Value{"sum": values.NewTensorValue(tensor)}, nil
		},
	}
	engine := goengine.NewWithModel(model)
	defer engine.Finalize()

	fetches := make([]*values.Value, 1)
	require.NoError(t, engine.Run(nil,
		[]string{"a", "b"},
		[]*values.Value{tensorValue(t, float32(1), 2), tensorValue(t, float32(10), 20)},
		[]string{"sum"}, fetches))
	require.Equal(t, []float32{11, 22}, flatOf[float32](t, fetches[0]))
}
