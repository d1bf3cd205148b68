// Package goengine implements the reference pure-Go execution engine,
// registered under the name "go".
//
// It executes Model objects: a declaration of named inputs and outputs
// plus an Apply function computing the outputs from the feeds. Two builtin
// models are selectable through the engine options, "echo" (the default),
// which copies its input to its output, and "double", which multiplies a
// numeric input by two. Both exist to exercise the full value round trip
// without a real inference runtime.
//
// Import for the side effect of registration:
//
//	import _ "github.com/goort/goort/engines/goengine"
package goengine

import (
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/goort/goort/allocators"
	"github.com/goort/goort/engines"
	"github.com/goort/goort/status"
	"github.com/goort/goort/types/dtypes"
	"github.com/goort/goort/values"
)

// Name under which this engine registers itself.
const Name = "go"

func init() {
	engines.Register(Name, func(options string) (engines.Engine, error) {
		model, err := builtinModel(options)
		if err != nil {
			return nil, err
		}
		return NewWithModel(model), nil
	})
}

// ApplyFunc computes a model's outputs from its feeds, allocating fresh
// values through alloc. The returned values are owned by the caller.
type ApplyFunc func(alloc allocators.Allocator, feeds map[string]*values.Value) (map[string]*values.Value, error)

// Model is the unit the go engine executes.
type Model struct {
	Name    string
	Inputs  []engines.Info
	Outputs []engines.Info
	Apply   ApplyFunc
}

// Engine runs a Model on the host CPU. Buffers for fresh outputs come
// from an arena allocator owned by the engine.
type Engine struct {
	model     *Model
	alloc     *allocators.CPU
	finalized bool
}

var _ engines.Engine = (*Engine)(nil)

// NewWithModel builds an engine executing the given model. Use
// engines.NewWithConfig("go[:model]") for the builtin models instead.
func NewWithModel(model *Model) *Engine {
	return &Engine{model: model, alloc: allocators.NewArena()}
}

func builtinModel(options string) (*Model, error) {
	switch options {
	case "", "echo":
		return echoModel(), nil
	case "double":
		return doubleModel(), nil
	}
	return nil, status.Errorf(status.InvalidArgument,
		"go engine has no builtin model %q, builtins are echo and double", options)
}

// Name implements engines.Engine.
func (e *Engine) Name() string { return Name }

// Inputs implements engines.Engine.
func (e *Engine) Inputs() []engines.Info { return e.model.Inputs }

// Outputs implements engines.Engine.
func (e *Engine) Outputs() []engines.Info { return e.model.Outputs }

// Finalize implements engines.Engine.
func (e *Engine) Finalize() {
	if e.finalized {
		return
	}
	e.finalized = true
	klog.V(1).Infof("goengine: finalized model %q, %s", e.model.Name, e.alloc)
}

// Run implements engines.Engine. Preallocated fetch slots are written in
// place and their fences signalled; nil slots receive fresh values.
func (e *Engine) Run(opts *engines.RunOptions, feedNames []string, feeds []*values.Value,
	fetchNames []string, fetches []*values.Value) error {
	if e.finalized {
		return status.New(status.EngineError, "engine was already finalized")
	}
	if len(feedNames) != len(feeds) {
		return status.Errorf(status.InvalidArgument,
			"got %d feed names for %d feeds", len(feedNames), len(feeds))
	}
	if len(fetchNames) != len(fetches) {
		return status.Errorf(status.InvalidArgument,
			"got %d fetch names for %d fetch slots", len(fetchNames), len(fetches))
	}
	byName := make(map[string]*values.Value, len(feeds))
	for i, name := range feedNames {
		byName[name] = feeds[i]
	}
	for _, info := range e.model.Inputs {
		if _, found := byName[info.Name]; !found {
			return status.Errorf(status.InvalidArgument,
				"model %q input %q was not fed", e.model.Name, info.Name)
		}
	}
	if opts.Verbosity() > 0 || klog.V(2).Enabled() {
		klog.Infof("goengine: run model=%q tag=%q feeds=%v fetches=%v",
			e.model.Name, tagOf(opts), feedNames, fetchNames)
	}

	produced, err := e.model.Apply(e.alloc, byName)
	if err != nil {
		return engineError(err)
	}
	for i, name := range fetchNames {
		out, found := produced[name]
		if !found {
			return status.Errorf(status.EngineError,
				"model %q produced no output named %q", e.model.Name, name)
		}
		if fetches[i] == nil {
			fetches[i] = out
			continue
		}
		if err := writeInPlace(fetches[i], out); err != nil {
			return err
		}
		_ = out.Release()
		if fence := fetches[i].Fence(); fence != nil {
			fence.Signal(0)
		}
	}
	return nil
}

func tagOf(opts *engines.RunOptions) string {
	if opts == nil {
		return ""
	}
	return opts.Tag
}

// engineError tags foreign errors as EngineError, keeping codes already
// assigned by the value layer.
func engineError(err error) error {
	var statusErr *status.Error
	if errors.As(err, &statusErr) {
		return err
	}
	return status.WithCode(status.EngineError, err)
}

// writeInPlace copies the produced tensor into the caller's preallocated
// tensor. Shapes must match exactly.
func writeInPlace(dst, src *values.Value) error {
	dstTensor, err := dst.Tensor()
	if err != nil {
		return status.WithCode(status.InvalidArgument,
			errors.Wrap(err, "preallocated outputs must be tensors"))
	}
	srcTensor, err := src.Tensor()
	if err != nil {
		return engineError(err)
	}
	if !dstTensor.Shape().Equal(srcTensor.Shape()) {
		return status.Errorf(status.InvalidArgument,
			"preallocated output has shape %s, model produced %s",
			dstTensor.Shape(), srcTensor.Shape())
	}
	if dstTensor.DType() == dtypes.String {
		srcStrs, err := values.Data[string](srcTensor)
		if err != nil {
			return err
		}
		return values.FillStrings(dstTensor, srcStrs)
	}
	srcRaw, err := srcTensor.MutableBytes()
	if err != nil {
		return err
	}
	dstRaw, err := dstTensor.MutableBytes()
	if err != nil {
		return err
	}
	copy(dstRaw, srcRaw)
	return nil
}

// cloneTensorValue deep-copies a tensor value through alloc.
func cloneTensorValue(alloc allocators.Allocator, v *values.Value) (*values.Value, error) {
	tensor, err := v.Tensor()
	if err != nil {
		return nil, err
	}
	out, err := values.NewTensor(alloc, tensor.DType(), tensor.Shape().Dimensions...)
	if err != nil {
		return nil, err
	}
	if tensor.DType() == dtypes.String {
		strs, err := values.Data[string](tensor)
		if err != nil {
			return nil, err
		}
		if err := values.FillStrings(out, strs); err != nil {
			return nil, err
		}
		return values.NewTensorValue(out), nil
	}
	srcRaw, err := tensor.MutableBytes()
	if err != nil {
		return nil, err
	}
	dstRaw, err := out.MutableBytes()
	if err != nil {
		return nil, err
	}
	copy(dstRaw, srcRaw)
	return values.NewTensorValue(out), nil
}

func echoModel() *Model {
	return &Model{
		Name:    "echo",
		Inputs:  []engines.Info{{Name: "input", Kind: values.TensorKind}},
		Outputs: []engines.Info{{Name: "output", Kind: values.TensorKind}},
		Apply: func(alloc allocators.Allocator, feeds map[string]*values.Value) (map[string]*values.Value, error) {
			out, err := cloneTensorValue(alloc, feeds["input"])
			if err != nil {
				return nil, err
			}
			return map[string]*values.Value{"output": out}, nil
		},
	}
}

func doubleFlat[T int64 | float32 | float64](tensor *values.Tensor) error {
	flat, err := values.Data[T](tensor)
	if err != nil {
		return err
	}
	for i := range flat {
		flat[i] *= 2
	}
	return nil
}

func doubleModel() *Model {
	return &Model{
		Name:    "double",
		Inputs:  []engines.Info{{Name: "input", Kind: values.TensorKind}},
		Outputs: []engines.Info{{Name: "output", Kind: values.TensorKind}},
		Apply: func(alloc allocators.Allocator, feeds map[string]*values.Value) (map[string]*values.Value, error) {
			out, err := cloneTensorValue(alloc, feeds["input"])
			if err != nil {
				return nil, err
			}
			tensor, err := out.Tensor()
			if err != nil {
				return nil, err
			}
			switch tensor.DType() {
			case dtypes.Int64:
				err = doubleFlat[int64](tensor)
			case dtypes.Float32:
				err = doubleFlat[float32](tensor)
			case dtypes.Float64:
				err = doubleFlat[float64](tensor)
			default:
				err = status.Errorf(status.InvalidArgument,
					"the double model only handles Int64, Float32 and Float64 tensors, got %s",
					tensor.DType())
			}
			if err != nil {
				_ = out.Release()
				return nil, err
			}
			return map[string]*values.Value{"output": out}, nil
		},
	}
}
