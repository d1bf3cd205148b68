package dtypes

import (
	"github.com/gomlx/exceptions"

	"github.com/goort/goort/status"
)

// FuncForDispatcher is the type of function instances a Dispatcher routes to.
// Each registered instance is the concrete monomorphization of one generic
// operation for one DType.
type FuncForDispatcher func(params ...any) any

// Dispatcher routes a generic operation to the concrete instance registered
// for a DType. It substitutes for generics where the element type is only
// known at runtime.
//
// Registration happens during package initialization; after that the table
// is read-only and safe for concurrent Dispatch calls.
type Dispatcher struct {
	name  string
	table [NumDTypes]FuncForDispatcher
}

// NewDispatcher creates a dispatcher for one class of functions. The name is
// used in error messages only.
func NewDispatcher(name string) *Dispatcher {
	return &Dispatcher{name: name}
}

// Register the instance handling dtype. It overwrites any previous setting
// for the same dtype, and panics on a tag outside the enumeration -- that is
// a programming error, not a runtime condition.
func (d *Dispatcher) Register(dtype DType, fn FuncForDispatcher) {
	if dtype < 0 || int(dtype) >= NumDTypes {
		exceptions.Panicf("dtype %s cannot be registered in dispatcher %q", dtype, d.name)
	}
	d.table[dtype] = fn
}

// Dispatch calls the instance registered for dtype. Tags without a
// registered instance (Complex64, Complex128, anything outside the
// enumeration) yield a NotImplemented status.
func (d *Dispatcher) Dispatch(dtype DType, params ...any) (any, error) {
	if dtype < 0 || int(dtype) >= NumDTypes || d.table[dtype] == nil {
		return nil, status.Errorf(status.NotImplemented, "type %s is not supported in %s", dtype, d.name)
	}
	return d.table[dtype](params...), nil
}
