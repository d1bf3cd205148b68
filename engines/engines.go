// Package engines defines the execution engine contract and a registry of
// engine implementations.
//
// An Engine consumes named input values and produces named output values.
// Engines register themselves in an init function, typically triggered by
// importing the engine package for the side effect, and are selected by
// name through a configuration string of the form "engine[:options]".
package engines

import (
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/goort/goort/status"
	"github.com/goort/goort/types/dtypes"
	"github.com/goort/goort/values"
)

// CPUExecutionProvider is the provider name engines pass to fences when
// executing on the host CPU.
const CPUExecutionProvider = "CPUExecutionProvider"

// ConfigEnvVar is the environment variable read by New to pick the engine
// configuration when the caller does not specify one.
const ConfigEnvVar = "GOORT_ENGINE"

// DefaultConfig is used when neither the caller nor the environment names
// an engine.
const DefaultConfig = "go"

// Info describes one named input or output of an engine.
type Info struct {
	Name  string
	Kind  values.Kind
	DType dtypes.DType

	// Dims holds the expected dimensions for tensors; -1 marks an axis
	// whose extent is only known at run time. Nil means any shape.
	Dims []int64
}

// RunOptions carries per-run settings. A nil *RunOptions is valid and
// means defaults.
type RunOptions struct {
	// Tag is a caller-chosen identifier attached to the run's log lines.
	Tag string

	// LogVerbosity raises the engine's log level for this run only.
	LogVerbosity int
}

// Verbosity returns the run's log verbosity, tolerating a nil receiver.
func (o *RunOptions) Verbosity() int {
	if o == nil {
		return 0
	}
	return o.LogVerbosity
}

// Engine executes a loaded model over named values.
//
// Run consumes feeds (matched to feedNames by position) and produces one
// value per fetchNames entry. A nil fetches slot receives a fresh
// engine-allocated value owned by the caller; a non-nil slot must be a
// preallocated tensor the engine writes in place. The engine signals the
// fence of every output it produces into.
type Engine interface {
	// Name identifies the engine implementation.
	Name() string

	// Inputs describes the model's inputs.
	Inputs() []Info

	// Outputs describes the model's outputs.
	Outputs() []Info

	// Run executes the model once.
	Run(opts *RunOptions, feedNames []string, feeds []*values.Value, fetchNames []string, fetches []*values.Value) error

	// Finalize releases the engine's resources. The engine is unusable
	// afterwards.
	Finalize()
}

// Constructor builds an engine from the options part of the configuration
// string (the part after "name:", possibly empty).
type Constructor func(options string) (Engine, error)

var (
	muRegistry sync.Mutex
	registry   = map[string]Constructor{}
)

// Register makes an engine constructor available under the given name.
// Registering the same name twice panics, it indicates duplicated init
// code.
func Register(name string, ctor Constructor) {
	muRegistry.Lock()
	defer muRegistry.Unlock()
	if _, found := registry[name]; found {
		exceptions.Panicf("engines: engine %q registered twice", name)
	}
	registry[name] = ctor
}

// List returns the registered engine names, sorted.
func List() []string {
	muRegistry.Lock()
	defer muRegistry.Unlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New builds an engine from the GOORT_ENGINE environment variable, falling
// back to the default configuration when it is unset.
func New() (Engine, error) {
	config := os.Getenv(ConfigEnvVar)
	if config == "" {
		config = DefaultConfig
	}
	return NewWithConfig(config)
}

// NewWithConfig builds an engine from a configuration string of the form
// "engine[:options]". The options substring is passed verbatim to the
// engine's constructor.
func NewWithConfig(config string) (Engine, error) {
	name, options := config, ""
	if idx := strings.Index(config, ":"); idx >= 0 {
		name, options = config[:idx], config[idx+1:]
	}
	muRegistry.Lock()
	ctor, found := registry[name]
	muRegistry.Unlock()
	if !found {
		return nil, status.Errorf(status.InvalidArgument,
			"unknown engine %q, available engines: %s", name, strings.Join(List(), ", "))
	}
	klog.V(1).Infof("engines: building engine %q (options %q)", name, options)
	engine, err := ctor(options)
	if err != nil {
		var statusErr *status.Error
		if errors.As(err, &statusErr) {
			return nil, err
		}
		return nil, status.WithCode(status.EngineError, err)
	}
	return engine, nil
}
