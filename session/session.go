// Package session is the execution gateway: it owns an engine, validates
// the caller's named feeds and fetches, drives the fence handshake around
// each run, and hands results back as values the caller owns.
//
// The split mirrors typical inference runtimes: an Env carries
// process-level configuration, a Session binds one engine instance, and
// Run moves named values in and out of it.
package session

import (
	"github.com/google/uuid"
	"k8s.io/klog/v2"

	"github.com/goort/goort/engines"
	"github.com/goort/goort/status"
	"github.com/goort/goort/values"
)

// Env carries process-level configuration shared by sessions.
type Env struct {
	id     uuid.UUID
	config Config
}

// NewEnv builds an Env configured from the process environment.
func NewEnv() (*Env, error) {
	config, err := ConfigFromEnv()
	if err != nil {
		return nil, err
	}
	return NewEnvWithConfig(config), nil
}

// NewEnvWithConfig builds an Env with an explicit configuration.
func NewEnvWithConfig(config Config) *Env {
	env := &Env{id: uuid.New(), config: config}
	klog.V(1).Infof("session: new env %s, engine config %q", env.id, config.Engine)
	return env
}

// ID uniquely identifies the Env instance, mostly for log correlation.
func (e *Env) ID() uuid.UUID { return e.id }

// Config returns the Env's configuration.
func (e *Env) Config() Config { return e.config }

// Session binds one engine instance and runs it over named values.
// Sessions are not safe for concurrent Run calls on the same value
// operands; distinct sessions are independent.
type Session struct {
	env    *Env
	engine engines.Engine
	id     uuid.UUID
}

// New builds a session running the engine named by the Env's
// configuration.
func New(env *Env) (*Session, error) {
	engine, err := engines.NewWithConfig(env.config.Engine)
	if err != nil {
		return nil, err
	}
	return NewWithEngine(env, engine), nil
}

// NewWithEngine builds a session over a caller-constructed engine. The
// session takes ownership: Finalize finalizes the engine.
func NewWithEngine(env *Env, engine engines.Engine) *Session {
	s := &Session{env: env, engine: engine, id: uuid.New()}
	klog.V(1).Infof("session: new session %s on engine %q", s.id, engine.Name())
	return s
}

// Engine returns the session's engine.
func (s *Session) Engine() engines.Engine { return s.engine }

// InputNames lists the engine's declared input names in order.
func (s *Session) InputNames() []string {
	infos := s.engine.Inputs()
	names := make([]string, len(infos))
	for i, info := range infos {
		names[i] = info.Name
	}
	return names
}

// OutputNames lists the engine's declared output names in order.
func (s *Session) OutputNames() []string {
	infos := s.engine.Outputs()
	names := make([]string, len(infos))
	for i, info := range infos {
		names[i] = info.Name
	}
	return names
}

// Finalize releases the session and its engine.
func (s *Session) Finalize() {
	s.engine.Finalize()
}

// Run executes the engine once.
//
// feeds are matched to feedNames by position, fetchNames name the outputs
// to produce. fetches may be nil, meaning every output is freshly
// allocated by the engine, or a slice of len(fetchNames) whose non-nil
// entries are preallocated tensors written in place.
//
// Validation happens before the engine is touched: name/value count
// mismatches, empty names and nil feeds all fail with InvalidArgument
// without invoking the engine. Engine failures are returned unchanged.
//
// Fences are honored around the run: every feed's fence is waited on as
// input, every preallocated fetch's fence is armed as output, and every
// returned value's fence is waited on before Run returns, so the caller
// only observes completed data.
func (s *Session) Run(opts *engines.RunOptions, feedNames []string, feeds []*values.Value,
	fetchNames []string, fetches []*values.Value) (_ []*values.Value, err error) {
	defer status.RecoverInto(&err)

	if len(feedNames) != len(feeds) {
		return nil, status.Errorf(status.InvalidArgument,
			"got %d input names for %d inputs", len(feedNames), len(feeds))
	}
	for i, name := range feedNames {
		if name == "" {
			return nil, status.New(status.InvalidArgument, "input name cannot be empty")
		}
		if feeds[i] == nil {
			return nil, status.Errorf(status.InvalidArgument,
				"nil input supplied for input %q", name)
		}
	}
	for _, name := range fetchNames {
		if name == "" {
			return nil, status.New(status.InvalidArgument, "output name cannot be empty")
		}
	}
	if fetches == nil {
		fetches = make([]*values.Value, len(fetchNames))
	} else if len(fetches) != len(fetchNames) {
		return nil, status.Errorf(status.InvalidArgument,
			"got %d output names for %d output slots", len(fetchNames), len(fetches))
	}

	// Pre-run fence handshake: wait for producers of the inputs, mark the
	// preallocated outputs as about to be written.
	const queueID = 0
	for _, v := range feeds {
		if fence := v.Fence(); fence != nil {
			fence.BeforeUsingAsInput(engines.CPUExecutionProvider, queueID)
		}
	}
	for _, v := range fetches {
		if v == nil {
			continue
		}
		if fence := v.Fence(); fence != nil {
			fence.BeforeUsingAsOutput(engines.CPUExecutionProvider, queueID)
		}
	}

	if opts == nil && s.env.config.LogVerbosity > 0 {
		opts = &engines.RunOptions{LogVerbosity: s.env.config.LogVerbosity}
	}
	klog.V(2).Infof("session %s: run feeds=%v fetches=%v", s.id, feedNames, fetchNames)
	if err := s.engine.Run(opts, feedNames, feeds, fetchNames, fetches); err != nil {
		return nil, err
	}

	// Post-run: outputs may still have pending writes on engines with
	// asynchronous queues; wait before handing them to the caller.
	for _, v := range fetches {
		if v == nil {
			continue
		}
		if fence := v.Fence(); fence != nil {
			fence.BeforeUsingAsInput(engines.CPUExecutionProvider, queueID)
		}
	}
	return fetches, nil
}
