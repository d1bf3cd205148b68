package values

import (
	"sync/atomic"

	"k8s.io/klog/v2"
)

// Fence orders access to a value between producer and consumer execution
// contexts without taking locks in the value layer.
//
// The protocol is driven by the execution gateway: before a run it calls
// BeforeUsingAsInput on every input value and BeforeUsingAsOutput on every
// caller-supplied output value; after producing into a value the engine
// calls Signal; and before handing results back the gateway calls
// BeforeUsingAsInput on each output so the caller only ever observes
// completed data.
//
// provider names the execution provider about to touch the value and
// queueID selects its execution queue; implementations for devices with
// multiple hardware queues use both, the default CPU fence needs neither.
type Fence interface {
	// BeforeUsingAsInput blocks until any pending write to the value has
	// been signalled complete.
	BeforeUsingAsInput(provider string, queueID int)

	// BeforeUsingAsOutput marks the value as about to be written on the
	// given queue. Consumers calling BeforeUsingAsInput afterwards block
	// until Signal.
	BeforeUsingAsOutput(provider string, queueID int)

	// Signal marks the pending write as complete, releasing every blocked
	// consumer. Signalling with no pending write is a no-op.
	Signal(queueID int)
}

// CompletionFence is the default Fence: a single completion flag.
//
// BeforeUsingAsOutput arms the fence, Signal releases it, and
// BeforeUsingAsInput blocks while armed. Built on an atomic pointer to a
// channel so that readers of an unarmed fence never block and never
// contend on a lock.
type CompletionFence struct {
	pending atomic.Pointer[chan struct{}]
}

var _ Fence = (*CompletionFence)(nil)

// NewCompletionFence returns an unarmed fence: consumers pass through
// until a producer arms it.
func NewCompletionFence() *CompletionFence {
	return &CompletionFence{}
}

// BeforeUsingAsInput blocks until a pending write, if any, is signalled.
func (f *CompletionFence) BeforeUsingAsInput(provider string, queueID int) {
	if ch := f.pending.Load(); ch != nil {
		klog.V(3).Infof("fence: %s(queue %d) waiting on pending write", provider, queueID)
		<-*ch
	}
}

// BeforeUsingAsOutput arms the fence for an upcoming write. Re-arming an
// already armed fence releases the previous waiters, the new write
// supersedes the old one.
func (f *CompletionFence) BeforeUsingAsOutput(provider string, queueID int) {
	ch := make(chan struct{})
	if prev := f.pending.Swap(&ch); prev != nil {
		close(*prev)
	}
}

// Signal releases every consumer blocked in BeforeUsingAsInput.
func (f *CompletionFence) Signal(queueID int) {
	if ch := f.pending.Swap(nil); ch != nil {
		close(*ch)
	}
}
