// Copyright 2016 Aleksandr Demakin. All rights reserved.

package sync

import (
	"context"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/nxgtw/go-rawshm/internal/metrics"

	"github.com/pkg/errors"
)

const (
	eventMagic = 0x52455654

	eventWordState   = 1
	eventWordFlags   = 2
	eventWordWaiters = 3

	eventFlagManualReset = 1
)

// EventSize is the number of bytes used by an event control block.
const EventSize = controlBlockSize

// State is a state of an event.
type State int

// event states.
const (
	Cleared State = iota
	Signaled
)

func (s State) String() string {
	if s == Signaled {
		return "signaled"
	}
	return "cleared"
}

// Event is an event, whose state lives in shared memory.
// A set of an auto-reset event is delivered at least once: one successful wait clears it.
// A set of a manual-reset event releases all waiters, until the event is cleared.
type Event struct {
	lwe  *lwEvent
	opts options
}

// FormatEvent initializes a cleared event control block at base.
// It must be called by exactly one process. Returns the number of bytes used at base.
func FormatEvent(base unsafe.Pointer, manualReset bool, opts ...Option) (*Event, int, error) {
	block, err := controlBlockAt(base)
	if err != nil {
		return nil, 0, err
	}
	if err = block.beginFormat(eventMagic); err != nil {
		return nil, 0, err
	}
	var flags uint32
	if manualReset {
		flags |= eventFlagManualReset
	}
	atomic.StoreUint32(block.word(eventWordFlags), flags)
	e := newEvent(block, manualReset, opts)
	e.lwe.init()
	block.publish(eventMagic)
	return e, bytesUsed(), nil
}

// AttachEvent opens an event control block, which was formatted by another process.
// The reset policy is read from the block. Returns the number of bytes used at base.
func AttachEvent(base unsafe.Pointer, opts ...Option) (*Event, int, error) {
	block, err := controlBlockAt(base)
	if err != nil {
		return nil, 0, err
	}
	if err = block.checkFormatted(eventMagic); err != nil {
		return nil, 0, err
	}
	manualReset := atomic.LoadUint32(block.word(eventWordFlags))&eventFlagManualReset != 0
	return newEvent(block, manualReset, opts), bytesUsed(), nil
}

func newEvent(block *controlBlock, manualReset bool, opts []Option) *Event {
	e := &Event{opts: makeOptions(opts)}
	e.lwe = newLightweightEvent(block.word(eventWordState), block.word(eventWordWaiters), manualReset, newWaitWaker(), &e.opts)
	return e
}

// Set changes the state of the event. Setting Signaled wakes waiters.
func (e *Event) Set(state State) error {
	if err := e.lwe.set(state == Signaled); err != nil {
		return errors.Wrap(err, "failed to wake waiters")
	}
	metrics.EventSets.WithLabelValues(state.String()).Inc()
	return nil
}

// Wait waits for the event to become signaled not longer, than timeout. Negative timeout means infinite wait.
// It returns ErrTimeout, if the timeout elapsed.
func (e *Event) Wait(timeout time.Duration) error {
	return e.doWait(context.Background(), timeout)
}

// WaitContext waits for the event to become signaled until ctx is done.
func (e *Event) WaitContext(ctx context.Context) error {
	return e.doWait(ctx, Infinite)
}

func (e *Event) doWait(ctx context.Context, timeout time.Duration) error {
	err := e.lwe.wait(ctx, timeout)
	switch {
	case err == nil:
		metrics.EventWaits.WithLabelValues(metrics.ResultOK).Inc()
	case err == ErrTimeout:
		metrics.EventWaits.WithLabelValues(metrics.ResultTimeout).Inc()
	case ctx.Err() != nil:
		metrics.EventWaits.WithLabelValues(metrics.ResultCanceled).Inc()
	default:
		metrics.EventWaits.WithLabelValues(metrics.ResultError).Inc()
		err = errors.Wrap(err, "wait failed")
	}
	return err
}

// State returns current state of the event.
func (e *Event) State() State {
	if e.lwe.signaled() {
		return Signaled
	}
	return Cleared
}

// ManualReset returns true, if a successful wait doesn't clear the event.
func (e *Event) ManualReset() bool {
	return e.lwe.manualReset
}
