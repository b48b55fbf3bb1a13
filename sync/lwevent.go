// Copyright 2016 Aleksandr Demakin. All rights reserved.

package sync

import (
	"context"
	"math"
	"sync/atomic"
	"time"
)

const (
	cEventCleared  = uint32(0)
	cEventSignaled = uint32(1)

	cWakeAll = math.MaxInt32
)

// lwEvent is a lightweight event implementation operating on a uint32 memory cell.
// it tries to minimize amount of syscalls: set wakes anyone only if there are waiters.
// actual wait/wake must be implemented by a waitWaker object.
type lwEvent struct {
	state       *uint32
	waiters     *uint32
	manualReset bool
	ww          waitWaker
	opts        *options
}

func newLightweightEvent(state, waiters *uint32, manualReset bool, ww waitWaker, opts *options) *lwEvent {
	return &lwEvent{state: state, waiters: waiters, manualReset: manualReset, ww: ww, opts: opts}
}

func (e *lwEvent) init() {
	atomic.StoreUint32(e.waiters, 0)
	atomic.StoreUint32(e.state, cEventCleared)
}

func (e *lwEvent) set(signaled bool) error {
	if !signaled {
		atomic.StoreUint32(e.state, cEventCleared)
		return nil
	}
	atomic.StoreUint32(e.state, cEventSignaled)
	if atomic.LoadUint32(e.waiters) == 0 {
		return nil
	}
	count := uint32(1)
	if e.manualReset {
		count = cWakeAll
	}
	_, err := e.ww.wake(e.state, count)
	return err
}

// tryConsume returns true, if the event is signaled. For auto-reset events it also clears the state.
func (e *lwEvent) tryConsume() bool {
	if e.manualReset {
		return atomic.LoadUint32(e.state) == cEventSignaled
	}
	return atomic.CompareAndSwapUint32(e.state, cEventSignaled, cEventCleared)
}

// wait blocks until the event is signaled, the timeout elapses, or ctx is done.
// Negative timeout means infinite wait.
func (e *lwEvent) wait(ctx context.Context, timeout time.Duration) error {
	if e.tryConsume() {
		return nil
	}
	atomic.AddUint32(e.waiters, 1)
	defer atomic.AddUint32(e.waiters, ^uint32(0))
	var deadline time.Time
	if timeout >= 0 {
		deadline = time.Now().Add(timeout)
	}
	cancelable := ctx.Done() != nil
	for {
		if e.tryConsume() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		slice := time.Duration(-1)
		if cancelable {
			slice = e.opts.pollInterval
		}
		if timeout >= 0 {
			remaining := time.Until(deadline)
			if remaining <= 0 {
				return ErrTimeout
			}
			if slice < 0 || remaining < slice {
				slice = remaining
			}
		}
		if err := e.ww.wait(e.state, cEventCleared, slice); err != nil && err != errWaitTimeout {
			return err
		}
	}
}

func (e *lwEvent) signaled() bool {
	return atomic.LoadUint32(e.state) == cEventSignaled
}
