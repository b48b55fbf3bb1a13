// Copyright 2016 Aleksandr Demakin. All rights reserved.

package sync

import (
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/nxgtw/go-rawshm/internal/allocator"
	"github.com/nxgtw/go-rawshm/internal/metrics"

	"github.com/pkg/errors"
)

const (
	mutexMagic = 0x524d5458

	mutexWordState  = 1
	mutexWordHolder = 2
)

// MutexSize is the number of bytes used by a mutex control block.
const MutexSize = controlBlockSize

// Infinite is a timeout, which never elapses.
const Infinite = time.Duration(-1)

// Mutex is a mutex, whose state lives in shared memory.
// It protects data located at an arbitrary address, usually right after the control block.
type Mutex struct {
	lwm  *lwMutex
	data unsafe.Pointer
	opts options
}

// FormatMutex initializes a mutex control block at base, which protects data.
// It must be called by exactly one process. Returns the number of bytes used at base.
func FormatMutex(base, data unsafe.Pointer, opts ...Option) (*Mutex, int, error) {
	m, block, err := newMutex(base, data, opts)
	if err != nil {
		return nil, 0, err
	}
	if err = block.beginFormat(mutexMagic); err != nil {
		return nil, 0, err
	}
	m.lwm.init()
	block.publish(mutexMagic)
	return m, bytesUsed(), nil
}

// AttachMutex opens a mutex control block, which was formatted by another process.
// It does not write into the block. Returns the number of bytes used at base.
func AttachMutex(base, data unsafe.Pointer, opts ...Option) (*Mutex, int, error) {
	m, block, err := newMutex(base, data, opts)
	if err != nil {
		return nil, 0, err
	}
	if err = block.checkFormatted(mutexMagic); err != nil {
		return nil, 0, err
	}
	return m, bytesUsed(), nil
}

func newMutex(base, data unsafe.Pointer, opts []Option) (*Mutex, *controlBlock, error) {
	block, err := controlBlockAt(base)
	if err != nil {
		return nil, nil, err
	}
	if overlaps(base, data) {
		return nil, nil, ErrDataOverlap
	}
	m := &Mutex{data: data, opts: makeOptions(opts)}
	m.lwm = newLightweightMutex(block.word(mutexWordState), block.word(mutexWordHolder), newWaitWaker(), &m.opts)
	return m, block, nil
}

func overlaps(base, data unsafe.Pointer) bool {
	return data != nil && uintptr(data) >= uintptr(base) && uintptr(data) < uintptr(base)+controlBlockSize
}

// Lock locks the mutex waiting not longer, than timeout. Negative timeout means infinite wait.
// If the previous holder died without unlocking, Lock returns a valid guard along with ErrAbandoned.
// The data may be inconsistent in this case, and the guard must be unlocked as usual.
func (m *Mutex) Lock(timeout time.Duration) (*Guard, error) {
	abandoned, err := m.lwm.lock(timeout)
	if err != nil {
		if err == ErrTimeout {
			metrics.LockAcquired.WithLabelValues(metrics.ResultTimeout).Inc()
			return nil, err
		}
		metrics.LockAcquired.WithLabelValues(metrics.ResultError).Inc()
		return nil, errors.Wrap(err, "lock failed")
	}
	if abandoned {
		metrics.LockAcquired.WithLabelValues(metrics.ResultAbandoned).Inc()
		return &Guard{m: m}, ErrAbandoned
	}
	metrics.LockAcquired.WithLabelValues(metrics.ResultOK).Inc()
	return &Guard{m: m}, nil
}

// TryLock makes one attempt to lock the mutex.
func (m *Mutex) TryLock() (*Guard, bool) {
	if !m.lwm.tryLock() {
		return nil, false
	}
	metrics.LockAcquired.WithLabelValues(metrics.ResultOK).Inc()
	return &Guard{m: m}, true
}

// Do runs f with the mutex locked. The mutex is unlocked on every exit path, including a panic in f.
// If the mutex was abandoned, f is not called: the recovered mutex is unlocked, and ErrAbandoned is returned.
func (m *Mutex) Do(timeout time.Duration, f func(data unsafe.Pointer) error) (err error) {
	g, err := m.Lock(timeout)
	if err != nil {
		if err == ErrAbandoned {
			if unlockErr := g.Unlock(); unlockErr != nil {
				return unlockErr
			}
		}
		return err
	}
	defer func() {
		if unlockErr := g.Unlock(); err == nil {
			err = unlockErr
		}
	}()
	return f(g.Data())
}

// Holder returns the pid of the process, which holds the mutex, or 0.
func (m *Mutex) Holder() int {
	return m.lwm.holderPID()
}

// Locked returns true, if the mutex is locked by anyone.
func (m *Mutex) Locked() bool {
	return m.lwm.locked()
}

// Guard represents held exclusive access to the data protected by a mutex.
type Guard struct {
	m        *Mutex
	released atomic.Bool
}

// Data returns the address of the protected data.
func (g *Guard) Data() unsafe.Pointer {
	return g.m.data
}

// Bytes returns n bytes of the protected data.
func (g *Guard) Bytes(n int) []byte {
	return allocator.ByteSliceFromUnsafePointer(g.m.data, n)
}

// Unlock unlocks the mutex. Subsequent calls are no-op.
func (g *Guard) Unlock() error {
	if !g.released.CompareAndSwap(false, true) {
		return nil
	}
	return g.m.lwm.unlock()
}
