// Copyright 2016 Aleksandr Demakin. All rights reserved.

package sync

import (
	"sync/atomic"
	"time"
)

const (
	cInplaceMutexUnlocked          = uint32(0)
	cInplaceMutexLockedNoWaiters   = uint32(1)
	cInplaceMutexLockedHaveWaiters = uint32(2)
)

// lwMutex is a lightweight mutex implementation operating on a uint32 memory cell.
// it tries to minimize amount of syscalls needed to do locking.
// actual sleeping must be implemented by a waitWaker object.
// the pid of the holder is kept in a separate cell, so that waiters could detect its death.
type lwMutex struct {
	state  *uint32
	holder *uint32
	ww     waitWaker
	opts   *options
}

func newLightweightMutex(state, holder *uint32, ww waitWaker, opts *options) *lwMutex {
	return &lwMutex{state: state, holder: holder, ww: ww, opts: opts}
}

// init writes initial values into mutex's memory location.
func (im *lwMutex) init() {
	atomic.StoreUint32(im.holder, 0)
	atomic.StoreUint32(im.state, cInplaceMutexUnlocked)
}

func (im *lwMutex) tryLock() bool {
	if atomic.CompareAndSwapUint32(im.state, cInplaceMutexUnlocked, cInplaceMutexLockedNoWaiters) {
		atomic.StoreUint32(im.holder, currentPID)
		return true
	}
	return false
}

// lock acquires the mutex. Negative timeout means infinite wait.
// abandoned is true, if the mutex was taken over from a dead process.
func (im *lwMutex) lock(timeout time.Duration) (abandoned bool, err error) {
	for i := 0; i < im.opts.spinCount; i++ {
		if im.tryLock() {
			return false, nil
		}
	}
	var deadline time.Time
	if timeout >= 0 {
		deadline = time.Now().Add(timeout)
	}
	var orphanSince time.Time
	old := atomic.LoadUint32(im.state)
	if old != cInplaceMutexLockedHaveWaiters {
		old = atomic.SwapUint32(im.state, cInplaceMutexLockedHaveWaiters)
	}
	for old != cInplaceMutexUnlocked {
		slice := im.opts.pollInterval
		if timeout >= 0 {
			slice = min(slice, time.Until(deadline))
			if slice <= 0 {
				return false, ErrTimeout
			}
		}
		err := im.ww.wait(im.state, cInplaceMutexLockedHaveWaiters, slice)
		if err != nil && err != errWaitTimeout {
			return false, err
		}
		if err == nil {
			// woken up by an unlock, so the mutex is not orphaned.
			orphanSince = time.Time{}
		} else if im.takeOver(&orphanSince) {
			return true, nil
		}
		old = atomic.SwapUint32(im.state, cInplaceMutexLockedHaveWaiters)
	}
	atomic.StoreUint32(im.holder, currentPID)
	return false, nil
}

// takeOver makes the caller the holder, if the current holder is dead.
// A locked mutex without a holder pid belongs to a process, which died between updating
// the state and the holder words. It is taken over, if it stays so for orphanTimeout.
// The mutex stays locked, and is marked as having waiters.
func (im *lwMutex) takeOver(orphanSince *time.Time) bool {
	holder := atomic.LoadUint32(im.holder)
	if atomic.LoadUint32(im.state) == cInplaceMutexUnlocked {
		*orphanSince = time.Time{}
		return false
	}
	if holder == 0 {
		if orphanSince.IsZero() {
			*orphanSince = time.Now()
			return false
		}
		if time.Since(*orphanSince) < im.opts.orphanTimeout {
			return false
		}
	} else {
		*orphanSince = time.Time{}
		if im.opts.alive(int(holder)) {
			return false
		}
	}
	if !atomic.CompareAndSwapUint32(im.holder, holder, currentPID) {
		return false
	}
	atomic.StoreUint32(im.state, cInplaceMutexLockedHaveWaiters)
	im.opts.log.Warn("mutex taken over from a dead process", "pid", holder)
	return true
}

func (im *lwMutex) unlock() error {
	if atomic.LoadUint32(im.state) == cInplaceMutexUnlocked {
		return ErrUnlocked
	}
	atomic.StoreUint32(im.holder, 0)
	if atomic.SwapUint32(im.state, cInplaceMutexUnlocked) != cInplaceMutexLockedHaveWaiters {
		return nil
	}
	_, err := im.ww.wake(im.state, 1)
	return err
}

func (im *lwMutex) holderPID() int {
	return int(atomic.LoadUint32(im.holder))
}

func (im *lwMutex) locked() bool {
	return atomic.LoadUint32(im.state) != cInplaceMutexUnlocked
}
