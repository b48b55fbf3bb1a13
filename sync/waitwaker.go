// Copyright 2016 Aleksandr Demakin. All rights reserved.

package sync

import (
	"runtime"
	"sync/atomic"
	"time"
)

const (
	spinWaitYields   = 100
	spinWaitInterval = 50 * time.Microsecond
)

// waitWaker implements wait/wake semantics on a uint32 memory cell.
type waitWaker interface {
	// wait blocks while *addr == value, for not longer, than timeout.
	// It returns errWaitTimeout, if the timeout elapsed. Spurious wakeups are possible.
	wait(addr *uint32, value uint32, timeout time.Duration) error
	// wake wakes up to count waiters blocked on addr.
	wake(addr *uint32, count uint32) (int, error)
}

// spinWaitWaker polls the memory cell.
type spinWaitWaker struct{}

func (spinWaitWaker) wait(addr *uint32, value uint32, timeout time.Duration) error {
	var deadline time.Time
	if timeout >= 0 {
		deadline = time.Now().Add(timeout)
	}
	for i := 0; atomic.LoadUint32(addr) == value; i++ {
		if timeout >= 0 && !time.Now().Before(deadline) {
			return errWaitTimeout
		}
		if i < spinWaitYields {
			runtime.Gosched()
		} else {
			time.Sleep(spinWaitInterval)
		}
	}
	return nil
}

func (spinWaitWaker) wake(addr *uint32, count uint32) (int, error) {
	return 0, nil
}
