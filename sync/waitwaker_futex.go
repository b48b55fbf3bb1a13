// Copyright 2016 Aleksandr Demakin. All rights reserved.

//go:build freebsd || linux

package sync

import (
	"time"
	"unsafe"

	"github.com/nxgtw/go-rawshm/internal/common"
)

// futexWaitWaker sleeps in the kernel. The memory cell may be shared between processes.
type futexWaitWaker struct{}

func newWaitWaker() waitWaker {
	return futexWaitWaker{}
}

func (futexWaitWaker) wait(addr *uint32, value uint32, timeout time.Duration) error {
	err := futexWait(unsafe.Pointer(addr), value, timeout)
	switch {
	case err == nil, common.IsWouldBlockErr(err):
		return nil
	case common.IsTimeoutErr(err):
		return errWaitTimeout
	}
	return err
}

func (futexWaitWaker) wake(addr *uint32, count uint32) (int, error) {
	return futexWake(unsafe.Pointer(addr), count)
}
