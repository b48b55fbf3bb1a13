// Copyright 2016 Aleksandr Demakin. All rights reserved.

package sync

import (
	"os"
	"time"
	"unsafe"

	"github.com/nxgtw/go-rawshm/internal/allocator"
	"github.com/nxgtw/go-rawshm/internal/common"

	"golang.org/x/sys/unix"
)

// the futex word lives in shared memory, so the private flag is never set.
const (
	cFUTEX_WAIT = 0
	cFUTEX_WAKE = 1
)

// futexWait checks if the value equals futex's value.
// If it doesn't, it returns EWOULDBLOCK.
// Otherwise, it waits for the Wake call on the futex for not longer, than timeout.
// Negative timeout means infinite wait.
func futexWait(addr unsafe.Pointer, value uint32, timeout time.Duration) error {
	var deadline time.Time
	if timeout >= 0 {
		deadline = time.Now().Add(timeout)
	}
	fun := func() error {
		var ts *unix.Timespec
		if timeout >= 0 {
			ts = common.TimeoutToTimeSpec(max(time.Until(deadline), 0))
		}
		_, err := futex(addr, cFUTEX_WAIT, value, unsafe.Pointer(ts))
		return err
	}
	return common.UninterruptedSyscall(fun)
}

// futexWake wakes count threads waiting on the futex.
// Returns the number of woken threads.
func futexWake(addr unsafe.Pointer, count uint32) (int, error) {
	var woken int32
	fun := func() error {
		var err error
		woken, err = futex(addr, cFUTEX_WAKE, count, nil)
		return err
	}
	if err := common.UninterruptedSyscall(fun); err != nil {
		return 0, err
	}
	return int(woken), nil
}

func futex(addr unsafe.Pointer, op int32, val uint32, ts unsafe.Pointer) (int32, error) {
	r1, _, err := unix.Syscall6(unix.SYS_FUTEX,
		uintptr(addr),
		uintptr(op),
		uintptr(val),
		uintptr(ts),
		0,
		0)
	allocator.Use(addr)
	allocator.Use(ts)
	if err != 0 {
		return 0, os.NewSyscallError("FUTEX", err)
	}
	return int32(r1), nil
}
