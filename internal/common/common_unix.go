// Copyright 2016 Aleksandr Demakin. All rights reserved.

//go:build darwin || dragonfly || freebsd || linux || netbsd || openbsd || solaris

package common

import (
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// TimeoutToTimeSpec converts a timeout into a relative timespec.
// It returns nil for negative timeouts, which mean 'wait forever'.
func TimeoutToTimeSpec(timeout time.Duration) *unix.Timespec {
	if timeout >= 0 {
		ts := unix.NsecToTimespec(timeout.Nanoseconds())
		return &ts
	}
	return nil
}

// IsInterruptedSyscallErr returns true, if the syscall was interrupted by a signal.
func IsInterruptedSyscallErr(err error) bool {
	return SyscallErrHasCode(err, syscall.EINTR)
}

// IsTimeoutErr returns true, if a blocking syscall returned because its timeout elapsed.
func IsTimeoutErr(err error) bool {
	return SyscallErrHasCode(err, syscall.ETIMEDOUT)
}

// IsWouldBlockErr returns true, if the syscall refused to block, because the watched value changed.
func IsWouldBlockErr(err error) bool {
	return SyscallErrHasCode(err, syscall.EWOULDBLOCK)
}

// UninterruptedSyscall repeats f while it fails with EINTR.
func UninterruptedSyscall(f func() error) error {
	for {
		err := f()
		if !IsInterruptedSyscallErr(err) {
			return err
		}
	}
}
