// Copyright 2016 Aleksandr Demakin. All rights reserved.

package common

import (
	"syscall"

	"github.com/pkg/errors"
)

// SyscallErrHasCode returns true, if the error chain contains the given errno.
func SyscallErrHasCode(err error, code syscall.Errno) bool {
	errno, ok := Errno(err)
	return ok && errno == code
}

// Errno extracts a system error code from the error chain.
func Errno(err error) (syscall.Errno, bool) {
	if err == nil {
		return 0, false
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno, true
	}
	return 0, false
}

// ErrnoCode returns a numeric os error code for err, or 0, if there is none.
func ErrnoCode(err error) uint32 {
	if errno, ok := Errno(err); ok {
		return uint32(errno)
	}
	return 0
}
