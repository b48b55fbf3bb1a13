// Copyright 2016 Aleksandr Demakin. All rights reserved.

// Package sys contains windows calls missing in golang.org/x/sys/windows.
package sys

import (
	"syscall"
	"unsafe"

	"github.com/nxgtw/go-rawshm/internal/allocator"

	"golang.org/x/sys/windows"
)

var (
	modkernel32         = windows.NewLazySystemDLL("kernel32.dll")
	procOpenFileMapping = modkernel32.NewProc("OpenFileMappingW")
)

// OpenFileMapping is a wrapper for windows syscall.
// The returned error is a raw syscall.Errno, so that the caller can inspect its code.
func OpenFileMapping(access uint32, inheritHandle bool, name string) (windows.Handle, error) {
	namep, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return 0, err
	}
	var inherit uintptr
	if inheritHandle {
		inherit = 1
	}
	nameu := unsafe.Pointer(namep)
	r1, _, err := procOpenFileMapping.Call(uintptr(access), inherit, uintptr(nameu))
	allocator.Use(nameu)
	if r1 == 0 {
		if errno, ok := err.(syscall.Errno); ok && errno != 0 {
			return 0, errno
		}
		return 0, syscall.EINVAL
	}
	return windows.Handle(r1), nil
}
