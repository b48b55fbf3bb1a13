// Copyright 2016 Aleksandr Demakin. All rights reserved.

package mapping

import (
	"os"
	"unsafe"

	"github.com/nxgtw/go-rawshm/internal/logger"
	sys "github.com/nxgtw/go-rawshm/internal/sys/windows"

	"github.com/pkg/errors"
	"golang.org/x/sys/windows"
)

const fileMapAllAccess = windows.FILE_MAP_READ | windows.FILE_MAP_WRITE

// windowsRegion is a view of a paging-file backed mapping.
// The kernel object is destroyed, when its last handle is closed.
type windowsRegion struct {
	handle windows.Handle
	addr   uintptr
	length int
}

func createRegion(id string, size int, _ os.FileMode, log *logger.Logger) (region, error) {
	name, err := windows.UTF16PtrFromString(id)
	if err != nil {
		return nil, newOSError(ErrCreateFailed, "CreateFileMapping", err)
	}
	high, low := uint32(uint64(size)>>32), uint32(uint64(size))
	handle, err := windows.CreateFileMapping(windows.InvalidHandle, nil, windows.PAGE_READWRITE, high, low, name)
	if err != nil {
		if handle != 0 {
			logIfFailed(log, id, "CloseHandle", windows.CloseHandle(handle))
		}
		if errors.Is(err, windows.ERROR_ALREADY_EXISTS) {
			return nil, errors.Wrapf(ErrMappingIDExists, "os id %q", id)
		}
		return nil, newOSError(ErrCreateFailed, "CreateFileMapping", err)
	}
	addr, err := windows.MapViewOfFile(handle, fileMapAllAccess, 0, 0, uintptr(size))
	if err != nil {
		logIfFailed(log, id, "CloseHandle", windows.CloseHandle(handle))
		return nil, newOSError(ErrCreateFailed, "MapViewOfFile", err)
	}
	return &windowsRegion{handle: handle, addr: addr, length: size}, nil
}

func openRegion(id string, size int, strict bool, log *logger.Logger) (region, error) {
	handle, err := sys.OpenFileMapping(fileMapAllAccess, false, id)
	if err != nil {
		return nil, newOSError(ErrOpenFailed, "OpenFileMapping", err)
	}
	addr, err := windows.MapViewOfFile(handle, fileMapAllAccess, 0, 0, 0)
	if err != nil {
		logIfFailed(log, id, "CloseHandle", windows.CloseHandle(handle))
		return nil, newOSError(ErrOpenFailed, "MapViewOfFile", err)
	}
	result := &windowsRegion{handle: handle, addr: addr}
	var info windows.MemoryBasicInformation
	if err = windows.VirtualQuery(addr, &info, unsafe.Sizeof(info)); err != nil {
		result.teardown(log, id)
		return nil, newOSError(ErrUnknownOS, "VirtualQuery", err)
	}
	if result.length, err = reconcileSize(size, int(info.RegionSize), strict); err != nil {
		result.teardown(log, id)
		return nil, err
	}
	return result, nil
}

func (r *windowsRegion) teardown(log *logger.Logger, id string) {
	logIfFailed(log, id, "UnmapViewOfFile", r.unmap())
	logIfFailed(log, id, "CloseHandle", r.close())
}

func (r *windowsRegion) ptr() unsafe.Pointer {
	return unsafe.Pointer(r.addr)
}

func (r *windowsRegion) size() int {
	return r.length
}

func (r *windowsRegion) flush() error {
	return windows.FlushViewOfFile(r.addr, uintptr(r.length))
}

func (r *windowsRegion) unmap() error {
	return windows.UnmapViewOfFile(r.addr)
}

func (r *windowsRegion) close() error {
	return windows.CloseHandle(r.handle)
}

func (r *windowsRegion) remove() error {
	return nil
}
