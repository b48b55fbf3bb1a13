// Copyright 2016 Aleksandr Demakin. All rights reserved.

//go:build darwin || freebsd || linux

package mapping

import (
	"os"
	"unsafe"

	"github.com/nxgtw/go-rawshm/internal/allocator"
	"github.com/nxgtw/go-rawshm/internal/logger"
	"github.com/nxgtw/go-rawshm/mmf"
	"github.com/nxgtw/go-rawshm/shm"

	"github.com/pkg/errors"
)

type unixRegion struct {
	obj    *shm.MemoryObject
	view   *mmf.MemoryRegion
	id     string
	base   unsafe.Pointer
	length int
}

func createRegion(id string, size int, perm os.FileMode, log *logger.Logger) (region, error) {
	obj, err := shm.NewMemoryObject(id, os.O_CREATE|os.O_EXCL|os.O_RDWR, perm)
	if err != nil {
		if os.IsExist(err) {
			return nil, errors.Wrapf(ErrMappingIDExists, "os id %q", id)
		}
		return nil, newOSError(ErrCreateFailed, "shm_open", err)
	}
	if err = obj.Truncate(int64(size)); err != nil {
		logIfFailed(log, id, "destroy", obj.Destroy())
		return nil, newOSError(ErrCreateFailed, "ftruncate", err)
	}
	view, err := mmf.NewMemoryRegion(obj, mmf.MEM_READWRITE, 0, size)
	if err != nil {
		logIfFailed(log, id, "destroy", obj.Destroy())
		return nil, newOSError(ErrCreateFailed, "mmap", err)
	}
	return newUnixRegion(obj, view, id), nil
}

func openRegion(id string, size int, strict bool, log *logger.Logger) (region, error) {
	obj, err := shm.NewMemoryObject(id, os.O_RDWR, 0)
	if err != nil {
		return nil, newOSError(ErrOpenFailed, "shm_open", err)
	}
	actual, err := obj.Size()
	if err != nil {
		logIfFailed(log, id, "close", obj.Close())
		return nil, newOSError(ErrOpenFailed, "fstat", err)
	}
	if actual == 0 {
		logIfFailed(log, id, "close", obj.Close())
		return nil, errors.Wrapf(ErrMappingNotReady, "os id %q has zero size", id)
	}
	if size, err = reconcileSize(size, int(actual), strict); err != nil {
		logIfFailed(log, id, "close", obj.Close())
		return nil, err
	}
	view, err := mmf.NewMemoryRegion(obj, mmf.MEM_READWRITE, 0, size)
	if err != nil {
		logIfFailed(log, id, "close", obj.Close())
		return nil, newOSError(ErrOpenFailed, "mmap", err)
	}
	return newUnixRegion(obj, view, id), nil
}

func newUnixRegion(obj *shm.MemoryObject, view *mmf.MemoryRegion, id string) *unixRegion {
	return &unixRegion{
		obj:    obj,
		view:   view,
		id:     id,
		base:   allocator.ByteSliceData(view.Data()),
		length: view.Size(),
	}
}

func (r *unixRegion) ptr() unsafe.Pointer {
	return r.base
}

func (r *unixRegion) size() int {
	return r.length
}

func (r *unixRegion) flush() error {
	return r.view.Flush(false)
}

func (r *unixRegion) unmap() error {
	return r.view.Close()
}

func (r *unixRegion) close() error {
	return r.obj.Close()
}

func (r *unixRegion) remove() error {
	return shm.DestroyMemoryObject(r.id)
}
