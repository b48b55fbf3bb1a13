// Copyright 2015 Aleksandr Demakin. All rights reserved.

//go:build darwin || freebsd || linux

package shm

import (
	"os"
	"runtime"
)

// MemoryObject represents an object which can be used to
// map shared memory regions into the process' address space.
type MemoryObject struct {
	*memoryObject
}

// NewMemoryObject creates or opens a shared memory object.
//	name - a name of the object. should not contain '/' and exceed 255 symbols.
//	flag - combination of open flags from 'os' package.
//	perm - object's mode and permission bits.
// Errors returned for O_EXCL and open-only calls satisfy os.IsExist and os.IsNotExist.
func NewMemoryObject(name string, flag int, perm os.FileMode) (*MemoryObject, error) {
	impl, err := newMemoryObject(name, flag, perm)
	if err != nil {
		return nil, err
	}
	result := &MemoryObject{impl}
	runtime.SetFinalizer(impl, func(memObject *memoryObject) {
		memObject.Close()
	})
	return result, nil
}

// DestroyMemoryObject permanently removes the object with the given name.
// It is not an error, if the object does not exist.
func DestroyMemoryObject(name string) error {
	return destroyMemoryObject(name)
}
