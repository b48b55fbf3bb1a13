// Copyright 2015 Aleksandr Demakin. All rights reserved.

//go:build darwin || freebsd || linux

package shm

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pkg/errors"
)

type memoryObject struct {
	file *os.File
	name string
}

func newMemoryObject(name string, flag int, perm os.FileMode) (*memoryObject, error) {
	path, err := shmName(name)
	if err != nil {
		return nil, err
	}
	file, err := shmOpen(path, flag|os.O_RDWR, perm)
	if err != nil {
		return nil, err
	}
	return &memoryObject{file: file, name: name}, nil
}

func (obj *memoryObject) Destroy() error {
	if err := obj.Close(); err != nil {
		return errors.Wrap(err, "close failed")
	}
	return destroyMemoryObject(obj.name)
}

func (obj *memoryObject) Name() string {
	if obj.name != "" {
		return obj.name
	}
	result := filepath.Base(obj.file.Name())
	// on darwin we do this trick due to
	// http://www.opensource.apple.com/source/Libc/Libc-320/sys/shm_open.c
	if runtime.GOOS == "darwin" {
		if idx := strings.LastIndex(result, "\t"); idx >= 0 {
			result = result[:idx]
		}
	}
	return result
}

// Close closes the object's descriptor. It is safe to call it more than once.
func (obj *memoryObject) Close() error {
	runtime.SetFinalizer(obj, nil)
	err := obj.file.Close()
	if err == nil || errors.Is(err, os.ErrClosed) {
		return nil
	}
	return err
}

func (obj *memoryObject) Truncate(size int64) error {
	return obj.file.Truncate(size)
}

// Size returns the current size of the object.
func (obj *memoryObject) Size() (int64, error) {
	fileInfo, err := obj.file.Stat()
	if err != nil {
		return 0, err
	}
	return fileInfo.Size(), nil
}

func (obj *memoryObject) Fd() uintptr {
	return obj.file.Fd()
}

func destroyMemoryObject(name string) error {
	path, err := shmName(name)
	if err != nil {
		return err
	}
	return doDestroyMemoryObject(path)
}
