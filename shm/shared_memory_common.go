// Copyright 2015 Aleksandr Demakin. All rights reserved.

//go:build darwin || freebsd || linux

package shm

// this is to ensure, that all implementations of shm-related structs
// satisfy the same minimal interface.
var (
	_ iSharedMemoryObject = (*MemoryObject)(nil)
)

type iSharedMemoryObject interface {
	Name() string
	Size() (int64, error)
	Truncate(size int64) error
	Fd() uintptr
	Close() error
	Destroy() error
}
