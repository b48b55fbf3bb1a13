// Copyright 2015 Aleksandr Demakin. All rights reserved.

//go:build darwin || freebsd || linux

package mmf

import (
	"os"

	"github.com/pkg/errors"
)

// memory region modes.
const (
	MEM_READ_ONLY = 0x00000001
	MEM_READWRITE = 0x00000004
)

var (
	mmapOffsetMultiple int64
)

// Mappable is an object, which can return a handle,
// that can be used as a file descriptor for mmap.
type Mappable interface {
	Fd() uintptr
}

// MemoryRegion is a mmapped area of a memory object.
// The region is not unmapped by the gc. It must be closed explicitly,
// as its memory may be referenced by raw pointers, which the gc doesn't track.
type MemoryRegion struct {
	*memoryRegion
}

// NewMemoryRegion creates a new shared memory region.
//	object - an object to mmap.
//	mode - open mode. see MEM_* constants.
//	offset - offset in bytes from the beginning of the mmaped file.
//	size - mapping size. 0 means the size of the object.
func NewMemoryRegion(object Mappable, mode int, offset int64, size int) (*MemoryRegion, error) {
	impl, err := newMemoryRegion(object, mode, offset, size)
	if err != nil {
		return nil, err
	}
	return &MemoryRegion{impl}, nil
}

// Close unmaps the region so that it cannot be longer used.
func (region *MemoryRegion) Close() error {
	return region.memoryRegion.Close()
}

// Data returns region's mapped data.
func (region *MemoryRegion) Data() []byte {
	return region.memoryRegion.Data()
}

// Flush syncs mapped content with the file data.
func (region *MemoryRegion) Flush(async bool) error {
	return region.memoryRegion.Flush(async)
}

// Size returns mapping size.
func (region *MemoryRegion) Size() int {
	return region.memoryRegion.Size()
}

// calcMmapOffsetFixup returns a value X,
// so that offset - X is a valid mmap offset.
// typically the value of the fixup is a memory page size.
func calcMmapOffsetFixup(offset int64) int64 {
	return offset - (offset/mmapOffsetMultiple)*mmapOffsetMultiple
}

// fileInfoGetter is used to obtain file's size.
type fileInfoGetter interface {
	Stat() (os.FileInfo, error)
}

// sizer is implemented by shared memory objects.
type sizer interface {
	Size() (int64, error)
}

func fileSizeFromFd(f Mappable) (int64, error) {
	switch typed := f.(type) {
	case fileInfoGetter:
		fi, err := typed.Stat()
		if err != nil {
			return 0, err
		}
		return fi.Size(), nil
	case sizer:
		return typed.Size()
	}
	return 0, nil
}

func checkMmapSize(f Mappable, size int) (int, error) {
	if size < 0 {
		return 0, errors.Errorf("invalid mapping size %d", size)
	}
	if size == 0 {
		sz, err := fileSizeFromFd(f)
		if err != nil {
			return 0, err
		}
		if sz == 0 {
			return 0, errors.New("must provide a valid file size")
		}
		size = int(sz)
	}
	return size, nil
}
