// Copyright 2015 Aleksandr Demakin. All rights reserved.

//go:build darwin || freebsd || linux

package mmf

import (
	"os"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

func init() {
	mmapOffsetMultiple = int64(os.Getpagesize())
}

type memoryRegion struct {
	data       []byte
	size       int
	pageOffset int64
}

func newMemoryRegion(obj Mappable, mode int, offset int64, size int) (*memoryRegion, error) {
	prot, flags, err := memProtAndFlagsFromMode(mode)
	if err != nil {
		return nil, errors.Wrap(err, "memory region flags check failed")
	}
	if size, err = checkMmapSize(obj, size); err != nil {
		return nil, errors.Wrap(err, "size check failed")
	}
	calculatedSize, err := fileSizeFromFd(obj)
	if err != nil {
		return nil, errors.Wrap(err, "file size check failed")
	}
	// we need this check on unix, because you can actually mmap more bytes,
	// then the size of the object, which can cause SIGBUS on access.
	if calculatedSize > 0 && int64(size)+offset > calculatedSize {
		return nil, errors.Errorf("invalid mapping length %d at offset %d for an object of size %d", size, offset, calculatedSize)
	}
	pageOffset := calcMmapOffsetFixup(offset)
	var data []byte
	if data, err = unix.Mmap(int(obj.Fd()), offset-pageOffset, size+int(pageOffset), prot, flags); err != nil {
		return nil, os.NewSyscallError("mmap", err)
	}
	return &memoryRegion{data: data, size: size, pageOffset: pageOffset}, nil
}

// Close unmaps the region. Subsequent calls are no-op.
func (region *memoryRegion) Close() error {
	if region.data == nil {
		return nil
	}
	err := unix.Munmap(region.data)
	region.data = nil
	region.pageOffset = 0
	region.size = 0
	if err != nil {
		return os.NewSyscallError("munmap", err)
	}
	return nil
}

func (region *memoryRegion) Data() []byte {
	if region.data == nil {
		return nil
	}
	return region.data[region.pageOffset:]
}

func (region *memoryRegion) Flush(async bool) error {
	if region.data == nil {
		return errors.New("region is closed")
	}
	flag := unix.MS_SYNC
	if async {
		flag = unix.MS_ASYNC
	}
	if err := unix.Msync(region.data, flag); err != nil {
		return os.NewSyscallError("msync", err)
	}
	return nil
}

func (region *memoryRegion) Size() int {
	return region.size
}

func memProtAndFlagsFromMode(mode int) (prot, flags int, err error) {
	switch mode {
	case MEM_READ_ONLY:
		prot = unix.PROT_READ
		flags = unix.MAP_SHARED
	case MEM_READWRITE:
		prot = unix.PROT_READ | unix.PROT_WRITE
		flags = unix.MAP_SHARED
	default:
		err = errors.Errorf("invalid memory region flags %d", mode)
	}
	return
}
