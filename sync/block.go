// Copyright 2016 Aleksandr Demakin. All rights reserved.

package sync

import (
	"sync/atomic"
	"unsafe"

	"github.com/nxgtw/go-rawshm/internal/allocator"

	"github.com/pkg/errors"
)

// control blocks are arrays of four uint32 words. the first one is a magic value,
// which is written last by the formatter and checked by attachers.
const (
	controlBlockWords = 4
	controlBlockSize  = controlBlockWords * 4
	controlBlockAlign = 8

	wordMagic = 0
)

type controlBlock [controlBlockWords]uint32

func controlBlockAt(base unsafe.Pointer) (*controlBlock, error) {
	if base == nil {
		return nil, errors.New("nil control block address")
	}
	if !allocator.IsAligned(base, 4) {
		return nil, errors.Errorf("control block address %p is not aligned", base)
	}
	return (*controlBlock)(base), nil
}

func (b *controlBlock) word(idx int) *uint32 {
	return &b[idx]
}

// beginFormat checks, that the block is not formatted.
func (b *controlBlock) beginFormat(magic uint32) error {
	if atomic.LoadUint32(b.word(wordMagic)) == magic {
		return ErrAlreadyFormatted
	}
	return nil
}

// publish makes the block visible to attachers.
func (b *controlBlock) publish(magic uint32) {
	atomic.StoreUint32(b.word(wordMagic), magic)
}

func (b *controlBlock) checkFormatted(magic uint32) error {
	if atomic.LoadUint32(b.word(wordMagic)) != magic {
		return ErrNotFormatted
	}
	return nil
}

// bytesUsed returns the number of bytes consumed by a control block.
func bytesUsed() int {
	return allocator.AlignUp(controlBlockSize, controlBlockAlign)
}
