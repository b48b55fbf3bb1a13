// Copyright 2016 Aleksandr Demakin. All rights reserved.

package mapping

import (
	"unsafe"

	"github.com/nxgtw/go-rawshm/internal/allocator"

	"github.com/pkg/errors"
)

// CursorAlign is the alignment of every reservation made with a Cursor.
const CursorAlign = 8

// Cursor tracks the next free offset within a memory block.
// Control blocks and payloads are placed one after another by advancing it.
type Cursor struct {
	base   unsafe.Pointer
	size   int
	offset int
}

// NewCursor returns a cursor over size bytes at base, positioned at offset.
func NewCursor(base unsafe.Pointer, size, offset int) *Cursor {
	return &Cursor{base: base, size: size, offset: offset}
}

// Offset returns current offset from the beginning of the block.
func (c *Cursor) Offset() int {
	return c.offset
}

// Remaining returns the number of free bytes.
func (c *Cursor) Remaining() int {
	return c.size - c.offset
}

// Ptr returns the address at current offset.
func (c *Cursor) Ptr() unsafe.Pointer {
	return allocator.AdvancePointer(c.base, uintptr(c.offset))
}

// Advance moves the cursor by n bytes rounded up to CursorAlign.
func (c *Cursor) Advance(n int) error {
	if n < 0 {
		return errors.Errorf("invalid advance %d", n)
	}
	next := c.offset + allocator.AlignUp(n, CursorAlign)
	if next > c.size {
		if c.offset+n > c.size {
			return errors.Wrapf(ErrNoSpace, "%d bytes requested, %d left", n, c.Remaining())
		}
		next = c.size
	}
	c.offset = next
	return nil
}

// Reserve returns the address at current offset and advances the cursor by n.
func (c *Cursor) Reserve(n int) (unsafe.Pointer, error) {
	p := c.Ptr()
	if err := c.Advance(n); err != nil {
		return nil, err
	}
	return p, nil
}
