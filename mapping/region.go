// Copyright 2016 Aleksandr Demakin. All rights reserved.

package mapping

import (
	"unsafe"

	"github.com/nxgtw/go-rawshm/internal/common"
)

// region is an os-backed view of a mapping.
// createRegion and openRegion are implemented for every supported platform.
type region interface {
	// ptr returns the address of the view.
	ptr() unsafe.Pointer
	// size returns the size of the view.
	size() int
	// flush writes modified pages of the view to the backing object.
	flush() error
	// unmap unmaps the view.
	unmap() error
	// close closes the os handle of this process.
	close() error
	// remove deletes the name of the mapping.
	remove() error
}

func newOSError(kind error, op string, err error) *OSError {
	return &OSError{Kind: kind, Op: op, Code: common.ErrnoCode(err), Err: err}
}

// reconcileSize returns the size of a view for an opened mapping.
// size 0 or a size greater, than the actual one, is replaced by the actual size,
// unless strict is set, in which case a greater size is an error.
func reconcileSize(requested, actual int, strict bool) (int, error) {
	if requested > actual {
		if strict {
			return 0, &SizeMismatchError{Requested: requested, Actual: actual}
		}
		return actual, nil
	}
	if requested <= 0 {
		return actual, nil
	}
	return requested, nil
}
