// Copyright 2016 Aleksandr Demakin. All rights reserved.

package mapping

import (
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/nxgtw/go-rawshm/internal/allocator"
	"github.com/nxgtw/go-rawshm/internal/logger"
	"github.com/nxgtw/go-rawshm/internal/metrics"

	"github.com/pkg/errors"
)

// Handle is a view of a named shared memory mapping in the current process.
// It is safe to call its methods from multiple goroutines.
type Handle struct {
	id     string
	flink  string
	size   int
	owner  atomic.Bool
	region region
	once   sync.Once
	log    *logger.Logger
}

func newHandle(id, flink string, r region, owner bool, log *logger.Logger) *Handle {
	h := &Handle{
		id:     id,
		flink:  flink,
		size:   r.size(),
		region: r,
		log:    log,
	}
	h.owner.Store(owner)
	return h
}

// Name returns os id of the mapping.
func (h *Handle) Name() string {
	return h.id
}

// Flink returns the path of the link file, or "" if the mapping has no link file.
func (h *Handle) Flink() string {
	return h.flink
}

// Size returns the size of the view.
// For opened mappings it may differ from the requested size.
func (h *Handle) Size() int {
	return h.size
}

// IsOwner returns true, if the handle is responsible for unmapping the view.
func (h *Handle) IsOwner() bool {
	return h.owner.Load()
}

// SetOwner changes the ownership of the handle and returns the previous value.
// The caller must ensure, that exactly one handle ends up responsible for unmapping.
func (h *Handle) SetOwner(owner bool) bool {
	return h.owner.Swap(owner)
}

// Ptr returns the base address of the view.
// It must not be used after the owner has released the mapping.
func (h *Handle) Ptr() unsafe.Pointer {
	return h.region.ptr()
}

// Bytes returns the view as a byte slice.
func (h *Handle) Bytes() []byte {
	return allocator.ByteSliceFromUnsafePointer(h.region.ptr(), h.size)
}

// Header returns the initialization flag stored at the beginning of the mapping.
func (h *Handle) Header() (*Header, error) {
	if h.size < HeaderSize {
		return nil, errors.Errorf("mapping of %d bytes can't hold a header", h.size)
	}
	return NewHeader(h.region.ptr()), nil
}

// Cursor returns a new cursor positioned right after the header.
func (h *Handle) Cursor() *Cursor {
	offset := HeaderSize
	if h.size < offset {
		offset = h.size
	}
	return NewCursor(h.region.ptr(), h.size, offset)
}

// Flush synchronously writes modified pages of the view to the mapping's backing object.
func (h *Handle) Flush() error {
	if err := h.region.flush(); err != nil {
		return newOSError(ErrUnknownOS, "flush", err)
	}
	return nil
}

// Release unmaps the view, if the handle is an owner, and closes the os handle.
// Only the first call has effect. Failures are logged.
func (h *Handle) Release() {
	h.once.Do(func() {
		if h.owner.Load() {
			if err := h.region.unmap(); err != nil {
				logIfFailed(h.log, h.id, "unmap", err)
			} else {
				metrics.MappingsUnmapped.Inc()
			}
		}
		if err := h.region.close(); err != nil {
			logIfFailed(h.log, h.id, "close", err)
		} else {
			metrics.HandlesClosed.Inc()
		}
		h.log.Debug("mapping released", "id", h.id, "owner", h.owner.Load())
	})
}

// Destroy releases the handle and removes the name of the mapping and its link file.
// Processes, which have already mapped it, keep their views.
func (h *Handle) Destroy() error {
	h.Release()
	var result error
	if err := h.region.remove(); err != nil {
		result = errors.Wrapf(err, "failed to remove mapping %q", h.id)
	}
	if h.flink != "" {
		if err := removeLink(h.flink); err != nil && result == nil {
			result = err
		}
	}
	return result
}

func logIfFailed(log *logger.Logger, id, op string, err error) {
	if err == nil {
		return
	}
	metrics.TeardownErrors.WithLabelValues(op).Inc()
	log.Error("mapping teardown failed", "id", id, "op", op, "err", err)
}
