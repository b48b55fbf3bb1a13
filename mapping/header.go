// Copyright 2016 Aleksandr Demakin. All rights reserved.

package mapping

import (
	"context"
	"runtime"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
)

// HeaderSize is the number of bytes reserved at the beginning of a mapping for its Header.
const HeaderSize = 8

const (
	headerNotReady = 0
	headerReady    = 1

	readySpinCount   = 100
	readyMinInterval = 50 * time.Microsecond
	readyMaxInterval = 10 * time.Millisecond
)

var errHeaderNotReady = errors.New("mapping header is not ready")

// Header is an initialization flag in shared memory.
// The formatter of a mapping calls MarkReady after all its control blocks are formatted.
// Other processes must observe IsReady before attaching to them.
type Header struct {
	flag *uint32
}

// NewHeader returns a header located at p. p must be 4-byte aligned.
func NewHeader(p unsafe.Pointer) *Header {
	return &Header{flag: (*uint32)(p)}
}

// MarkReady publishes all writes made before it to processes, which observe IsReady.
func (hdr *Header) MarkReady() {
	atomic.StoreUint32(hdr.flag, headerReady)
}

// Reset marks the header as not ready.
func (hdr *Header) Reset() {
	atomic.StoreUint32(hdr.flag, headerNotReady)
}

// IsReady returns true, if the mapping was marked as ready.
func (hdr *Header) IsReady() bool {
	return atomic.LoadUint32(hdr.flag) == headerReady
}

// WaitReady spins for a while waiting for the flag, and then polls it with exponential backoff
// until the flag is set, or ctx is done.
func (hdr *Header) WaitReady(ctx context.Context) error {
	for i := 0; i < readySpinCount; i++ {
		if hdr.IsReady() {
			return nil
		}
		runtime.Gosched()
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = readyMinInterval
	b.MaxInterval = readyMaxInterval
	b.MaxElapsedTime = 0
	err := backoff.Retry(func() error {
		if hdr.IsReady() {
			return nil
		}
		return errHeaderNotReady
	}, backoff.WithContext(b, ctx))
	if err != nil {
		return errors.Wrap(err, "wait for mapping header")
	}
	return nil
}
