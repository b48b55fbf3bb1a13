// Copyright 2016 Aleksandr Demakin. All rights reserved.

package main

import (
	"context"
	"time"
	"unsafe"

	"github.com/nxgtw/go-rawshm/mapping"
	"github.com/nxgtw/go-rawshm/sync"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
)

const (
	counterSize = 8

	openRetryInterval = 10 * time.Millisecond
	openRetries       = 100
)

// shared is the set of objects every command works with.
type shared struct {
	h       *mapping.Handle
	mu      *sync.Mutex
	ev      *sync.Event
	counter unsafe.Pointer
}

// openShared creates or opens the mapping. A mapping, which is still being sized by its creator, is reopened.
func openShared(ctx context.Context, c *mapping.Conf) (*mapping.Handle, error) {
	var h *mapping.Handle
	op := func() error {
		var err error
		h, err = c.CreateOrOpen()
		if err != nil && !errors.Is(err, mapping.ErrMappingNotReady) {
			return backoff.Permanent(err)
		}
		return err
	}
	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(openRetryInterval), openRetries), ctx)
	if err := backoff.Retry(op, b); err != nil {
		return nil, errors.Wrap(err, "failed to create or open the mapping")
	}
	return h, nil
}

// bringUp formats the primitives, if h is the owner, or attaches to them otherwise.
func bringUp(ctx context.Context, h *mapping.Handle, manualReset bool, opts ...sync.Option) (*shared, error) {
	hdr, err := h.Header()
	if err != nil {
		return nil, err
	}
	cur := h.Cursor()
	mutexBase := cur.Ptr()
	if err = cur.Advance(sync.MutexSize); err != nil {
		return nil, err
	}
	counter, err := cur.Reserve(counterSize)
	if err != nil {
		return nil, err
	}
	result := &shared{h: h, counter: counter}
	if h.IsOwner() {
		if result.mu, _, err = sync.FormatMutex(mutexBase, counter, opts...); err != nil {
			return nil, errors.Wrap(err, "failed to format the mutex")
		}
		if result.ev, _, err = sync.FormatEvent(cur.Ptr(), manualReset, opts...); err != nil {
			return nil, errors.Wrap(err, "failed to format the event")
		}
		hdr.MarkReady()
		return result, nil
	}
	if err = hdr.WaitReady(ctx); err != nil {
		return nil, err
	}
	if result.mu, _, err = sync.AttachMutex(mutexBase, counter, opts...); err != nil {
		return nil, errors.Wrap(err, "failed to attach to the mutex")
	}
	if result.ev, _, err = sync.AttachEvent(cur.Ptr(), opts...); err != nil {
		return nil, errors.Wrap(err, "failed to attach to the event")
	}
	return result, nil
}

// openAndBringUp is openShared followed by bringUp. On failure the mapping is released.
func openAndBringUp(ctx context.Context, c *mapping.Conf, manualReset bool, opts ...sync.Option) (*shared, error) {
	h, err := openShared(ctx, c)
	if err != nil {
		return nil, err
	}
	s, err := bringUp(ctx, h, manualReset, opts...)
	if err != nil {
		h.Release()
		return nil, err
	}
	return s, nil
}

func (s *shared) value() uint64 {
	return *(*uint64)(s.counter)
}

// close destroys the mapping, if this process created it, or releases it otherwise.
func (s *shared) close() {
	if s.h.IsOwner() {
		if err := s.h.Destroy(); err != nil {
			rootLog.Error("failed to destroy the mapping", "err", err)
		}
		return
	}
	s.h.Release()
}
