// Copyright 2016 Aleksandr Demakin. All rights reserved.

package mapping

import (
	"context"
	"testing"
	"time"
	"unsafe"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestHeaderWaitReady(t *testing.T) {
	a := assert.New(t)
	var words [2]uint32
	hdr := NewHeader(unsafe.Pointer(&words[0]))
	a.False(hdr.IsReady())
	go func() {
		time.Sleep(20 * time.Millisecond)
		hdr.MarkReady()
	}()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	a.NoError(hdr.WaitReady(ctx))
	a.True(hdr.IsReady())
	a.NoError(hdr.WaitReady(context.Background()))
	hdr.Reset()
	a.False(hdr.IsReady())
}

func TestHeaderWaitReadyCanceled(t *testing.T) {
	var words [2]uint32
	hdr := NewHeader(unsafe.Pointer(&words[0]))
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	start := time.Now()
	err := hdr.WaitReady(ctx)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Less(t, time.Since(start), time.Second)
}
