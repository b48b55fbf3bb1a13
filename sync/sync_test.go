// Copyright 2016 Aleksandr Demakin. All rights reserved.

package sync

import (
	"sync/atomic"
	"testing"
	"time"
	"unsafe"

	"github.com/nxgtw/go-rawshm/internal/logger"

	"github.com/stretchr/testify/assert"
)

// testMemory returns zeroed heap memory, which is not moved by the runtime.
func testMemory(size int) unsafe.Pointer {
	mem := make([]uint64, (size+7)/8)
	return unsafe.Pointer(&mem[0])
}

func quiet(opts ...Option) []Option {
	return append([]Option{WithLogger(logger.Discard())}, opts...)
}

func TestSpinWaitWaker(t *testing.T) {
	a := assert.New(t)
	var ww spinWaitWaker
	cell := (*uint32)(testMemory(4))
	a.Equal(errWaitTimeout, ww.wait(cell, 0, 10*time.Millisecond))
	a.NoError(ww.wait(cell, 1, 10*time.Millisecond))
	go func() {
		time.Sleep(10 * time.Millisecond)
		atomic.StoreUint32(cell, 5)
	}()
	a.NoError(ww.wait(cell, 0, Infinite))
}

func TestOptions(t *testing.T) {
	a := assert.New(t)
	o := makeOptions([]Option{WithSpinCount(-1), WithPollInterval(0), WithOrphanTimeout(0), WithLivenessCheck(nil)})
	a.Equal(defaultSpinCount, o.spinCount)
	a.Equal(defaultPollInterval, o.pollInterval)
	a.Equal(defaultOrphanTimeout, o.orphanTimeout)
	a.NotNil(o.alive)
	o = makeOptions([]Option{WithSpinCount(0), WithPollInterval(time.Millisecond), WithOrphanTimeout(time.Minute)})
	a.Equal(0, o.spinCount)
	a.Equal(time.Millisecond, o.pollInterval)
	a.Equal(time.Minute, o.orphanTimeout)
}

func TestProcessAlive(t *testing.T) {
	assert.True(t, processAlive(int(currentPID)))
	assert.False(t, processAlive(1<<30))
}
