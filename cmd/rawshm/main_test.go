// Copyright 2016 Aleksandr Demakin. All rights reserved.

package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"
	"unsafe"

	testutil "github.com/nxgtw/go-rawshm/internal/test"
	"github.com/nxgtw/go-rawshm/mapping"
	"github.com/nxgtw/go-rawshm/sync"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const appTimeout = 2 * time.Minute

func testID(t *testing.T) string {
	return fmt.Sprintf("rawshm-cmd-%s-%d", t.Name(), os.Getpid())
}

func newOwner(t *testing.T, id string) *shared {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s, err := openAndBringUp(ctx, mapping.NewConf().OSID(id).Size(4096), false)
	require.NoError(t, err)
	require.True(t, s.h.IsOwner())
	t.Cleanup(s.close)
	return s
}

func increment(s *shared) error {
	return s.mu.Do(sync.Infinite, func(data unsafe.Pointer) error {
		*(*uint64)(data)++
		return nil
	})
}

func TestBringUp(t *testing.T) {
	a := assert.New(t)
	id := testID(t)
	owner := newOwner(t, id)
	peer, err := openAndBringUp(context.Background(), mapping.NewConf().OSID(id).Size(4096), false)
	require.NoError(t, err)
	defer peer.close()
	a.False(peer.h.IsOwner())

	a.NoError(increment(owner))
	a.NoError(increment(peer))
	a.Equal(uint64(2), peer.value())

	a.NoError(owner.ev.Set(sync.Signaled))
	a.NoError(peer.ev.Wait(time.Second))
	a.Equal(sync.Cleared, owner.ev.State())
}

func TestCommands(t *testing.T) {
	a := assert.New(t)
	id := testID(t)
	run := func(args ...string) (string, error) {
		out := bytes.NewBuffer(nil)
		rootCmd.SetOut(out)
		rootCmd.SetArgs(append(args, "--id="+id))
		err := rootCmd.Execute()
		return out.String(), err
	}
	out, err := run("inc", "--count=3")
	a.NoError(err)
	a.Equal("3", strings.TrimSpace(out))

	// the mapping was destroyed by inc, which created it.
	_, err = run("info")
	a.Error(err)

	owner := newOwner(t, id)
	a.NoError(increment(owner))
	out, err = run("info")
	if a.NoError(err) {
		a.Contains(out, "ready: true")
		a.Contains(out, "counter: 1")
		a.Contains(out, "event: cleared")
	}
	_, err = run("set")
	a.NoError(err)
	a.Equal(sync.Signaled, owner.ev.State())
	out, err = run("wait", "--timeout=1s")
	a.NoError(err)
	a.Equal("signaled", strings.TrimSpace(out))
}

func TestMetricsFlag(t *testing.T) {
	id := testID(t)
	out := bytes.NewBuffer(nil)
	rootCmd.SetOut(out)
	rootCmd.SetArgs([]string{"inc", "--count=2", "--metrics", "--id=" + id})
	t.Cleanup(func() { dumpStats = false })
	require.NoError(t, rootCmd.Execute())
	assert.True(t, strings.HasPrefix(out.String(), "2\n"))
	assert.Contains(t, out.String(), `rawshm_mutex_acquire_total{result="ok"}`)
	assert.Contains(t, out.String(), "rawshm_mapping_created_total")
}

func TestMutexDemo(t *testing.T) {
	osID = testID(t)
	countTo = 20
	holdFor = time.Millisecond
	out := bytes.NewBuffer(nil)
	require.NoError(t, runMutexDemo(context.Background(), out, 4))
	assert.Equal(t, 4, strings.Count(out.String(), "done!"))
	assert.Equal(t, 20, strings.Count(out.String(), "val:"))
	_, err := mapping.Open(osID, 0)
	assert.Error(t, err)
}

func TestCrossProcessCounter(t *testing.T) {
	if testing.Short() {
		t.Skip("cross-process test")
	}
	const (
		apps  = 2
		count = 500
	)
	id := testID(t)
	owner := newOwner(t, id)
	var results []<-chan testutil.TestAppResult
	for i := 0; i < apps; i++ {
		args := testutil.AppArgs("inc", "--id="+id, fmt.Sprintf("--count=%d", count))
		results = append(results, testutil.RunTestAppAsync(args, nil))
	}
	for i := 0; i < count; i++ {
		require.NoError(t, increment(owner))
	}
	for _, ch := range results {
		res, ok := testutil.WaitForAppResultChan(ch, appTimeout)
		require.True(t, ok, "helper app timed out")
		require.NoError(t, res.Err, res.Output)
	}
	assert.Equal(t, uint64((apps+1)*count), owner.value())
}

func TestCrossProcessPayload(t *testing.T) {
	if testing.Short() {
		t.Skip("cross-process test")
	}
	id := testID(t)
	owner := newOwner(t, id)
	res := testutil.RunTestApp(testutil.AppArgs("inc", "--id="+id), nil)
	require.NoError(t, res.Err, res.Output)
	assert.Equal(t, "1", strings.TrimSpace(res.Output))
	g, err := owner.mu.Lock(time.Second)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), *(*uint64)(g.Data()))
	assert.NoError(t, g.Unlock())
}

func TestCrossProcessEvent(t *testing.T) {
	if testing.Short() {
		t.Skip("cross-process test")
	}
	id := testID(t)
	owner := newOwner(t, id)
	ch := testutil.RunTestAppAsync(testutil.AppArgs("wait", "--id="+id, "--timeout=1m"), nil)
	require.NoError(t, owner.ev.Set(sync.Signaled))
	res, ok := testutil.WaitForAppResultChan(ch, appTimeout)
	require.True(t, ok, "helper app timed out")
	require.NoError(t, res.Err, res.Output)
	assert.Equal(t, "signaled", strings.TrimSpace(res.Output))
}

func TestCrossProcessAbandoned(t *testing.T) {
	if testing.Short() {
		t.Skip("cross-process test")
	}
	a := assert.New(t)
	id := testID(t)
	owner := newOwner(t, id)
	res := testutil.RunTestApp(testutil.AppArgs("lock-and-die", "--id="+id, "--value=7"), nil)
	require.Error(t, res.Err)
	require.Contains(t, res.Output, "locked")
	a.True(owner.mu.Locked())

	g, err := owner.mu.Lock(10 * time.Second)
	a.Equal(sync.ErrAbandoned, err)
	if a.NotNil(g) {
		a.Equal(uint64(7), *(*uint64)(g.Data()))
		a.NoError(g.Unlock())
	}
	a.NoError(increment(owner))
	a.Equal(uint64(8), owner.value())
}
