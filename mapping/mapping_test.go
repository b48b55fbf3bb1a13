// Copyright 2016 Aleksandr Demakin. All rights reserved.

package mapping

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nxgtw/go-rawshm/internal/logger"
	"github.com/nxgtw/go-rawshm/internal/metrics"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testID(t *testing.T) string {
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	return fmt.Sprintf("rawshm-%s-%d", name, os.Getpid())
}

func testConf(id string) *Conf {
	return NewConf().OSID(id).Logger(logger.Discard())
}

func createOwner(t *testing.T, id string, size int) *Handle {
	h, err := testConf(id).Size(size).Create()
	require.NoError(t, err)
	t.Cleanup(func() { h.Destroy() })
	return h
}

func TestCreateSizeZero(t *testing.T) {
	created := testutil.ToFloat64(metrics.MappingsCreated)
	_, err := testConf(testID(t)).Create()
	assert.Equal(t, ErrSizeZero, err)
	_, err = testConf(testID(t)).Size(-1).CreateOrOpen()
	assert.Equal(t, ErrSizeZero, err)
	assert.Equal(t, created, testutil.ToFloat64(metrics.MappingsCreated))
}

func TestCreateOrOpen(t *testing.T) {
	a := assert.New(t)
	id := testID(t)
	h1, err := testConf(id).Size(4096).CreateOrOpen()
	require.NoError(t, err)
	defer h1.Destroy()
	a.True(h1.IsOwner())
	a.Equal(id, h1.Name())
	a.Equal(4096, h1.Size())

	h2, err := testConf(id).Size(4096).CreateOrOpen()
	require.NoError(t, err)
	defer h2.Release()
	a.False(h2.IsOwner())
	a.Equal(h1.Size(), h2.Size())

	h1.Bytes()[100] = 42
	a.NoError(h1.Flush())
	a.Equal(byte(42), h2.Bytes()[100])
	a.NoError(h2.Flush())
}

func TestCreateExisting(t *testing.T) {
	id := testID(t)
	createOwner(t, id, 1024)
	_, err := testConf(id).Size(1024).Create()
	assert.True(t, errors.Is(err, ErrMappingIDExists))
}

func TestOpenSizeCorrection(t *testing.T) {
	a := assert.New(t)
	id := testID(t)
	owner := createOwner(t, id, 4096)

	h, err := testConf(id).Open()
	if a.NoError(err) {
		a.Equal(owner.Size(), h.Size())
		h.Release()
	}
	h, err = testConf(id).Size(1 << 20).Open()
	if a.NoError(err) {
		a.Equal(owner.Size(), h.Size())
		h.Release()
	}
	h, err = testConf(id).Size(1024).Open()
	if a.NoError(err) {
		a.Equal(1024, h.Size())
		h.Release()
	}
	_, err = testConf(id).Size(1 << 20).StrictSize().Open()
	var sizeErr *SizeMismatchError
	if a.True(errors.As(err, &sizeErr)) {
		a.Equal(1<<20, sizeErr.Requested)
		a.Equal(owner.Size(), sizeErr.Actual)
	}
}

func TestOpenErrors(t *testing.T) {
	a := assert.New(t)
	_, err := NewConf().Open()
	a.Equal(ErrNoLinkOrID, err)

	_, err = testConf(testID(t)).Size(16).Open()
	a.True(errors.Is(err, ErrOpenFailed))
	var osErr *OSError
	if a.True(errors.As(err, &osErr)) {
		a.NotZero(osErr.Code)
		a.False(errors.Is(err, ErrCreateFailed))
	}
}

func TestFlink(t *testing.T) {
	a := assert.New(t)
	path := filepath.Join(t.TempDir(), "mapping.link")
	h, err := NewConf().Size(512).Flink(path).Logger(logger.Discard()).Create()
	require.NoError(t, err)
	a.Equal(path, h.Flink())
	a.True(strings.HasPrefix(h.Name(), "shmem_"))
	data, err := os.ReadFile(path)
	a.NoError(err)
	a.Equal(h.Name(), string(data))

	_, err = NewConf().Size(512).Flink(path).Create()
	a.True(errors.Is(err, ErrLinkExists))

	opened, err := NewConf().Size(512).Flink(path).CreateOrOpen()
	if a.NoError(err) {
		a.False(opened.IsOwner())
		a.Equal(h.Name(), opened.Name())
		opened.Release()
	}

	a.NoError(h.Destroy())
	a.NoFileExists(path)
	_, err = NewConf().Flink(path).Open()
	a.True(errors.Is(err, ErrLinkDoesNotExist))
}

func TestFlinkEmpty(t *testing.T) {
	a := assert.New(t)
	path := filepath.Join(t.TempDir(), "empty.link")
	require.NoError(t, os.WriteFile(path, nil, 0644))
	_, err := NewConf().Flink(path).Open()
	a.True(errors.Is(err, ErrMappingNotReady))

	h, err := NewConf().Size(64).Flink(path).ForceCreateFlink().Logger(logger.Discard()).Create()
	if a.NoError(err) {
		data, _ := os.ReadFile(path)
		a.Equal(h.Name(), string(data))
		a.NoError(h.Destroy())
	}
}

func TestCreateOrOpenExistingIDWithFlink(t *testing.T) {
	a := assert.New(t)
	id := testID(t)
	owner := createOwner(t, id, 4096)
	path := filepath.Join(t.TempDir(), "fresh.link")

	h, err := testConf(id).Size(4096).Flink(path).CreateOrOpen()
	require.NoError(t, err)
	defer h.Release()
	a.False(h.IsOwner())
	a.Equal(id, h.Name())
	a.Equal(owner.Size(), h.Size())
	a.Empty(h.Flink())
	a.NoFileExists(path)
}

func TestReleaseExactlyOnce(t *testing.T) {
	for _, ownerFirst := range []bool{true, false} {
		t.Run(fmt.Sprintf("owner-first-%v", ownerFirst), func(t *testing.T) {
			a := assert.New(t)
			id := testID(t)
			owner := createOwner(t, id, 4096)
			opened, err := testConf(id).Open()
			require.NoError(t, err)

			unmapped := testutil.ToFloat64(metrics.MappingsUnmapped)
			closed := testutil.ToFloat64(metrics.HandlesClosed)
			if ownerFirst {
				owner.Release()
				opened.Release()
			} else {
				opened.Release()
				owner.Release()
			}
			owner.Release()
			opened.Release()
			a.Equal(unmapped+1, testutil.ToFloat64(metrics.MappingsUnmapped))
			a.Equal(closed+2, testutil.ToFloat64(metrics.HandlesClosed))
		})
	}
}

func TestSetOwner(t *testing.T) {
	a := assert.New(t)
	id := testID(t)
	owner := createOwner(t, id, 4096)
	opened, err := testConf(id).Open()
	require.NoError(t, err)

	a.True(owner.SetOwner(false))
	a.False(opened.SetOwner(true))
	a.True(opened.IsOwner())

	unmapped := testutil.ToFloat64(metrics.MappingsUnmapped)
	owner.Release()
	a.Equal(unmapped, testutil.ToFloat64(metrics.MappingsUnmapped))
	opened.Release()
	a.Equal(unmapped+1, testutil.ToFloat64(metrics.MappingsUnmapped))
}

func TestHandleLayout(t *testing.T) {
	a := assert.New(t)
	h := createOwner(t, testID(t), 64)
	hdr, err := h.Header()
	require.NoError(t, err)
	a.False(hdr.IsReady())
	hdr.MarkReady()
	a.Equal(byte(1), h.Bytes()[0])

	cur := h.Cursor()
	a.Equal(HeaderSize, cur.Offset())
	a.Equal(64-HeaderSize, cur.Remaining())

	small := createOwner(t, testID(t)+"-small", 4)
	_, err = small.Header()
	a.Error(err)
	a.Equal(0, small.Cursor().Remaining())
}

func TestReconcileSize(t *testing.T) {
	tests := []struct {
		requested, actual, expected int
		strict                      bool
		err                         bool
	}{
		{0, 4096, 4096, false, false},
		{0, 4096, 4096, true, false},
		{100, 4096, 100, false, false},
		{4096, 4096, 4096, true, false},
		{8192, 4096, 4096, false, false},
		{8192, 4096, 0, true, true},
	}
	for _, tt := range tests {
		size, err := reconcileSize(tt.requested, tt.actual, tt.strict)
		if tt.err {
			assert.Error(t, err)
			continue
		}
		assert.NoError(t, err)
		assert.Equal(t, tt.expected, size)
	}
}
