// Copyright 2015 Aleksandr Demakin. All rights reserved.

//go:build darwin || freebsd || linux

package shm

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testObjectName = "rawshm.shm-test"

func TestMemoryObjectCreateOpen(t *testing.T) {
	a := assert.New(t)
	require.NoError(t, DestroyMemoryObject(testObjectName))
	obj, err := NewMemoryObject(testObjectName, os.O_CREATE|os.O_EXCL, 0666)
	require.NoError(t, err)
	defer func() {
		a.NoError(obj.Destroy())
	}()
	a.Equal(testObjectName, obj.Name())
	a.NoError(obj.Truncate(4096))
	size, err := obj.Size()
	a.NoError(err)
	a.Equal(int64(4096), size)

	_, err = NewMemoryObject(testObjectName, os.O_CREATE|os.O_EXCL, 0666)
	a.True(os.IsExist(err))

	obj2, err := NewMemoryObject(testObjectName, 0, 0666)
	if a.NoError(err) {
		size, err = obj2.Size()
		a.NoError(err)
		a.Equal(int64(4096), size)
		a.NoError(obj2.Close())
		a.NoError(obj2.Close())
		_, err = obj2.Size()
		a.Error(err)
	}
}

func TestMemoryObjectOpenMissing(t *testing.T) {
	require.NoError(t, DestroyMemoryObject(testObjectName))
	_, err := NewMemoryObject(testObjectName, 0, 0666)
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, DestroyMemoryObject(testObjectName))
}
