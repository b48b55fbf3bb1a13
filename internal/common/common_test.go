// Copyright 2016 Aleksandr Demakin. All rights reserved.

package common

import (
	"os"
	"syscall"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestErrnoExtraction(t *testing.T) {
	a := assert.New(t)
	err := errors.Wrap(&os.PathError{Op: "open", Path: "/x", Err: syscall.ENOENT}, "failed")
	errno, ok := Errno(err)
	a.True(ok)
	a.Equal(syscall.ENOENT, errno)
	a.True(SyscallErrHasCode(err, syscall.ENOENT))
	a.False(SyscallErrHasCode(err, syscall.EEXIST))
	a.Equal(uint32(syscall.ENOENT), ErrnoCode(err))

	_, ok = Errno(errors.New("plain"))
	a.False(ok)
	a.Equal(uint32(0), ErrnoCode(nil))
}
