// Copyright 2016 Aleksandr Demakin. All rights reserved.

package mapping

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestSliceOf(t *testing.T) {
	a := assert.New(t)
	h := createOwner(t, testID(t), 4096)

	words, err := SliceOf[uint64](h)
	if a.NoError(err) {
		a.Len(words, 512)
		words[1] = 0x0102030405060708
		a.NotZero(h.Bytes()[8])
	}

	type point struct{ X, Y int32 }
	points, err := SliceOf[point](h)
	if a.NoError(err) {
		a.Len(points, 512)
	}

	_, err = SliceOf[[3]byte](h)
	var sizeErr *ElemSizeError
	if a.True(errors.As(err, &sizeErr)) {
		a.Equal(4096, sizeErr.MapSize)
		a.Equal(3, sizeErr.ElemSize)
	}

	_, err = SliceOf[*int](h)
	a.Error(err)
	_, err = SliceOf[string](h)
	a.Error(err)
	_, err = SliceOf[any](h)
	a.Error(err)
	_, err = SliceOf[struct{}](h)
	a.Error(err)
}
