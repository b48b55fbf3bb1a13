// Copyright 2016 Aleksandr Demakin. All rights reserved.

package mapping

import (
	"reflect"
	"unsafe"

	"github.com/nxgtw/go-rawshm/internal/allocator"

	"github.com/pkg/errors"
)

// SliceOf returns the whole mapping as a slice of T.
// T must not contain pointers, and the size of the mapping must be a multiple of its size.
func SliceOf[T any](h *Handle) ([]T, error) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if kind := t.Kind(); kind == reflect.Pointer || kind == reflect.Slice {
		return nil, errors.Errorf("%s can't be placed into shared memory", t)
	}
	var zero T
	if err := allocator.CheckObjectReferences(zero); err != nil {
		return nil, errors.Wrapf(err, "%s can't be placed into shared memory", t)
	}
	elemSize := int(unsafe.Sizeof(zero))
	if elemSize == 0 || h.Size()%elemSize != 0 {
		return nil, &ElemSizeError{MapSize: h.Size(), ElemSize: elemSize}
	}
	return unsafe.Slice((*T)(h.Ptr()), h.Size()/elemSize), nil
}
