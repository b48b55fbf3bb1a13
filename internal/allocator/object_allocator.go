// Copyright 2015 Aleksandr Demakin. All rights reserved.

package allocator

import (
	"reflect"
	"runtime"
	"unsafe"

	"github.com/pkg/errors"
)

// ByteSliceData returns a pointer to the data of the given byte slice.
func ByteSliceData(slice []byte) unsafe.Pointer {
	if cap(slice) == 0 {
		return nil
	}
	return unsafe.Pointer(unsafe.SliceData(slice))
}

// ByteSliceFromUnsafePointer returns a slice of bytes with given length.
// Memory pointed by the unsafe.Pointer is used for the slice.
func ByteSliceFromUnsafePointer(memory unsafe.Pointer, length int) []byte {
	if memory == nil || length == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(memory), length)
}

// AdvancePointer adds shift value to 'p' pointer.
func AdvancePointer(p unsafe.Pointer, shift uintptr) unsafe.Pointer {
	return unsafe.Add(p, shift)
}

// IsAligned returns true, if p is a multiple of align. align must be a power of 2.
func IsAligned(p unsafe.Pointer, align uintptr) bool {
	return uintptr(p)&(align-1) == 0
}

// AlignUp rounds n up to the nearest multiple of align. align must be a power of 2.
func AlignUp(n, align int) int {
	return (n + align - 1) &^ (align - 1)
}

// Use ensures, that the object pointed by p is kept alive until that point.
func Use(p unsafe.Pointer) {
	runtime.KeepAlive(p)
}

// CheckObjectReferences checks if an object of type can be safely placed into shared memory.
// the object must not contain any reference types like maps, strings, and so on.
func CheckObjectReferences(object interface{}) error {
	if object == nil {
		return errors.New("nil object")
	}
	return CheckType(reflect.TypeOf(object))
}

// CheckType does the same as CheckObjectReferences for a type.
func CheckType(t reflect.Type) error {
	return checkType(t, 0)
}

func checkType(t reflect.Type, depth int) error {
	kind := t.Kind()
	if kind == reflect.Array {
		return checkType(t.Elem(), depth+1)
	}
	if kind == reflect.Slice {
		if depth != 0 {
			return errors.New("unexpected slice type")
		}
		return checkType(t.Elem(), depth+1)
	}
	if kind == reflect.Ptr {
		if depth != 0 {
			return errors.New("unexpected pointer type")
		}
		return checkType(t.Elem(), depth+1)
	}
	if kind == reflect.Struct {
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			if err := checkType(field.Type, depth+1); err != nil {
				return errors.Wrapf(err, "field %s", field.Name)
			}
		}
		return nil
	}
	return checkNumericType(kind)
}

func checkNumericType(kind reflect.Kind) error {
	if kind >= reflect.Bool && kind <= reflect.Complex128 {
		return nil
	}
	return errors.Errorf("unsupported type %q", kind.String())
}
