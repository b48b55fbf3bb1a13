// Copyright 2016 Aleksandr Demakin. All rights reserved.

package mapping

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrSizeZero is returned, when a mapping is created with zero size.
	ErrSizeZero = errors.New("cannot create a shared memory mapping of zero size")
	// ErrNoLinkOrID is returned, when a mapping is opened without a link file or an os id.
	ErrNoLinkOrID = errors.New("tried to open a mapping without a link file or an os id")
	// ErrLinkExists is returned, when a link file for a new mapping already exists.
	ErrLinkExists = errors.New("shared memory link already exists")
	// ErrLinkDoesNotExist is returned, when a link file to open does not exist.
	ErrLinkDoesNotExist = errors.New("requested link file does not exist")
	// ErrMappingIDExists is returned, when a mapping with the same os id already exists.
	ErrMappingIDExists = errors.New("shared memory os id already exists")
	// ErrMappingNotReady is returned by Open, when the mapping exists,
	// but its creator has not yet sized it or written its link file. Opening may be retried.
	ErrMappingNotReady = errors.New("shared memory mapping is not ready yet")
	// ErrNoSpace is returned by a Cursor, when a reservation does not fit into the mapping.
	ErrNoSpace = errors.New("not enough space left in the mapping")

	// ErrCreateFailed is a kind of OSError for failed create calls.
	ErrCreateFailed = errors.New("creating the shared memory failed")
	// ErrOpenFailed is a kind of OSError for failed open calls.
	ErrOpenFailed = errors.New("opening the shared memory failed")
	// ErrUnknownOS is a kind of OSError for unexpected failures.
	ErrUnknownOS = errors.New("an unexpected os error occurred")
)

// OSError describes a failed os call. errors.Is(err, ErrCreateFailed) reports, whether err has this kind.
type OSError struct {
	// Kind is one of ErrCreateFailed, ErrOpenFailed, ErrUnknownOS.
	Kind error
	// Op is the failed operation.
	Op string
	// Code is the os status code, 0 if unknown.
	Code uint32
	// Err is the original error.
	Err error
}

func (e *OSError) Error() string {
	return fmt.Sprintf("%s: %s: os error %d", e.Kind, e.Op, e.Code)
}

// Is makes OSError match its kind.
func (e *OSError) Is(target error) bool {
	return target == e.Kind
}

func (e *OSError) Unwrap() error {
	return e.Err
}

// SizeMismatchError is returned, when strict size matching was requested, and the mapping is too small.
type SizeMismatchError struct {
	Requested int
	Actual    int
}

func (e *SizeMismatchError) Error() string {
	return fmt.Sprintf("requested mapping size %d, but the mapping has %d bytes", e.Requested, e.Actual)
}

// ElemSizeError is returned, when a mapping can't be viewed as a slice of some type.
type ElemSizeError struct {
	MapSize  int
	ElemSize int
}

func (e *ElemSizeError) Error() string {
	return fmt.Sprintf("map size and type are unmatched, memory size: %d, type size: %d", e.MapSize, e.ElemSize)
}

// LinkError records a failed link file operation.
type LinkError struct {
	Op   string
	Path string
	Err  error
}

func (e *LinkError) Error() string {
	return e.Op + " link file " + e.Path + ": " + e.Err.Error()
}

func (e *LinkError) Unwrap() error {
	return e.Err
}
