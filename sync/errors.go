// Copyright 2016 Aleksandr Demakin. All rights reserved.

package sync

import "github.com/pkg/errors"

var (
	// ErrTimeout is returned, when a finite timeout elapsed.
	ErrTimeout = errors.New("timed out")
	// ErrAbandoned is returned together with a valid guard, when the previous holder
	// of a mutex had terminated without unlocking it.
	ErrAbandoned = errors.New("mutex was abandoned by a dead process")
	// ErrNotFormatted is returned on attach to memory without a control block.
	ErrNotFormatted = errors.New("control block is not formatted")
	// ErrAlreadyFormatted is returned on format of memory, which already holds a control block.
	ErrAlreadyFormatted = errors.New("control block is already formatted")
	// ErrDataOverlap is returned, when the address of protected data overlaps the control block.
	ErrDataOverlap = errors.New("data overlaps the control block")
	// ErrUnlocked is returned on unlock of an unlocked mutex.
	ErrUnlocked = errors.New("unlock of unlocked mutex")
)

// errWaitTimeout is returned by waitWakers, so that callers could recheck their deadlines.
var errWaitTimeout = errors.New("wait timed out")
