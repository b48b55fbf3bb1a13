// Copyright 2016 Aleksandr Demakin. All rights reserved.

/*
Package sync implements a mutex and an event, which live directly in a caller-provided block of shared memory.

The primitives don't own any os resources. The first process formats a control block at some address
of a mapping, and other processes attach to it after they have observed that the mapping is ready:

	// formatter
	mu, used, err := sync.FormatMutex(base, data)
	...
	header.MarkReady()

	// other processes
	if err := header.WaitReady(ctx); err != nil { ... }
	mu, used, err := sync.AttachMutex(base, data)

On linux and freebsd blocked goroutines sleep in the kernel (futex and umtx).
On other platforms they poll the control block.
*/
package sync
