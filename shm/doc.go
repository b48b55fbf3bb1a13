// Copyright 2015 Aleksandr Demakin. All rights reserved.

// Package shm gives access to named shared memory objects.
// An object is only a named handle. To access its memory, it must be mapped with the mmf package.
package shm
