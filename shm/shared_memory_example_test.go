// Copyright 2016 Aleksandr Demakin. All rights reserved.

//go:build darwin || freebsd || linux

package shm_test

import (
	"fmt"
	"os"

	"github.com/nxgtw/go-rawshm/mmf"
	"github.com/nxgtw/go-rawshm/shm"
)

func ExampleMemoryObject() {
	// cleanup previous objects
	if err := shm.DestroyMemoryObject("obj"); err != nil {
		panic("destroy")
	}
	// create new object and resize it.
	obj, err := shm.NewMemoryObject("obj", os.O_CREATE|os.O_EXCL|os.O_RDWR, 0666)
	if err != nil {
		panic("new")
	}
	defer obj.Destroy()
	if err := obj.Truncate(1024); err != nil {
		panic("truncate")
	}
	// create two regions for reading and writing.
	rwRegion, err := mmf.NewMemoryRegion(obj, mmf.MEM_READWRITE, 0, 1024)
	if err != nil {
		panic("new region")
	}
	defer rwRegion.Close()
	roRegion, err := mmf.NewMemoryRegion(obj, mmf.MEM_READ_ONLY, 0, 1024)
	if err != nil {
		panic("new region")
	}
	defer roRegion.Close()
	// writes through one region are visible through the other.
	copy(rwRegion.Data(), []byte{0x1, 0x2, 0x3, 0x4})
	fmt.Println(roRegion.Data()[:4])
	// Output: [1 2 3 4]
}
