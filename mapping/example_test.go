// Copyright 2016 Aleksandr Demakin. All rights reserved.

package mapping_test

import (
	"context"
	"fmt"
	"time"

	"github.com/nxgtw/go-rawshm/mapping"
)

func ExampleCreateOrOpen() {
	owner, err := mapping.CreateOrOpen("rawshm-example", 4096)
	if err != nil {
		panic(err)
	}
	defer owner.Destroy()
	hdr, err := owner.Header()
	if err != nil {
		panic(err)
	}
	cur := owner.Cursor()
	counter, err := cur.Reserve(8)
	if err != nil {
		panic(err)
	}
	*(*uint64)(counter) = 7
	hdr.MarkReady()

	// another process would do the same call.
	peer, err := mapping.CreateOrOpen("rawshm-example", 4096)
	if err != nil {
		panic(err)
	}
	defer peer.Release()
	peerHdr, err := peer.Header()
	if err != nil {
		panic(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := peerHdr.WaitReady(ctx); err != nil {
		panic(err)
	}
	fmt.Println(peer.IsOwner(), peer.Size(), *(*uint64)(peer.Cursor().Ptr()))
	// Output: false 4096 7
}
