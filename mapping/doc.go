// Copyright 2016 Aleksandr Demakin. All rights reserved.

/*
Package mapping implements named shared memory mappings, which can be opened by unrelated processes.

A mapping is obtained with a Conf, or with the CreateOrOpen shortcut. The process, which created
the mapping, becomes its owner. Other processes open it and defer to the creator's size.

	h, err := mapping.CreateOrOpen("my-mapping", 4096)
	if err != nil {
		return err
	}
	defer h.Release()
	hdr, err := h.Header()
	if err != nil {
		return err
	}
	if h.IsOwner() {
		// format primitives here.
		hdr.MarkReady()
	} else if err := hdr.WaitReady(ctx); err != nil {
		return err
	}

By convention, the first HeaderSize bytes of a mapping hold an initialization flag.
The rest of the mapping is managed by the caller with a Cursor.

Release unmaps the view only if the handle is an owner, and always closes the process' os handle.
Destroy removes the name of the mapping, so that it can't be opened anymore.
*/
package mapping
