// Copyright 2016 Aleksandr Demakin. All rights reserved.

// Command rawshm demonstrates raw shared memory primitives and serves as a helper for cross-process tests.
package main

func main() {
	Execute()
}
