// Copyright 2016 Aleksandr Demakin. All rights reserved.

//go:build !freebsd && !linux

package sync

func newWaitWaker() waitWaker {
	return spinWaitWaker{}
}
