// Copyright 2016 Aleksandr Demakin. All rights reserved.

package sync

import (
	"os"

	"github.com/shirou/gopsutil/v3/process"
)

var currentPID = uint32(os.Getpid())

// processAlive returns true, if a process with given pid exists.
// If the check fails, the process is considered alive.
func processAlive(pid int) bool {
	if uint32(pid) == currentPID {
		return true
	}
	exists, err := process.PidExists(int32(pid))
	if err != nil {
		return true
	}
	return exists
}
