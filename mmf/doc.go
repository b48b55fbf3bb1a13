// Copyright 2015 Aleksandr Demakin. All rights reserved.

// Package mmf maps memory objects and files into the process' address space.
package mmf
