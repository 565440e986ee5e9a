//go:build !linux

package main

import (
	"fmt"

	"memview/memory"
)

func openLive(pid int) (memory.Reader, error) {
	return nil, fmt.Errorf("live process reading is only supported on linux")
}
