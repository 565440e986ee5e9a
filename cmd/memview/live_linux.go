//go:build linux

package main

import (
	"memview/memory"
	"memview/procmem"
)

func openLive(pid int) (memory.Reader, error) {
	return procmem.Open(pid)
}
