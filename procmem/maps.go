//go:build linux

// Package procmem reads live process memory on Linux through
// process_vm_readv, exposing it as a memory.Reader.
package procmem

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"memview/memory"
)

// readMemoryMap parses /proc/[pid]/maps into regions.
func readMemoryMap(pid int) ([]memory.Region, error) {
	file, err := os.Open(fmt.Sprintf("/proc/%d/maps", pid))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return parseMemoryMap(file)
}

// parseMemoryMap reads maps-format lines, skipping anything malformed.
func parseMemoryMap(r io.Reader) ([]memory.Region, error) {
	var regions []memory.Region
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}

		// Address range, e.g. "00400000-0040b000"
		addrRange := strings.Split(fields[0], "-")
		if len(addrRange) != 2 {
			continue
		}

		startAddr, err := strconv.ParseUint(addrRange[0], 16, 64)
		if err != nil {
			continue
		}
		endAddr, err := strconv.ParseUint(addrRange[1], 16, 64)
		if err != nil {
			continue
		}

		regions = append(regions, memory.Region{
			Address: memory.Address(startAddr),
			Size:    memory.Size(endAddr - startAddr),
			Perms:   fields[1],
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	memory.SortRegions(regions)

	return regions, nil
}
