//go:build linux

package procmem

import (
	"fmt"
	"os"
	"sync"
	"unsafe"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
	"golang.org/x/sys/unix"

	"memview/memory"
)

// ProcReader implements memory.Reader against a live Linux process.
type ProcReader struct {
	pid     int
	regions []memory.Region
	log     *logger.Logger
	mu      sync.Mutex
}

var _ memory.Reader = (*ProcReader)(nil)

// Open attaches to a running process by PID and snapshots its memory map.
func Open(pid int) (*ProcReader, error) {
	procPath := fmt.Sprintf("/proc/%d", pid)
	if _, err := os.Stat(procPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("process with PID %d does not exist", pid)
	}

	p := &ProcReader{
		pid: pid,
		log: logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, fmt.Sprintf("procmem-%d", pid))),
	}

	if err := p.UpdateMemoryMap(); err != nil {
		return nil, fmt.Errorf("failed to initialize memory map: %w", err)
	}

	p.log.Infoln("Process opened")

	return p, nil
}

// Close releases the reader. No handle is held on Linux; this only resets
// state so further reads fail fast.
func (p *ProcReader) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.log.Infoln("Closing process")
	p.pid = 0
	p.regions = nil

	return nil
}

// PID returns the attached process ID.
func (p *ProcReader) PID() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pid
}

// UpdateMemoryMap refreshes the region table from /proc/[pid]/maps.
func (p *ProcReader) UpdateMemoryMap() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pid == 0 {
		return memory.ErrNotOpen
	}

	regions, err := readMemoryMap(p.pid)
	if err != nil {
		return fmt.Errorf("failed to read memory map: %w", err)
	}

	p.regions = regions
	return nil
}

// Regions returns a copy of the snapshotted region table.
func (p *ProcReader) Regions() []memory.Region {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]memory.Region, len(p.regions))
	copy(out, p.regions)
	return out
}

func (p *ProcReader) IsValidAddress(addr memory.Address) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	r := memory.RegionFor(addr, p.regions)
	return r != nil && r.IsReadable()
}

func (p *ProcReader) ReadMemory(addr memory.Address, size memory.Size) ([]byte, error) {
	p.mu.Lock()
	pid := p.pid
	region := memory.RegionFor(addr, p.regions)
	p.mu.Unlock()

	if pid == 0 {
		return nil, memory.ErrNotOpen
	}
	if region == nil || !region.IsReadable() {
		return nil, memory.ErrAddressNotMapped
	}

	data, err := processVMReadv(pid, addr, size)
	if err != nil {
		return nil, fmt.Errorf("failed to read process memory: %w", err)
	}

	return data, nil
}

// processVMReadv reads remote process memory without ptrace attachment.
func processVMReadv(pid int, remoteAddr memory.Address, bytesToRead memory.Size) ([]byte, error) {
	localBuf := make([]byte, bytesToRead)

	localIov := unix.Iovec{
		Base: &localBuf[0],
		Len:  uint64(bytesToRead),
	}
	remoteIov := unix.RemoteIovec{
		Base: uintptr(remoteAddr),
		Len:  int(bytesToRead),
	}

	n, _, errno := unix.Syscall6(
		unix.SYS_PROCESS_VM_READV,
		uintptr(pid),
		uintptr(unsafe.Pointer(&localIov)),
		uintptr(1),
		uintptr(unsafe.Pointer(&remoteIov)),
		uintptr(1),
		uintptr(0),
	)

	if errno != 0 {
		return nil, fmt.Errorf("process_vm_readv failed: %s (errno: %d)", errno.Error(), int(errno))
	}
	if int(n) != int(bytesToRead) {
		return localBuf[:n], fmt.Errorf("partial read: %d of %d bytes", n, int(bytesToRead))
	}

	return localBuf, nil
}
