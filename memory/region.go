package memory

import (
	"fmt"
	"sort"
)

// Region describes one mapped range of a remote address space.
type Region struct {
	Address Address `json:"address"`
	Size    Size    `json:"size"`
	Perms   string  `json:"perms"` // e.g. "r-xp"
}

func (r Region) String() string {
	return fmt.Sprintf("Address: %x, Size: %d, Perms: %s", uint64(r.Address), uint(r.Size), r.Perms)
}

func (r Region) End() Address {
	return r.Address + Address(r.Size)
}

func (r Region) Contains(addr Address) bool {
	return addr >= r.Address && addr < r.End()
}

func (r Region) IsReadable() bool {
	return len(r.Perms) > 0 && r.Perms[0] == 'r'
}

func (r Region) IsWritable() bool {
	return len(r.Perms) > 1 && r.Perms[1] == 'w'
}

// SortRegions orders regions by start address. RegionFor requires this.
func SortRegions(regions []Region) {
	sort.Slice(regions, func(i, j int) bool {
		return regions[i].Address < regions[j].Address
	})
}

// RegionFor returns the region containing addr, or nil. The regions slice
// must be sorted by address.
func RegionFor(addr Address, regions []Region) *Region {
	i := sort.Search(len(regions), func(i int) bool {
		return regions[i].End() > addr
	})
	if i < len(regions) && regions[i].Contains(addr) {
		return &regions[i]
	}
	return nil
}
