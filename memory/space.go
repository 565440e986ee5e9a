package memory

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

// Space is an in-memory address space assembled from mapped regions. It
// backs loaded process dumps and hand-built fixtures, and implements
// Reader for both.
type Space struct {
	Name    string
	regions []Region
	blobs   map[Address][]byte
	log     *logger.Logger
}

var _ Reader = (*Space)(nil)

// NewSpace creates an empty address space.
func NewSpace(name string) *Space {
	return &Space{
		Name:  name,
		blobs: make(map[Address][]byte),
		log:   logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, "space-"+name)),
	}
}

// AddRegion maps data at addr with the given permissions. Regions must not
// overlap; the caller owns layout.
func (s *Space) AddRegion(addr Address, data []byte, perms string) {
	s.regions = append(s.regions, Region{
		Address: addr,
		Size:    Size(len(data)),
		Perms:   perms,
	})
	SortRegions(s.regions)
	s.blobs[addr] = data
}

// Regions returns a copy of the current region table.
func (s *Space) Regions() []Region {
	out := make([]Region, len(s.regions))
	copy(out, s.regions)
	return out
}

func (s *Space) IsValidAddress(addr Address) bool {
	r := RegionFor(addr, s.regions)
	return r != nil && r.IsReadable()
}

func (s *Space) ReadMemory(addr Address, size Size) ([]byte, error) {
	region := RegionFor(addr, s.regions)
	if region == nil {
		return nil, ErrAddressNotMapped
	}

	data, ok := s.blobs[region.Address]
	if !ok {
		return nil, fmt.Errorf("no data for region 0x%x", uint64(region.Address))
	}

	offset := uint64(addr - region.Address)
	if offset+uint64(size) > uint64(len(data)) {
		return nil, ErrShortRead
	}

	out := make([]byte, size)
	copy(out, data[offset:offset+uint64(size)])
	return out, nil
}

// WriteMemory patches bytes inside an already mapped region. Fixture
// helper; a Space loaded from a dump is normally left read-only.
func (s *Space) WriteMemory(addr Address, data []byte) error {
	region := RegionFor(addr, s.regions)
	if region == nil {
		return ErrAddressNotMapped
	}

	blob := s.blobs[region.Address]
	offset := uint64(addr - region.Address)
	if offset+uint64(len(data)) > uint64(len(blob)) {
		return ErrShortRead
	}

	copy(blob[offset:], data)
	return nil
}

// FindPattern scans every region for the byte pattern. A nil mask means
// exact match; otherwise mask bytes of 0x00 are wildcards.
func (s *Space) FindPattern(pattern, mask []byte) ([]Address, error) {
	if mask != nil && len(mask) != len(pattern) {
		return nil, fmt.Errorf("pattern and mask must be of the same length")
	}
	if len(pattern) == 0 {
		return nil, fmt.Errorf("empty pattern")
	}

	var results []Address
	for _, region := range s.regions {
		data := s.blobs[region.Address]
		for i := 0; i+len(pattern) <= len(data); i++ {
			if matchPattern(data[i:], pattern, mask) {
				results = append(results, region.Address+Address(i))
			}
		}
	}

	s.log.Debugln("FindPattern found", len(results), "matches for pattern of length", len(pattern))

	return results, nil
}

func matchPattern(data, pattern, mask []byte) bool {
	for i := range pattern {
		if mask != nil && mask[i] == 0 {
			continue
		}
		if data[i] != pattern[i] {
			return false
		}
	}
	return true
}

type spaceMetadata struct {
	Name string `json:"name"`
}

// Save writes the address space to a directory: metadata.json, a region
// table, and one binary blob per region.
func (s *Space) Save(dirname string) error {
	if err := os.MkdirAll(dirname, 0o755); err != nil {
		return fmt.Errorf("failed to create dump directory: %w", err)
	}

	s.log.Infoln("Saving address space to directory:", dirname)

	metadataBytes, err := json.Marshal(spaceMetadata{Name: s.Name})
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dirname, "metadata.json"), metadataBytes, 0o644); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}

	regionBytes, err := json.MarshalIndent(s.regions, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal region table: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dirname, "regions.json"), regionBytes, 0o644); err != nil {
		return fmt.Errorf("failed to write region table: %w", err)
	}

	saved := 0
	for _, region := range s.regions {
		data, ok := s.blobs[region.Address]
		if !ok {
			continue
		}
		filename := filepath.Join(dirname, fmt.Sprintf("region_0x%x.bin", uint64(region.Address)))
		if err := os.WriteFile(filename, data, 0o644); err != nil {
			return fmt.Errorf("failed to write region at 0x%x: %w", uint64(region.Address), err)
		}
		saved++
	}

	s.log.Infoln("Address space saved:", saved, "regions")

	return nil
}

// Load reads an address space previously written by Save.
func (s *Space) Load(dirname string) error {
	metadataBytes, err := os.ReadFile(filepath.Join(dirname, "metadata.json"))
	if err != nil {
		return fmt.Errorf("failed to read metadata: %w", err)
	}
	var metadata spaceMetadata
	if err := json.Unmarshal(metadataBytes, &metadata); err != nil {
		return fmt.Errorf("failed to unmarshal metadata: %w", err)
	}
	s.Name = metadata.Name

	regionBytes, err := os.ReadFile(filepath.Join(dirname, "regions.json"))
	if err != nil {
		return fmt.Errorf("failed to read region table: %w", err)
	}
	if err := json.Unmarshal(regionBytes, &s.regions); err != nil {
		return fmt.Errorf("failed to unmarshal region table: %w", err)
	}
	SortRegions(s.regions)

	s.blobs = make(map[Address][]byte)
	for _, region := range s.regions {
		filename := filepath.Join(dirname, fmt.Sprintf("region_0x%x.bin", uint64(region.Address)))
		if _, err := os.Stat(filename); os.IsNotExist(err) {
			// Region not dumped (e.g. unreadable at capture time).
			continue
		}
		data, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("failed to read region blob %s: %w", filename, err)
		}
		s.blobs[region.Address] = data
	}

	s.log.Infoln("Loaded address space from", dirname, "with", len(s.blobs), "regions")

	return nil
}
