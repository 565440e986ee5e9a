package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpaceReadMemory(t *testing.T) {
	space := NewSpace("test")
	space.AddRegion(0x1000, []byte{1, 2, 3, 4, 5, 6, 7, 8}, "r--p")

	data, err := space.ReadMemory(0x1002, 3)
	require.NoError(t, err)
	assert.Equal(t, []byte{3, 4, 5}, data)

	_, err = space.ReadMemory(0x2000, 1)
	assert.ErrorIs(t, err, ErrAddressNotMapped)

	_, err = space.ReadMemory(0x1006, 8)
	assert.ErrorIs(t, err, ErrShortRead)
}

func TestSpaceIsValidAddress(t *testing.T) {
	space := NewSpace("test")
	space.AddRegion(0x1000, make([]byte, 0x100), "r--p")
	space.AddRegion(0x3000, make([]byte, 0x100), "---p")

	assert.True(t, space.IsValidAddress(0x1000))
	assert.True(t, space.IsValidAddress(0x10FF))
	assert.False(t, space.IsValidAddress(0x1100))
	assert.False(t, space.IsValidAddress(0x0))

	// Mapped but not readable.
	assert.False(t, space.IsValidAddress(0x3000))
}

func TestSpaceWriteMemory(t *testing.T) {
	space := NewSpace("test")
	space.AddRegion(0x1000, make([]byte, 8), "rw-p")

	require.NoError(t, space.WriteMemory(0x1004, []byte{0xAA, 0xBB}))

	data, err := space.ReadMemory(0x1004, 2)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xAA, 0xBB}, data)

	assert.ErrorIs(t, space.WriteMemory(0x2000, []byte{1}), ErrAddressNotMapped)
	assert.ErrorIs(t, space.WriteMemory(0x1007, []byte{1, 2}), ErrShortRead)
}

func TestSpaceFindPattern(t *testing.T) {
	space := NewSpace("test")
	space.AddRegion(0x1000, []byte{0x00, 0x53, 0x45, 0x45, 0x44, 0x00}, "r--p")
	space.AddRegion(0x2000, []byte{0x53, 0x45, 0x45, 0x44}, "r--p")

	matches, err := space.FindPattern([]byte{0x53, 0x45, 0x45, 0x44}, nil)
	require.NoError(t, err)
	assert.Equal(t, []Address{0x1001, 0x2000}, matches)

	// Wildcard in the middle.
	matches, err = space.FindPattern([]byte{0x53, 0x00, 0x45, 0x44}, []byte{0xFF, 0x00, 0xFF, 0xFF})
	require.NoError(t, err)
	assert.Equal(t, []Address{0x1001, 0x2000}, matches)

	_, err = space.FindPattern([]byte{1, 2}, []byte{0xFF})
	assert.Error(t, err)

	_, err = space.FindPattern(nil, nil)
	assert.Error(t, err)
}

func TestSpaceSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()

	src := NewSpace("fixture")
	src.AddRegion(0x1000, []byte{1, 2, 3, 4}, "r--p")
	src.AddRegion(0x7FFD8000, []byte{9, 8, 7, 6, 5}, "rw-p")
	require.NoError(t, src.Save(dir))

	dst := NewSpace("")
	require.NoError(t, dst.Load(dir))

	assert.Equal(t, "fixture", dst.Name)
	assert.Equal(t, src.Regions(), dst.Regions())

	data, err := dst.ReadMemory(0x7FFD8002, 3)
	require.NoError(t, err)
	assert.Equal(t, []byte{7, 6, 5}, data)
}

func TestRegionFor(t *testing.T) {
	regions := []Region{
		{Address: 0x1000, Size: 0x100, Perms: "r--p"},
		{Address: 0x3000, Size: 0x100, Perms: "r-xp"},
	}
	SortRegions(regions)

	r := RegionFor(0x3080, regions)
	require.NotNil(t, r)
	assert.Equal(t, Address(0x3000), r.Address)

	assert.Nil(t, RegionFor(0x2000, regions))
	assert.Nil(t, RegionFor(0x3100, regions))
}
