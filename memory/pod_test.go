package memory

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type podSample struct {
	Magic uint32
	Flags uint16
	_pad0 [2]byte
	Base  Address
}

func TestBytesRoundTripsThroughReadT(t *testing.T) {
	v := podSample{Magic: 0xFEEDFACE, Flags: 0x55, Base: 0x140000000}

	space := NewSpace("test")
	space.AddRegion(0x1000, Bytes(v), "r--p")

	got, err := ReadT[podSample](space, 0x1000)
	require.NoError(t, err)
	assert.Equal(t, v, got)
}

func TestSizeOf(t *testing.T) {
	assert.Equal(t, Size(16), SizeOf[podSample]())
	assert.Equal(t, Size(8), SizeOf[uint64]())
}

func TestReadTFailsOnUnmappedAddress(t *testing.T) {
	space := NewSpace("test")

	_, err := ReadT[podSample](space, 0xBAD)
	assert.ErrorIs(t, err, ErrAddressNotMapped)
}

func TestReadValueRejectsGoPointers(t *testing.T) {
	type unsafeType struct {
		P *uint64
	}

	space := NewSpace("test")
	space.AddRegion(0x1000, make([]byte, 64), "r--p")

	_, err := ReadValue(space, 0x1000, reflect.TypeOf(unsafeType{}))
	assert.Error(t, err)

	type stringy struct {
		S string
	}
	_, err = ReadValue(space, 0x1000, reflect.TypeOf(stringy{}))
	assert.Error(t, err)
}

func TestReadValueShortRegion(t *testing.T) {
	space := NewSpace("test")
	space.AddRegion(0x1000, make([]byte, 4), "r--p")

	_, err := ReadT[podSample](space, 0x1000)
	assert.ErrorIs(t, err, ErrShortRead)
}

func TestReadValueIsAddressable(t *testing.T) {
	space := NewSpace("test")
	space.AddRegion(0x1000, Bytes(podSample{Magic: 1}), "r--p")

	rv, err := ReadValue(space, 0x1000, reflect.TypeOf(podSample{}))
	require.NoError(t, err)
	assert.True(t, rv.CanAddr())
	assert.Equal(t, uint64(1), rv.Field(0).Uint())
}
