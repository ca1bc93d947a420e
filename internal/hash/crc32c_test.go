package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCRC32C_KnownValue(t *testing.T) {
	// RFC 3720 test vector: 32 bytes of zeros.
	assert.Equal(t, uint32(0x8A9136AA), CRC32C(make([]byte, 32)))
}

func TestCRC32C_DetectsFlip(t *testing.T) {
	data := []byte("0.5 0.25 -0.125 2 4\n")
	sum := CRC32C(data)
	data[3] ^= 1
	assert.NotEqual(t, sum, CRC32C(data))
}
