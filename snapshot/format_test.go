package snapshot

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/hupe1980/meshgo/mesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSignature = "p3+i+i"

func testPayload() []byte {
	return bytes.Repeat([]byte("0.25 -0.5 0.125 3 7\n"), 200)
}

func TestEncodeDecode(t *testing.T) {
	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
		t.Run(c.String(), func(t *testing.T) {
			payload := testPayload()
			data, err := Encode(testSignature, 200, payload, Options{Compression: c, Mode: mesh.Text})
			require.NoError(t, err)

			a, err := Decode(data)
			require.NoError(t, err)

			assert.Equal(t, c, a.Header.Compression)
			assert.Equal(t, mesh.Text, a.Header.Mode)
			assert.Equal(t, uint64(200), a.Header.Count)
			assert.Equal(t, uint64(len(payload)), a.Header.RawSize)
			assert.Equal(t, testSignature, a.Signature)
			assert.Equal(t, payload, a.Payload)
			if c != CompressionNone {
				assert.Less(t, len(data), len(payload))
			}
		})
	}
}

func TestEncode_IncompressibleFallsBack(t *testing.T) {
	data, err := Encode(testSignature, 1, []byte{1, 2, 3}, Options{Compression: CompressionLZ4})
	require.NoError(t, err)

	h, err := ReadHeader(data)
	require.NoError(t, err)
	assert.Equal(t, CompressionNone, h.Compression)

	a, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, a.Payload)
}

func TestEncode_Empty(t *testing.T) {
	data, err := Encode(testSignature, 0, nil, DefaultOptions)
	require.NoError(t, err)
	assert.Len(t, data, HeaderSize+len(testSignature))

	a, err := Decode(data)
	require.NoError(t, err)
	assert.Empty(t, a.Payload)
	assert.Equal(t, mesh.Binary, a.Header.Mode)
}

func TestDecode_Errors(t *testing.T) {
	valid, err := Encode(testSignature, 200, testPayload(), DefaultOptions)
	require.NoError(t, err)

	t.Run("short header", func(t *testing.T) {
		_, err := Decode(valid[:HeaderSize-1])
		assert.ErrorIs(t, err, ErrTruncated)
	})

	t.Run("truncated body", func(t *testing.T) {
		_, err := Decode(valid[:len(valid)-1])
		assert.ErrorIs(t, err, ErrTruncated)
	})

	t.Run("magic", func(t *testing.T) {
		data := bytes.Clone(valid)
		binary.LittleEndian.PutUint32(data, 0xdeadbeef)
		_, err := Decode(data)
		assert.ErrorIs(t, err, ErrInvalidMagic)
	})

	t.Run("version", func(t *testing.T) {
		data := bytes.Clone(valid)
		binary.LittleEndian.PutUint16(data[4:], Version+1)
		_, err := Decode(data)
		assert.ErrorIs(t, err, ErrInvalidVersion)
	})

	t.Run("checksum", func(t *testing.T) {
		data := bytes.Clone(valid)
		data[len(data)-1] ^= 0xff
		_, err := Decode(data)
		var cm *ChecksumMismatchError
		require.ErrorAs(t, err, &cm)
		assert.NotEqual(t, cm.Expected, cm.Actual)
	})
}

func TestDecode_CorruptHeaderSizes(t *testing.T) {
	encode := func(c Compression) []byte {
		data, err := Encode(testSignature, 200, testPayload(), Options{Compression: c, Mode: mesh.Binary})
		require.NoError(t, err)
		h, err := ReadHeader(data)
		require.NoError(t, err)
		require.Equal(t, c, h.Compression)
		return data
	}

	tests := []struct {
		name    string
		c       Compression
		corrupt func(data []byte)
		target  error
	}{
		{"body size max", CompressionLZ4, func(d []byte) { binary.LittleEndian.PutUint64(d[24:], math.MaxUint64) }, ErrTruncated},
		{"body size past end", CompressionLZ4, func(d []byte) { binary.LittleEndian.PutUint64(d[24:], uint64(len(d))) }, ErrTruncated},
		{"signature length max", CompressionLZ4, func(d []byte) { binary.LittleEndian.PutUint16(d[36:], math.MaxUint16) }, ErrTruncated},
		{"signature and body overflow", CompressionNone, func(d []byte) {
			binary.LittleEndian.PutUint16(d[36:], 2)
			binary.LittleEndian.PutUint64(d[24:], math.MaxUint64-1)
		}, ErrTruncated},
		{"raw size max lz4", CompressionLZ4, func(d []byte) { binary.LittleEndian.PutUint64(d[16:], math.MaxUint64) }, errSizeMismatch},
		{"raw size max zstd", CompressionZSTD, func(d []byte) { binary.LittleEndian.PutUint64(d[16:], math.MaxUint64) }, errSizeMismatch},
		{"raw size max none", CompressionNone, func(d []byte) { binary.LittleEndian.PutUint64(d[16:], math.MaxUint64) }, errSizeMismatch},
		{"unknown compression", CompressionLZ4, func(d []byte) { d[6] = 9 }, ErrUnknownCompression},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := encode(tt.c)
			tt.corrupt(data)

			var err error
			require.NotPanics(t, func() { _, err = Decode(data) })
			assert.ErrorIs(t, err, tt.target)
		})
	}
}

func TestParseCompression(t *testing.T) {
	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
		got, err := ParseCompression(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}

	_, err := ParseCompression("brotli")
	assert.ErrorIs(t, err, ErrUnknownCompression)
	assert.Equal(t, "compression(9)", Compression(9).String())
}

func TestApplyOptions(t *testing.T) {
	opts := ApplyOptions(func(o *Options) { o.Compression = CompressionZSTD })

	assert.Equal(t, CompressionZSTD, opts.Compression)
	assert.Equal(t, mesh.Binary, opts.Mode)
	assert.Equal(t, CompressionLZ4, DefaultOptions.Compression)
}
