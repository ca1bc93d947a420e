package snapshot

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression defines the algorithm used for the archive body.
type Compression uint8

const (
	// CompressionNone stores the body as is.
	CompressionNone Compression = 0
	// CompressionLZ4 indicates LZ4 block compression (fast).
	CompressionLZ4 Compression = 1
	// CompressionZSTD indicates Zstandard compression (better ratio).
	CompressionZSTD Compression = 2
)

// ErrUnknownCompression is returned for an unsupported compression type.
var ErrUnknownCompression = errors.New("snapshot: unknown compression")

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("compression(%d)", uint8(c))
	}
}

// ParseCompression parses the names returned by Compression.String.
func ParseCompression(s string) (Compression, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZSTD, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownCompression, s)
	}
}

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

// compress packs data. It falls back to CompressionNone when the algorithm
// does not shrink the input and reports the type actually used.
func compress(data []byte, c Compression) ([]byte, Compression, error) {
	if len(data) == 0 {
		return data, CompressionNone, nil
	}

	var packed []byte
	switch c {
	case CompressionNone:
		return data, CompressionNone, nil
	case CompressionLZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, buf, nil)
		if err != nil {
			return nil, 0, err
		}
		packed = buf[:n]
	case CompressionZSTD:
		enc := getZstdEncoder()
		packed = enc.EncodeAll(data, nil)
		zstdEncoderPool.Put(enc)
	default:
		return nil, 0, fmt.Errorf("%w: %d", ErrUnknownCompression, c)
	}

	if len(packed) == 0 || len(packed) >= len(data) {
		return data, CompressionNone, nil
	}
	return packed, c, nil
}

// maxLZ4Ratio bounds the expansion of a single LZ4 block. A sequence of
// 255-byte length extensions decodes to at most 255 output bytes per input byte.
const maxLZ4Ratio = 255

// zstdPrealloc caps the output buffer reserved ahead of decoding. The frame
// itself drives any further growth.
const zstdPrealloc = 1 << 20

// decompress unpacks body. rawSize comes from an unverified header field and
// is checked against the body before anything is allocated from it.
func decompress(body []byte, c Compression, rawSize uint64) ([]byte, error) {
	switch c {
	case CompressionNone:
		if uint64(len(body)) != rawSize {
			return nil, errSizeMismatch
		}
		return body, nil
	case CompressionLZ4:
		if rawSize > uint64(len(body))*maxLZ4Ratio {
			return nil, errSizeMismatch
		}
		out := make([]byte, rawSize)
		n, err := lz4.UncompressBlock(body, out)
		if err != nil {
			return nil, err
		}
		if uint64(n) != rawSize {
			return nil, errSizeMismatch
		}
		return out, nil
	case CompressionZSTD:
		dec := getZstdDecoder()
		defer zstdDecoderPool.Put(dec)

		out, err := dec.DecodeAll(body, make([]byte, 0, min(rawSize, zstdPrealloc)))
		if err != nil {
			return nil, err
		}
		if uint64(len(out)) != rawSize {
			return nil, errSizeMismatch
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownCompression, c)
	}
}
