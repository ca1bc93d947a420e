package snapshot

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/hupe1980/meshgo/internal/hash"
	"github.com/hupe1980/meshgo/mesh"
)

const (
	// Magic identifies an archive ("MSH1").
	Magic uint32 = 0x4D534831
	// Version is the current archive format version.
	Version uint16 = 1
	// HeaderSize is the encoded size of Header.
	HeaderSize = 40
)

var (
	// ErrInvalidMagic is returned when the data is not an archive.
	ErrInvalidMagic = errors.New("snapshot: invalid magic")
	// ErrInvalidVersion is returned for archives written by an unknown format version.
	ErrInvalidVersion = errors.New("snapshot: unsupported version")
	// ErrTruncated is returned when the archive is shorter than its header claims.
	ErrTruncated = errors.New("snapshot: truncated archive")

	errSizeMismatch = errors.New("snapshot: decompressed size mismatch")
)

// ChecksumMismatchError is returned when the stored body does not match the
// header checksum.
type ChecksumMismatchError struct {
	Expected uint32
	Actual   uint32
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("snapshot: checksum mismatch: expected %08x, got %08x", e.Expected, e.Actual)
}

// Header is the fixed-size archive header. All fields are little-endian.
type Header struct {
	Magic        uint32
	Version      uint16
	Compression  Compression
	Mode         mesh.Mode
	Count        uint64
	RawSize      uint64
	BodySize     uint64
	Checksum     uint32
	SignatureLen uint16
	Reserved     uint16
}

// Archive is a decoded snapshot.
type Archive struct {
	Header    Header
	Signature string
	// Payload is the uncompressed record stream.
	Payload []byte
}

// Encode seals count records of payload, written in opts.Mode with the IO
// signature sig, into an archive.
func Encode(sig string, count uint64, payload []byte, opts Options) ([]byte, error) {
	if len(sig) > math.MaxUint16 {
		return nil, fmt.Errorf("snapshot: signature too long (%d bytes)", len(sig))
	}
	body, c, err := compress(payload, opts.Compression)
	if err != nil {
		return nil, err
	}

	h := Header{
		Magic:        Magic,
		Version:      Version,
		Compression:  c,
		Mode:         opts.Mode,
		Count:        count,
		RawSize:      uint64(len(payload)),
		BodySize:     uint64(len(body)),
		Checksum:     hash.CRC32C(body),
		SignatureLen: uint16(len(sig)),
	}

	var buf bytes.Buffer
	buf.Grow(HeaderSize + len(sig) + len(body))
	if err := binary.Write(&buf, binary.LittleEndian, &h); err != nil {
		return nil, err
	}
	buf.WriteString(sig)
	buf.Write(body)
	return buf.Bytes(), nil
}

// ReadHeader decodes and checks the header at the start of data.
func ReadHeader(data []byte) (Header, error) {
	var h Header
	if len(data) < HeaderSize {
		return h, ErrTruncated
	}
	if err := binary.Read(bytes.NewReader(data[:HeaderSize]), binary.LittleEndian, &h); err != nil {
		return h, err
	}
	if h.Magic != Magic {
		return h, ErrInvalidMagic
	}
	if h.Version != Version {
		return h, fmt.Errorf("%w: %d", ErrInvalidVersion, h.Version)
	}
	if h.Mode > mesh.Binary {
		return h, fmt.Errorf("snapshot: invalid stream mode %d", h.Mode)
	}
	return h, nil
}

// Decode verifies and unpacks an archive.
func Decode(data []byte) (*Archive, error) {
	h, err := ReadHeader(data)
	if err != nil {
		return nil, err
	}

	rest := data[HeaderSize:]
	sigLen := uint64(h.SignatureLen)
	if uint64(len(rest)) < sigLen || h.BodySize > uint64(len(rest))-sigLen {
		return nil, ErrTruncated
	}
	sig := string(rest[:sigLen])
	body := rest[sigLen : sigLen+h.BodySize]

	if sum := hash.CRC32C(body); sum != h.Checksum {
		return nil, &ChecksumMismatchError{Expected: h.Checksum, Actual: sum}
	}

	payload, err := decompress(body, h.Compression, h.RawSize)
	if err != nil {
		return nil, fmt.Errorf("snapshot: decompress %s body: %w", h.Compression, err)
	}

	return &Archive{Header: h, Signature: sig, Payload: payload}, nil
}
