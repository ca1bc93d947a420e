package mesh

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
)

// Mode selects the stream encoding.
type Mode uint8

const (
	// Text writes space separated decimal values, one record per line.
	Text Mode = iota
	// Binary writes fixed width little-endian values.
	Binary
)

func (m Mode) String() string {
	if m == Binary {
		return "binary"
	}
	return "text"
}

// ErrMalformedToken is returned when a text token does not parse.
var ErrMalformedToken = errors.New("mesh: malformed token")

// Writer encodes values in the configured mode. The first write error is
// sticky and reported by every later call.
type Writer struct {
	w     *bufio.Writer
	mode  Mode
	field bool
	buf   [8]byte
	err   error
}

// NewWriter creates a Writer on w.
func NewWriter(w io.Writer, mode Mode) *Writer {
	return &Writer{w: bufio.NewWriter(w), mode: mode}
}

// Mode returns the encoding mode.
func (w *Writer) Mode() Mode { return w.mode }

// WriteInt writes an integer field.
func (w *Writer) WriteInt(v int64) error {
	if w.mode == Binary {
		binary.LittleEndian.PutUint64(w.buf[:], uint64(v))
		return w.write(w.buf[:])
	}
	return w.writeToken(strconv.FormatInt(v, 10))
}

// WriteFloat writes a floating point field. Text mode uses the shortest
// representation that parses back to the same value.
func (w *Writer) WriteFloat(v float64) error {
	if w.mode == Binary {
		binary.LittleEndian.PutUint64(w.buf[:], math.Float64bits(v))
		return w.write(w.buf[:])
	}
	return w.writeToken(strconv.FormatFloat(v, 'g', -1, 64))
}

// EndRecord terminates the current record.
func (w *Writer) EndRecord() error {
	if w.mode == Binary {
		return w.err
	}
	w.field = false
	return w.write([]byte{'\n'})
}

// Flush writes buffered data to the underlying writer.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	w.err = w.w.Flush()
	return w.err
}

// Err returns the first error encountered.
func (w *Writer) Err() error { return w.err }

func (w *Writer) writeToken(s string) error {
	if w.field {
		if err := w.write([]byte{' '}); err != nil {
			return err
		}
	}
	w.field = true
	return w.write([]byte(s))
}

func (w *Writer) write(p []byte) error {
	if w.err != nil {
		return w.err
	}
	_, w.err = w.w.Write(p)
	return w.err
}

// Reader decodes values written by a Writer in the same mode.
type Reader struct {
	r    *bufio.Reader
	mode Mode
	buf  [8]byte
	tok  []byte
}

// NewReader creates a Reader on r.
func NewReader(r io.Reader, mode Mode) *Reader {
	return &Reader{r: bufio.NewReader(r), mode: mode}
}

// Mode returns the encoding mode.
func (r *Reader) Mode() Mode { return r.mode }

// ReadInt reads an integer field. It returns io.EOF only if the stream
// ends before the field starts.
func (r *Reader) ReadInt() (int64, error) {
	if r.mode == Binary {
		if _, err := io.ReadFull(r.r, r.buf[:]); err != nil {
			return 0, err
		}
		return int64(binary.LittleEndian.Uint64(r.buf[:])), nil
	}
	tok, err := r.token()
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseInt(string(tok), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedToken, tok)
	}
	return v, nil
}

// ReadFloat reads a floating point field.
func (r *Reader) ReadFloat() (float64, error) {
	if r.mode == Binary {
		if _, err := io.ReadFull(r.r, r.buf[:]); err != nil {
			return 0, err
		}
		return math.Float64frombits(binary.LittleEndian.Uint64(r.buf[:])), nil
	}
	tok, err := r.token()
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(string(tok), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedToken, tok)
	}
	return v, nil
}

func (r *Reader) token() ([]byte, error) {
	r.tok = r.tok[:0]
	for {
		b, err := r.r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) && len(r.tok) > 0 {
				return r.tok, nil
			}
			return nil, err
		}
		if isSpace(b) {
			if len(r.tok) > 0 {
				return r.tok, nil
			}
			continue
		}
		r.tok = append(r.tok, b)
	}
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\n' || b == '\t' || b == '\r'
}
