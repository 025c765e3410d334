// Package bcs provides minimal BCS (Binary Canonical Serialization) encoding
// and decoding for transaction structures. It implements only the subset
// needed for raw and signed transaction serialization.
// See: https://github.com/diem/bcs
package bcs

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Decoding errors.
var (
	// ErrUnexpectedEOF indicates the input ended before a value was complete.
	ErrUnexpectedEOF = errors.New("bcs: unexpected end of input")

	// ErrULEBTooLarge indicates a ULEB128 value exceeded 32 bits.
	ErrULEBTooLarge = errors.New("bcs: uleb128 value exceeds 32 bits")

	// ErrTrailingBytes indicates unconsumed bytes after a complete value.
	ErrTrailingBytes = errors.New("bcs: trailing bytes after value")
)

// maxSequenceLength bounds decoded sequence lengths to prevent huge
// allocations from corrupt input.
const maxSequenceLength = 1 << 24

// Serializer encodes values into BCS bytes.
type Serializer struct {
	buf []byte
}

// NewSerializer creates an empty serializer.
func NewSerializer() *Serializer {
	return &Serializer{}
}

// Bytes returns the encoded output.
func (s *Serializer) Bytes() []byte {
	return s.buf
}

// WriteBool writes a bool as a single byte.
func (s *Serializer) WriteBool(v bool) {
	if v {
		s.buf = append(s.buf, 1)
	} else {
		s.buf = append(s.buf, 0)
	}
}

// WriteU8 writes a single byte.
func (s *Serializer) WriteU8(v uint8) {
	s.buf = append(s.buf, v)
}

// WriteU16 writes a little-endian uint16.
func (s *Serializer) WriteU16(v uint16) {
	s.buf = binary.LittleEndian.AppendUint16(s.buf, v)
}

// WriteU32 writes a little-endian uint32.
func (s *Serializer) WriteU32(v uint32) {
	s.buf = binary.LittleEndian.AppendUint32(s.buf, v)
}

// WriteU64 writes a little-endian uint64.
func (s *Serializer) WriteU64(v uint64) {
	s.buf = binary.LittleEndian.AppendUint64(s.buf, v)
}

// WriteULEB128 writes an unsigned 32-bit value in ULEB128 form.
// Used for sequence lengths and enum variant indexes.
func (s *Serializer) WriteULEB128(v uint32) {
	for v >= 0x80 {
		s.buf = append(s.buf, byte(v)|0x80)
		v >>= 7
	}
	s.buf = append(s.buf, byte(v))
}

// WriteFixedBytes writes raw bytes with no length prefix.
func (s *Serializer) WriteFixedBytes(b []byte) {
	s.buf = append(s.buf, b...)
}

// WriteBytes writes a ULEB128 length prefix followed by the bytes.
func (s *Serializer) WriteBytes(b []byte) {
	s.WriteULEB128(uint32(len(b))) //nolint:gosec // G115: lengths are bounded by caller input sizes
	s.buf = append(s.buf, b...)
}

// WriteString writes a string as length-prefixed UTF-8 bytes.
func (s *Serializer) WriteString(v string) {
	s.WriteBytes([]byte(v))
}

// Deserializer decodes values from BCS bytes.
type Deserializer struct {
	buf []byte
	pos int
}

// NewDeserializer creates a deserializer over the given input.
func NewDeserializer(b []byte) *Deserializer {
	return &Deserializer{buf: b}
}

// Remaining returns the number of unconsumed bytes.
func (d *Deserializer) Remaining() int {
	return len(d.buf) - d.pos
}

// Finish returns ErrTrailingBytes if input remains unconsumed.
func (d *Deserializer) Finish() error {
	if d.Remaining() != 0 {
		return fmt.Errorf("%w: %d bytes", ErrTrailingBytes, d.Remaining())
	}
	return nil
}

func (d *Deserializer) take(n int) ([]byte, error) {
	if n < 0 || d.Remaining() < n {
		return nil, ErrUnexpectedEOF
	}
	b := d.buf[d.pos : d.pos+n]
	d.pos += n
	return b, nil
}

// ReadBool reads a single-byte bool.
func (d *Deserializer) ReadBool() (bool, error) {
	b, err := d.take(1)
	if err != nil {
		return false, err
	}
	switch b[0] {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("bcs: invalid bool byte 0x%02x", b[0])
	}
}

// ReadU8 reads a single byte.
func (d *Deserializer) ReadU8() (uint8, error) {
	b, err := d.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadU16 reads a little-endian uint16.
func (d *Deserializer) ReadU16() (uint16, error) {
	b, err := d.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// ReadU32 reads a little-endian uint32.
func (d *Deserializer) ReadU32() (uint32, error) {
	b, err := d.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadU64 reads a little-endian uint64.
func (d *Deserializer) ReadU64() (uint64, error) {
	b, err := d.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// ReadULEB128 reads an unsigned 32-bit ULEB128 value.
func (d *Deserializer) ReadULEB128() (uint32, error) {
	var value uint64
	for shift := 0; shift < 35; shift += 7 {
		b, err := d.take(1)
		if err != nil {
			return 0, err
		}
		value |= uint64(b[0]&0x7f) << shift
		if b[0]&0x80 == 0 {
			if value > 0xffffffff {
				return 0, ErrULEBTooLarge
			}
			return uint32(value), nil
		}
	}
	return 0, ErrULEBTooLarge
}

// ReadFixedBytes reads exactly n raw bytes.
func (d *Deserializer) ReadFixedBytes(n int) ([]byte, error) {
	b, err := d.take(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

// ReadBytes reads a ULEB128 length prefix followed by that many bytes.
func (d *Deserializer) ReadBytes() ([]byte, error) {
	n, err := d.ReadULEB128()
	if err != nil {
		return nil, err
	}
	if n > maxSequenceLength {
		return nil, fmt.Errorf("bcs: sequence length %d exceeds limit", n)
	}
	return d.ReadFixedBytes(int(n))
}

// ReadString reads a length-prefixed UTF-8 string.
func (d *Deserializer) ReadString() (string, error) {
	b, err := d.ReadBytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}
