// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package evtx

import (
	"encoding/binary"
	"errors"
	"math"

	"golang.org/x/text/encoding/unicode"
)

// utf16NameDecoder decodes plain, non-escaped UTF-16LE byte runs (chunk
// name-table entries) via x/text rather than a hand-rolled conversion.
// Value text that must round-trip through
// escapeUTF16Fast's code-unit-level fast path still goes through
// decodeUTF16 in utf16.go; this decoder is for names only, which are never
// escaped and commonly reused as map keys and element names.
var utf16NameDecoder = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()

// decodeUTF16NameBytes decodes a raw (unterminated) UTF-16LE byte run to a
// Go string using utf16NameDecoder. On malformed input it falls back to
// decodeUTF16's lossy unit-by-unit conversion rather than surfacing a
// decode error for what is, at worst, a cosmetic name.
func decodeUTF16NameBytes(raw []byte) string {
	s, err := utf16NameDecoder.Bytes(raw)
	if err != nil {
		units := make([]uint16, len(raw)/2)
		for i := range units {
			units[i] = binary.LittleEndian.Uint16(raw[i*2:])
		}
		return decodeUTF16(units)
	}
	return string(s)
}

// Sentinel errors for conditions with no payload. Parameterized failures
// (TruncatedRecordError, UnknownTokenError, UnknownValueTypeError) live in
// errors.go.
var (
	// ErrOutsideBoundary is returned when a read would cross the end of the
	// slice it is bounded to.
	ErrOutsideBoundary = errors.New("evtx: read outside boundary")

	// ErrInvalidFileSignature is returned when the file header's 8-byte
	// magic is not "ElfFile\x00".
	ErrInvalidFileSignature = errors.New("evtx: invalid file signature")

	// ErrUnsupportedVersion is returned when the file header's major/minor
	// version is not one this module understands.
	ErrUnsupportedVersion = errors.New("evtx: unsupported file version")

	// ErrHeaderChecksumMismatch is returned when the file header CRC32 does
	// not match, and Settings.ValidateChecksums is true.
	ErrHeaderChecksumMismatch = errors.New("evtx: file header checksum mismatch")

	// ErrChunkSignatureMismatch is returned for a chunk whose 8-byte magic
	// is not "ElfChnk\x00".
	ErrChunkSignatureMismatch = errors.New("evtx: chunk signature mismatch")

	// ErrChunkChecksumMismatch is returned when a chunk's header or events
	// CRC32 does not match, and Settings.ValidateChecksums is true.
	ErrChunkChecksumMismatch = errors.New("evtx: chunk checksum mismatch")

	// ErrSubstitutionIndexOutOfRange is returned when a Substitution token
	// references an index beyond the enclosing template instance's
	// substitution array.
	ErrSubstitutionIndexOutOfRange = errors.New("evtx: substitution index out of range")

	// ErrTemplateRecursionLimitExceeded is returned when expanding
	// BinXML-typed substitutions nests deeper than maxTemplateRecursionDepth.
	ErrTemplateRecursionLimitExceeded = errors.New("evtx: template recursion limit exceeded")

	// ErrUtf16Decode reports a UTF-16LE span that cannot be interpreted.
	// No decoder in this package returns it: every UTF-16 path drops lone
	// surrogates instead of failing, and none of them can be switched to a
	// strict mode.
	ErrUtf16Decode = errors.New("evtx: invalid utf-16 data")
)

// readUint8 reads a single byte at offset.
func readUint8(buf []byte, offset uint32) (uint8, error) {
	if uint64(offset)+1 > uint64(len(buf)) {
		return 0, ErrOutsideBoundary
	}
	return buf[offset], nil
}

// readUint16 reads a little-endian uint16 at offset.
func readUint16(buf []byte, offset uint32) (uint16, error) {
	if uint64(offset)+2 > uint64(len(buf)) {
		return 0, ErrOutsideBoundary
	}
	return binary.LittleEndian.Uint16(buf[offset:]), nil
}

// readUint32 reads a little-endian uint32 at offset.
func readUint32(buf []byte, offset uint32) (uint32, error) {
	if uint64(offset)+4 > uint64(len(buf)) {
		return 0, ErrOutsideBoundary
	}
	return binary.LittleEndian.Uint32(buf[offset:]), nil
}

// readUint64 reads a little-endian uint64 at offset.
func readUint64(buf []byte, offset uint32) (uint64, error) {
	if uint64(offset)+8 > uint64(len(buf)) {
		return 0, ErrOutsideBoundary
	}
	return binary.LittleEndian.Uint64(buf[offset:]), nil
}

// readFloat32 reads a little-endian IEEE-754 float32 at offset.
func readFloat32(buf []byte, offset uint32) (float32, error) {
	bits, err := readUint32(buf, offset)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(bits), nil
}

// readFloat64 reads a little-endian IEEE-754 float64 at offset.
func readFloat64(buf []byte, offset uint32) (float64, error) {
	bits, err := readUint64(buf, offset)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(bits), nil
}

// readBytes returns a borrowed sub-slice [offset, offset+size).
func readBytes(buf []byte, offset, size uint32) ([]byte, error) {
	end := uint64(offset) + uint64(size)
	if end > uint64(len(buf)) {
		return nil, ErrOutsideBoundary
	}
	return buf[offset:end], nil
}

// readGUID reads a 16-byte GUID at offset, in the mixed-endian layout
// Windows uses on the wire (first three fields little-endian, remainder raw
// bytes, carried through verbatim here and only reordered at render time).
func readGUID(buf []byte, offset uint32) ([16]byte, error) {
	var g [16]byte
	raw, err := readBytes(buf, offset, 16)
	if err != nil {
		return g, err
	}
	copy(g[:], raw)
	return g, nil
}

// readUTF16Units reads count little-endian UTF-16 code units starting at
// offset and returns them as a []uint16 (copied out because the underlying
// byte slice has no natural uint16 alignment guarantee).
func readUTF16Units(buf []byte, offset uint32, count uint16) ([]uint16, error) {
	byteLen := uint32(count) * 2
	raw, err := readBytes(buf, offset, byteLen)
	if err != nil {
		return nil, err
	}
	units := make([]uint16, count)
	for i := range units {
		units[i] = binary.LittleEndian.Uint16(raw[i*2:])
	}
	return units, nil
}

// readLenPrefixedUTF16String reads a u16 unit count followed by that many
// UTF-16LE code units, decoded to a Go string, and returns the total number
// of bytes consumed. This is the shape used by string-typed BinXML values,
// distinct from the chunk's name table entries (see nameAt in chunk.go)
// which carry their own hash/length header.
func readLenPrefixedUTF16String(buf []byte, offset uint32) (string, uint32, error) {
	count, err := readUint16(buf, offset)
	if err != nil {
		return "", 0, err
	}
	units, err := readUTF16Units(buf, offset+2, count)
	if err != nil {
		return "", 0, err
	}
	return decodeUTF16(units), 2 + uint32(count)*2, nil
}
