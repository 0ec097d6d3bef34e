// Copyright 2021 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package evtx

import (
	"encoding/binary"
	"hash/crc32"
	"testing"
	"unicode/utf16"
)

// binWriter is a small fixed-origin byte buffer writer used only by tests
// to hand-assemble synthetic EVTX chunks, since no sample .evtx files are
// bundled with this module.
type binWriter struct {
	base uint32 // absolute chunk offset that buf[0] corresponds to
	buf  []byte
}

func newBinWriter(base uint32) *binWriter {
	return &binWriter{base: base}
}

// pos returns the absolute chunk offset of the next byte to be written.
func (w *binWriter) pos() uint32 {
	return w.base + uint32(len(w.buf))
}

func (w *binWriter) u8(v uint8) {
	w.buf = append(w.buf, v)
}

func (w *binWriter) u16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *binWriter) u32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *binWriter) u32At(off uint32, v uint32) {
	binary.LittleEndian.PutUint32(w.buf[off-w.base:], v)
}

func (w *binWriter) u64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *binWriter) bytes(b []byte) {
	w.buf = append(w.buf, b...)
}

func (w *binWriter) utf16String(s string) {
	for _, u := range utf16.Encode([]rune(s)) {
		w.u16(u)
	}
}

// name writes a fresh (first-occurrence) interned name entry at the
// writer's current position and returns its absolute offset.
func (w *binWriter) name(s string) uint32 {
	off := w.pos()
	w.u32(0) // next_offset, unused by the decoder
	w.u16(0) // hash, unused by the decoder
	w.u16(uint16(len(utf16.Encode([]rune(s)))))
	w.utf16String(s)
	w.u16(0) // null terminator
	return off
}

// openStartElement writes an OpenStartElement token for name (written
// inline, as the test fixtures only ever use each name once).
func (w *binWriter) openStartElement(name string) {
	w.u8(byte(opOpenStartElement))
	w.u16(0)          // dependency id
	w.u32(0)          // element data size, ignored by the decoder
	nameFieldOff := w.pos()
	w.u32(nameFieldOff + 4) // pointer to the name data written immediately after
	w.name(name)
}

func (w *binWriter) attribute(name string) {
	w.u8(byte(opAttribute))
	nameFieldOff := w.pos()
	w.u32(nameFieldOff + 4)
	w.name(name)
}

func (w *binWriter) closeStartElement() { w.u8(byte(opCloseStartElement)) }
func (w *binWriter) closeElement()      { w.u8(byte(opCloseElement)) }
func (w *binWriter) endOfStream()       { w.u8(byte(opEndOfStream)) }

func (w *binWriter) startOfStream() {
	w.u8(byte(opStartOfStream))
	w.u8(1) // major
	w.u8(1) // minor
	w.u8(0) // flags
}

// stringValue writes a Value token carrying a String payload.
func (w *binWriter) stringValue(s string) {
	w.u8(byte(opValue))
	w.u8(byte(ValueTypeString))
	w.u16(uint16(len(utf16.Encode([]rune(s)))))
	w.utf16String(s)
}

// buildSyntheticFile assembles a minimal one-chunk, one-record EVTX image
// whose record body is:
//
//	<Event Id="42">hello</Event>
//
// with correct file/chunk checksums, for exercising the full decode path
// without a real sample file.
func buildSyntheticFile(t *testing.T) []byte {
	t.Helper()

	chunk := newBinWriter(0)

	// Reserve the 512-byte chunk header region; it is patched in below
	// once the checksums are known.
	header := make([]byte, ChunkHeaderSize)
	copy(header[0:8], chunkSignature[:])
	chunk.buf = header

	record := newBinWriter(chunk.pos() + recordHeaderSize)
	record.startOfStream()
	record.openStartElement("Event")
	record.attribute("Id")
	record.stringValue("42")
	record.closeStartElement()
	record.stringValue("hello")
	record.closeElement()
	record.endOfStream()

	recordSize := recordHeaderSize + uint32(len(record.buf)) + recordTrailerSize

	rec := newBinWriter(chunk.pos())
	rec.bytes(recordSignature[:])
	rec.u32(recordSize)
	rec.u64(1) // record id
	rec.u64(0) // timestamp
	rec.bytes(record.buf)
	rec.u32(recordSize)

	chunk.bytes(rec.buf)

	freeSpaceOffset := chunk.pos()
	for uint32(len(chunk.buf)) < ChunkSize {
		chunk.buf = append(chunk.buf, 0)
	}

	binary.LittleEndian.PutUint64(chunk.buf[8:], 1)               // first record num
	binary.LittleEndian.PutUint64(chunk.buf[16:], 1)               // last record num
	binary.LittleEndian.PutUint64(chunk.buf[24:], 1)               // first record id
	binary.LittleEndian.PutUint64(chunk.buf[32:], 1)               // last record id
	binary.LittleEndian.PutUint32(chunk.buf[40:], ChunkHeaderSize) // header size
	binary.LittleEndian.PutUint32(chunk.buf[44:], ChunkHeaderSize) // last record offset
	binary.LittleEndian.PutUint32(chunk.buf[48:], freeSpaceOffset)

	eventsSum := crc32.ChecksumIEEE(chunk.buf[ChunkHeaderSize:freeSpaceOffset])
	binary.LittleEndian.PutUint32(chunk.buf[52:], eventsSum)
	binary.LittleEndian.PutUint32(chunk.buf[120:], 0) // flags

	headerHash := crc32.NewIEEE()
	headerHash.Write(chunk.buf[0:chunkHeaderChecksummedSize1])
	headerHash.Write(chunk.buf[chunkHeaderFlagsEnd:ChunkHeaderSize])
	binary.LittleEndian.PutUint32(chunk.buf[124:], headerHash.Sum32())

	file := newBinWriter(0)
	fh := make([]byte, FileHeaderSize)
	copy(fh[0:8], fileSignature[:])
	file.buf = fh
	binary.LittleEndian.PutUint64(file.buf[8:], 0)  // first chunk num
	binary.LittleEndian.PutUint64(file.buf[16:], 0) // last chunk num
	binary.LittleEndian.PutUint64(file.buf[24:], 2) // next record id
	binary.LittleEndian.PutUint32(file.buf[32:], FileHeaderSize)
	binary.LittleEndian.PutUint16(file.buf[38:], 3) // major version
	binary.LittleEndian.PutUint16(file.buf[42:], 1) // chunk count

	sum := crc32.ChecksumIEEE(file.buf[0:fileHeaderChecksummedSize])
	binary.LittleEndian.PutUint32(file.buf[124:], sum)

	return append(file.buf, chunk.buf...)
}
