// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package evtx

import (
	"io"

	"golang.org/x/xerrors"
)

// recordSignature is the 4-byte magic at the start of every record.
var recordSignature = [4]byte{0x2a, 0x2a, 0x00, 0x00}

// RecordHeader is the fixed-size portion preceding a record's BinXML body.
type RecordHeader struct {
	Size      uint32
	RecordID  uint64
	Timestamp uint64 // FILETIME
}

const recordHeaderSize = 24 // signature(4) + size(4) + id(8) + timestamp(8)
const recordTrailerSize = 4 // trailing copy of size

// Record is one deserialized EVTX record: its header, the rendered IR
// tree, and the chunk it belongs to (kept for error context, not retained
// past the owning Chunk's lifetime).
type Record struct {
	Header RecordHeader
	Chunk  *Chunk
	Doc    *Document
}

// RecordIterator walks the records of a single chunk in file order. Obtain
// one from Chunk.Records. Next returns io.EOF once the chunk's declared
// free-space offset is reached.
type RecordIterator struct {
	chunk       *Chunk
	offset      uint32
	recordIndex int
}

// Records returns an iterator over c's records. Each call to Next always
// advances past a failed record by its declared size, whether or not the
// caller chooses to keep iterating; whether to stop after an error is the
// caller's decision (see Settings.ContinueOnRecordError, consulted by
// ParallelWalk).
func (c *Chunk) Records() *RecordIterator {
	return &RecordIterator{chunk: c, offset: ChunkHeaderSize}
}

// Index returns how many records this iterator has returned or skipped so
// far, for use in progress reporting or error messages.
func (it *RecordIterator) Index() int {
	return it.recordIndex
}

// WriteXML renders the record's document as XML to w. It forwards to
// r.Doc.WriteXML and is the public rendering surface callers should use
// instead of reaching into Doc directly.
func (r *Record) WriteXML(w io.Writer) error {
	return r.Doc.WriteXML(w)
}

// WriteJSON renders the record's document as JSON to w, subject to opts.
func (r *Record) WriteJSON(w io.Writer, opts JSONOptions) error {
	return r.Doc.WriteJSON(w, opts)
}

// Next decodes and returns the next record, or io.EOF when the chunk's
// used region has been fully walked. A record-level decoding failure is
// returned as an error; the walker has then already advanced past the
// failed record by its declared size, whatever the settings, and a
// subsequent Next call continues from there. When no size could be read,
// the walker moves to the end of the chunk's used region instead. A
// record's Size is checked only against the chunk buffer's length, not
// against FreeSpaceOffset; Next returns io.EOF once the walker reaches
// FreeSpaceOffset (or the chunk end when that offset is zero or too large).
func (it *RecordIterator) Next() (*Record, error) {
	limit := it.chunk.Header.FreeSpaceOffset
	if limit == 0 || limit > ChunkSize {
		limit = ChunkSize
	}
	if it.offset >= limit {
		return nil, io.EOF
	}

	rec, size, err := decodeRecord(it.chunk, it.offset)
	if err != nil {
		advance := size
		if advance == 0 {
			// No usable size was recoverable; nothing safe to skip to,
			// so stop walking this chunk rather than spin on one offset.
			start := it.offset
			it.offset = limit
			return nil, xerrors.Errorf("chunk %d record at offset %d: %w", it.chunk.Index, start, err)
		}
		it.offset += advance
		it.recordIndex++
		return nil, xerrors.Errorf("chunk %d record at offset %d: %w", it.chunk.Index, it.offset-advance, err)
	}

	it.offset += size
	it.recordIndex++
	return rec, nil
}

// decodeRecord decodes one record starting at offset within chunk's data,
// returning the record and its total on-disk size (header + body +
// trailer), even on error when the size field itself was readable, so the
// caller can still advance past it.
func decodeRecord(chunk *Chunk, offset uint32) (*Record, uint32, error) {
	buf := chunk.Data
	var sig [4]byte
	raw, err := readBytes(buf, offset, 4)
	if err != nil {
		return nil, 0, err
	}
	copy(sig[:], raw)
	if sig != recordSignature {
		return nil, 0, xerrors.Errorf("record signature: %w", ErrChunkSignatureMismatch)
	}

	size, err := readUint32(buf, offset+4)
	if err != nil {
		return nil, 0, err
	}
	if size < recordHeaderSize+recordTrailerSize || uint64(offset)+uint64(size) > uint64(len(buf)) {
		return nil, 0, &TruncatedRecordError{What: "record", Offset: offset, Need: size, Have: uint32(len(buf)) - offset}
	}

	recordID, err := readUint64(buf, offset+8)
	if err != nil {
		return nil, size, err
	}
	timestamp, err := readUint64(buf, offset+16)
	if err != nil {
		return nil, size, err
	}

	bodyStart := offset + recordHeaderSize
	bodyEnd := offset + size - recordTrailerSize

	tokens, _, err := decodeTokenStream(buf, bodyStart, bodyEnd, chunk, 0)
	if err != nil {
		return nil, size, xerrors.Errorf("binxml body: %w", err)
	}
	expanded, err := expandTemplates(tokens, chunk, 0)
	if err != nil {
		return nil, size, xerrors.Errorf("template expansion: %w", err)
	}

	doc := buildTree(expanded)
	return &Record{
		Header: RecordHeader{Size: size, RecordID: recordID, Timestamp: timestamp},
		Chunk:  chunk,
		Doc:    doc,
	}, size, nil
}
