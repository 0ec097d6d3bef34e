// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package evtx

import (
	"hash/crc32"

	"golang.org/x/xerrors"
)

// ChunkHeader is the fixed 512-byte header at the start of every chunk.
type ChunkHeader struct {
	Signature        [8]byte
	FirstRecordNum   uint64
	LastRecordNum    uint64
	FirstRecordID    uint64
	LastRecordID     uint64
	HeaderSize       uint32
	LastRecordOffset uint32
	FreeSpaceOffset  uint32
	EventsChecksum   uint32
	Flags            uint32
	HeaderChecksum   uint32

	// CommonStringOffsets holds the 64 hash-bucket head offsets of the
	// per-chunk interned name table, each either 0 or pointing at a Name
	// entry within the chunk.
	CommonStringOffsets [commonStringBucketCount]uint32

	// TemplateOffsets holds the 32 hash-bucket head offsets of the
	// per-chunk template table.
	TemplateOffsets [templateBucketCount]uint32
}

// Chunk is one deserialized 64KB chunk: its header, the raw chunk bytes
// (needed because names and templates are resolved lazily by offset into
// it), and the name/template caches populated as records are walked.
type Chunk struct {
	Header    ChunkHeader
	Anomalies []string
	Data      []byte // the chunk's full ChunkSize-byte region
	Index     int    // 0-based chunk index within the file, for error context

	names     map[uint32]nameEntry
	templates map[uint32]*TemplateDefinition
	arena     *chunkArena
}

// nameEntry caches both a resolved Name and the on-disk byte span of its
// entry, the latter needed by callers that must skip over an inline
// (first-occurrence) copy of the name data within a token stream.
type nameEntry struct {
	Name Name
	Size uint32
}

// parseChunkHeader reads and validates the header of the chunk occupying
// data (which must be exactly ChunkSize bytes). validateChecksums controls
// whether the header and events CRC32 fields are checked.
func parseChunkHeader(data []byte, index int, validateChecksums bool) (*Chunk, error) {
	if len(data) != ChunkSize {
		return nil, xerrors.Errorf("chunk %d: %w", index, &TruncatedRecordError{
			What: "chunk", Need: ChunkSize, Have: uint32(len(data)),
		})
	}

	var h ChunkHeader
	copy(h.Signature[:], data[0:8])
	if h.Signature != chunkSignature {
		return nil, xerrors.Errorf("chunk %d: %w", index, ErrChunkSignatureMismatch)
	}

	var err error
	if h.FirstRecordNum, err = readUint64(data, 8); err != nil {
		return nil, err
	}
	if h.LastRecordNum, err = readUint64(data, 16); err != nil {
		return nil, err
	}
	if h.FirstRecordID, err = readUint64(data, 24); err != nil {
		return nil, err
	}
	if h.LastRecordID, err = readUint64(data, 32); err != nil {
		return nil, err
	}
	if h.HeaderSize, err = readUint32(data, 40); err != nil {
		return nil, err
	}
	if h.LastRecordOffset, err = readUint32(data, 44); err != nil {
		return nil, err
	}
	if h.FreeSpaceOffset, err = readUint32(data, 48); err != nil {
		return nil, err
	}
	if h.EventsChecksum, err = readUint32(data, 52); err != nil {
		return nil, err
	}
	if h.Flags, err = readUint32(data, 120); err != nil {
		return nil, err
	}
	if h.HeaderChecksum, err = readUint32(data, 124); err != nil {
		return nil, err
	}
	for i := 0; i < commonStringBucketCount; i++ {
		off, err := readUint32(data, chunkHeaderFlagsEnd+uint32(i)*4)
		if err != nil {
			return nil, err
		}
		h.CommonStringOffsets[i] = off
	}
	for i := 0; i < templateBucketCount; i++ {
		off, err := readUint32(data, chunkHeaderFlagsEnd+commonStringBucketCount*4+uint32(i)*4)
		if err != nil {
			return nil, err
		}
		h.TemplateOffsets[i] = off
	}

	if validateChecksums {
		headerHash := crc32.NewIEEE()
		headerHash.Write(data[0:chunkHeaderChecksummedSize1])
		headerHash.Write(data[chunkHeaderFlagsEnd:ChunkHeaderSize])
		if headerHash.Sum32() != h.HeaderChecksum {
			return nil, xerrors.Errorf("chunk %d: %w", index, ErrChunkChecksumMismatch)
		}
		eventsEnd := h.FreeSpaceOffset
		if eventsEnd == 0 || eventsEnd > ChunkSize {
			eventsEnd = ChunkSize
		}
		if eventsEnd < ChunkHeaderSize {
			eventsEnd = ChunkHeaderSize
		}
		eventsSum := crc32.ChecksumIEEE(data[ChunkHeaderSize:eventsEnd])
		if eventsSum != h.EventsChecksum {
			return nil, xerrors.Errorf("chunk %d: %w", index, ErrChunkChecksumMismatch)
		}
	}

	return &Chunk{
		Header:    h,
		Anomalies: ChunkAnomalies(h),
		Data:      data,
		Index:     index,
		names:     make(map[uint32]nameEntry),
		templates: make(map[uint32]*TemplateDefinition),
		arena:     newChunkArena(),
	}, nil
}

// nameAt resolves the interned name at the given absolute in-chunk offset,
// caching the result. The on-disk entry is {next_offset u32, hash u16,
// char_count u16, utf16 chars, null terminator}; next_offset chains
// same-bucket collisions and is not needed once the name itself is
// resolved by direct offset.
func (c *Chunk) nameAt(offset uint32) (Name, uint32, error) {
	if e, ok := c.names[offset]; ok {
		return e.Name, e.Size, nil
	}
	if _, err := readUint32(c.Data, offset); err != nil { // next_offset, unused here
		return Name{}, 0, err
	}
	if _, err := readUint16(c.Data, offset+4); err != nil { // hash, unused here
		return Name{}, 0, err
	}
	charCount, err := readUint16(c.Data, offset+6)
	if err != nil {
		return Name{}, 0, err
	}
	raw, err := readBytes(c.Data, offset+8, uint32(charCount)*2)
	if err != nil {
		return Name{}, 0, err
	}
	n := Name{Offset: offset, Value: decodeUTF16NameBytes(raw)}
	size := 8 + uint32(charCount)*2 + 2 // + null terminator
	c.names[offset] = nameEntry{Name: n, Size: size}
	return n, size, nil
}

// readNameRef reads a 4-byte name-offset pointer field at offset, resolves
// the Name it references, and returns the total number of bytes this
// reference occupies in the stream: 4 for the pointer, plus the name
// entry's own size if this is the name's first (inline) occurrence in the
// chunk, i.e. the pointer target is the byte immediately following the
// pointer field itself.
func readNameRef(buf []byte, offset uint32, chunk *Chunk) (Name, uint32, error) {
	nameOffset, err := readUint32(buf, offset)
	if err != nil {
		return Name{}, 0, err
	}
	name, size, err := chunk.nameAt(nameOffset)
	if err != nil {
		return Name{}, 0, err
	}
	consumed := uint32(4)
	if nameOffset == offset+4 {
		consumed += size
	}
	return name, consumed, nil
}

// templateAt resolves the template definition at the given absolute
// in-chunk offset, parsing and caching it on first use.
func (c *Chunk) templateAt(offset uint32, depth int) (*TemplateDefinition, error) {
	if t, ok := c.templates[offset]; ok {
		return t, nil
	}
	guid, err := readGUID(c.Data, offset+4)
	if err != nil {
		return nil, err
	}
	dataSize, err := readUint32(c.Data, offset+20)
	if err != nil {
		return nil, err
	}
	fragStart := offset + 24
	fragEnd := fragStart + dataSize
	if uint64(fragEnd) > uint64(len(c.Data)) {
		return nil, &TruncatedRecordError{What: "template definition", Offset: offset, Need: dataSize, Have: uint32(len(c.Data)) - fragStart}
	}
	tokens, _, err := decodeTokenStream(c.Data, fragStart, fragEnd, c, depth+1)
	if err != nil {
		return nil, err
	}
	def := &TemplateDefinition{GUID: guid, Offset: offset, Tokens: tokens}
	c.templates[offset] = def
	return def, nil
}
