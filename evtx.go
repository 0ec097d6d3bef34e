// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package evtx parses the Windows EVTX binary event log format: a chunked,
// little-endian container holding template-compressed BinXML records. It
// walks the file and chunk structure, deserializes each record's BinXML
// token stream against the owning chunk's template table, expands template
// substitutions, and renders the result as XML or JSON.
package evtx

// File-level signature, found at offset 0 of every EVTX file.
var fileSignature = [8]byte{'E', 'l', 'f', 'F', 'i', 'l', 'e', 0}

// Chunk-level signature, found at offset 0 of every 65536-byte chunk.
var chunkSignature = [8]byte{'E', 'l', 'f', 'C', 'h', 'n', 'k', 0}

// Structural sizes, all fixed by the format.
const (
	// FileHeaderSize is the size in bytes of the file header region; the
	// first chunk begins immediately after it.
	FileHeaderSize = 4096

	// ChunkSize is the fixed size in bytes of every chunk, header included.
	ChunkSize = 65536

	// ChunkHeaderSize is the size in bytes of the chunk header.
	ChunkHeaderSize = 512

	// chunkHeaderChecksummedSize1 and chunkHeaderFlagsEnd delimit the two
	// byte ranges of the chunk header that feed the header checksum:
	// [0, chunkHeaderChecksummedSize1) and [chunkHeaderFlagsEnd, ChunkHeaderSize).
	chunkHeaderChecksummedSize1 = 120
	chunkHeaderFlagsEnd         = 128

	// fileHeaderChecksummedSize is the byte range [0, fileHeaderChecksummedSize)
	// of the file header that feeds its CRC32.
	fileHeaderChecksummedSize = 120

	// commonStringBucketCount and templateBucketCount are the number of
	// hash-bucketed offset slots in the chunk header.
	commonStringBucketCount = 64
	templateBucketCount     = 32

	// maxTemplateRecursionDepth bounds BinXML-typed substitution expansion to
	// defeat maliciously cyclic templates.
	maxTemplateRecursionDepth = 10
)

// File header flags.
const (
	// FileFlagDirty indicates the file was not closed cleanly and may
	// contain a chunk still being written to.
	FileFlagDirty uint32 = 1 << 0

	// FileFlagFull indicates the file has reached its configured maximum
	// size and is no longer accepting new records.
	FileFlagFull uint32 = 1 << 1
)

// opcode is the single-byte BinXML token identifier. Most opcodes carry an
// optional flag in bit 0x40 ("has more"/"has attributes"); see maskOpcode.
type opcode uint8

const (
	opEndOfStream        opcode = 0x00
	opOpenStartElement   opcode = 0x01
	opCloseStartElement  opcode = 0x02
	opCloseEmptyElement  opcode = 0x03
	opCloseElement       opcode = 0x04
	opValue              opcode = 0x05
	opAttribute          opcode = 0x06
	opCDATASection       opcode = 0x07
	opCharRef            opcode = 0x08
	opEntityRef          opcode = 0x09
	opPITarget           opcode = 0x0A
	opPIData             opcode = 0x0B
	opTemplateInstance   opcode = 0x0C
	opNormalSubstitution opcode = 0x0D
	opOptionalSubst      opcode = 0x0E
	opStartOfStream      opcode = 0x0F

	opcodeFlagMask = 0x40

	// opDroppedOptionalSubst never appears on the wire. expandWithSubstitutions
	// emits it in place of a null OptionalSubstitution so buildTree can tell
	// "this element's only content was a present-but-empty value" (keep the
	// element) apart from "this element's only content was an omitted
	// optional substitution" (suppress the element), per the element-
	// suppression rule for wholly-absent optional content.
	opDroppedOptionalSubst opcode = 0xF0
)

// maskOpcode splits a raw token byte into its base opcode and "has
// more"/"has attributes" flag. The distilled format table lists both
// EntityRef and PITarget as having a flagged form 0x49, which collides; this
// implementation resolves that by applying the flag bit uniformly (see
// DESIGN.md), which is the only reading consistent with every other pair in
// the opcode table.
func maskOpcode(b byte) (op opcode, flagged bool) {
	flagged = b&opcodeFlagMask != 0
	return opcode(b &^ opcodeFlagMask), flagged
}

// ValueType is the single-byte tag of a BinXML typed value. The high bit
// (0x80) marks an array of the base type.
type ValueType uint8

const (
	ValueTypeNull       ValueType = 0x00
	ValueTypeString     ValueType = 0x01
	ValueTypeAnsiString ValueType = 0x02
	ValueTypeInt8       ValueType = 0x03
	ValueTypeUInt8      ValueType = 0x04
	ValueTypeInt16      ValueType = 0x05
	ValueTypeUInt16     ValueType = 0x06
	ValueTypeInt32      ValueType = 0x07
	ValueTypeUInt32     ValueType = 0x08
	ValueTypeInt64      ValueType = 0x09
	ValueTypeUInt64     ValueType = 0x0A
	ValueTypeReal32     ValueType = 0x0B
	ValueTypeReal64     ValueType = 0x0C
	ValueTypeBool       ValueType = 0x0D
	ValueTypeBinary     ValueType = 0x0E
	ValueTypeGuid       ValueType = 0x0F
	ValueTypeSizeT      ValueType = 0x10
	ValueTypeFileTime   ValueType = 0x11
	ValueTypeSysTime    ValueType = 0x12
	ValueTypeSid        ValueType = 0x13
	ValueTypeHexInt32   ValueType = 0x14
	ValueTypeHexInt64   ValueType = 0x15
	ValueTypeEvtHandle  ValueType = 0x20
	ValueTypeBinXml     ValueType = 0x21
	ValueTypeEvtXml     ValueType = 0x23

	valueTypeArrayFlag = 0x80
)

// String returns a human-readable name for the base value type, ignoring
// the array flag.
func (t ValueType) String() string {
	names := map[ValueType]string{
		ValueTypeNull:       "Null",
		ValueTypeString:     "String",
		ValueTypeAnsiString: "AnsiString",
		ValueTypeInt8:       "Int8",
		ValueTypeUInt8:      "UInt8",
		ValueTypeInt16:      "Int16",
		ValueTypeUInt16:     "UInt16",
		ValueTypeInt32:      "Int32",
		ValueTypeUInt32:     "UInt32",
		ValueTypeInt64:      "Int64",
		ValueTypeUInt64:     "UInt64",
		ValueTypeReal32:     "Real32",
		ValueTypeReal64:     "Real64",
		ValueTypeBool:       "Bool",
		ValueTypeBinary:     "Binary",
		ValueTypeGuid:       "Guid",
		ValueTypeSizeT:      "SizeT",
		ValueTypeFileTime:   "FileTime",
		ValueTypeSysTime:    "SysTime",
		ValueTypeSid:        "Sid",
		ValueTypeHexInt32:   "HexInt32",
		ValueTypeHexInt64:   "HexInt64",
		ValueTypeEvtHandle:  "EvtHandle",
		ValueTypeBinXml:     "BinXml",
		ValueTypeEvtXml:     "EvtXml",
	}
	base := t &^ valueTypeArrayFlag
	if n, ok := names[base]; ok {
		return n
	}
	return "Unknown"
}
