// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package evtx

import "hash/crc32"

// FileHeader is the fixed 4096-byte header at the start of an EVTX file.
type FileHeader struct {
	Signature      [8]byte
	FirstChunkNum  uint64
	LastChunkNum   uint64
	NextRecordID   uint64
	HeaderSize     uint32
	MinorVersion   uint16
	MajorVersion   uint16
	HeaderBlockSize uint16
	ChunkCount     uint16
	Flags          uint32
	Checksum       uint32
}

// parseFileHeader reads and validates the file header occupying the first
// FileHeaderSize bytes of data.
func parseFileHeader(data []byte, validateChecksums bool) (FileHeader, error) {
	var h FileHeader
	if len(data) < FileHeaderSize {
		return h, &TruncatedRecordError{What: "file header", Need: FileHeaderSize, Have: uint32(len(data))}
	}
	copy(h.Signature[:], data[0:8])
	if h.Signature != fileSignature {
		return h, ErrInvalidFileSignature
	}

	var err error
	if h.FirstChunkNum, err = readUint64(data, 8); err != nil {
		return h, err
	}
	if h.LastChunkNum, err = readUint64(data, 16); err != nil {
		return h, err
	}
	if h.NextRecordID, err = readUint64(data, 24); err != nil {
		return h, err
	}
	if h.HeaderSize, err = readUint32(data, 32); err != nil {
		return h, err
	}
	if h.MinorVersion, err = readUint16(data, 36); err != nil {
		return h, err
	}
	if h.MajorVersion, err = readUint16(data, 38); err != nil {
		return h, err
	}
	if h.HeaderBlockSize, err = readUint16(data, 40); err != nil {
		return h, err
	}
	if h.ChunkCount, err = readUint16(data, 42); err != nil {
		return h, err
	}
	if h.Flags, err = readUint32(data, 120); err != nil {
		return h, err
	}
	if h.Checksum, err = readUint32(data, 124); err != nil {
		return h, err
	}

	if h.MajorVersion != 3 {
		return h, ErrUnsupportedVersion
	}

	if validateChecksums {
		sum := crc32.ChecksumIEEE(data[0:fileHeaderChecksummedSize])
		if sum != h.Checksum {
			return h, ErrHeaderChecksumMismatch
		}
	}

	return h, nil
}

// Dirty reports whether the file was not closed cleanly.
func (h FileHeader) Dirty() bool { return h.Flags&FileFlagDirty != 0 }

// Full reports whether the file reached its configured maximum size.
func (h FileHeader) Full() bool { return h.Flags&FileFlagFull != 0 }
