// Copyright 2021 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package evtx

import (
	"encoding/binary"
	"hash/crc32"
	"testing"
)

func buildMinimalFileHeader() []byte {
	buf := make([]byte, FileHeaderSize)
	copy(buf[0:8], fileSignature[:])
	binary.LittleEndian.PutUint16(buf[38:], 3) // major version
	sum := crc32.ChecksumIEEE(buf[0:fileHeaderChecksummedSize])
	binary.LittleEndian.PutUint32(buf[124:], sum)
	return buf
}

func TestParseFileHeaderValid(t *testing.T) {
	buf := buildMinimalFileHeader()
	h, err := parseFileHeader(buf, true)
	if err != nil {
		t.Fatalf("parseFileHeader: %v", err)
	}
	if h.MajorVersion != 3 {
		t.Fatalf("MajorVersion = %d, want 3", h.MajorVersion)
	}
}

func TestParseFileHeaderBadSignature(t *testing.T) {
	buf := buildMinimalFileHeader()
	buf[0] = 'X'
	if _, err := parseFileHeader(buf, true); err != ErrInvalidFileSignature {
		t.Fatalf("err = %v, want ErrInvalidFileSignature", err)
	}
}

func TestParseFileHeaderUnsupportedVersion(t *testing.T) {
	buf := buildMinimalFileHeader()
	binary.LittleEndian.PutUint16(buf[38:], 1)
	if _, err := parseFileHeader(buf, false); err != ErrUnsupportedVersion {
		t.Fatalf("err = %v, want ErrUnsupportedVersion", err)
	}
}

func TestParseFileHeaderChecksumMismatch(t *testing.T) {
	buf := buildMinimalFileHeader()
	buf[124] ^= 0xFF
	if _, err := parseFileHeader(buf, true); err != ErrHeaderChecksumMismatch {
		t.Fatalf("err = %v, want ErrHeaderChecksumMismatch", err)
	}
}

func TestFileHeaderDirtyAndFull(t *testing.T) {
	h := FileHeader{Flags: FileFlagDirty}
	if !h.Dirty() || h.Full() {
		t.Fatalf("unexpected flags: dirty=%v full=%v", h.Dirty(), h.Full())
	}
	h = FileHeader{Flags: FileFlagFull}
	if h.Dirty() || !h.Full() {
		t.Fatalf("unexpected flags: dirty=%v full=%v", h.Dirty(), h.Full())
	}
}
