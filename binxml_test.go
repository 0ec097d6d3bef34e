// Copyright 2021 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package evtx

import "testing"

func newTestChunk(t *testing.T, data []byte) *Chunk {
	t.Helper()
	full := make([]byte, ChunkSize)
	copy(full, data)
	return &Chunk{
		Data:      full,
		names:     make(map[uint32]nameEntry),
		templates: make(map[uint32]*TemplateDefinition),
		arena:     newChunkArena(),
	}
}

func TestDecodeTokenStreamUnknownOpcode(t *testing.T) {
	buf := []byte{0xFE}
	chunk := newTestChunk(t, buf)
	_, _, err := decodeTokenStream(chunk.Data, 0, 1, chunk, 0)
	var unk *UnknownTokenError
	if !errorsAs(err, &unk) {
		t.Fatalf("expected UnknownTokenError, got %v", err)
	}
	if unk.Opcode != 0xFE {
		t.Fatalf("Opcode = %#x, want 0xFE", unk.Opcode)
	}
}

func TestDecodeTokenStreamEndOfStream(t *testing.T) {
	buf := []byte{byte(opEndOfStream)}
	chunk := newTestChunk(t, buf)
	tokens, offset, err := decodeTokenStream(chunk.Data, 0, uint32(len(buf)), chunk, 0)
	if err != nil {
		t.Fatalf("decodeTokenStream: %v", err)
	}
	if len(tokens) != 1 || tokens[0].Op != opEndOfStream {
		t.Fatalf("expected a single EndOfStream token, got %+v", tokens)
	}
	if offset != 1 {
		t.Fatalf("offset = %d, want 1", offset)
	}
}

func TestNameAtCachesResolvedEntry(t *testing.T) {
	w := newBinWriter(0)
	off := w.name("TestName")
	chunk := newTestChunk(t, w.buf)

	name, size, err := chunk.nameAt(off)
	if err != nil {
		t.Fatalf("nameAt: %v", err)
	}
	if name.Value != "TestName" {
		t.Fatalf("name = %q, want %q", name.Value, "TestName")
	}
	if size != 8+uint32(len("TestName"))*2+2 {
		t.Fatalf("unexpected entry size %d", size)
	}
	if _, ok := chunk.names[off]; !ok {
		t.Fatal("expected nameAt to populate the cache")
	}
}

// errorsAs is a tiny local helper avoiding an import of errors.As for this
// single-type check.
func errorsAs(err error, target **UnknownTokenError) bool {
	if e, ok := err.(*UnknownTokenError); ok {
		*target = e
		return true
	}
	return false
}
