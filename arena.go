// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package evtx

// chunkArena is a chunk-scoped allocation pool of pre-sized backing slices
// for tokens, names and elements. Each Chunk gets its own arena, but record
// decoding and tree building do not allocate from it: token lists and
// elements are ordinary heap allocations, and reset is not called outside
// tests.
type chunkArena struct {
	tokens   []Token
	names    []Name
	elements []Element
}

// newChunkArena returns an arena with slices pre-sized for a chunk of
// average record density; the slices still grow normally via append if a
// chunk needs more.
func newChunkArena() *chunkArena {
	return &chunkArena{
		tokens:   make([]Token, 0, 256),
		names:    make([]Name, 0, 64),
		elements: make([]Element, 0, 64),
	}
}

// reset clears the arena's slices for reuse by the next chunk, retaining
// their underlying capacity.
func (a *chunkArena) reset() {
	a.tokens = a.tokens[:0]
	a.names = a.names[:0]
	a.elements = a.elements[:0]
}

// newToken appends a zero Token to the arena and returns a pointer into the
// arena's backing array. The pointer is only valid until the next reset.
func (a *chunkArena) newToken() *Token {
	a.tokens = append(a.tokens, Token{})
	return &a.tokens[len(a.tokens)-1]
}

// newElement appends a zero Element to the arena and returns a pointer into
// the arena's backing array. The pointer is only valid until the next
// reset.
func (a *chunkArena) newElement() *Element {
	a.elements = append(a.elements, Element{})
	return &a.elements[len(a.elements)-1]
}
