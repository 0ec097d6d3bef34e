// Copyright 2021 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package evtx

import "testing"

func TestArenaNewTokenAndElementGrow(t *testing.T) {
	a := newChunkArena()
	tok := a.newToken()
	tok.Op = opOpenStartElement
	if len(a.tokens) != 1 || a.tokens[0].Op != opOpenStartElement {
		t.Fatalf("unexpected arena token state: %+v", a.tokens)
	}

	elem := a.newElement()
	elem.Name = "Event"
	if len(a.elements) != 1 || a.elements[0].Name != "Event" {
		t.Fatalf("unexpected arena element state: %+v", a.elements)
	}
}

func TestArenaResetRetainsCapacity(t *testing.T) {
	a := newChunkArena()
	for i := 0; i < 10; i++ {
		a.newToken()
	}
	capBefore := cap(a.tokens)
	a.reset()
	if len(a.tokens) != 0 {
		t.Fatalf("reset should clear length, got %d", len(a.tokens))
	}
	if cap(a.tokens) != capBefore {
		t.Fatalf("reset should retain capacity: before=%d after=%d", capBefore, cap(a.tokens))
	}
}
