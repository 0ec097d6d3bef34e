// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package evtx

import "fmt"

// TruncatedRecordError reports that a read needed more bytes than were
// available within the buffer it was bounded to. What names the field or
// token being decoded when the truncation was noticed.
type TruncatedRecordError struct {
	What   string
	Offset uint32
	Need   uint32
	Have   uint32
}

func (e *TruncatedRecordError) Error() string {
	return fmt.Sprintf("evtx: truncated %s at offset %d: need %d bytes, have %d", e.What, e.Offset, e.Need, e.Have)
}

// UnknownTokenError reports a BinXML opcode byte that does not match any
// entry in the token grammar.
type UnknownTokenError struct {
	Opcode byte
	Offset uint32
}

func (e *UnknownTokenError) Error() string {
	return fmt.Sprintf("evtx: unknown binxml token 0x%02x at offset %d", e.Opcode, e.Offset)
}

// UnknownValueTypeError reports a TypedValue type byte that does not match
// any entry in the value type table.
type UnknownValueTypeError struct {
	Type   byte
	Offset uint32
}

func (e *UnknownValueTypeError) Error() string {
	return fmt.Sprintf("evtx: unknown value type 0x%02x at offset %d", e.Type, e.Offset)
}

// RenderError wraps a failure that occurred while rendering an already
// successfully deserialized record, naming which record and renderer were
// involved.
type RenderError struct {
	RecordID uint64
	Renderer string
	Err      error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("evtx: render record %d with %s: %v", e.RecordID, e.Renderer, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}
