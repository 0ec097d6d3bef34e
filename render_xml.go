// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package evtx

import (
	"bytes"
	"io"
)

// WriteXML renders the document as XML to w, in declaration order, using
// the same UTF-16-aware escaping rules the original Windows Event Viewer
// XML view applies.
func (d *Document) WriteXML(w io.Writer) error {
	bw := &bufWriter{w: w}
	if d.Root != nil {
		writeElementXML(bw, d.Root)
	}
	return bw.err
}

// RenderXML renders the document as an XML byte slice.
func RenderXML(d *Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := d.WriteXML(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// renderDocumentXML is the internal single-pass entry point used when a
// nested BinXml-typed value needs its text representation computed eagerly
// at decode time.
func renderDocumentXML(d *Document) (string, error) {
	b, err := RenderXML(d)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// bufWriter adapts an io.Writer into a small helper that remembers the
// first write error, so render functions can ignore per-call errors and
// check once at the end — mirroring the pattern Go's own encoding/json
// Encoder uses internally.
type bufWriter struct {
	w   io.Writer
	err error
}

func (b *bufWriter) writeString(s string) {
	if b.err != nil {
		return
	}
	_, b.err = io.WriteString(b.w, s)
}

func writeElementXML(w *bufWriter, el *Element) {
	w.writeString("<")
	w.writeString(el.Name)
	for _, a := range el.Attributes {
		w.writeString(" ")
		w.writeString(a.Name)
		w.writeString(`="`)
		writeEscapedValueXML(w, a.Value, true)
		w.writeString(`"`)
	}
	if len(el.Children) == 0 {
		w.writeString("/>")
		return
	}
	w.writeString(">")
	for _, c := range el.Children {
		writeNodeXML(w, c)
	}
	w.writeString("</")
	w.writeString(el.Name)
	w.writeString(">")
}

func writeNodeXML(w *bufWriter, n Node) {
	switch n.Kind {
	case NodeElement:
		writeElementXML(w, n.Elem)
	case NodeText, NodeCDATA:
		if n.Kind == NodeCDATA {
			w.writeString("<![CDATA[")
			w.writeString(n.Text)
			w.writeString("]]>")
			return
		}
		w.writeString(escapeUTF16(utf16Units(n.Text), escapeModeXML, false))
	case NodeCharRef:
		w.writeString("&#")
		w.writeString(n.Text)
		w.writeString(";")
	case NodeEntityRef:
		w.writeString("&")
		w.writeString(n.Text)
		w.writeString(";")
	case NodeProcessingInstruction:
		w.writeString("<?")
		w.writeString(n.PITarget)
		if n.PIData != "" {
			w.writeString(" ")
			w.writeString(n.PIData)
		}
		w.writeString("?>")
	}
}

func writeEscapedValueXML(w *bufWriter, v TypedValue, inAttribute bool) {
	text := renderTypedValueText(v)
	w.writeString(escapeUTF16(utf16Units(text), escapeModeXML, inAttribute))
}

// utf16Units re-encodes a decoded Go string back to UTF-16 code units so it
// can pass through the same escaping primitive used for values read
// directly off the wire. Values produced internally (numbers, GUIDs,
// timestamps) are always ASCII, so this round trip is lossless for them;
// for string-typed values the bytes already came from decodeUTF16 and
// round-trip exactly except for the lone surrogates that were already
// dropped on the way in.
func utf16Units(s string) []uint16 {
	return encodeUTF16(s)
}
