// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package evtx

import (
	"bytes"
	"io"
	"strconv"
)

// AttributeMode controls how an element's attributes are represented in
// the JSON rendering.
type AttributeMode int

const (
	// AttributesMerged writes attributes as sibling keys alongside the
	// element's own children, the default Windows Event Viewer behavior.
	AttributesMerged AttributeMode = iota
	// AttributesSeparate nests attributes under a "#attributes" key
	// instead of merging them into the parent object.
	AttributesSeparate
)

// JSONOptions controls the JSON rendering.
type JSONOptions struct {
	Attributes AttributeMode
	Indent     string // "" for compact output
}

// WriteJSON renders the document as JSON to w.
func (d *Document) WriteJSON(w io.Writer, opts JSONOptions) error {
	jw := &jsonWriter{w: &bufWriter{w: w}, indent: opts.Indent}
	if d.Root == nil {
		jw.w.writeString("{}")
		return jw.w.err
	}
	writeElementJSON(jw, d.Root, opts, 0)
	return jw.w.err
}

// RenderJSON renders the document as a JSON byte slice.
func RenderJSON(d *Document, opts JSONOptions) ([]byte, error) {
	var buf bytes.Buffer
	if err := d.WriteJSON(&buf, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type jsonWriter struct {
	w      *bufWriter
	indent string
}

func (jw *jsonWriter) newline(depth int) {
	if jw.indent == "" {
		return
	}
	jw.w.writeString("\n")
	for i := 0; i < depth; i++ {
		jw.w.writeString(jw.indent)
	}
}

func writeJSONString(w *bufWriter, s string) {
	w.writeString(`"`)
	w.writeString(escapeUTF16(utf16Units(s), escapeModeJSON, false))
	w.writeString(`"`)
}

// writeElementJSON writes the root element el as a JSON object whose single
// key is el's own name, wrapping every record in its root element's name.
// Child elements are written by writeElementBodyJSON, whose caller writes
// the "Name": key before the body.
func writeElementJSON(jw *jsonWriter, el *Element, opts JSONOptions, depth int) {
	jw.w.writeString("{")
	writeJSONString(jw.w, el.Name)
	jw.w.writeString(":")
	writeElementBodyJSON(jw, el, opts, depth+1)
	jw.newline(depth)
	jw.w.writeString("}")
}

// writeElementBodyJSON writes the value (not the key) representing one
// element: either a plain string, when the element has no attributes and
// only text children, or an object folding attributes and same-name
// sibling groups (rendered as arrays) together.
func writeElementBodyJSON(jw *jsonWriter, el *Element, opts JSONOptions, depth int) {
	if len(el.Attributes) == 0 && isPurelyTextual(el) {
		writeJSONString(jw.w, childText(el))
		return
	}

	jw.w.writeString("{")
	first := true
	writeComma := func() {
		if !first {
			jw.w.writeString(",")
		}
		first = false
		jw.newline(depth)
	}

	if len(el.Attributes) > 0 {
		switch opts.Attributes {
		case AttributesSeparate:
			writeComma()
			writeJSONString(jw.w, "#attributes")
			jw.w.writeString(":{")
			for i, a := range el.Attributes {
				if i > 0 {
					jw.w.writeString(",")
				}
				writeJSONString(jw.w, a.Name)
				jw.w.writeString(":")
				writeTypedValueJSON(jw.w, a.Value)
			}
			jw.w.writeString("}")
		default:
			for _, a := range el.Attributes {
				writeComma()
				writeJSONString(jw.w, a.Name)
				jw.w.writeString(":")
				writeTypedValueJSON(jw.w, a.Value)
			}
		}
	}

	for _, group := range groupChildrenByName(el.Children) {
		writeComma()
		writeJSONString(jw.w, group.name)
		jw.w.writeString(":")
		if len(group.elems) == 1 {
			writeElementBodyJSON(jw, group.elems[0], opts, depth+1)
			continue
		}
		jw.w.writeString("[")
		for i, child := range group.elems {
			if i > 0 {
				jw.w.writeString(",")
			}
			jw.newline(depth + 1)
			writeElementBodyJSON(jw, child, opts, depth+2)
		}
		jw.newline(depth)
		jw.w.writeString("]")
	}

	if text := directText(el); text != "" && (len(el.Attributes) > 0 || hasElementChildren(el)) {
		writeComma()
		writeJSONString(jw.w, "#text")
		jw.w.writeString(":")
		writeJSONString(jw.w, text)
	}

	jw.newline(depth - 1)
	jw.w.writeString("}")
}

func writeTypedValueJSON(w *bufWriter, v TypedValue) {
	// A Null-typed value expands to an empty string, matching
	// renderTypedValueText's handling of the same case for the XML path.
	if !v.Array && isNumericValueType(v.Type) {
		w.writeString(renderTypedValueText(v))
		return
	}
	if !v.Array {
		switch v.Type {
		case ValueTypeInt64:
			if v.Int64 >= -maxSafeJSONInteger && v.Int64 <= maxSafeJSONInteger {
				w.writeString(strconv.FormatInt(v.Int64, 10))
				return
			}
		case ValueTypeUInt64:
			if v.UInt64 <= uint64(maxSafeJSONInteger) {
				w.writeString(strconv.FormatUint(v.UInt64, 10))
				return
			}
		}
	}
	if !v.Array && v.Type == ValueTypeBinary {
		// Match encoding/json's own convention for []byte fields, rather
		// than Event Viewer's uppercase-hex XML rendering.
		writeJSONString(w, base64Binary(v.Bin))
		return
	}
	writeJSONString(w, renderTypedValueText(v))
}

type nameGroup struct {
	name  string
	elems []*Element
}

// groupChildrenByName folds consecutive and non-consecutive same-name
// element children into arrays, preserving first-occurrence order, the
// same behavior Windows Event Viewer's JSON export uses for repeated
// EventData/Data elements.
func groupChildrenByName(children []Node) []nameGroup {
	var groups []nameGroup
	index := map[string]int{}
	for _, c := range children {
		if c.Kind != NodeElement {
			continue
		}
		if i, ok := index[c.Elem.Name]; ok {
			groups[i].elems = append(groups[i].elems, c.Elem)
			continue
		}
		index[c.Elem.Name] = len(groups)
		groups = append(groups, nameGroup{name: c.Elem.Name, elems: []*Element{c.Elem}})
	}
	return groups
}

func isPurelyTextual(el *Element) bool {
	if hasElementChildren(el) {
		return false
	}
	return true
}

func hasElementChildren(el *Element) bool {
	for _, c := range el.Children {
		if c.Kind == NodeElement {
			return true
		}
	}
	return false
}

func childText(el *Element) string {
	var b bytes.Buffer
	for _, c := range el.Children {
		if c.Kind == NodeText || c.Kind == NodeCDATA {
			b.WriteString(c.Text)
		}
	}
	return b.String()
}

func directText(el *Element) string {
	return childText(el)
}
