// Copyright 2021 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package evtx

import "testing"

func TestRenderXMLEscapesReservedCharacters(t *testing.T) {
	doc := &Document{Root: &Element{
		Name: "Data",
		Attributes: []Attribute{
			{Name: "Name", Value: strValue(`a"b`)},
		},
		Children: []Node{
			{Kind: NodeText, Text: "<tag> & 'quote'"},
		},
	}}
	out, err := RenderXML(doc)
	if err != nil {
		t.Fatalf("RenderXML: %v", err)
	}
	want := `<Data Name="a&quot;b">&lt;tag&gt; &amp; 'quote'</Data>`
	if string(out) != want {
		t.Fatalf("RenderXML = %q, want %q", out, want)
	}
}

func TestRenderXMLSelfClosingElement(t *testing.T) {
	doc := &Document{Root: &Element{Name: "Empty"}}
	out, err := RenderXML(doc)
	if err != nil {
		t.Fatalf("RenderXML: %v", err)
	}
	if string(out) != "<Empty/>" {
		t.Fatalf("RenderXML = %q, want %q", out, "<Empty/>")
	}
}

func TestRenderXMLCDATAIsNotEscaped(t *testing.T) {
	doc := &Document{Root: &Element{
		Name: "Data",
		Children: []Node{
			{Kind: NodeCDATA, Text: "<raw> & stuff"},
		},
	}}
	out, err := RenderXML(doc)
	if err != nil {
		t.Fatalf("RenderXML: %v", err)
	}
	want := "<Data><![CDATA[<raw> & stuff]]></Data>"
	if string(out) != want {
		t.Fatalf("RenderXML = %q, want %q", out, want)
	}
}

func TestRenderXMLCharAndEntityRef(t *testing.T) {
	doc := &Document{Root: &Element{
		Name: "Data",
		Children: []Node{
			{Kind: NodeCharRef, Text: "65"},
			{Kind: NodeEntityRef, Text: "amp"},
		},
	}}
	out, err := RenderXML(doc)
	if err != nil {
		t.Fatalf("RenderXML: %v", err)
	}
	want := "<Data>&#65;&amp;</Data>"
	if string(out) != want {
		t.Fatalf("RenderXML = %q, want %q", out, want)
	}
}
