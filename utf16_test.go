// Copyright 2021 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package evtx

import (
	"testing"
	"unicode/utf16"
)

func TestDecodeUTF16DropsLoneSurrogates(t *testing.T) {
	units := []uint16{'h', 'i', 0xD800, '!'}
	if got := decodeUTF16(units); got != "hi!" {
		t.Fatalf("decodeUTF16 = %q, want %q", got, "hi!")
	}
}

func TestDecodeUTF16SurrogatePair(t *testing.T) {
	r := utf16.Encode([]rune("\U0001F600"))
	if got := decodeUTF16(r); got != "\U0001F600" {
		t.Fatalf("decodeUTF16 = %q, want emoji", got)
	}
}

func TestEscapeUTF16XML(t *testing.T) {
	units := encodeUTF16(`<a> & "b"`)
	got := escapeUTF16(units, escapeModeXML, false)
	want := `&lt;a&gt; &amp; "b"`
	if got != want {
		t.Fatalf("escapeUTF16 = %q, want %q", got, want)
	}
}

func TestEscapeUTF16XMLAttribute(t *testing.T) {
	units := encodeUTF16(`"b"`)
	got := escapeUTF16(units, escapeModeXML, true)
	want := `&quot;b&quot;`
	if got != want {
		t.Fatalf("escapeUTF16 = %q, want %q", got, want)
	}
}

func TestEscapeUTF16JSON(t *testing.T) {
	units := encodeUTF16("a\"b\\c\nd")
	got := escapeUTF16(units, escapeModeJSON, false)
	want := `a\"b\\c\nd`
	if got != want {
		t.Fatalf("escapeUTF16 = %q, want %q", got, want)
	}
}

func TestEscapeUTF16JSONNamedControlEscapes(t *testing.T) {
	units := encodeUTF16("\b\f")
	got := escapeUTF16(units, escapeModeJSON, false)
	want := "\\b\\f"
	if got != want {
		t.Fatalf("escapeUTF16 = %q, want %q", got, want)
	}
}

func TestEscapeUTF16JSONHexEscapeIsUppercase(t *testing.T) {
	units := encodeUTF16("\x01\x1f")
	got := escapeUTF16(units, escapeModeJSON, false)
	want := "\\u0001\\u001F"
	if got != want {
		t.Fatalf("escapeUTF16 = %q, want %q", got, want)
	}
}

func TestEscapeUTF16FastMatchesScalar(t *testing.T) {
	cases := []string{
		"",
		"plain ascii text",
		`<tag attr="v">&amp;</tag>`,
		"line1\nline2\ttab\rcr",
		"\U0001F600 mixed unicode éè",
		string(rune(0x01)) + string(rune(0x02)),
		"\b\f",
	}
	for _, s := range cases {
		units := encodeUTF16(s)
		for _, mode := range []escapeMode{escapeModeXML, escapeModeJSON} {
			for _, inAttr := range []bool{false, true} {
				want := escapeUTF16(units, mode, inAttr)
				got := escapeUTF16Fast(units, mode, inAttr)
				if got != want {
					t.Fatalf("escapeUTF16Fast(%q, mode=%d, attr=%v) = %q, want %q", s, mode, inAttr, got, want)
				}
			}
		}
	}
}

// FuzzEscapeUTF16FastMatchesScalar checks that escapeUTF16Fast's word-at-a-
// time ASCII fast path never diverges from the scalar reference escaper,
// across arbitrary byte strings reinterpreted as UTF-16LE code units.
func FuzzEscapeUTF16FastMatchesScalar(f *testing.F) {
	seeds := []string{
		"",
		"hello world",
		`<a b="c">&amp;</a>`,
		"\x00\x01\x1f",
		"\U0001F600",
	}
	for _, s := range seeds {
		f.Add([]byte(s))
	}
	f.Fuzz(func(t *testing.T, raw []byte) {
		if len(raw) < 2 {
			return
		}
		n := len(raw) / 2
		units := make([]uint16, n)
		for i := 0; i < n; i++ {
			units[i] = uint16(raw[2*i]) | uint16(raw[2*i+1])<<8
		}
		for _, mode := range []escapeMode{escapeModeXML, escapeModeJSON} {
			for _, inAttr := range []bool{false, true} {
				want := escapeUTF16(units, mode, inAttr)
				got := escapeUTF16Fast(units, mode, inAttr)
				if got != want {
					t.Fatalf("mismatch for units=%v mode=%d attr=%v: got %q want %q", units, mode, inAttr, got, want)
				}
			}
		}
	})
}
