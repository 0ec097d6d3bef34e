// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package evtx

// Name is an interned element or attribute name, resolved through a
// chunk's common string table.
type Name struct {
	// Offset is the absolute in-chunk byte offset this name was read from;
	// zero for names synthesized outside of a chunk (none currently are).
	Offset uint32
	Value  string
}

// Token is one decoded BinXML grammar token. Only the fields relevant to
// Op are populated; the rest are left at their zero value.
type Token struct {
	Op     opcode
	Offset uint32

	// OpenStartElement
	Name         Name
	HasAttrs     bool
	DependencyID int16

	// Attribute
	AttrName Name

	// Value / CDATASection / PIData
	Value TypedValue

	// CharRef (the code point, in decimal) / EntityRef (the entity name)
	Entity Name

	// PITarget
	PITarget Name

	// NormalSubstitution / OptionalSubstitution
	SubstitutionIndex uint16
	SubstitutionType  ValueType

	// TemplateInstance
	Template *TemplateInstance

	// StartOfStream (FragmentHeader)
	MajorVersion uint8
	MinorVersion uint8
	Flags        uint8

	// Children holds nested tokens for tokens that own a sub-stream. The
	// tokenizer flattens OpenStartElement's attribute list and element body
	// into the enclosing list, and neither it nor buildTree sets or reads
	// Children.
	Children []Token
}

// TypedValue is a closed tagged union over every BinXML value type. Exactly
// one field group is meaningful, selected by Type.
type TypedValue struct {
	Type  ValueType
	Array bool

	Str      string   // String, AnsiString, Sid-rendered, BinXml-rendered-as-xml
	StrArray []string  // array form of the above

	Int64  int64  // Int8/16/32/64
	UInt64 uint64 // UInt8/16/32/64, SizeT, HexInt32/64, EvtHandle, FileTime
	Real64 float64 // Real32 (widened), Real64
	Bool   bool

	IntArray   []int64
	UIntArray  []uint64
	RealArray  []float64
	BoolArray  []bool

	Bin   []byte // Binary
	Guid  [16]byte
	GuidArray [][16]byte

	// BinXml holds the raw (unexpanded) nested token list for a
	// ValueTypeBinXml value. Template expansion renders it to XML text in
	// Str; the tree builder does not turn it into an Element.
	BinXml []Token
}

// Substitution is one entry of a template's value descriptor table,
// declaring the expected type and size of the corresponding slot in a
// TemplateInstance's substitution array.
type Substitution struct {
	Index     uint16
	ValueType ValueType
	Size      uint16
	Optional  bool
}

// TemplateDefinition is a chunk-resident template: a GUID, its token
// skeleton (with NormalSubstitution/OptionalSubstitution placeholders),
// and the descriptor table read by the most recent TemplateInstance that
// used it. Expansion does not check substitution types against
// Descriptors.
type TemplateDefinition struct {
	GUID        [16]byte
	Offset      uint32
	Tokens      []Token
	Descriptors []Substitution
}

// TemplateInstance is one use of a TemplateDefinition within a record,
// pairing the (possibly chunk-cached, possibly inline) definition with the
// concrete substitution values supplied at this use site.
type TemplateInstance struct {
	Definition    *TemplateDefinition
	Substitutions []TypedValue
}
