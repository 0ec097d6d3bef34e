// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package evtx

import (
	"strconv"

	"golang.org/x/xerrors"
)

// decodeTokenStream decodes the flat BinXML token grammar from buf[offset:end]
// until it hits an EndOfStream token or the end boundary, returning the
// decoded tokens and the offset immediately past the last one consumed.
// chunk supplies the name and template caches token payloads reference by
// offset; depth guards against runaway recursion through nested
// ValueTypeBinXml substitutions and template-within-template references.
func decodeTokenStream(buf []byte, offset, end uint32, chunk *Chunk, depth int) ([]Token, uint32, error) {
	if depth > maxTemplateRecursionDepth {
		return nil, offset, ErrTemplateRecursionLimitExceeded
	}
	var tokens []Token
	for offset < end {
		raw, err := readUint8(buf, offset)
		if err != nil {
			return tokens, offset, err
		}
		op, flagged := maskOpcode(raw)
		tokStart := offset
		offset++

		switch op {
		case opEndOfStream:
			tokens = append(tokens, Token{Op: op, Offset: tokStart})
			return tokens, offset, nil

		case opStartOfStream:
			major, err := readUint8(buf, offset)
			if err != nil {
				return tokens, offset, err
			}
			minor, err := readUint8(buf, offset+1)
			if err != nil {
				return tokens, offset, err
			}
			flags, err := readUint8(buf, offset+2)
			if err != nil {
				return tokens, offset, err
			}
			offset += 3
			tokens = append(tokens, Token{Op: op, Offset: tokStart, MajorVersion: major, MinorVersion: minor, Flags: flags})

		case opOpenStartElement:
			depID, err := readUint16(buf, offset)
			if err != nil {
				return tokens, offset, err
			}
			_, err = readUint32(buf, offset+2) // element data size, unused: we trust the token grammar to self-terminate
			if err != nil {
				return tokens, offset, err
			}
			name, consumed, err := readNameRef(buf, offset+6, chunk)
			if err != nil {
				return tokens, offset, err
			}
			offset += 6 + consumed
			tokens = append(tokens, Token{Op: op, Offset: tokStart, Name: name, HasAttrs: flagged, DependencyID: int16(depID)})

		case opCloseStartElement, opCloseEmptyElement, opCloseElement:
			tokens = append(tokens, Token{Op: op, Offset: tokStart})

		case opAttribute:
			name, consumed, err := readNameRef(buf, offset, chunk)
			if err != nil {
				return tokens, offset, err
			}
			offset += consumed
			tokens = append(tokens, Token{Op: op, Offset: tokStart, AttrName: name})

		case opValue, opCDATASection:
			v, consumed, err := decodeTypedValue(buf, offset, chunk, depth)
			if err != nil {
				return tokens, offset, err
			}
			offset += consumed
			tokens = append(tokens, Token{Op: op, Offset: tokStart, Value: v})

		case opCharRef:
			cp, err := readUint16(buf, offset)
			if err != nil {
				return tokens, offset, err
			}
			offset += 2
			tokens = append(tokens, Token{Op: op, Offset: tokStart, Entity: Name{Value: strconv.Itoa(int(cp))}})

		case opEntityRef:
			name, consumed, err := readNameRef(buf, offset, chunk)
			if err != nil {
				return tokens, offset, err
			}
			offset += consumed
			tokens = append(tokens, Token{Op: op, Offset: tokStart, Entity: name})

		case opPITarget:
			name, consumed, err := readNameRef(buf, offset, chunk)
			if err != nil {
				return tokens, offset, err
			}
			offset += consumed
			tokens = append(tokens, Token{Op: op, Offset: tokStart, PITarget: name})

		case opPIData:
			s, consumed, err := readLenPrefixedUTF16String(buf, offset)
			if err != nil {
				return tokens, offset, err
			}
			offset += consumed
			tokens = append(tokens, Token{Op: op, Offset: tokStart, Value: TypedValue{Type: ValueTypeString, Str: s}})

		case opNormalSubstitution, opOptionalSubst:
			index, err := readUint16(buf, offset)
			if err != nil {
				return tokens, offset, err
			}
			valType, err := readUint8(buf, offset+2)
			if err != nil {
				return tokens, offset, err
			}
			offset += 3
			tokens = append(tokens, Token{
				Op: op, Offset: tokStart,
				SubstitutionIndex: index,
				SubstitutionType:  ValueType(valType),
			})

		case opTemplateInstance:
			inst, consumed, err := decodeTemplateInstance(buf, offset, chunk, depth)
			if err != nil {
				return tokens, offset, err
			}
			offset += consumed
			tokens = append(tokens, Token{Op: op, Offset: tokStart, Template: inst})

		default:
			return tokens, tokStart, &UnknownTokenError{Opcode: raw, Offset: tokStart}
		}
	}
	return tokens, offset, nil
}

// decodeTemplateInstance decodes a TemplateInstance token's body: a pointer
// to the (possibly inline) template definition, followed by the
// substitution descriptor table and the substitution values themselves.
func decodeTemplateInstance(buf []byte, offset uint32, chunk *Chunk, depth int) (*TemplateInstance, uint32, error) {
	start := offset
	if _, err := readUint8(buf, offset); err != nil { // unknown/reserved byte
		return nil, 0, err
	}
	offset++
	if _, err := readUint32(buf, offset); err != nil { // template id, unused: definitions are keyed by offset
		return nil, 0, err
	}
	offset += 4
	defOffset, err := readUint32(buf, offset)
	if err != nil {
		return nil, 0, err
	}
	offset += 4

	def, err := chunk.templateAt(defOffset, depth)
	if err != nil {
		return nil, 0, xerrors.Errorf("template instance at %d: %w", start, err)
	}
	// If the definition was stored inline immediately following this
	// pointer field, skip its on-disk span (guid+size fields plus the
	// fragment body) before reading the substitution table.
	if defOffset == offset {
		inlineSize, err := readUint32(buf, offset+20)
		if err != nil {
			return nil, 0, err
		}
		offset += 24 + inlineSize
	}

	count, err := readUint32(buf, offset)
	if err != nil {
		return nil, 0, err
	}
	offset += 4

	descriptors := make([]Substitution, count)
	for i := uint32(0); i < count; i++ {
		size, err := readUint16(buf, offset)
		if err != nil {
			return nil, 0, err
		}
		typ, err := readUint8(buf, offset+2)
		if err != nil {
			return nil, 0, err
		}
		offset += 4 // size(2) + type(1) + padding(1)
		descriptors[i] = Substitution{Index: uint16(i), ValueType: ValueType(typ), Size: size, Optional: size == 0}
	}
	def.Descriptors = descriptors

	values := make([]TypedValue, count)
	for i := uint32(0); i < count; i++ {
		v, consumed, err := decodeSubstitutionValue(buf, offset, descriptors[i], chunk, depth)
		if err != nil {
			return nil, 0, err
		}
		offset += consumed
		values[i] = v
	}

	return &TemplateInstance{Definition: def, Substitutions: values}, offset - start, nil
}
