// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package evtx

// decodeTypedValue decodes a self-describing value as it appears inline in
// a Value or CDATASection token: a one-byte type tag followed by the
// type's encoding. It returns the decoded value and the number of bytes
// consumed, including the type tag.
func decodeTypedValue(buf []byte, offset uint32, chunk *Chunk, depth int) (TypedValue, uint32, error) {
	typ, err := readUint8(buf, offset)
	if err != nil {
		return TypedValue{}, 0, err
	}
	v, consumed, err := decodeValueBody(buf, offset+1, ValueType(typ), 0, chunk, depth)
	if err != nil {
		return TypedValue{}, 0, err
	}
	return v, 1 + consumed, nil
}

// decodeSubstitutionValue decodes the value backing one substitution
// descriptor. Unlike decodeTypedValue, the type is already known (from the
// descriptor) rather than tagged inline, and variable-length types are
// bounded by the descriptor's declared byte size rather than their own
// internal length prefix.
func decodeSubstitutionValue(buf []byte, offset uint32, desc Substitution, chunk *Chunk, depth int) (TypedValue, uint32, error) {
	if desc.Optional && desc.Size == 0 {
		return TypedValue{Type: ValueTypeNull}, 0, nil
	}
	v, consumed, err := decodeValueBody(buf, offset, desc.ValueType, uint32(desc.Size), chunk, depth)
	if err != nil {
		return TypedValue{}, 0, err
	}
	// Fixed-size decoders report their own natural width; variable-size
	// ones are bounded by the descriptor, which is authoritative here
	// since substitution values carry no internal length prefix for
	// fixed-width numeric types.
	if declaredSize := uint32(desc.Size); declaredSize > consumed {
		consumed = declaredSize
	}
	return v, consumed, nil
}

// decodeValueBody decodes the encoding of one value of the given type,
// starting at offset. boundSize is the caller-declared byte length for
// variable-length substitution values, or 0 when the value carries its own
// internal length prefix (as inline Value/CDATASection tokens do).
func decodeValueBody(buf []byte, offset uint32, typ ValueType, boundSize uint32, chunk *Chunk, depth int) (TypedValue, uint32, error) {
	base := typ &^ valueTypeArrayFlag
	isArray := typ&valueTypeArrayFlag != 0

	if isArray {
		return decodeArrayValue(buf, offset, base, boundSize)
	}

	switch base {
	case ValueTypeNull:
		return TypedValue{Type: typ}, 0, nil

	case ValueTypeString:
		if boundSize > 0 {
			units, err := readUTF16Units(buf, offset, uint16(boundSize/2))
			if err != nil {
				return TypedValue{}, 0, err
			}
			return TypedValue{Type: typ, Str: decodeUTF16(units)}, boundSize, nil
		}
		s, n, err := readLenPrefixedUTF16String(buf, offset)
		if err != nil {
			return TypedValue{}, 0, err
		}
		return TypedValue{Type: typ, Str: s}, n, nil

	case ValueTypeAnsiString:
		size := boundSize
		raw, err := readBytes(buf, offset, size)
		if err != nil {
			return TypedValue{}, 0, err
		}
		return TypedValue{Type: typ, Str: string(raw)}, size, nil

	case ValueTypeInt8:
		n, err := readUint8(buf, offset)
		return TypedValue{Type: typ, Int64: int64(int8(n))}, 1, err

	case ValueTypeUInt8:
		n, err := readUint8(buf, offset)
		return TypedValue{Type: typ, UInt64: uint64(n)}, 1, err

	case ValueTypeInt16:
		n, err := readUint16(buf, offset)
		return TypedValue{Type: typ, Int64: int64(int16(n))}, 2, err

	case ValueTypeUInt16:
		n, err := readUint16(buf, offset)
		return TypedValue{Type: typ, UInt64: uint64(n)}, 2, err

	case ValueTypeInt32:
		n, err := readUint32(buf, offset)
		return TypedValue{Type: typ, Int64: int64(int32(n))}, 4, err

	case ValueTypeUInt32:
		n, err := readUint32(buf, offset)
		return TypedValue{Type: typ, UInt64: uint64(n)}, 4, err

	case ValueTypeInt64:
		n, err := readUint64(buf, offset)
		return TypedValue{Type: typ, Int64: int64(n)}, 8, err

	case ValueTypeUInt64:
		n, err := readUint64(buf, offset)
		return TypedValue{Type: typ, UInt64: n}, 8, err

	case ValueTypeReal32:
		f, err := readFloat32(buf, offset)
		return TypedValue{Type: typ, Real64: float64(f)}, 4, err

	case ValueTypeReal64:
		f, err := readFloat64(buf, offset)
		return TypedValue{Type: typ, Real64: f}, 8, err

	case ValueTypeBool:
		n, err := readUint32(buf, offset)
		return TypedValue{Type: typ, Bool: n != 0}, 4, err

	case ValueTypeBinary:
		size := boundSize
		var err error
		start := offset
		if size == 0 {
			var n uint16
			n, err = readUint16(buf, offset)
			if err != nil {
				return TypedValue{}, 0, err
			}
			size = uint32(n)
			start = offset + 2
		}
		raw, err := readBytes(buf, start, size)
		if err != nil {
			return TypedValue{}, 0, err
		}
		consumed := size
		if start != offset {
			consumed += 2
		}
		return TypedValue{Type: typ, Bin: append([]byte(nil), raw...)}, consumed, nil

	case ValueTypeGuid:
		g, err := readGUID(buf, offset)
		return TypedValue{Type: typ, Guid: g}, 16, err

	case ValueTypeSizeT:
		n, err := readUint64(buf, offset)
		return TypedValue{Type: typ, UInt64: n}, 8, err

	case ValueTypeFileTime:
		n, err := readUint64(buf, offset)
		return TypedValue{Type: typ, UInt64: n}, 8, err

	case ValueTypeSysTime:
		st, err := readSystemTime(buf, offset)
		return TypedValue{Type: typ, Str: st.String()}, 16, err

	case ValueTypeSid:
		size := boundSize
		var raw []byte
		var err error
		if size > 0 {
			raw, err = readBytes(buf, offset, size)
		} else {
			raw, err = readBytes(buf, offset, uint32(len(buf))-offset)
		}
		if err != nil {
			return TypedValue{}, 0, err
		}
		s, n, err := formatSID(raw)
		if err != nil {
			return TypedValue{}, 0, err
		}
		if size > 0 {
			n = size
		}
		return TypedValue{Type: typ, Str: s}, n, nil

	case ValueTypeHexInt32:
		n, err := readUint32(buf, offset)
		return TypedValue{Type: typ, UInt64: uint64(n)}, 4, err

	case ValueTypeHexInt64:
		n, err := readUint64(buf, offset)
		return TypedValue{Type: typ, UInt64: n}, 8, err

	case ValueTypeEvtHandle:
		n, err := readUint64(buf, offset)
		return TypedValue{Type: typ, UInt64: n}, 8, err

	case ValueTypeBinXml, ValueTypeEvtXml:
		size := boundSize
		start := offset
		var err error
		if size == 0 {
			var n uint16
			n, err = readUint16(buf, offset)
			if err != nil {
				return TypedValue{}, 0, err
			}
			size = uint32(n)
			start = offset + 2
		}
		tokens, _, err := decodeTokenStream(buf, start, start+size, chunk, depth+1)
		if err != nil {
			return TypedValue{}, 0, err
		}
		doc := buildTree(tokens)
		rendered, rerr := renderDocumentXML(doc)
		if rerr != nil {
			rendered = ""
		}
		consumed := size
		if start != offset {
			consumed += 2
		}
		return TypedValue{Type: typ, Str: rendered, BinXml: tokens}, consumed, nil

	default:
		return TypedValue{}, 0, &UnknownValueTypeError{Type: byte(typ), Offset: offset}
	}
}

// decodeArrayValue decodes an array-flagged value: boundSize bytes holding
// back-to-back fixed-width elements for numeric/bool/guid base types, or a
// sequence of length-prefixed strings for String. Arrays of any other
// variable-width type (AnsiString, Binary, Sid, ...) return an
// UnknownValueTypeError.
func decodeArrayValue(buf []byte, offset uint32, base ValueType, boundSize uint32) (TypedValue, uint32, error) {
	v := TypedValue{Type: base | valueTypeArrayFlag, Array: true}
	end := offset + boundSize
	pos := offset

	elemSize := func() uint32 {
		switch base {
		case ValueTypeInt8, ValueTypeUInt8:
			return 1
		case ValueTypeInt16, ValueTypeUInt16:
			return 2
		case ValueTypeInt32, ValueTypeUInt32, ValueTypeReal32, ValueTypeBool, ValueTypeHexInt32:
			return 4
		case ValueTypeInt64, ValueTypeUInt64, ValueTypeReal64, ValueTypeFileTime, ValueTypeHexInt64, ValueTypeEvtHandle, ValueTypeSizeT:
			return 8
		case ValueTypeGuid:
			return 16
		}
		return 0
	}()

	if elemSize == 0 {
		// Variable-width element types: only String is decoded, each
		// element individually length-prefixed within the array span.
		for pos < end {
			switch base {
			case ValueTypeString:
				s, n, err := readLenPrefixedUTF16String(buf, pos)
				if err != nil {
					return TypedValue{}, 0, err
				}
				v.StrArray = append(v.StrArray, s)
				pos += n
			default:
				return TypedValue{}, 0, &UnknownValueTypeError{Type: byte(base), Offset: pos}
			}
		}
		return v, boundSize, nil
	}

	for pos+elemSize <= end {
		switch base {
		case ValueTypeInt8:
			n, err := readUint8(buf, pos)
			if err != nil {
				return TypedValue{}, 0, err
			}
			v.IntArray = append(v.IntArray, int64(int8(n)))
		case ValueTypeUInt8:
			n, err := readUint8(buf, pos)
			if err != nil {
				return TypedValue{}, 0, err
			}
			v.UIntArray = append(v.UIntArray, uint64(n))
		case ValueTypeInt16:
			n, err := readUint16(buf, pos)
			if err != nil {
				return TypedValue{}, 0, err
			}
			v.IntArray = append(v.IntArray, int64(int16(n)))
		case ValueTypeUInt16:
			n, err := readUint16(buf, pos)
			if err != nil {
				return TypedValue{}, 0, err
			}
			v.UIntArray = append(v.UIntArray, uint64(n))
		case ValueTypeInt32, ValueTypeHexInt32:
			n, err := readUint32(buf, pos)
			if err != nil {
				return TypedValue{}, 0, err
			}
			v.IntArray = append(v.IntArray, int64(int32(n)))
		case ValueTypeUInt32:
			n, err := readUint32(buf, pos)
			if err != nil {
				return TypedValue{}, 0, err
			}
			v.UIntArray = append(v.UIntArray, uint64(n))
		case ValueTypeBool:
			n, err := readUint32(buf, pos)
			if err != nil {
				return TypedValue{}, 0, err
			}
			v.BoolArray = append(v.BoolArray, n != 0)
		case ValueTypeReal32:
			f, err := readFloat32(buf, pos)
			if err != nil {
				return TypedValue{}, 0, err
			}
			v.RealArray = append(v.RealArray, float64(f))
		case ValueTypeInt64:
			n, err := readUint64(buf, pos)
			if err != nil {
				return TypedValue{}, 0, err
			}
			v.IntArray = append(v.IntArray, int64(n))
		case ValueTypeUInt64, ValueTypeFileTime, ValueTypeHexInt64, ValueTypeEvtHandle, ValueTypeSizeT:
			n, err := readUint64(buf, pos)
			if err != nil {
				return TypedValue{}, 0, err
			}
			v.UIntArray = append(v.UIntArray, n)
		case ValueTypeReal64:
			f, err := readFloat64(buf, pos)
			if err != nil {
				return TypedValue{}, 0, err
			}
			v.RealArray = append(v.RealArray, f)
		case ValueTypeGuid:
			g, err := readGUID(buf, pos)
			if err != nil {
				return TypedValue{}, 0, err
			}
			v.GuidArray = append(v.GuidArray, g)
		}
		pos += elemSize
	}
	return v, boundSize, nil
}
