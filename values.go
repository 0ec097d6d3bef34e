// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package evtx

import (
	"encoding/base64"
	"strconv"
	"strings"
)

// renderTypedValueText renders a TypedValue the way it appears as element
// or attribute text: the same string Event Viewer would show, with array
// values joined by commas per the format's own convention.
func renderTypedValueText(v TypedValue) string {
	base := v.Type &^ valueTypeArrayFlag
	if v.Array {
		return renderArrayText(v, base)
	}
	switch base {
	case ValueTypeString, ValueTypeAnsiString, ValueTypeBinXml:
		return v.Str
	case ValueTypeInt8, ValueTypeInt16, ValueTypeInt32, ValueTypeInt64:
		return strconv.FormatInt(v.Int64, 10)
	case ValueTypeUInt8, ValueTypeUInt16, ValueTypeUInt32, ValueTypeUInt64, ValueTypeSizeT:
		return strconv.FormatUint(v.UInt64, 10)
	case ValueTypeHexInt32:
		return "0x" + strconv.FormatUint(v.UInt64, 16)
	case ValueTypeHexInt64, ValueTypeEvtHandle:
		return "0x" + strconv.FormatUint(v.UInt64, 16)
	case ValueTypeReal32, ValueTypeReal64:
		return strconv.FormatFloat(v.Real64, 'g', -1, 64)
	case ValueTypeBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case ValueTypeBinary:
		return strings.ToUpper(hexEncode(v.Bin))
	case ValueTypeGuid:
		return formatGUID(v.Guid)
	case ValueTypeFileTime:
		return formatFileTime(v.UInt64)
	case ValueTypeSysTime:
		return v.Str
	case ValueTypeSid:
		return v.Str
	case ValueTypeNull:
		return ""
	default:
		return v.Str
	}
}

func renderArrayText(v TypedValue, base ValueType) string {
	var parts []string
	switch base {
	case ValueTypeString, ValueTypeAnsiString:
		parts = v.StrArray
	case ValueTypeInt8, ValueTypeInt16, ValueTypeInt32, ValueTypeInt64:
		for _, n := range v.IntArray {
			parts = append(parts, strconv.FormatInt(n, 10))
		}
	case ValueTypeUInt8, ValueTypeUInt16, ValueTypeUInt32, ValueTypeUInt64, ValueTypeSizeT:
		for _, n := range v.UIntArray {
			parts = append(parts, strconv.FormatUint(n, 10))
		}
	case ValueTypeReal32, ValueTypeReal64:
		for _, f := range v.RealArray {
			parts = append(parts, strconv.FormatFloat(f, 'g', -1, 64))
		}
	case ValueTypeBool:
		for _, b := range v.BoolArray {
			if b {
				parts = append(parts, "true")
			} else {
				parts = append(parts, "false")
			}
		}
	case ValueTypeGuid:
		for _, g := range v.GuidArray {
			parts = append(parts, formatGUID(g))
		}
	case ValueTypeHexInt32:
		for _, n := range v.IntArray {
			parts = append(parts, "0x"+strconv.FormatUint(uint64(uint32(n)), 16))
		}
	case ValueTypeHexInt64, ValueTypeEvtHandle:
		for _, n := range v.UIntArray {
			parts = append(parts, "0x"+strconv.FormatUint(n, 16))
		}
	case ValueTypeFileTime:
		for _, n := range v.UIntArray {
			parts = append(parts, formatFileTime(n))
		}
	default:
		parts = v.StrArray
	}
	return strings.Join(parts, ",")
}

func hexEncode(b []byte) string {
	const hex = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, c := range b {
		out[i*2] = hex[c>>4]
		out[i*2+1] = hex[c&0xF]
	}
	return string(out)
}

// isNumericValueType reports whether a scalar TypedValue of type t always
// renders in JSON as an unquoted number or boolean literal rather than a
// string. Int64 and UInt64 are not included: writeTypedValueJSON writes
// them unquoted only within +/-(2^53-1) and as strings beyond that, to
// avoid silent precision loss in JSON consumers that parse numbers as
// float64.
func isNumericValueType(t ValueType) bool {
	switch t &^ valueTypeArrayFlag {
	case ValueTypeInt8, ValueTypeInt16, ValueTypeInt32,
		ValueTypeUInt8, ValueTypeUInt16, ValueTypeUInt32,
		ValueTypeReal32, ValueTypeReal64, ValueTypeBool:
		return true
	}
	return false
}

const maxSafeJSONInteger = (int64(1) << 53) - 1

// base64Binary encodes a binary payload for the JSON renderer, which always
// writes scalar Binary values in base64 rather than the XML path's hex form.
func base64Binary(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}
