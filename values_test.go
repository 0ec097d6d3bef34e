// Copyright 2021 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package evtx

import "testing"

func TestRenderTypedValueTextScalars(t *testing.T) {
	cases := []struct {
		v    TypedValue
		want string
	}{
		{TypedValue{Type: ValueTypeString, Str: "hi"}, "hi"},
		{TypedValue{Type: ValueTypeInt32, Int64: -5}, "-5"},
		{TypedValue{Type: ValueTypeUInt32, UInt64: 5}, "5"},
		{TypedValue{Type: ValueTypeBool, Bool: true}, "true"},
		{TypedValue{Type: ValueTypeBool, Bool: false}, "false"},
		{TypedValue{Type: ValueTypeBinary, Bin: []byte{0xAB, 0xCD}}, "ABCD"},
		{TypedValue{Type: ValueTypeHexInt32, UInt64: 0xFF}, "0xff"},
		{TypedValue{Type: ValueTypeNull}, ""},
	}
	for _, c := range cases {
		if got := renderTypedValueText(c.v); got != c.want {
			t.Errorf("renderTypedValueText(%+v) = %q, want %q", c.v, got, c.want)
		}
	}
}

func TestRenderTypedValueTextArray(t *testing.T) {
	v := TypedValue{Type: ValueTypeUInt32 | valueTypeArrayFlag, Array: true, UIntArray: []uint64{1, 2, 3}}
	if got := renderTypedValueText(v); got != "1,2,3" {
		t.Fatalf("renderTypedValueText = %q, want %q", got, "1,2,3")
	}
}

func TestIsNumericValueType(t *testing.T) {
	if !isNumericValueType(ValueTypeInt32) {
		t.Error("Int32 should be numeric")
	}
	if isNumericValueType(ValueTypeString) {
		t.Error("String should not be numeric")
	}
}
