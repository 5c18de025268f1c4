package fbxfile_test

import (
	"math"
	"reflect"
	"testing"

	"github.com/fbxtools/fbxfile"
)

func TestType_String(t *testing.T) {
	if fbxfile.TypeString.String() != "string" {
		t.Error("unexpected result from String")
	}
	if fbxfile.TypeInt32Array.String() != "int32[]" {
		t.Error("unexpected result from String")
	}
	if fbxfile.Type(0).String() != "Invalid" {
		t.Error("unexpected result from String")
	}
}

func TestTypeFromCode(t *testing.T) {
	if fbxfile.TypeFromCode('D') != fbxfile.TypeFloat64 {
		t.Error("unexpected result from TypeFromCode")
	}
	if fbxfile.TypeFromCode('b') != fbxfile.TypeBoolArray {
		t.Error("unexpected result from TypeFromCode")
	}
	if fbxfile.TypeFromCode('X') != fbxfile.TypeInvalid {
		t.Error("unexpected result from TypeFromCode")
	}
}

func TestTypeFromString(t *testing.T) {
	if fbxfile.TypeFromString("float64[]") != fbxfile.TypeFloat64Array {
		t.Error("unexpected result from TypeFromString")
	}
	if fbxfile.TypeFromString("UnknownType") != fbxfile.TypeInvalid {
		t.Error("unexpected result from TypeFromString")
	}
}

func TestNewValue(t *testing.T) {
	if _, ok := fbxfile.NewValue(fbxfile.TypeString).(fbxfile.ValueString); !ok {
		t.Error("expected ValueString from NewValue")
	}
	if fbxfile.NewValue(fbxfile.TypeInvalid) != nil {
		t.Error("expected nil value from NewValue")
	}
}

var types = []fbxfile.Type{
	fbxfile.TypeInt16,
	fbxfile.TypeBool,
	fbxfile.TypeInt32,
	fbxfile.TypeFloat32,
	fbxfile.TypeFloat64,
	fbxfile.TypeInt64,
	fbxfile.TypeString,
	fbxfile.TypeRaw,
	fbxfile.TypeFloat32Array,
	fbxfile.TypeFloat64Array,
	fbxfile.TypeInt64Array,
	fbxfile.TypeInt32Array,
	fbxfile.TypeBoolArray,
}

func TestValueType(t *testing.T) {
	for _, typ := range types {
		if !typ.Valid() {
			t.Errorf("type %s not valid", typ)
		}
		if v := fbxfile.NewValue(typ); v.Type() != typ {
			t.Errorf("expected type %s, got %s", typ, v.Type())
		}
		if fbxfile.TypeFromCode(typ.Code()) != typ {
			t.Errorf("code of type %s does not round trip", typ)
		}
	}
}

func TestType_IsArray(t *testing.T) {
	for _, typ := range types {
		isArray := typ >= 'a' && typ <= 'z'
		if typ.IsArray() != isArray {
			t.Errorf("type %s: expected IsArray %t", typ, isArray)
		}
		if n := fbxfile.ArrayLen(fbxfile.NewValue(typ)); (n == 0) != isArray {
			t.Errorf("type %s: unexpected ArrayLen %d", typ, n)
		}
	}
}

func TestType_ElemSize(t *testing.T) {
	sizes := map[fbxfile.Type]int{
		fbxfile.TypeInt16:        2,
		fbxfile.TypeBool:         1,
		fbxfile.TypeInt32:        4,
		fbxfile.TypeFloat32:      4,
		fbxfile.TypeFloat64:      8,
		fbxfile.TypeInt64:        8,
		fbxfile.TypeString:       0,
		fbxfile.TypeRaw:          0,
		fbxfile.TypeFloat32Array: 4,
		fbxfile.TypeFloat64Array: 8,
		fbxfile.TypeInt64Array:   8,
		fbxfile.TypeInt32Array:   4,
		fbxfile.TypeBoolArray:    1,
	}
	for typ, size := range sizes {
		if n := typ.ElemSize(); n != size {
			t.Errorf("type %s: expected size %d, got %d", typ, size, n)
		}
	}
}

func TestValueString(t *testing.T) {
	tests := []struct {
		v fbxfile.Value
		s string
	}{
		{fbxfile.ValueInt16(-3), "-3"},
		{fbxfile.ValueBool(true), "true"},
		{fbxfile.ValueInt32(42), "42"},
		{fbxfile.ValueFloat32(0.5), "0.5"},
		{fbxfile.ValueFloat64(math.Inf(-1)), "-Inf"},
		{fbxfile.ValueInt64(1 << 40), "1099511627776"},
		{fbxfile.ValueString("Model::Cube"), "Model::Cube"},
		{fbxfile.ValueRaw("raw"), "raw"},
		{fbxfile.ValueFloat32Array{1, 2.5}, "1,2.5"},
		{fbxfile.ValueFloat64Array{}, ""},
		{fbxfile.ValueInt64Array{-1, 2}, "-1,2"},
		{fbxfile.ValueInt32Array{0, 1, -3}, "0,1,-3"},
		{fbxfile.ValueBoolArray{true, false}, "1,0"},
	}
	for _, test := range tests {
		if s := test.v.String(); s != test.s {
			t.Errorf("%s: expected %q, got %q", test.v.Type(), test.s, s)
		}
	}
}

func TestValueCopy(t *testing.T) {
	values := []fbxfile.Value{
		fbxfile.ValueInt16(1),
		fbxfile.ValueBool(true),
		fbxfile.ValueInt32(2),
		fbxfile.ValueFloat32(3),
		fbxfile.ValueFloat64(4),
		fbxfile.ValueInt64(5),
		fbxfile.ValueString("six"),
		fbxfile.ValueRaw{7},
		fbxfile.ValueFloat32Array{8},
		fbxfile.ValueFloat64Array{9},
		fbxfile.ValueInt64Array{10},
		fbxfile.ValueInt32Array{11},
		fbxfile.ValueBoolArray{true},
	}
	for _, v := range values {
		c := v.Copy()
		if !reflect.DeepEqual(v, c) {
			t.Errorf("%s: copy not equal", v.Type())
		}
		rv := reflect.ValueOf(c)
		if rv.Kind() == reflect.Slice {
			if rv.Pointer() == reflect.ValueOf(v).Pointer() {
				t.Errorf("%s: copy shares backing array", v.Type())
			}
		}
	}
}

func TestArrayLen(t *testing.T) {
	if n := fbxfile.ArrayLen(fbxfile.ValueInt32Array{1, 2, 3}); n != 3 {
		t.Errorf("expected 3, got %d", n)
	}
	if n := fbxfile.ArrayLen(fbxfile.ValueRaw{1, 2, 3}); n != -1 {
		t.Errorf("expected -1 for raw, got %d", n)
	}
	if n := fbxfile.ArrayLen(nil); n != -1 {
		t.Errorf("expected -1 for nil, got %d", n)
	}
}
