package declare

import (
	"strings"

	"github.com/fbxtools/fbxfile"
)

// Type corresponds to an fbxfile.Type.
type Type byte

// String returns a string representation of the type. If the type is not
// valid, then the returned value will be "Invalid".
func (t Type) String() string {
	s, ok := typeStrings[t]
	if !ok {
		return "Invalid"
	}
	return s
}

const (
	_ Type = iota
	Int16
	Bool
	Int32
	Float32
	Float64
	Int64
	String
	Raw
	Float32Array
	Float64Array
	Int64Array
	Int32Array
	BoolArray
)

// TypeFromString returns a Type from its string representation. Type(0) is
// returned if the string does not represent an existing Type.
func TypeFromString(s string) Type {
	s = strings.ToLower(s)
	for typ, str := range typeStrings {
		if s == strings.ToLower(str) {
			return typ
		}
	}
	return 0
}

var typeStrings = map[Type]string{
	Int16:        "Int16",
	Bool:         "Bool",
	Int32:        "Int32",
	Float32:      "Float32",
	Float64:      "Float64",
	Int64:        "Int64",
	String:       "String",
	Raw:          "Raw",
	Float32Array: "Float32Array",
	Float64Array: "Float64Array",
	Int64Array:   "Int64Array",
	Int32Array:   "Int32Array",
	BoolArray:    "BoolArray",
}

func normInt64(v interface{}) int64 {
	switch v := v.(type) {
	case int:
		return int64(v)
	case uint:
		return int64(v)
	case uint8:
		return int64(v)
	case uint16:
		return int64(v)
	case uint32:
		return int64(v)
	case uint64:
		return int64(v)
	case int8:
		return int64(v)
	case int16:
		return int64(v)
	case int32:
		return int64(v)
	case int64:
		return v
	case float32:
		return int64(v)
	case float64:
		return int64(v)
	}
	return 0
}

func normFloat64(v interface{}) float64 {
	switch v := v.(type) {
	case float32:
		return float64(v)
	case float64:
		return v
	}
	return float64(normInt64(v))
}

func normBool(v interface{}) bool {
	switch v := v.(type) {
	case bool:
		return v
	case nil:
		return false
	}
	return normInt64(v) != 0
}

// elems flattens the arguments of an array property into individual elements.
func elems(v []interface{}) []interface{} {
	if len(v) != 1 {
		return v
	}
	switch a := v[0].(type) {
	case []float32:
		e := make([]interface{}, len(a))
		for i, x := range a {
			e[i] = x
		}
		return e
	case []float64:
		e := make([]interface{}, len(a))
		for i, x := range a {
			e[i] = x
		}
		return e
	case []int32:
		e := make([]interface{}, len(a))
		for i, x := range a {
			e[i] = x
		}
		return e
	case []int64:
		e := make([]interface{}, len(a))
		for i, x := range a {
			e[i] = x
		}
		return e
	case []int:
		e := make([]interface{}, len(a))
		for i, x := range a {
			e[i] = x
		}
		return e
	case []bool:
		e := make([]interface{}, len(a))
		for i, x := range a {
			e[i] = x
		}
		return e
	}
	return v
}

// value converts v to an fbxfile.Value of the type.
func (t Type) value(v []interface{}) fbxfile.Value {
	if len(v) == 1 {
		if fv, ok := v[0].(fbxfile.Value); ok && fv.Type() == t.fbxType() {
			return fv.Copy()
		}
	}
	var first interface{}
	if len(v) > 0 {
		first = v[0]
	}

	switch t {
	case Int16:
		return fbxfile.ValueInt16(normInt64(first))
	case Bool:
		return fbxfile.ValueBool(normBool(first))
	case Int32:
		return fbxfile.ValueInt32(normInt64(first))
	case Float32:
		return fbxfile.ValueFloat32(normFloat64(first))
	case Float64:
		return fbxfile.ValueFloat64(normFloat64(first))
	case Int64:
		return fbxfile.ValueInt64(normInt64(first))
	case String:
		s, _ := first.(string)
		return fbxfile.ValueString(s)
	case Raw:
		switch b := first.(type) {
		case []byte:
			return fbxfile.ValueRaw(append([]byte{}, b...))
		case string:
			return fbxfile.ValueRaw(b)
		}
		return fbxfile.ValueRaw{}
	case Float32Array:
		e := elems(v)
		a := make(fbxfile.ValueFloat32Array, len(e))
		for i, x := range e {
			a[i] = float32(normFloat64(x))
		}
		return a
	case Float64Array:
		e := elems(v)
		a := make(fbxfile.ValueFloat64Array, len(e))
		for i, x := range e {
			a[i] = normFloat64(x)
		}
		return a
	case Int64Array:
		e := elems(v)
		a := make(fbxfile.ValueInt64Array, len(e))
		for i, x := range e {
			a[i] = normInt64(x)
		}
		return a
	case Int32Array:
		e := elems(v)
		a := make(fbxfile.ValueInt32Array, len(e))
		for i, x := range e {
			a[i] = int32(normInt64(x))
		}
		return a
	case BoolArray:
		e := elems(v)
		a := make(fbxfile.ValueBoolArray, len(e))
		for i, x := range e {
			a[i] = normBool(x)
		}
		return a
	}
	return nil
}

func (t Type) fbxType() fbxfile.Type {
	switch t {
	case Int16:
		return fbxfile.TypeInt16
	case Bool:
		return fbxfile.TypeBool
	case Int32:
		return fbxfile.TypeInt32
	case Float32:
		return fbxfile.TypeFloat32
	case Float64:
		return fbxfile.TypeFloat64
	case Int64:
		return fbxfile.TypeInt64
	case String:
		return fbxfile.TypeString
	case Raw:
		return fbxfile.TypeRaw
	case Float32Array:
		return fbxfile.TypeFloat32Array
	case Float64Array:
		return fbxfile.TypeFloat64Array
	case Int64Array:
		return fbxfile.TypeInt64Array
	case Int32Array:
		return fbxfile.TypeInt32Array
	case BoolArray:
		return fbxfile.TypeBoolArray
	}
	return fbxfile.TypeInvalid
}
