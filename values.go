package fbxfile

import (
	"strconv"
	"strings"
)

// Type represents the type of an FBX property value. Each type corresponds to
// a single-byte type code used by the binary format.
type Type byte

const (
	TypeInvalid Type = 0
	TypeInt16   Type = 'Y'
	TypeBool    Type = 'C'
	TypeInt32   Type = 'I'
	TypeFloat32 Type = 'F'
	TypeFloat64 Type = 'D'
	TypeInt64   Type = 'L'
	TypeString  Type = 'S'
	TypeRaw     Type = 'R'

	TypeFloat32Array Type = 'f'
	TypeFloat64Array Type = 'd'
	TypeInt64Array   Type = 'l'
	TypeInt32Array   Type = 'i'
	TypeBoolArray    Type = 'b'
)

var typeStrings = map[Type]string{
	TypeInt16:        "int16",
	TypeBool:         "bool",
	TypeInt32:        "int32",
	TypeFloat32:      "float32",
	TypeFloat64:      "float64",
	TypeInt64:        "int64",
	TypeString:       "string",
	TypeRaw:          "raw",
	TypeFloat32Array: "float32[]",
	TypeFloat64Array: "float64[]",
	TypeInt64Array:   "int64[]",
	TypeInt32Array:   "int32[]",
	TypeBoolArray:    "bool[]",
}

// String returns a string representation of the type. If the type is not
// valid, then the returned value will be "Invalid".
func (t Type) String() string {
	s, ok := typeStrings[t]
	if !ok {
		return "Invalid"
	}
	return s
}

// Code returns the type code of the type as it appears in the binary format.
func (t Type) Code() byte {
	return byte(t)
}

// Valid returns whether the type is a known type.
func (t Type) Valid() bool {
	_, ok := typeStrings[t]
	return ok
}

// IsArray returns whether values of the type are arrays.
func (t Type) IsArray() bool {
	switch t {
	case TypeFloat32Array, TypeFloat64Array, TypeInt64Array, TypeInt32Array, TypeBoolArray:
		return true
	}
	return false
}

// ElemSize returns the size in bytes of a single element of an array type,
// or of the scalar value for fixed-size types. Returns 0 for variable-length
// types.
func (t Type) ElemSize() int {
	switch t {
	case TypeBool, TypeBoolArray:
		return 1
	case TypeInt16:
		return 2
	case TypeInt32, TypeFloat32, TypeInt32Array, TypeFloat32Array:
		return 4
	case TypeInt64, TypeFloat64, TypeInt64Array, TypeFloat64Array:
		return 8
	}
	return 0
}

// TypeFromCode returns the Type corresponding to the given type code, or
// TypeInvalid if the code is not known.
func TypeFromCode(c byte) Type {
	if t := Type(c); t.Valid() {
		return t
	}
	return TypeInvalid
}

// TypeFromString returns the Type corresponding to the string representation
// of a type, as returned by Type.String. Returns TypeInvalid if the string
// does not represent a type.
func TypeFromString(s string) Type {
	for typ, str := range typeStrings {
		if s == str {
			return typ
		}
	}
	return TypeInvalid
}

// Value holds a property value of a particular Type.
type Value interface {
	// Type returns the type of the value.
	Type() Type

	// String returns a string representation of the current value.
	String() string

	// Copy returns a copy of the value, which can be safely modified.
	Copy() Value
}

// NewValue returns the zero Value of the given Type. Returns nil if the type
// is not valid.
func NewValue(typ Type) Value {
	switch typ {
	case TypeInt16:
		return ValueInt16(0)
	case TypeBool:
		return ValueBool(false)
	case TypeInt32:
		return ValueInt32(0)
	case TypeFloat32:
		return ValueFloat32(0)
	case TypeFloat64:
		return ValueFloat64(0)
	case TypeInt64:
		return ValueInt64(0)
	case TypeString:
		return ValueString("")
	case TypeRaw:
		return ValueRaw{}
	case TypeFloat32Array:
		return ValueFloat32Array{}
	case TypeFloat64Array:
		return ValueFloat64Array{}
	case TypeInt64Array:
		return ValueInt64Array{}
	case TypeInt32Array:
		return ValueInt32Array{}
	case TypeBoolArray:
		return ValueBoolArray{}
	}
	return nil
}

////////////////////////////////////////////////////////////////
// Values

type ValueInt16 int16

func (ValueInt16) Type() Type {
	return TypeInt16
}
func (t ValueInt16) String() string {
	return strconv.FormatInt(int64(t), 10)
}
func (t ValueInt16) Copy() Value {
	return t
}

////////////////

type ValueBool bool

func (ValueBool) Type() Type {
	return TypeBool
}
func (t ValueBool) String() string {
	if t {
		return "true"
	}
	return "false"
}
func (t ValueBool) Copy() Value {
	return t
}

////////////////

type ValueInt32 int32

func (ValueInt32) Type() Type {
	return TypeInt32
}
func (t ValueInt32) String() string {
	return strconv.FormatInt(int64(t), 10)
}
func (t ValueInt32) Copy() Value {
	return t
}

////////////////

type ValueFloat32 float32

func (ValueFloat32) Type() Type {
	return TypeFloat32
}
func (t ValueFloat32) String() string {
	return strconv.FormatFloat(float64(t), 'g', -1, 32)
}
func (t ValueFloat32) Copy() Value {
	return t
}

////////////////

type ValueFloat64 float64

func (ValueFloat64) Type() Type {
	return TypeFloat64
}
func (t ValueFloat64) String() string {
	return strconv.FormatFloat(float64(t), 'g', -1, 64)
}
func (t ValueFloat64) Copy() Value {
	return t
}

////////////////

type ValueInt64 int64

func (ValueInt64) Type() Type {
	return TypeInt64
}
func (t ValueInt64) String() string {
	return strconv.FormatInt(int64(t), 10)
}
func (t ValueInt64) Copy() Value {
	return t
}

////////////////

// ValueString is a string property. Object names are held in the
// "Class::Name" form regardless of the format they were decoded from.
type ValueString string

func (ValueString) Type() Type {
	return TypeString
}
func (t ValueString) String() string {
	return string(t)
}
func (t ValueString) Copy() Value {
	return t
}

////////////////

type ValueRaw []byte

func (ValueRaw) Type() Type {
	return TypeRaw
}
func (t ValueRaw) String() string {
	return string(t)
}
func (t ValueRaw) Copy() Value {
	c := make(ValueRaw, len(t))
	copy(c, t)
	return c
}

////////////////

type ValueFloat32Array []float32

func (ValueFloat32Array) Type() Type {
	return TypeFloat32Array
}
func (t ValueFloat32Array) String() string {
	return joinArray(len(t), func(i int) string {
		return strconv.FormatFloat(float64(t[i]), 'g', -1, 32)
	})
}
func (t ValueFloat32Array) Copy() Value {
	c := make(ValueFloat32Array, len(t))
	copy(c, t)
	return c
}

////////////////

type ValueFloat64Array []float64

func (ValueFloat64Array) Type() Type {
	return TypeFloat64Array
}
func (t ValueFloat64Array) String() string {
	return joinArray(len(t), func(i int) string {
		return strconv.FormatFloat(t[i], 'g', -1, 64)
	})
}
func (t ValueFloat64Array) Copy() Value {
	c := make(ValueFloat64Array, len(t))
	copy(c, t)
	return c
}

////////////////

type ValueInt64Array []int64

func (ValueInt64Array) Type() Type {
	return TypeInt64Array
}
func (t ValueInt64Array) String() string {
	return joinArray(len(t), func(i int) string {
		return strconv.FormatInt(t[i], 10)
	})
}
func (t ValueInt64Array) Copy() Value {
	c := make(ValueInt64Array, len(t))
	copy(c, t)
	return c
}

////////////////

type ValueInt32Array []int32

func (ValueInt32Array) Type() Type {
	return TypeInt32Array
}
func (t ValueInt32Array) String() string {
	return joinArray(len(t), func(i int) string {
		return strconv.FormatInt(int64(t[i]), 10)
	})
}
func (t ValueInt32Array) Copy() Value {
	c := make(ValueInt32Array, len(t))
	copy(c, t)
	return c
}

////////////////

type ValueBoolArray []bool

func (ValueBoolArray) Type() Type {
	return TypeBoolArray
}
func (t ValueBoolArray) String() string {
	return joinArray(len(t), func(i int) string {
		if t[i] {
			return "1"
		}
		return "0"
	})
}
func (t ValueBoolArray) Copy() Value {
	c := make(ValueBoolArray, len(t))
	copy(c, t)
	return c
}

func joinArray(n int, elem func(i int) string) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(elem(i))
	}
	return b.String()
}

// ArrayLen returns the number of elements in an array value, or -1 if v is
// not an array.
func ArrayLen(v Value) int {
	switch v := v.(type) {
	case ValueFloat32Array:
		return len(v)
	case ValueFloat64Array:
		return len(v)
	case ValueInt64Array:
		return len(v)
	case ValueInt32Array:
		return len(v)
	case ValueBoolArray:
		return len(v)
	}
	return -1
}
