package bin

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"

	"github.com/anaminus/parse"
	"github.com/fbxtools/fbxfile"
	"github.com/klauspost/compress/zlib"
)

// Array encodings.
const (
	encodingRaw  = 0
	encodingZlib = 1
)

// maxArrayBytes limits the decoded size of a single array.
const maxArrayBytes = 1 << 30

// readChunkLen is the largest single read made for a length read from the
// file, so that data is allocated only as it arrives.
const readChunkLen = 1 << 16

var errArrayTooLarge = errors.New("array exceeds maximum size")
var errArrayLength = errors.New("array payload does not match array length")
var errUnknownEncoding = errors.New("unknown array encoding")

// readBytes reads n bytes of the current property list. Fails with
// ErrPropertyOverrun if n reaches past the end of the list.
func (d *decoder) readBytes(n uint64) (b []byte, failed bool) {
	fr := d.fr
	if n > maxArrayBytes || int64(n) > d.propEnd-fr.N() {
		return nil, d.fail(ErrPropertyOverrun)
	}
	b = make([]byte, 0, min(n, readChunkLen))
	for uint64(len(b)) < n {
		k := min(n-uint64(len(b)), readChunkLen)
		chunk := make([]byte, k)
		if fr.Bytes(chunk) {
			return nil, true
		}
		b = append(b, chunk...)
	}
	return b, false
}

func (d *decoder) readString() (s string, failed bool) {
	var length uint32
	if d.fr.Number(&length) {
		return "", true
	}
	b, failed := d.readBytes(uint64(length))
	return string(b), failed
}

func writeString(fw *parse.BinaryWriter, s string) (failed bool) {
	if fw.Number(uint32(len(s))) {
		return true
	}
	return fw.Bytes([]byte(s))
}

// readValue reads a property type code followed by the value of the
// property.
func (d *decoder) readValue() (v fbxfile.Value, failed bool) {
	fr := d.fr
	var code uint8
	if fr.Number(&code) {
		return nil, true
	}
	switch typ := fbxfile.Type(code); typ {
	case fbxfile.TypeInt16:
		var n int16
		failed = fr.Number(&n)
		v = fbxfile.ValueInt16(n)
	case fbxfile.TypeBool:
		var n uint8
		failed = fr.Number(&n)
		v = fbxfile.ValueBool(n != 0)
	case fbxfile.TypeInt32:
		var n int32
		failed = fr.Number(&n)
		v = fbxfile.ValueInt32(n)
	case fbxfile.TypeFloat32:
		var n float32
		failed = fr.Number(&n)
		v = fbxfile.ValueFloat32(n)
	case fbxfile.TypeFloat64:
		var n float64
		failed = fr.Number(&n)
		v = fbxfile.ValueFloat64(n)
	case fbxfile.TypeInt64:
		var n int64
		failed = fr.Number(&n)
		v = fbxfile.ValueInt64(n)
	case fbxfile.TypeString:
		var s string
		s, failed = d.readString()
		v = fbxfile.ValueString(s)
	case fbxfile.TypeRaw:
		var s string
		s, failed = d.readString()
		v = fbxfile.ValueRaw(s)
	case fbxfile.TypeFloat32Array,
		fbxfile.TypeFloat64Array,
		fbxfile.TypeInt64Array,
		fbxfile.TypeInt32Array,
		fbxfile.TypeBoolArray:
		return d.readArray(typ)
	default:
		return nil, d.fail(ErrUnknownType(code))
	}
	return v, failed
}

func (d *decoder) readArray(typ fbxfile.Type) (v fbxfile.Value, failed bool) {
	fr := d.fr
	var length, encoding, compressedLen uint32
	if fr.Number(&length) || fr.Number(&encoding) || fr.Number(&compressedLen) {
		return nil, true
	}
	arrayErr := func(err error) bool {
		return d.fail(ArrayError{Type: typ.Code(), Encoding: encoding, Cause: err})
	}

	size := uint64(length) * uint64(typ.ElemSize())
	if size > maxArrayBytes {
		return nil, arrayErr(errArrayTooLarge)
	}
	payload, failed := d.readBytes(uint64(compressedLen))
	if failed {
		return nil, true
	}

	var data []byte
	switch encoding {
	case encodingRaw:
		if uint64(len(payload)) != size {
			return nil, arrayErr(errArrayLength)
		}
		data = payload
	case encodingZlib:
		zr, err := zlib.NewReader(bytes.NewReader(payload))
		if err != nil {
			return nil, arrayErr(err)
		}
		data, err = io.ReadAll(io.LimitReader(zr, int64(size)+1))
		zr.Close()
		if err != nil {
			return nil, arrayErr(err)
		}
		if uint64(len(data)) != size {
			return nil, arrayErr(errArrayLength)
		}
	default:
		return nil, arrayErr(errUnknownEncoding)
	}

	return decodeArray(typ, int(length), data), false
}

// decodeArray decodes little-endian array elements from data, which must
// have the exact size of n elements.
func decodeArray(typ fbxfile.Type, n int, data []byte) fbxfile.Value {
	le := binary.LittleEndian
	switch typ {
	case fbxfile.TypeFloat32Array:
		a := make(fbxfile.ValueFloat32Array, n)
		for i := range a {
			a[i] = math.Float32frombits(le.Uint32(data[i*4:]))
		}
		return a
	case fbxfile.TypeFloat64Array:
		a := make(fbxfile.ValueFloat64Array, n)
		for i := range a {
			a[i] = math.Float64frombits(le.Uint64(data[i*8:]))
		}
		return a
	case fbxfile.TypeInt64Array:
		a := make(fbxfile.ValueInt64Array, n)
		for i := range a {
			a[i] = int64(le.Uint64(data[i*8:]))
		}
		return a
	case fbxfile.TypeInt32Array:
		a := make(fbxfile.ValueInt32Array, n)
		for i := range a {
			a[i] = int32(le.Uint32(data[i*4:]))
		}
		return a
	case fbxfile.TypeBoolArray:
		a := make(fbxfile.ValueBoolArray, n)
		for i := range a {
			a[i] = data[i] != 0
		}
		return a
	}
	return nil
}

// encodeArray returns the little-endian encoding of the elements of v.
func encodeArray(v fbxfile.Value) []byte {
	le := binary.LittleEndian
	switch v := v.(type) {
	case fbxfile.ValueFloat32Array:
		b := make([]byte, len(v)*4)
		for i, e := range v {
			le.PutUint32(b[i*4:], math.Float32bits(e))
		}
		return b
	case fbxfile.ValueFloat64Array:
		b := make([]byte, len(v)*8)
		for i, e := range v {
			le.PutUint64(b[i*8:], math.Float64bits(e))
		}
		return b
	case fbxfile.ValueInt64Array:
		b := make([]byte, len(v)*8)
		for i, e := range v {
			le.PutUint64(b[i*8:], uint64(e))
		}
		return b
	case fbxfile.ValueInt32Array:
		b := make([]byte, len(v)*4)
		for i, e := range v {
			le.PutUint32(b[i*4:], uint32(e))
		}
		return b
	case fbxfile.ValueBoolArray:
		b := make([]byte, len(v))
		for i, e := range v {
			if e {
				b[i] = 1
			}
		}
		return b
	}
	return nil
}

// writeValue writes the type code of v followed by its value.
func (e *encoder) writeValue(fw *parse.BinaryWriter, v fbxfile.Value) (failed bool) {
	if v == nil {
		fw.Add(0, errors.New("nil property value"))
		return true
	}
	typ := v.Type()
	if fw.Number(typ.Code()) {
		return true
	}
	switch v := v.(type) {
	case fbxfile.ValueInt16:
		return fw.Number(int16(v))
	case fbxfile.ValueBool:
		var b uint8
		if v {
			b = 1
		}
		return fw.Number(b)
	case fbxfile.ValueInt32:
		return fw.Number(int32(v))
	case fbxfile.ValueFloat32:
		return fw.Number(float32(v))
	case fbxfile.ValueFloat64:
		return fw.Number(float64(v))
	case fbxfile.ValueInt64:
		return fw.Number(int64(v))
	case fbxfile.ValueString:
		return writeString(fw, string(v))
	case fbxfile.ValueRaw:
		return writeString(fw, string(v))
	}
	if !typ.IsArray() {
		fw.Add(0, ErrUnknownType(typ.Code()))
		return true
	}

	data := encodeArray(v)
	var encoding uint32 = encodingRaw
	if e.compress && len(data) >= e.threshold {
		var buf bytes.Buffer
		zw := zlib.NewWriter(&buf)
		if _, err := zw.Write(data); fw.Add(0, err) {
			return true
		}
		if fw.Add(0, zw.Close()) {
			return true
		}
		data = buf.Bytes()
		encoding = encodingZlib
	}
	if fw.Number(uint32(fbxfile.ArrayLen(v))) ||
		fw.Number(encoding) ||
		fw.Number(uint32(len(data))) {
		return true
	}
	return fw.Bytes(data)
}
