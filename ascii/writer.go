package ascii

import (
	"bufio"
	"encoding/base64"
	"io"
	"math"
	"strconv"

	"github.com/fbxtools/fbxfile"
)

// Array lines are broken once they exceed this many bytes.
const arrayLineLen = 100

type encoder struct {
	*bufio.Writer
	depth int
	err   error
}

func writeDocument(w io.Writer, version uint32, nodes []*fbxfile.Node) error {
	e := &encoder{Writer: bufio.NewWriter(w)}
	e.writeString(formatHeader(version))
	e.writeString("\n; ----------------------------------------------------\n")
	for _, n := range nodes {
		e.writeByte('\n')
		e.encodeNode(n)
	}
	e.flush()
	return e.err
}

func (e *encoder) encodeNode(n *fbxfile.Node) {
	e.writeIndent()
	e.writeString(n.Name)
	e.writeString(": ")
	for i, v := range n.Properties {
		if i > 0 {
			e.writeString(", ")
		}
		e.encodeValue(v)
	}
	if len(n.Children) > 0 || len(n.Properties) == 0 {
		e.writeString(" {\n")
		e.depth++
		for _, c := range n.Children {
			e.encodeNode(c)
		}
		e.depth--
		e.writeIndent()
		e.writeByte('}')
	}
	e.writeByte('\n')
}

func (e *encoder) encodeValue(v fbxfile.Value) {
	switch v := v.(type) {
	case fbxfile.ValueBool:
		if v {
			e.writeByte('T')
		} else {
			e.writeByte('F')
		}
	case fbxfile.ValueInt16:
		e.writeString(strconv.FormatInt(int64(v), 10))
	case fbxfile.ValueInt32:
		e.writeString(strconv.FormatInt(int64(v), 10))
	case fbxfile.ValueInt64:
		e.writeString(strconv.FormatInt(int64(v), 10))
	case fbxfile.ValueFloat32:
		e.writeString(formatFloat(float64(v), 32))
	case fbxfile.ValueFloat64:
		e.writeString(formatFloat(float64(v), 64))
	case fbxfile.ValueString:
		e.writeByte('"')
		e.writeString(escapeString(string(v)))
		e.writeByte('"')
	case fbxfile.ValueRaw:
		e.writeByte('"')
		e.writeString(base64.StdEncoding.EncodeToString(v))
		e.writeByte('"')
	case fbxfile.ValueFloat32Array:
		e.encodeArray(len(v), func(i int) string {
			return formatElem(float64(v[i]), 32)
		})
	case fbxfile.ValueFloat64Array:
		e.encodeArray(len(v), func(i int) string {
			return formatElem(v[i], 64)
		})
	case fbxfile.ValueInt32Array:
		e.encodeArray(len(v), func(i int) string {
			return strconv.FormatInt(int64(v[i]), 10)
		})
	case fbxfile.ValueInt64Array:
		e.encodeArray(len(v), func(i int) string {
			return strconv.FormatInt(v[i], 10)
		})
	case fbxfile.ValueBoolArray:
		e.encodeArray(len(v), func(i int) string {
			if v[i] {
				return "1"
			}
			return "0"
		})
	default:
		e.writeString(`""`)
	}
}

// encodeArray writes an array of n elements, each formatted by elem.
func (e *encoder) encodeArray(n int, elem func(i int) string) {
	e.writeByte('*')
	e.writeString(strconv.Itoa(n))
	e.writeString(" {\n")
	e.depth++
	e.writeIndent()
	e.writeString("a: ")
	line := 0
	for i := 0; i < n; i++ {
		if i > 0 {
			e.writeByte(',')
			if line >= arrayLineLen {
				e.writeByte('\n')
				e.writeIndent()
				line = 0
			}
		}
		s := elem(i)
		e.writeString(s)
		line += len(s) + 1
	}
	e.writeByte('\n')
	e.depth--
	e.writeIndent()
	e.writeByte('}')
}

// formatElem formats an element of a float array. Unlike scalars, elements
// need no decimal point, as the type of an array comes from its node name.
func formatElem(f float64, bits int) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return formatFloat(f, bits)
	}
	return strconv.FormatFloat(f, 'g', -1, bits)
}

func (e *encoder) writeIndent() {
	for i := 0; i < e.depth; i++ {
		e.writeByte('\t')
	}
}

func (e *encoder) writeByte(b byte) bool {
	if e.err != nil {
		return false
	}
	if err := e.WriteByte(b); err != nil {
		e.err = err
		return false
	}
	return true
}

func (e *encoder) writeString(s string) bool {
	if e.err != nil {
		return false
	}
	if _, err := e.WriteString(s); err != nil {
		e.err = err
		return false
	}
	return true
}

func (e *encoder) flush() bool {
	if e.err != nil {
		return false
	}
	if err := e.Flush(); err != nil {
		e.err = err
		return false
	}
	return true
}
