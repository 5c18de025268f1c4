package ascii

import (
	"encoding/base64"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/fbxtools/fbxfile"
	"github.com/fbxtools/fbxfile/errors"
)

// The text format does not carry property types. Types are recovered from the
// name of a node, its position in the tree, and the shape of each literal.

// Nodes whose array property holds 32-bit integers.
var int32Arrays = map[string]bool{
	"PolygonVertexIndex": true,
	"Edges":              true,
	"Materials":          true,
	"UVIndex":            true,
	"NormalsIndex":       true,
	"BinormalsIndex":     true,
	"TangentsIndex":      true,
	"ColorIndex":         true,
	"Indexes":            true,
	"KeyAttrFlags":       true,
	"KeyAttrRefCount":    true,
	"Smoothing":          true,
	"TextureId":          true,
	"Holes":              true,
	"PolygonGroup":       true,
}

// Nodes whose array property holds 64-bit integers.
var int64Arrays = map[string]bool{
	"KeyTime": true,
}

// Nodes whose array property holds 32-bit floats.
var float32Arrays = map[string]bool{
	"KeyValueFloat":    true,
	"KeyAttrDataFloat": true,
}

// Nodes whose scalar integer properties are 64-bit.
var int64Scalars = map[string]bool{
	"LocalStart":     true,
	"LocalStop":      true,
	"ReferenceStart": true,
	"ReferenceStop":  true,
	"LocalTime":      true,
	"ReferenceTime":  true,
	"RootNode":       true,
}

// Nodes whose scalar numeric properties are 64-bit floats.
var float64Scalars = map[string]bool{
	"Default": true,
}

// Nodes whose string property holds base64-encoded binary data.
var rawNodes = map[string]bool{
	"Content": true,
	"FileId":  true,
}

// Property types, named in the second field of a P node, whose value is a
// 64-bit integer.
var int64PropTypes = map[string]bool{
	"KTime":     true,
	"ULongLong": true,
	"LongLong":  true,
}

// Property types whose value is a 32-bit integer.
var int32PropTypes = map[string]bool{
	"int":                    true,
	"Integer":                true,
	"enum":                   true,
	"bool":                   true,
	"Bool":                   true,
	"Visibility Inheritance": true,
	"ULong":                  true,
	"short":                  true,
}

// resolver converts parsed elements into scene nodes.
type resolver struct {
	warns errors.Errors
}

// hint describes the location of an element within the tree.
type hint struct {
	name string
	// Name of the parent element, or empty at the top level.
	parent string
	// Set when the element is an immediate child of the top-level Objects
	// node.
	object bool
}

func (r *resolver) warn(line int, format string, a ...interface{}) {
	r.warns = r.warns.Append(&SyntaxError{Line: line, Msg: fmt.Sprintf(format, a...)})
}

func (r *resolver) nodes(elems []*element, parent string, depth int) []*fbxfile.Node {
	if len(elems) == 0 {
		return nil
	}
	nodes := make([]*fbxfile.Node, len(elems))
	for i, e := range elems {
		h := hint{
			name:   e.name,
			parent: parent,
			object: depth == 1 && parent == "Objects",
		}
		n := &fbxfile.Node{Name: e.name}
		if len(e.props) > 0 {
			n.Properties = make([]fbxfile.Value, len(e.props))
			for j, t := range e.props {
				n.Properties[j] = r.value(h, e.props, j, t)
			}
		}
		n.Children = r.nodes(e.children, e.name, depth+1)
		nodes[i] = n
	}
	return nodes
}

// value resolves the type of the property at index i of a node.
func (r *resolver) value(h hint, props []token, i int, t token) fbxfile.Value {
	switch t.kind {
	case tokString:
		if rawNodes[h.name] {
			b, err := base64.StdEncoding.DecodeString(t.text)
			if err == nil {
				return fbxfile.ValueRaw(b)
			}
			r.warn(t.line, "property of %s is not valid base64; kept as string", h.name)
		}
		return fbxfile.ValueString(t.text)

	case tokWord:
		switch t.text {
		case "T", "Y":
			return fbxfile.ValueBool(true)
		case "F", "N":
			return fbxfile.ValueBool(false)
		}
		return fbxfile.ValueString(t.text)

	case tokArray:
		return r.array(h, t)
	}

	switch scalarType(h, props, i) {
	case fbxfile.TypeInt64:
		if v, ok := parseInt(t.text); ok {
			return fbxfile.ValueInt64(v)
		}
	case fbxfile.TypeInt32:
		if v, ok := parseInt(t.text); ok && v >= math.MinInt32 && v <= math.MaxInt32 {
			return fbxfile.ValueInt32(v)
		}
	case fbxfile.TypeFloat64:
		if v, ok := parseFloat(t.text); ok {
			return fbxfile.ValueFloat64(v)
		}
	}

	// No usable hint; the literal decides.
	if v, ok := parseInt(t.text); ok {
		if v >= math.MinInt32 && v <= math.MaxInt32 {
			return fbxfile.ValueInt32(v)
		}
		return fbxfile.ValueInt64(v)
	}
	if v, ok := parseFloat(t.text); ok {
		return fbxfile.ValueFloat64(v)
	}
	r.warn(t.line, "invalid number %q in %s; kept as string", t.text, h.name)
	return fbxfile.ValueString(t.text)
}

// scalarType returns the hinted type of a numeric scalar, or TypeInvalid if
// there is no hint.
func scalarType(h hint, props []token, i int) fbxfile.Type {
	switch {
	case h.object && i == 0:
		return fbxfile.TypeInt64
	case h.parent == "Documents" && h.name == "Document" && i == 0:
		return fbxfile.TypeInt64
	case h.name == "C" && (i == 1 || i == 2):
		return fbxfile.TypeInt64
	case int64Scalars[h.name]:
		return fbxfile.TypeInt64
	case float64Scalars[h.name]:
		return fbxfile.TypeFloat64
	case (h.name == "P" || h.name == "Property") && i >= 4:
		if len(props) < 2 || props[1].kind != tokString {
			return fbxfile.TypeInvalid
		}
		switch typ := props[1].text; {
		case int64PropTypes[typ]:
			return fbxfile.TypeInt64
		case int32PropTypes[typ]:
			return fbxfile.TypeInt32
		}
		return fbxfile.TypeFloat64
	}
	return fbxfile.TypeInvalid
}

func (r *resolver) array(h hint, t token) fbxfile.Value {
	bad := func(s string) {
		r.warn(t.line, "invalid array element %q in %s", s, h.name)
	}
	switch {
	case int32Arrays[h.name]:
		a := make(fbxfile.ValueInt32Array, len(t.elems))
		for i, s := range t.elems {
			v, ok := parseInt(s)
			if !ok {
				bad(s)
			}
			a[i] = int32(v)
		}
		return a
	case int64Arrays[h.name]:
		a := make(fbxfile.ValueInt64Array, len(t.elems))
		for i, s := range t.elems {
			v, ok := parseInt(s)
			if !ok {
				bad(s)
			}
			a[i] = v
		}
		return a
	case float32Arrays[h.name]:
		a := make(fbxfile.ValueFloat32Array, len(t.elems))
		for i, s := range t.elems {
			v, ok := parseFloat(s)
			if !ok {
				bad(s)
			}
			a[i] = float32(v)
		}
		return a
	}
	a := make(fbxfile.ValueFloat64Array, len(t.elems))
	for i, s := range t.elems {
		v, ok := parseFloat(s)
		if !ok {
			bad(s)
		}
		a[i] = v
	}
	return a
}

func parseInt(s string) (int64, bool) {
	v, err := strconv.ParseInt(s, 10, 64)
	return v, err == nil
}

// parseFloat parses a decimal literal, including the "1.#INF" forms written
// by some exporters for non-finite values.
func parseFloat(s string) (float64, bool) {
	if i := strings.IndexByte(s, '#'); i >= 0 {
		neg := strings.HasPrefix(s, "-")
		switch s[i+1:] {
		case "INF":
			if neg {
				return math.Inf(-1), true
			}
			return math.Inf(1), true
		case "IND", "NAN", "QNAN", "SNAN":
			return math.NaN(), true
		}
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	return v, err == nil
}

// formatFloat formats a float so that it is read back as a decimal.
func formatFloat(f float64, bits int) string {
	switch {
	case math.IsInf(f, 1):
		return "1.#INF"
	case math.IsInf(f, -1):
		return "-1.#INF"
	case math.IsNaN(f):
		return "-1.#IND"
	}
	s := strconv.FormatFloat(f, 'g', -1, bits)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
