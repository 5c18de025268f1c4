// The json package is used to encode and decode fbxfile scenes to the JSON
// format.
//
// The encoding is a direct rendition of the node tree. Each property is an
// object holding the name of its type and its value:
//
//     {
//         "fbxfile_version": 0,
//         "version": 7400,
//         "nodes": [
//             {
//                 "name": "Model",
//                 "properties": [
//                     {"type": "int64", "value": "1002"},
//                     {"type": "string", "value": "Model::Cube"}
//                 ]
//             }
//         ]
//     }
//
// Values that cannot be represented exactly by a JSON number are encoded as
// strings. These are 64-bit integers, non-finite floats ("Inf", "-Inf",
// "NaN"), and raw bytes, which are encoded as base64.
package json

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/fbxtools/fbxfile"
	"github.com/fbxtools/fbxfile/errors"
)

// The current version of the schema.
const jsonVersion = 0

// ErrInvalidScene is returned when the decoded JSON does not have the shape
// of a scene.
var ErrInvalidScene = errors.New("invalid JSON scene object")

// ErrUnsupportedVersion is returned when the schema version of the decoded
// JSON is not known.
type ErrUnsupportedVersion int

func (err ErrUnsupportedVersion) Error() string {
	return "unsupported schema version " + strconv.Itoa(int(err))
}

// PropertyError describes a property that could not be decoded.
type PropertyError struct {
	Node  string
	Index int
	Type  string
	Cause error
}

func (err PropertyError) Error() string {
	return fmt.Sprintf("node %s property %d (%s): %s", err.Node, err.Index, err.Type, err.Cause)
}

func (err PropertyError) Unwrap() error {
	return err.Cause
}

type jsonScene struct {
	Schema  *int        `json:"fbxfile_version"`
	Name    string      `json:"name,omitempty"`
	Version uint32      `json:"version"`
	Nodes   []*jsonNode `json:"nodes"`
}

type jsonNode struct {
	Name       string         `json:"name"`
	Properties []jsonProperty `json:"properties,omitempty"`
	Children   []*jsonNode    `json:"children,omitempty"`
}

type jsonProperty struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

// Encoder encodes a scene to JSON.
type Encoder struct {
	// Indent is the string used to indent nested values. If empty, the
	// output is compact.
	Indent string
}

// Encode writes scene to w.
func (e Encoder) Encode(w io.Writer, scene *fbxfile.Scene) error {
	if scene == nil {
		return errors.New("nil scene")
	}
	schema := jsonVersion
	js := jsonScene{
		Schema:  &schema,
		Name:    scene.Name,
		Version: scene.Version,
		Nodes:   make([]*jsonNode, 0, len(scene.Nodes)),
	}
	for _, n := range scene.Nodes {
		jn, err := nodeToJSON(n)
		if err != nil {
			return err
		}
		js.Nodes = append(js.Nodes, jn)
	}
	je := json.NewEncoder(w)
	je.SetEscapeHTML(false)
	if e.Indent != "" {
		je.SetIndent("", e.Indent)
	}
	return je.Encode(js)
}

// Decoder decodes a scene from JSON.
type Decoder struct{}

// Decode reads a scene from r. Properties of unknown types are skipped, and
// reported through warn.
func (Decoder) Decode(r io.Reader) (scene *fbxfile.Scene, warn, err error) {
	var js jsonScene
	if err = json.NewDecoder(r).Decode(&js); err != nil {
		return nil, nil, err
	}
	if js.Schema == nil {
		return nil, nil, ErrInvalidScene
	}
	if *js.Schema != jsonVersion {
		return nil, nil, ErrUnsupportedVersion(*js.Schema)
	}

	var warns errors.Errors
	scene = &fbxfile.Scene{
		Name:    js.Name,
		Version: js.Version,
		Nodes:   make([]*fbxfile.Node, 0, len(js.Nodes)),
	}
	for _, jn := range js.Nodes {
		if jn == nil {
			return nil, nil, ErrInvalidScene
		}
		n, err := nodeFromJSON(jn, &warns)
		if err != nil {
			return nil, nil, err
		}
		scene.Nodes = append(scene.Nodes, n)
	}
	return scene, warns.Return(), nil
}

// Detect returns whether head looks like the start of a scene encoded by
// this package.
func Detect(head []byte) bool {
	for i, c := range head {
		switch c {
		case ' ', '\t', '\r', '\n':
			continue
		case '{':
			return bytes.Contains(head[i:], []byte(`"fbxfile_version"`))
		}
		return false
	}
	return false
}

////////////////////////////////////////////////////////////////

func nodeToJSON(n *fbxfile.Node) (*jsonNode, error) {
	jn := &jsonNode{Name: n.Name}
	if len(n.Properties) > 0 {
		jn.Properties = make([]jsonProperty, len(n.Properties))
	}
	var buf bytes.Buffer
	je := json.NewEncoder(&buf)
	je.SetEscapeHTML(false)
	for i, v := range n.Properties {
		buf.Reset()
		if err := je.Encode(valueToJSON(v)); err != nil {
			return nil, PropertyError{Node: n.Name, Index: i, Type: v.Type().String(), Cause: err}
		}
		// Encode appends a newline; the bytes are copied since buf is reused.
		b := bytes.TrimSuffix(buf.Bytes(), []byte{'\n'})
		jn.Properties[i] = jsonProperty{Type: v.Type().String(), Value: append(json.RawMessage(nil), b...)}
	}
	for _, child := range n.Children {
		jc, err := nodeToJSON(child)
		if err != nil {
			return nil, err
		}
		jn.Children = append(jn.Children, jc)
	}
	return jn, nil
}

func nodeFromJSON(jn *jsonNode, warns *errors.Errors) (*fbxfile.Node, error) {
	n := &fbxfile.Node{Name: jn.Name}
	for i, jp := range jn.Properties {
		typ := fbxfile.TypeFromString(jp.Type)
		if typ == fbxfile.TypeInvalid {
			*warns = warns.Append(PropertyError{Node: jn.Name, Index: i, Type: jp.Type, Cause: errors.New("unknown type")})
			continue
		}
		v, err := valueFromJSON(typ, jp.Value)
		if err != nil {
			return nil, PropertyError{Node: jn.Name, Index: i, Type: jp.Type, Cause: err}
		}
		n.Properties = append(n.Properties, v)
	}
	for _, jc := range jn.Children {
		if jc == nil {
			return nil, ErrInvalidScene
		}
		child, err := nodeFromJSON(jc, warns)
		if err != nil {
			return nil, err
		}
		n.Children = append(n.Children, child)
	}
	return n, nil
}

// valueToJSON converts a value to a form that can be encoded as JSON.
func valueToJSON(v fbxfile.Value) interface{} {
	switch v := v.(type) {
	case fbxfile.ValueInt16:
		return int16(v)
	case fbxfile.ValueBool:
		return bool(v)
	case fbxfile.ValueInt32:
		return int32(v)
	case fbxfile.ValueFloat32:
		return jsonFloat(v)
	case fbxfile.ValueFloat64:
		return jsonFloat(v)
	case fbxfile.ValueInt64:
		return jsonInt64(v)
	case fbxfile.ValueString:
		return string(v)
	case fbxfile.ValueRaw:
		return base64.StdEncoding.EncodeToString(v)
	case fbxfile.ValueFloat32Array:
		a := make([]jsonFloat, len(v))
		for i, f := range v {
			a[i] = jsonFloat(f)
		}
		return a
	case fbxfile.ValueFloat64Array:
		a := make([]jsonFloat, len(v))
		for i, f := range v {
			a[i] = jsonFloat(f)
		}
		return a
	case fbxfile.ValueInt64Array:
		a := make([]jsonInt64, len(v))
		for i, n := range v {
			a[i] = jsonInt64(n)
		}
		return a
	case fbxfile.ValueInt32Array:
		return []int32(v)
	case fbxfile.ValueBoolArray:
		return []bool(v)
	}
	return nil
}

// valueFromJSON decodes a value of type typ from b.
func valueFromJSON(typ fbxfile.Type, b json.RawMessage) (v fbxfile.Value, err error) {
	switch typ {
	case fbxfile.TypeInt16:
		var n int16
		err = json.Unmarshal(b, &n)
		v = fbxfile.ValueInt16(n)
	case fbxfile.TypeBool:
		var t bool
		err = json.Unmarshal(b, &t)
		v = fbxfile.ValueBool(t)
	case fbxfile.TypeInt32:
		var n int32
		err = json.Unmarshal(b, &n)
		v = fbxfile.ValueInt32(n)
	case fbxfile.TypeFloat32:
		var f jsonFloat
		err = json.Unmarshal(b, &f)
		v = fbxfile.ValueFloat32(f)
	case fbxfile.TypeFloat64:
		var f jsonFloat
		err = json.Unmarshal(b, &f)
		v = fbxfile.ValueFloat64(f)
	case fbxfile.TypeInt64:
		var n jsonInt64
		err = json.Unmarshal(b, &n)
		v = fbxfile.ValueInt64(n)
	case fbxfile.TypeString:
		var s string
		err = json.Unmarshal(b, &s)
		v = fbxfile.ValueString(s)
	case fbxfile.TypeRaw:
		var s string
		if err = json.Unmarshal(b, &s); err != nil {
			break
		}
		var raw []byte
		raw, err = base64.StdEncoding.DecodeString(s)
		v = fbxfile.ValueRaw(raw)
	case fbxfile.TypeFloat32Array:
		var a []jsonFloat
		err = json.Unmarshal(b, &a)
		c := make(fbxfile.ValueFloat32Array, len(a))
		for i, f := range a {
			c[i] = float32(f)
		}
		v = c
	case fbxfile.TypeFloat64Array:
		var a []jsonFloat
		err = json.Unmarshal(b, &a)
		c := make(fbxfile.ValueFloat64Array, len(a))
		for i, f := range a {
			c[i] = float64(f)
		}
		v = c
	case fbxfile.TypeInt64Array:
		var a []jsonInt64
		err = json.Unmarshal(b, &a)
		c := make(fbxfile.ValueInt64Array, len(a))
		for i, n := range a {
			c[i] = int64(n)
		}
		v = c
	case fbxfile.TypeInt32Array:
		var a []int32
		err = json.Unmarshal(b, &a)
		if a == nil {
			a = []int32{}
		}
		v = fbxfile.ValueInt32Array(a)
	case fbxfile.TypeBoolArray:
		var a []bool
		err = json.Unmarshal(b, &a)
		if a == nil {
			a = []bool{}
		}
		v = fbxfile.ValueBoolArray(a)
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

////////////////////////////////////////////////////////////////

// jsonFloat is a float that encodes non-finite values as strings.
type jsonFloat float64

func (f jsonFloat) MarshalJSON() ([]byte, error) {
	switch v := float64(f); {
	case math.IsInf(v, 1):
		return []byte(`"Inf"`), nil
	case math.IsInf(v, -1):
		return []byte(`"-Inf"`), nil
	case math.IsNaN(v):
		return []byte(`"NaN"`), nil
	default:
		return strconv.AppendFloat(nil, v, 'g', -1, 64), nil
	}
}

func (f *jsonFloat) UnmarshalJSON(b []byte) error {
	var s string
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		switch s {
		case "Inf":
			*f = jsonFloat(math.Inf(1))
		case "-Inf":
			*f = jsonFloat(math.Inf(-1))
		case "NaN":
			*f = jsonFloat(math.NaN())
		default:
			return fmt.Errorf("invalid float %q", s)
		}
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*f = jsonFloat(v)
	return nil
}

// jsonInt64 is an integer that is encoded as a string, and decoded from
// either a string or a number.
type jsonInt64 int64

func (n jsonInt64) MarshalJSON() ([]byte, error) {
	return strconv.AppendQuote(nil, strconv.FormatInt(int64(n), 10)), nil
}

func (n *jsonInt64) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return err
	}
	*n = jsonInt64(v)
	return nil
}
