package json

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/fbxtools/fbxfile"
	. "github.com/fbxtools/fbxfile/declare"
)

func testScene() *fbxfile.Scene {
	return Scene{
		Version(7400),
		Node("FBXHeaderExtension",
			Node("FBXVersion", Property(Int32, 7400)),
			Node("Flags", Property(Bool, true), Property(Int16, -2)),
		),
		Node("Objects",
			Node("Geometry", Property(Int64, 9007199254740993), Property(String, "Geometry::Cube<&>"), Property(String, "Mesh"),
				Node("Vertices", Property(Float64Array, 0, 0.1, math.Inf(1), -1e300)),
				Node("Weights", Property(Float32Array, 0.5, float32(math.Inf(-1)))),
				Node("PolygonVertexIndex", Property(Int32Array, 0, 1, -3)),
				Node("KeyTime", Property(Int64Array, -1, 46186158000)),
				Node("Visible", Property(BoolArray, true, false)),
				Node("Empty", Property(Int32Array)),
			),
			Node("Video", Property(Raw, []byte{0, 1, 2, 255}), Property(Float32, 0.1), Property(Float64, math.Inf(-1))),
		),
	}.Declare()
}

func TestRoundTrip(t *testing.T) {
	scene := testScene()
	scene.Name = "Scene"
	for _, indent := range []string{"", "\t"} {
		var buf bytes.Buffer
		if err := (Encoder{Indent: indent}).Encode(&buf, scene); err != nil {
			t.Fatalf("encode: %s", err)
		}
		if !Detect(buf.Bytes()) {
			t.Errorf("output not detected (indent %q)", indent)
		}
		got, warn, err := Decoder{}.Decode(&buf)
		if err != nil {
			t.Fatalf("decode: %s", err)
		}
		if warn != nil {
			t.Errorf("unexpected warning: %s", warn)
		}
		if got.Name != "Scene" || got.Version != 7400 {
			t.Errorf("unexpected header %q %d", got.Name, got.Version)
		}
		if got.Digest() != scene.Digest() {
			t.Errorf("digest mismatch (indent %q)", indent)
		}
	}
}

func TestEncoder_Strings(t *testing.T) {
	var buf bytes.Buffer
	if err := (Encoder{}).Encode(&buf, testScene()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, s := range []string{
		`"fbxfile_version":0`,
		`{"type":"int64","value":"9007199254740993"}`,
		`"Geometry::Cube<&>"`,
		`"Inf"`,
		`"-Inf"`,
		`{"type":"raw","value":"AAEC/w=="}`,
		`["-1","46186158000"]`,
	} {
		if !strings.Contains(out, s) {
			t.Errorf("output does not contain %s", s)
		}
	}
}

func TestEncoder_NilScene(t *testing.T) {
	if err := (Encoder{}).Encode(&bytes.Buffer{}, nil); err == nil {
		t.Error("expected error")
	}
}

func TestDecoder_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		err   error
	}{
		{"syntax", `{"fbxfile_version":0,`, nil},
		{"no schema", `{"nodes":[]}`, ErrInvalidScene},
		{"null node", `{"fbxfile_version":0,"nodes":[null]}`, ErrInvalidScene},
		{"version", `{"fbxfile_version":3,"nodes":[]}`, ErrUnsupportedVersion(3)},
		{"value", `{"fbxfile_version":0,"nodes":[{"name":"A","properties":[{"type":"int32","value":"x"}]}]}`, nil},
		{"float", `{"fbxfile_version":0,"nodes":[{"name":"A","properties":[{"type":"float64","value":"Infinity"}]}]}`, nil},
		{"int64", `{"fbxfile_version":0,"nodes":[{"name":"A","properties":[{"type":"int64","value":"1.5"}]}]}`, nil},
	}
	for _, test := range tests {
		_, _, err := Decoder{}.Decode(strings.NewReader(test.input))
		if err == nil {
			t.Errorf("%s: expected error", test.name)
			continue
		}
		if test.err != nil && !errors.Is(err, test.err) {
			t.Errorf("%s: expected %v, got %v", test.name, test.err, err)
		}
	}

	_, _, err := Decoder{}.Decode(strings.NewReader(tests[4].input))
	var perr PropertyError
	if !errors.As(err, &perr) || perr.Node != "A" || perr.Index != 0 {
		t.Errorf("expected property error, got %v", err)
	}
}

func TestDecoder_UnknownType(t *testing.T) {
	input := `{"fbxfile_version":0,"version":7500,"nodes":[{"name":"A","properties":[
		{"type":"vector","value":[1,2]},
		{"type":"int64","value":12}
	]}]}`
	scene, warn, err := Decoder{}.Decode(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	if warn == nil {
		t.Error("expected warning")
	}
	props := scene.Nodes[0].Properties
	if len(props) != 1 || props[0] != fbxfile.ValueInt64(12) {
		t.Errorf("unexpected properties %v", props)
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		head string
		ok   bool
	}{
		{`{"fbxfile_version":0}`, true},
		{"\n\t {\n\"fbxfile_version\": 0", true},
		{`{"other":1}`, false},
		{`; FBX 7.4.0 project file`, false},
		{``, false},
	}
	for _, test := range tests {
		if ok := Detect([]byte(test.head)); ok != test.ok {
			t.Errorf("Detect(%q): expected %t", test.head, test.ok)
		}
	}
}
