// Package ascii implements a decoder and encoder for the ASCII variant of the
// FBX file format.
//
// The text format does not record the type of each property. When decoding,
// types are recovered from hints: the names of nodes, their position within
// the tree, and the shape of each literal. Some types cannot be told apart
// after a round trip through text. Int16 values are read back as Int32,
// Float32 as Float64, and boolean arrays as Float64 arrays.
package ascii

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fbxtools/fbxfile"
	"github.com/fbxtools/fbxfile/errors"
)

// DefaultVersion is the version written by the encoder when neither the
// encoder nor the scene specify one.
const DefaultVersion = 7400

const headerPrefix = "; FBX "

// ErrInvalidName indicates a node name that cannot be represented in the
// text format.
type ErrInvalidName string

func (err ErrInvalidName) Error() string {
	return "fbx ascii: invalid node name " + strconv.Quote(string(err))
}

// Decoder decodes a stream of text into an fbxfile.Scene.
type Decoder struct{}

// Decode reads data from r and decodes it into a scene according to the ASCII
// format. Values that do not match their hinted type are returned as
// warnings.
func (Decoder) Decode(r io.Reader) (scene *fbxfile.Scene, warn, err error) {
	if r == nil {
		return nil, nil, errors.New("nil reader")
	}
	doc, err := readDocument(r)
	if err != nil {
		return nil, nil, fmt.Errorf("error parsing document: %w", err)
	}
	res := &resolver{}
	scene = &fbxfile.Scene{Nodes: res.nodes(doc.elements, "", 0)}

	if v, ok := parseHeader(doc.header); ok {
		scene.Version = v
	} else if v, ok := scene.Find("FBXHeaderExtension").Find("FBXVersion").Prop(0).(fbxfile.ValueInt32); ok {
		scene.Version = uint32(v)
	} else {
		res.warns = res.warns.Append(errors.New("fbx ascii: file version not found"))
	}
	return scene, res.warns.Return(), nil
}

// parseHeader parses a version from a header comment of the form "FBX 7.4.0
// project file".
func parseHeader(header string) (version uint32, ok bool) {
	fields := strings.Fields(header)
	if len(fields) < 2 || fields[0] != "FBX" {
		return 0, false
	}
	parts := strings.Split(fields[1], ".")
	if len(parts) != 3 {
		return 0, false
	}
	scale := [3]uint32{1000, 100, 10}
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 8)
		if err != nil || i > 0 && n > 9 {
			return 0, false
		}
		version += uint32(n) * scale[i]
	}
	return version, true
}

func formatHeader(version uint32) string {
	return fmt.Sprintf("%s%d.%d.%d project file", headerPrefix, version/1000, version%1000/100, version%100/10)
}

// Encoder encodes an fbxfile.Scene into a stream of text.
type Encoder struct {
	// Version is the version written to the header comment. If zero, then the
	// version of the scene is used, or DefaultVersion if the scene has no
	// version.
	Version uint32
}

// Encode encodes scene according to the ASCII format, writing the result to
// w.
func (e Encoder) Encode(w io.Writer, scene *fbxfile.Scene) (err error) {
	if w == nil {
		return errors.New("nil writer")
	}
	if scene == nil {
		return errors.New("nil scene")
	}
	version := e.Version
	if version == 0 {
		version = scene.Version
	}
	if version == 0 {
		version = DefaultVersion
	}
	if err := checkNames(scene.Nodes); err != nil {
		return errors.New("error encoding data: " + err.Error())
	}
	if err := writeDocument(w, version, scene.Nodes); err != nil {
		return errors.New("error encoding format: " + err.Error())
	}
	return nil
}

func checkNames(nodes []*fbxfile.Node) error {
	for _, n := range nodes {
		if !validName(n.Name) {
			return ErrInvalidName(n.Name)
		}
		if err := checkNames(n.Children); err != nil {
			return err
		}
	}
	return nil
}

func validName(name string) bool {
	if name == "" || !isNameStart(name[0]) {
		return false
	}
	for i := 1; i < len(name); i++ {
		if !isNameByte(name[i]) {
			return false
		}
	}
	return true
}

// Detect returns whether head, the first bytes of a file, looks like the
// ASCII format. The file must start with the header comment, or contain the
// FBXHeaderExtension node.
func Detect(head []byte) bool {
	head = bytes.TrimPrefix(head, []byte("\xef\xbb\xbf"))
	if bytes.HasPrefix(bytes.TrimLeft(head, " \t\r\n"), []byte(headerPrefix)) {
		return true
	}
	if bytes.IndexByte(head, 0) >= 0 {
		return false
	}
	return bytes.Contains(head, []byte("FBXHeaderExtension:"))
}
