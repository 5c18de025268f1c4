package bin

import (
	"bytes"
	"io"

	"github.com/anaminus/parse"
	"github.com/fbxtools/fbxfile"
	"github.com/fbxtools/fbxfile/errors"
	"golang.org/x/crypto/blake2b"
)

////////////////////////////////////////////////////////////////

// binaryHeader is the header magic of a binary file, which is followed by a
// little-endian uint32 version.
const binaryHeader = "Kaydara FBX Binary  \x00\x1a\x00"

// footerMagic ends every binary file.
const footerMagic = "\xf8\x5a\x8c\x6a\xde\xf5\xd9\x7e\xec\xe9\x0c\xe3\x75\x8f\x29\x0b"

// wideVersion is the first version where record headers use 64-bit fields.
const wideVersion = 7500

// Lengths of the fixed part of a record header. A null record consists of
// only a zeroed header.
const (
	narrowHeaderLen = 3*4 + 1
	wideHeaderLen   = 3*8 + 1
)

// Top-level nodes whose children refer to objects by name.
const (
	objectsNode     = "Objects"
	connectionsNode = "Connections"
)

// nameVersion is the first version where object definitions hold their name
// after their id.
const nameVersion = 7000

func validVersion(v uint32) bool {
	return 6100 <= v && v < 8000
}

// binaryNameProp returns whether property i of a node whose top-level parent
// is parent holds an object name in the binary "Name\x00\x01Class" form.
// From 7000, object definitions hold the name at index 1. Earlier versions
// hold it at index 0, and connections refer to objects by name at indices 1
// and 2.
func binaryNameProp(version uint32, parent string, i int) bool {
	switch parent {
	case objectsNode:
		if version >= nameVersion {
			return i == 1
		}
		return i == 0
	case connectionsNode:
		return version < nameVersion && (i == 1 || i == 2)
	}
	return false
}

////////////////////////////////////////////////////////////////

type decoder struct {
	fr      *parse.BinaryReader
	version uint32
	wide    bool
	warns errors.Errors

	// propEnd is the offset at which the property list being read ends.
	propEnd int64

	// err is a structural error detected by the decoder itself, which takes
	// precedence over the error of fr.
	err error
}

func newDecoder(r io.Reader) *decoder {
	return &decoder{fr: parse.NewBinaryReader(r)}
}

func decodeError(r *parse.BinaryReader, err error) error {
	r.Add(0, err)
	err = r.Err()
	if err != nil {
		return DataError{Offset: r.N(), Cause: err}
	}
	return nil
}

// error returns the error that caused decoding to fail, annotated with the
// current offset.
func (d *decoder) error() error {
	if d.err != nil {
		return DataError{Offset: d.fr.N(), Cause: d.err}
	}
	return decodeError(d.fr, nil)
}

// fail records err as the cause of failure, unless a cause was already
// recorded. It always returns true.
func (d *decoder) fail(err error) bool {
	if d.err == nil {
		d.err = err
	}
	return true
}

func (d *decoder) decode() (scene *fbxfile.Scene, err error) {
	fr := d.fr
	scene = &fbxfile.Scene{}

	header := make([]byte, len(binaryHeader))
	if fr.Bytes(header) {
		return nil, decodeError(fr, nil)
	}
	if !Detect(header) {
		return nil, decodeError(fr, ErrInvalidSig)
	}

	if fr.Number(&scene.Version) {
		return nil, decodeError(fr, nil)
	}
	if !validVersion(scene.Version) {
		return nil, decodeError(fr, ErrUnrecognizedVersion(scene.Version))
	}
	d.version = scene.Version
	d.wide = scene.Version >= wideVersion

	for {
		node, null, failed := d.readRecord(0, "")
		if failed {
			return nil, d.error()
		}
		if null {
			break
		}
		scene.Nodes = append(scene.Nodes, node)
	}

	footer, failed := fr.All()
	if failed {
		return nil, decodeError(fr, nil)
	}
	d.checkFooter(footer, scene.Version)

	return scene, nil
}

// checkFooter emits warnings for a footer that does not have the expected
// layout. The footer id and padding are not validated.
func (d *decoder) checkFooter(footer []byte, version uint32) {
	if !bytes.HasSuffix(footer, []byte(footerMagic)) {
		d.warns = append(d.warns, ErrFooterMagic)
		return
	}
	// version + 120 reserved bytes + magic
	const tail = 4 + 120 + len(footerMagic)
	if len(footer) < tail {
		d.warns = append(d.warns, ErrFooterMagic)
		return
	}
	v := footer[len(footer)-tail:]
	if uint32(v[0])|uint32(v[1])<<8|uint32(v[2])<<16|uint32(v[3])<<24 != version {
		d.warns = append(d.warns, ErrFooterVersion)
	}
}

func (d *decoder) readOffset(v *uint64) (failed bool) {
	if d.wide {
		return d.fr.Number(v)
	}
	var n uint32
	if d.fr.Number(&n) {
		return true
	}
	*v = uint64(n)
	return false
}

// readRecord reads a record and its nested records. parent is the name of
// the enclosing top-level record, if the record is directly within one. null
// is true if the record is a null record.
func (d *decoder) readRecord(depth int, parent string) (node *fbxfile.Node, null, failed bool) {
	fr := d.fr

	var endOffset, numProps, propListLen uint64
	if d.readOffset(&endOffset) || d.readOffset(&numProps) || d.readOffset(&propListLen) {
		return nil, false, true
	}
	var nameLen uint8
	if fr.Number(&nameLen) {
		return nil, false, true
	}
	if endOffset == 0 && numProps == 0 && propListLen == 0 && nameLen == 0 {
		return nil, true, false
	}

	name := make([]byte, nameLen)
	if fr.Bytes(name) {
		return nil, false, true
	}
	node = &fbxfile.Node{Name: string(name)}

	start := fr.N()
	if numProps > propListLen || endOffset < uint64(start) || propListLen > endOffset-uint64(start) {
		// Every property occupies at least one byte.
		return nil, false, d.fail(RecordError{Name: node.Name, Cause: ErrPropertyListLen})
	}
	d.propEnd = start + int64(propListLen)
	for i := uint64(0); i < numProps; i++ {
		v, failed := d.readValue()
		if failed {
			if err := fr.Err(); err != nil {
				return nil, false, d.fail(RecordError{Name: node.Name, Cause: err})
			}
			return nil, false, true
		}
		if s, ok := v.(fbxfile.ValueString); ok && binaryNameProp(d.version, parent, int(i)) {
			v = fbxfile.ValueString(fbxfile.ObjectNameFromBinary(string(s)))
		}
		node.Properties = append(node.Properties, v)
	}
	if uint64(fr.N()-start) != propListLen {
		return nil, false, d.fail(RecordError{Name: node.Name, Cause: ErrPropertyListLen})
	}

	childParent := ""
	if depth == 0 {
		childParent = node.Name
	}
	for uint64(fr.N()) < endOffset {
		child, null, failed := d.readRecord(depth+1, childParent)
		if failed {
			return nil, false, true
		}
		if null {
			break
		}
		node.Children = append(node.Children, child)
	}
	if uint64(fr.N()) != endOffset {
		return nil, false, d.fail(RecordError{Name: node.Name, Cause: ErrRecordEnd})
	}
	return node, false, false
}

////////////////////////////////////////////////////////////////

type encoder struct {
	version   uint32
	wide      bool
	compress  bool
	threshold int
}

func (e *encoder) headerLen() int64 {
	if e.wide {
		return wideHeaderLen
	}
	return narrowHeaderLen
}

func (e *encoder) encode(scene *fbxfile.Scene, version uint32) ([]byte, error) {
	var buf bytes.Buffer
	fw := parse.NewBinaryWriter(&buf)
	fw.Bytes([]byte(binaryHeader))
	fw.Number(version)
	if _, err := fw.End(); err != nil {
		return nil, err
	}

	for _, node := range scene.Nodes {
		if err := e.encodeRecord(&buf, int64(buf.Len()), node, 0, ""); err != nil {
			return nil, err
		}
	}
	e.writeNull(&buf)

	digest := scene.Digest()
	e.writeFooter(&buf, digest, version)
	return buf.Bytes(), nil
}

// writeFooter writes the footer, which consists of an id, alignment padding,
// the version, reserved space, and the footer magic. The id is taken from the
// digest of the scene so that identical scenes produce identical files.
func (e *encoder) writeFooter(buf *bytes.Buffer, digest [blake2b.Size256]byte, version uint32) {
	// id + 4 zero bytes
	offset := buf.Len() + 16 + 4
	pad := ((offset + 15) &^ 15) - offset
	if pad == 0 {
		pad = 16
	}
	fw := parse.NewBinaryWriter(buf)
	fw.Bytes(digest[:16])
	fw.Bytes(make([]byte, 4+pad))
	fw.Number(version)
	fw.Bytes(make([]byte, 120))
	fw.Bytes([]byte(footerMagic))
	fw.End()
}

func (e *encoder) writeNull(buf *bytes.Buffer) {
	buf.Write(make([]byte, e.headerLen()))
}

func (e *encoder) writeOffset(fw *parse.BinaryWriter, v uint64) bool {
	if e.wide {
		return fw.Number(v)
	}
	return fw.Number(uint32(v))
}

// encodeRecord writes node to buf, where base is the absolute offset in the
// file at which the record starts. parent is the name of the enclosing
// top-level node, if the node is directly within one.
func (e *encoder) encodeRecord(buf *bytes.Buffer, base int64, node *fbxfile.Node, depth int, parent string) error {
	if len(node.Name) > 255 {
		return RecordError{Name: node.Name[:32] + "...", Cause: ErrNameTooLong}
	}

	var props bytes.Buffer
	pw := parse.NewBinaryWriter(&props)
	for i, v := range node.Properties {
		if binaryNameProp(e.version, parent, i) {
			if s, ok := v.(fbxfile.ValueString); ok {
				v = fbxfile.ValueString(fbxfile.ObjectNameToBinary(string(s)))
			}
		}
		if e.writeValue(pw, v) {
			break
		}
	}
	if _, err := pw.End(); err != nil {
		return RecordError{Name: node.Name, Cause: err}
	}

	childBase := base + e.headerLen() + int64(len(node.Name)) + int64(props.Len())
	var children bytes.Buffer
	childParent := ""
	if depth == 0 {
		childParent = node.Name
	}
	for _, child := range node.Children {
		err := e.encodeRecord(&children, childBase+int64(children.Len()), child, depth+1, childParent)
		if err != nil {
			return err
		}
	}
	if len(node.Children) > 0 || len(node.Properties) == 0 {
		e.writeNull(&children)
	}

	endOffset := childBase + int64(children.Len())
	fw := parse.NewBinaryWriter(buf)
	e.writeOffset(fw, uint64(endOffset))
	e.writeOffset(fw, uint64(len(node.Properties)))
	e.writeOffset(fw, uint64(props.Len()))
	fw.Number(uint8(len(node.Name)))
	fw.Bytes([]byte(node.Name))
	fw.Bytes(props.Bytes())
	fw.Bytes(children.Bytes())
	if _, err := fw.End(); err != nil {
		return RecordError{Name: node.Name, Cause: err}
	}
	return nil
}
