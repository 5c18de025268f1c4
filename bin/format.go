// Package bin implements a decoder and encoder for the binary variant of the
// FBX file format.
//
// A binary file starts with a fixed header and a version number, followed by
// a list of node records. Each record stores the offset of its end, its
// properties, and its nested records. The list of nested records, as well as
// the top-level list, is terminated by a null record. A footer follows the
// top-level list.
//
// Array properties may be compressed with zlib. The Encoder compresses arrays
// whose encoded size reaches a threshold.
package bin

import (
	"bytes"
	"io"

	"github.com/fbxtools/fbxfile"
	"github.com/fbxtools/fbxfile/errors"
)

// DefaultVersion is the version used by the encoder when neither the encoder
// nor the scene specify one.
const DefaultVersion = 7400

// DefaultCompressThreshold is the default size in bytes at which array
// properties are compressed.
const DefaultCompressThreshold = 128

// Decoder decodes a stream of bytes into an fbxfile.Scene.
type Decoder struct{}

// Decode reads data from r and decodes it into a scene according to the
// binary format. Recoverable problems are returned as warnings.
func (d Decoder) Decode(r io.Reader) (scene *fbxfile.Scene, warn, err error) {
	if r == nil {
		return nil, nil, errors.New("nil reader")
	}
	dec := newDecoder(r)
	scene, err = dec.decode()
	return scene, dec.warns.Return(), err
}

// Decompress reencodes every compressed array of the binary format as
// uncompressed. The format is decoded from r, then encoded to w with the
// same version.
func (d Decoder) Decompress(w io.Writer, r io.Reader) (warn, err error) {
	if w == nil {
		return nil, errors.New("nil writer")
	}
	scene, warn, err := d.Decode(r)
	if err != nil {
		return warn, err
	}
	err = Encoder{Version: scene.Version, Uncompressed: true}.Encode(w, scene)
	return warn, err
}

// Encoder encodes an fbxfile.Scene into a stream of bytes.
type Encoder struct {
	// Version is the format version to encode. If zero, then the version of
	// the scene is used, or DefaultVersion if the scene has no version.
	Version uint32

	// Uncompressed causes every array to be written without compression.
	Uncompressed bool

	// CompressThreshold is the encoded size in bytes at or above which an
	// array is compressed. If zero, DefaultCompressThreshold is used.
	CompressThreshold int
}

// Encode encodes scene according to the binary format, writing the result to
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
	if !validVersion(version) {
		return ErrUnrecognizedVersion(version)
	}
	threshold := e.CompressThreshold
	if threshold <= 0 {
		threshold = DefaultCompressThreshold
	}
	enc := &encoder{
		version:   version,
		wide:      version >= wideVersion,
		compress:  !e.Uncompressed,
		threshold: threshold,
	}
	b, err := enc.encode(scene, version)
	if err != nil {
		return CodecError{Cause: err}
	}
	if _, err = w.Write(b); err != nil {
		return errors.New("error encoding format: " + err.Error())
	}
	return nil
}

// Detect returns whether head, the first bytes of a file, begins with the
// binary header.
func Detect(head []byte) bool {
	return bytes.HasPrefix(head, []byte(binaryHeader))
}
