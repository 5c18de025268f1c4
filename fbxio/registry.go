package fbxio

import (
	"io"
	"os"

	"github.com/fbxtools/fbxfile"
)

// Decoder is implemented by the format decoders of reader plugins.
type Decoder interface {
	Decode(r io.Reader) (scene *fbxfile.Scene, warn, err error)
}

// Encoder is implemented by the format encoders of writer plugins.
type Encoder interface {
	Encode(w io.Writer, scene *fbxfile.Scene) error
}

// ReaderPlugin describes a file format that can be imported.
type ReaderPlugin struct {
	// Description is a human-readable name of the format, such as "FBX binary
	// (*.fbx)".
	Description string

	// FBX is set when the plugin reads a variant of the FBX format.
	FBX bool

	// Detect returns whether the first bytes of a file are in the format.
	Detect func(head []byte) bool

	// Decoder decodes the format.
	Decoder Decoder
}

// WriterPlugin describes a file format that can be exported.
type WriterPlugin struct {
	// Description is a human-readable name of the format.
	Description string

	// FBX is set when the plugin writes a variant of the FBX format.
	FBX bool

	// Encoder returns an encoder configured from the given settings.
	Encoder func(settings IOSettings) Encoder
}

// Registry holds the reader and writer plugins known to a manager. Plugins
// are identified by their index in order of registration.
type Registry struct {
	readers []ReaderPlugin
	writers []WriterPlugin
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// RegisterReader adds a reader plugin and returns its identifier.
func (r *Registry) RegisterReader(p ReaderPlugin) int {
	r.readers = append(r.readers, p)
	return len(r.readers) - 1
}

// RegisterWriter adds a writer plugin and returns its identifier.
func (r *Registry) RegisterWriter(p WriterPlugin) int {
	r.writers = append(r.writers, p)
	return len(r.writers) - 1
}

func (r *Registry) reader(id int) (ReaderPlugin, bool) {
	if id < 0 || id >= len(r.readers) {
		return ReaderPlugin{}, false
	}
	return r.readers[id], true
}

func (r *Registry) writer(id int) (WriterPlugin, bool) {
	if id < 0 || id >= len(r.writers) {
		return WriterPlugin{}, false
	}
	return r.writers[id], true
}

// WriterFormatCount returns the number of registered writers.
func (r *Registry) WriterFormatCount() int {
	return len(r.writers)
}

// WriterFormatDescription returns the description of a writer, or an empty
// string if id does not exist.
func (r *Registry) WriterFormatDescription(id int) string {
	p, _ := r.writer(id)
	return p.Description
}

// WriterIsFBX returns whether a writer produces an FBX variant. Returns false
// if id does not exist.
func (r *Registry) WriterIsFBX(id int) bool {
	p, _ := r.writer(id)
	return p.FBX
}

// ReaderFormatCount returns the number of registered readers.
func (r *Registry) ReaderFormatCount() int {
	return len(r.readers)
}

// ReaderFormatDescription returns the description of a reader, or an empty
// string if id does not exist.
func (r *Registry) ReaderFormatDescription(id int) string {
	p, _ := r.reader(id)
	return p.Description
}

// ReaderIsFBX returns whether a reader reads an FBX variant. Returns false if
// id does not exist, including -1.
func (r *Registry) ReaderIsFBX(id int) bool {
	p, _ := r.reader(id)
	return p.FBX
}

// detectLen is the number of bytes read from the start of a file when
// detecting its format.
const detectLen = 4096

// DetectReaderFileFormat returns the identifier of the first reader that
// recognizes the file at path, or -1 if no reader does. An error is returned
// if the file cannot be read.
func (r *Registry) DetectReaderFileFormat(path string) (id int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return -1, err
	}
	defer f.Close()
	head, err := readHead(f)
	if err != nil {
		return -1, err
	}
	return r.detect(head), nil
}

func (r *Registry) detect(head []byte) int {
	for id, p := range r.readers {
		if p.Detect != nil && p.Detect(head) {
			return id
		}
	}
	return -1
}

func readHead(f io.Reader) ([]byte, error) {
	head := make([]byte, detectLen)
	n, err := io.ReadFull(f, head)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		err = nil
	}
	return head[:n], err
}
