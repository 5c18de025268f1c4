package fbxio

import (
	"bufio"
	"fmt"
	"os"

	"github.com/fbxtools/fbxfile"
)

// Importer reads a file into a scene through a reader plugin.
type Importer struct {
	name      string
	manager   *Manager
	status    Status
	path      string
	reader    ReaderPlugin
	readerID  int
	ready     bool
	warn      error
	destroyed bool
}

// Name returns the name given to the importer when it was created.
func (imp *Importer) Name() string {
	return imp.name
}

// Status returns the result of the last operation.
func (imp *Importer) Status() Status {
	return imp.status
}

// ReaderID returns the identifier of the reader selected by Initialize, or
// -1 if the importer is not initialized.
func (imp *Importer) ReaderID() int {
	if !imp.ready {
		return -1
	}
	return imp.readerID
}

// Warnings returns the problems encountered by the last successful import
// that did not prevent the scene from being read.
func (imp *Importer) Warnings() error {
	return imp.warn
}

// Initialize prepares the importer to read the file at path. If readerID is
// -1, the reader is selected by detecting the format of the file.
func (imp *Importer) Initialize(path string, readerID int) error {
	imp.ready = false
	if imp.destroyed {
		return imp.status.set(Failure, ErrDestroyed)
	}
	reg := imp.manager.Registry()

	if readerID == -1 {
		id, err := reg.DetectReaderFileFormat(path)
		if err != nil {
			return imp.status.set(InvalidFile, err)
		}
		if id < 0 {
			return imp.status.set(InvalidFile, ErrUnexpectedFileType)
		}
		readerID = id
	} else {
		f, err := os.Open(path)
		if err != nil {
			return imp.status.set(InvalidFile, err)
		}
		f.Close()
	}

	reader, ok := reg.reader(readerID)
	if !ok {
		return imp.status.set(IndexOutOfRange, PluginIDError{Kind: "reader", ID: readerID})
	}
	imp.path = path
	imp.reader = reader
	imp.readerID = readerID
	imp.ready = true
	imp.status.clear()
	return nil
}

// Import reads the initialized file into scene, replacing its content.
func (imp *Importer) Import(scene *fbxfile.Scene) error {
	imp.warn = nil
	switch {
	case imp.destroyed:
		return imp.status.set(Failure, ErrDestroyed)
	case !imp.ready:
		return imp.status.set(Failure, ErrNotInitialized)
	case scene == nil:
		return imp.status.set(InvalidParameter, ErrNilScene)
	}

	f, err := os.Open(imp.path)
	if err != nil {
		return imp.status.set(InvalidFile, err)
	}
	defer f.Close()

	decoded, warn, err := imp.reader.Decoder.Decode(bufio.NewReader(f))
	if err != nil {
		return imp.status.set(InvalidFile, fmt.Errorf("%s: %w", imp.reader.Description, err))
	}
	scene.Version = decoded.Version
	scene.Nodes = decoded.Nodes
	imp.warn = warn
	imp.status.clear()
	return nil
}

// Destroy releases the importer. Destroy may be called more than once.
func (imp *Importer) Destroy() {
	imp.destroyed = true
	imp.ready = false
	imp.reader = ReaderPlugin{}
}
