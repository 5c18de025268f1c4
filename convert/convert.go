// Package convert converts FBX files between the binary and ASCII variants.
//
// A Converter imports a file through the readers of an fbxio.Manager, and
// exports the scene again through one of the two FBX writers. The writers are
// located once, when the converter is created.
package convert

import (
	"fmt"
	"io"

	"github.com/fbxtools/fbxfile/errors"
	"github.com/fbxtools/fbxfile/fbxio"
)

// Format selects the variant that a file is converted to.
type Format int

const (
	Unknown Format = iota
	Binary
	ASCII
)

func (f Format) String() string {
	switch f {
	case Binary:
		return "binary"
	case ASCII:
		return "ascii"
	}
	return "unknown"
}

// Writer descriptions matched by LookupWriters.
const (
	BinaryWriterDescription = "FBX binary (*.fbx)"
	ASCIIWriterDescription  = "FBX ascii (*.fbx)"
)

// ErrWritersNotFound is returned when a registry does not contain both FBX
// writers. It indicates a registry from an incompatible runtime.
var ErrWritersNotFound = errors.New("FBX binary and ascii writers not found in plugin registry")

// WriterIDs holds the identifiers of the FBX writers within a registry.
type WriterIDs struct {
	Binary int
	ASCII  int
}

// For returns the writer identifier for a format. Binary selects the binary
// writer; any other format selects the ASCII writer.
func (ids WriterIDs) For(format Format) int {
	if format == Binary {
		return ids.Binary
	}
	return ids.ASCII
}

// LookupWriters finds the FBX writers in reg by their descriptions. Only
// writers reported as FBX are considered.
func LookupWriters(reg *fbxio.Registry) (ids WriterIDs, err error) {
	ids = WriterIDs{Binary: -1, ASCII: -1}
	for i := 0; i < reg.WriterFormatCount(); i++ {
		if !reg.WriterIsFBX(i) {
			continue
		}
		switch reg.WriterFormatDescription(i) {
		case BinaryWriterDescription:
			ids.Binary = i
		case ASCIIWriterDescription:
			ids.ASCII = i
		}
	}
	if ids.Binary < 0 || ids.ASCII < 0 {
		return ids, ErrWritersNotFound
	}
	return ids, nil
}

// ConversionError is returned by ConvertFile when a step of the conversion
// fails.
type ConversionError struct {
	// Step is a short description of the failed step, such as "import".
	Step string
	// Path is the file involved in the step.
	Path  string
	Cause error
}

func (err ConversionError) Error() string {
	return err.Step + " " + err.Path + ": " + err.Cause.Error()
}

func (err ConversionError) Unwrap() error {
	return err.Cause
}

// Converter converts files through a manager.
type Converter struct {
	manager *fbxio.Manager
	writers WriterIDs
	out     io.Writer

	// Warn receives problems that did not prevent a file from being
	// imported. If nil, warnings are discarded.
	Warn io.Writer
}

// New returns a converter that uses manager, and that writes reports to out.
// The converter takes ownership of the manager. Returns ErrWritersNotFound if
// the FBX writers are not registered.
func New(manager *fbxio.Manager, out io.Writer) (*Converter, error) {
	if manager == nil {
		return nil, errors.New("nil manager")
	}
	ids, err := LookupWriters(manager.Registry())
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = io.Discard
	}
	return &Converter{manager: manager, writers: ids, out: out}, nil
}

// Writers returns the identifiers of the writers used by the converter.
func (c *Converter) Writers() WriterIDs {
	return c.writers
}

// Close destroys the manager, releasing every object created through it.
func (c *Converter) Close() error {
	c.manager.Destroy()
	return nil
}

// ConvertFile imports the file at input and exports it to output in the
// given format. The result of the conversion is reported to the output of the
// converter. A non-nil error is returned if any step fails.
func (c *Converter) ConvertFile(input, output string, format Format) error {
	imp := c.manager.NewImporter("FBX Importer")
	defer imp.Destroy()
	if err := imp.Initialize(input, -1); err != nil {
		fmt.Fprintf(c.out, "Error! Failed to load specified FBX file ( %s ): %s\n\n", input, imp.Status().ErrorString())
		return ConversionError{Step: "load", Path: input, Cause: err}
	}

	scene := c.manager.NewScene("ImportScene")
	if err := imp.Import(scene); err != nil {
		fmt.Fprintf(c.out, "Error! Failed to import scene from file ( %s ): %s\n\n", input, imp.Status().ErrorString())
		return ConversionError{Step: "import", Path: input, Cause: err}
	}
	if warn := imp.Warnings(); warn != nil && c.Warn != nil {
		fmt.Fprintln(c.Warn, fmt.Errorf("import %s: %w", input, warn))
	}
	imp.Destroy()

	exp := c.manager.NewExporter("FBX Exporter")
	defer exp.Destroy()
	if err := exp.Initialize(output, c.writers.For(format)); err != nil {
		fmt.Fprintf(c.out, "Error! Failed to initialize exporter: %s\n\n", exp.Status().ErrorString())
		return ConversionError{Step: "initialize exporter", Path: output, Cause: err}
	}

	if err := exp.Export(scene); err != nil {
		fmt.Fprintf(c.out, "Error! File export failed: - %s\n\n", exp.Status().ErrorString())
		return ConversionError{Step: "export", Path: output, Cause: err}
	}
	variant := ASCII
	if format == Binary {
		variant = Binary
	}
	fmt.Fprintf(c.out, "Success!\nIn: %s \nOut (%s): %s\n\n", input, variant, output)
	return nil
}

// IsConvertibleFile returns whether the file at path is detected as a variant
// of FBX. Panics if path is empty.
func (c *Converter) IsConvertibleFile(path string) bool {
	if path == "" {
		panic("convert: empty path")
	}
	reg := c.manager.Registry()
	id, err := reg.DetectReaderFileFormat(path)
	if err != nil {
		return false
	}
	return reg.ReaderIsFBX(id)
}
