package fbxio

import (
	"strconv"

	"github.com/fbxtools/fbxfile/errors"
)

// StatusCode classifies the result of the last operation of an importer or
// exporter.
type StatusCode int

const (
	Success StatusCode = iota
	Failure
	InvalidParameter
	IndexOutOfRange
	InvalidFile
	InvalidFileVersion
)

var statusStrings = map[StatusCode]string{
	Success:            "Success",
	Failure:            "Failure",
	InvalidParameter:   "Invalid parameter",
	IndexOutOfRange:    "Index out of range",
	InvalidFile:        "Invalid file",
	InvalidFileVersion: "Invalid file version",
}

func (c StatusCode) String() string {
	if s, ok := statusStrings[c]; ok {
		return s
	}
	return "Unknown"
}

// Status holds the result of the last operation of an importer or exporter.
type Status struct {
	Code StatusCode
	Err  error
}

// ErrorString returns a human-readable description of the status.
func (s Status) ErrorString() string {
	if s.Err != nil {
		return s.Err.Error()
	}
	return s.Code.String()
}

// OK returns whether the status indicates success.
func (s Status) OK() bool {
	return s.Code == Success
}

// set updates the status and returns err.
func (s *Status) set(code StatusCode, err error) error {
	s.Code = code
	s.Err = err
	return err
}

func (s *Status) clear() {
	s.Code = Success
	s.Err = nil
}

var (
	// ErrDestroyed is returned by any operation on an object that has been
	// destroyed, directly or through its manager.
	ErrDestroyed = errors.New("object has been destroyed")

	// ErrNotInitialized is returned when importing or exporting before a
	// successful Initialize.
	ErrNotInitialized = errors.New("not initialized")

	// ErrEmptyFileName is returned when an exporter is initialized without an
	// output file name.
	ErrEmptyFileName = errors.New("output file name is empty")

	// ErrUnexpectedFileType is returned when no reader recognizes a file.
	ErrUnexpectedFileType = errors.New("unexpected file type")

	// ErrNilScene is returned when importing into or exporting a nil scene.
	ErrNilScene = errors.New("scene is nil")
)

// PluginIDError indicates a reader or writer identifier that does not exist
// in a registry.
type PluginIDError struct {
	Kind string
	ID   int
}

func (err PluginIDError) Error() string {
	return "invalid " + err.Kind + " id " + strconv.Itoa(err.ID)
}
