package bin

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// Indicates an unexpected file signature.
	ErrInvalidSig = errors.New("invalid signature")
	// Indicates a record whose content does not end at its end offset.
	ErrRecordEnd = errors.New("record content does not match end offset")
	// Indicates a property list whose size does not match the declared
	// length.
	ErrPropertyListLen = errors.New("property list length mismatch")
	// Indicates a property whose declared size reaches past the end of its
	// property list.
	ErrPropertyOverrun = errors.New("property exceeds property list")
	// Indicates a record name longer than 255 bytes.
	ErrNameTooLong = errors.New("record name exceeds 255 bytes")
	// Indicates that the footer does not end with the expected magic.
	ErrFooterMagic = errors.New("footer magic is missing or corrupted")
	// Indicates that the version stored in the footer differs from the
	// header.
	ErrFooterVersion = errors.New("footer version does not match header")
)

// ErrUnrecognizedVersion indicates a format version not recognized by the
// codec.
type ErrUnrecognizedVersion uint32

func (err ErrUnrecognizedVersion) Error() string {
	return fmt.Sprintf("unrecognized version %d", uint32(err))
}

// ErrUnknownType indicates a property type code not known by the codec.
type ErrUnknownType byte

func (err ErrUnknownType) Error() string {
	return fmt.Sprintf("unknown property type 0x%02X", byte(err))
}

// ArrayError indicates a problem with the encoding of an array property.
type ArrayError struct {
	// Type is the type code of the array.
	Type byte
	// Encoding is the encoding field of the array.
	Encoding uint32

	Cause error
}

func (err ArrayError) Error() string {
	return fmt.Sprintf("array %q (encoding %d): %s", err.Type, err.Encoding, err.Cause.Error())
}

func (err ArrayError) Unwrap() error {
	return err.Cause
}

// CodecError wraps an error that occurred while encoding or decoding a binary
// format scene.
type CodecError struct {
	Cause error
}

func (err CodecError) Error() string {
	if err.Cause == nil {
		return "codec error"
	}
	return "codec error: " + err.Cause.Error()
}

func (err CodecError) Unwrap() error {
	return err.Cause
}

// DataError wraps an error that occurred while decoding byte data.
type DataError struct {
	// Offset is the byte offset where the error occurred.
	Offset int64

	Cause error
}

func (err DataError) Error() string {
	var s strings.Builder
	s.WriteString("data error")
	if err.Offset >= 0 {
		s.WriteString(" at ")
		s.Write(strconv.AppendInt(nil, err.Offset, 10))
	}
	if err.Cause != nil {
		s.WriteString(": ")
		s.WriteString(err.Cause.Error())
	}
	return s.String()
}

func (err DataError) Unwrap() error {
	return err.Cause
}

// RecordError indicates an error that occurred within a named record.
type RecordError struct {
	// Name is the name of the record.
	Name string

	Cause error
}

func (err RecordError) Error() string {
	return fmt.Sprintf("record %q: %s", err.Name, err.Cause.Error())
}

func (err RecordError) Unwrap() error {
	return err.Cause
}
