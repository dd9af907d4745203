// Package codec holds the error taxonomy shared by the record decoders of
// both chlorinator variants.
//
// A short buffer is a protocol-level fault: the payload cannot hold the
// fixed layout of the record and decoding fails before any field is read.
// An unknown enum value is a data-quality fault: the layout was fine but a
// field carried an integer outside its documented domain. Callers that
// prefer the raw integer over a failure can detect the latter distinctly.
package codec

import (
	"errors"
	"fmt"
)

// ErrShortBuffer reports a payload smaller than the record's fixed layout.
// Decode errors wrap it so callers can test with errors.Is.
var ErrShortBuffer = errors.New("buffer too short for record layout")

// ShortBuffer builds the canonical short-buffer error for a record.
func ShortBuffer(record string, need, got int) error {
	return fmt.Errorf("%s: need %d bytes, got %d: %w", record, need, got, ErrShortBuffer)
}

// UnknownEnumError reports a wire value outside the known domain of an
// enumerated field.
type UnknownEnumError struct {
	Record string
	Field  string
	Value  int
}

func (e *UnknownEnumError) Error() string {
	return fmt.Sprintf("%s: field %s has unknown enum value %d", e.Record, e.Field, e.Value)
}

// IsUnknownEnum reports whether err is (or wraps) an UnknownEnumError.
func IsUnknownEnum(err error) bool {
	var ue *UnknownEnumError
	return errors.As(err, &ue)
}
