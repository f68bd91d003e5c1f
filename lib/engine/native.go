package engine

import (
	"encoding/binary"
	"fmt"
)

// --------------------------------------------------------------------------
// Status Codes
// --------------------------------------------------------------------------

// Status is the signed status code the engine attaches to a column read.
// A zero value means success, positive values are warnings the caller can
// recover from, negative values are hard errors. The numeric values are part
// of the record format and round-trip through int32 unchanged.
type Status int32

const (
	// StatusSuccess indicates the read completed without warnings.
	StatusSuccess Status = 0
	// WarnBufferTruncated indicates the supplied buffer was smaller than the
	// available data; the copy is partial. Recoverable by re-reading with a
	// buffer of at least DataLength bytes.
	WarnBufferTruncated Status = 1006
	// WarnNoMoreValues indicates the requested occurrence tag lies beyond the
	// last value stored under the column.
	WarnNoMoreValues Status = 1019
	// ErrCodeReadFailure indicates the engine failed to read the value.
	ErrCodeReadFailure Status = -1
)

// IsWarning reports whether the status is a recoverable warning.
func (s Status) IsWarning() bool { return s > 0 }

// IsError reports whether the status is a hard failure.
func (s Status) IsError() bool { return s < 0 }

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "Success"
	case WarnBufferTruncated:
		return "WarnBufferTruncated"
	case WarnNoMoreValues:
		return "WarnNoMoreValues"
	case ErrCodeReadFailure:
		return "ErrReadFailure"
	default:
		return fmt.Sprintf("Status(%d)", int32(s))
	}
}

// --------------------------------------------------------------------------
// Native Column-Value Record
// --------------------------------------------------------------------------

// ColumnValueSize is the size in bytes of a raw column-value record.
const ColumnValueSize = 20

// ColumnValue is the decoded form of the fixed-layout record an engine
// returns for a column read. The record describes a value without containing
// it: DataLength is the full length of the stored value, Tag is the 1-based
// occurrence index for multi-valued columns, and Handle is an opaque token
// that must be resolved through ITxn.Materialize. Handle is only meaningful
// when Status indicates data is present.
type ColumnValue struct {
	DataLength uint32
	Status     Status
	Tag        uint32
	Handle     Handle
}

// ParseColumnValue decodes a raw column-value record. The wire layout is
// fixed, little-endian:
//
//	offset 0, width 4: dataLength (uint32)
//	offset 4, width 4: statusCode (int32)
//	offset 8, width 4: valueTag   (uint32)
//	offset 12, width 8: dataHandle (uint64)
//
// Every field is copied verbatim; in particular the status code keeps its
// numeric identity and the handle is never dereferenced. The out-of-band
// value is not touched, so parsing a record is allocation-free with respect
// to the value it describes.
func ParseColumnValue(raw []byte) (cv ColumnValue, err error) {
	if len(raw) != ColumnValueSize {
		return cv, fmt.Errorf("engine: column value record must be %d bytes, got %d", ColumnValueSize, len(raw))
	}
	cv.DataLength = binary.LittleEndian.Uint32(raw[0:4])
	cv.Status = Status(int32(binary.LittleEndian.Uint32(raw[4:8])))
	cv.Tag = binary.LittleEndian.Uint32(raw[8:12])
	cv.Handle = Handle(binary.LittleEndian.Uint64(raw[12:20]))
	return cv, nil
}

// AppendTo appends the wire form of the record to b and returns the extended
// slice. It is the exact inverse of ParseColumnValue and is used by engine
// implementations to emit records.
func (cv ColumnValue) AppendTo(b []byte) []byte {
	var buf [ColumnValueSize]byte
	binary.LittleEndian.PutUint32(buf[0:4], cv.DataLength)
	binary.LittleEndian.PutUint32(buf[4:8], uint32(int32(cv.Status)))
	binary.LittleEndian.PutUint32(buf[8:12], cv.Tag)
	binary.LittleEndian.PutUint64(buf[12:20], uint64(cv.Handle))
	return append(b, buf[:]...)
}

// Encode returns the wire form of the record as a fresh slice.
func (cv ColumnValue) Encode() []byte {
	return cv.AppendTo(make([]byte, 0, ColumnValueSize))
}
