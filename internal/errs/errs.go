// Package errs holds the sentinel error taxonomy of spec.md §6, shared by
// the public tsfile and tablet packages so neither has to import the other
// just to compare errors. Grounded on wal/wal_writer.go's var ErrWALClosed
// = os.ErrClosed sentinel style.
package errs

import "errors"

var (
	ErrAlreadyExist    = errors.New("tsfile: already exists")
	ErrOpenErr         = errors.New("tsfile: open error")
	ErrInvalidSchema   = errors.New("tsfile: invalid schema")
	ErrInvalidArg      = errors.New("tsfile: invalid argument")
	ErrOutOfRange      = errors.New("tsfile: out of range")
	ErrTypeNotMatch    = errors.New("tsfile: type does not match column")
	ErrColumnNotExist  = errors.New("tsfile: column does not exist")
	ErrTableNotExist   = errors.New("tsfile: table does not exist")
	ErrOutOfOrder      = errors.New("tsfile: timestamps out of order")
	ErrBufNotEnough    = errors.New("tsfile: buffer not large enough")
	ErrNotSupport      = errors.New("tsfile: operation not supported")
	ErrInvalidFile     = errors.New("tsfile: invalid file")
	ErrCorruptChunk    = errors.New("tsfile: corrupt chunk")
	ErrInvalidQuery    = errors.New("tsfile: invalid query")
	ErrUnsupportedOrder = errors.New("tsfile: unsupported query ordering")
)
