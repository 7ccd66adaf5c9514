package tsfile

import "github.com/tsfile-go/tsfile/internal/errs"

// Sentinel errors, one per spec.md §6 taxonomy entry (OK has no Go
// representation — a nil error already means success). Defined in
// internal/errs so the tablet package can return and compare the same
// values without importing this package.
var (
	ErrAlreadyExist     = errs.ErrAlreadyExist
	ErrOpenErr          = errs.ErrOpenErr
	ErrInvalidSchema    = errs.ErrInvalidSchema
	ErrInvalidArg       = errs.ErrInvalidArg
	ErrOutOfRange       = errs.ErrOutOfRange
	ErrTypeNotMatch     = errs.ErrTypeNotMatch
	ErrColumnNotExist   = errs.ErrColumnNotExist
	ErrTableNotExist    = errs.ErrTableNotExist
	ErrOutOfOrder       = errs.ErrOutOfOrder
	ErrBufNotEnough     = errs.ErrBufNotEnough
	ErrNotSupport       = errs.ErrNotSupport
	ErrInvalidFile      = errs.ErrInvalidFile
	ErrCorruptChunk     = errs.ErrCorruptChunk
	ErrInvalidQuery     = errs.ErrInvalidQuery
	ErrUnsupportedOrder = errs.ErrUnsupportedOrder
)
