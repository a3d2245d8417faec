package hss

import "github.com/hssmat/hss/internal/errs"

// Kind classifies an error returned by this package.
type Kind = errs.Kind

// Symbolic error kinds. Compare with errors.Is against the
// corresponding Err* sentinel below, or extract the Kind with ErrorKind.
const (
	KindDimensionMismatch = errs.DimensionMismatch
	KindInvalidArgument   = errs.InvalidArgument
	KindNotImplemented    = errs.NotImplemented
	KindNumericalFailure  = errs.NumericalFailure
)

// Sentinel errors. Every error this package returns wraps exactly one
// of these, so errors.Is(err, hss.ErrDimensionMismatch) classifies a failure
// without needing the concrete type.
var (
	ErrDimensionMismatch = errs.ErrDimensionMismatch
	ErrInvalidArgument   = errs.ErrInvalidArgument
	ErrNotImplemented    = errs.ErrNotImplemented
	ErrNumericalFailure  = errs.ErrNumericalFailure
)

// ErrorKind extracts the Kind from an error produced by this module, if any.
func ErrorKind(err error) (Kind, bool) {
	e, ok := errs.As(err)
	if !ok {
		return 0, false
	}
	return e.Kind(), true
}
