// Package errs defines the symbolic error kinds shared by every package in
// this module. It is internal because the root package
// re-exports everything a caller needs (Kind, the sentinels, ErrorKind) under
// the hss import path; packages below the root (cluster, internal/linalg,
// internal/rrqr) import this package directly so none of
// them need to import the root package and create a cycle.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies an error returned by this module.
type Kind int

const (
	// DimensionMismatch marks inputs whose shapes contradict the tree or
	// each other.
	DimensionMismatch Kind = iota
	// InvalidArgument marks negative tolerances, empty ranges, or a
	// non-positive leaf size.
	InvalidArgument
	// NotImplemented marks a known, deliberately unhandled edge case.
	NotImplemented
	// NumericalFailure marks a dense solve reporting singularity.
	NumericalFailure
)

func (k Kind) String() string {
	switch k {
	case DimensionMismatch:
		return "dimension_mismatch"
	case InvalidArgument:
		return "invalid_argument"
	case NotImplemented:
		return "not_implemented"
	case NumericalFailure:
		return "numerical_failure"
	default:
		return "unknown"
	}
}

// Sentinel errors. Use errors.Is against these; use errors.As(&e) with a *Err
// when the offending shape is needed.
var (
	ErrDimensionMismatch = errors.New("dimension_mismatch")
	ErrInvalidArgument   = errors.New("invalid_argument")
	ErrNotImplemented    = errors.New("not_implemented")
	ErrNumericalFailure  = errors.New("numerical_failure")
)

func sentinelFor(k Kind) error {
	switch k {
	case DimensionMismatch:
		return ErrDimensionMismatch
	case InvalidArgument:
		return ErrInvalidArgument
	case NotImplemented:
		return ErrNotImplemented
	case NumericalFailure:
		return ErrNumericalFailure
	default:
		return errors.New("unknown")
	}
}

// Err carries a Kind plus a human-readable message naming the offending
// shape(s).
type Err struct {
	KindVal Kind
	Msg     string
}

func (e *Err) Error() string { return e.Msg }

func (e *Err) Unwrap() error { return sentinelFor(e.KindVal) }

// Kind returns the error's symbolic kind.
func (e *Err) Kind() Kind { return e.KindVal }

// New builds an *Err of the given kind with a formatted, kind-prefixed
// message.
func New(k Kind, format string, args ...any) error {
	return &Err{KindVal: k, Msg: fmt.Sprintf("%s: %s", k, fmt.Sprintf(format, args...))}
}

// DimMismatch is a convenience constructor for KindDimensionMismatch errors.
func DimMismatch(format string, args ...any) error { return New(DimensionMismatch, format, args...) }

// InvalidArg is a convenience constructor for KindInvalidArgument errors.
func InvalidArg(format string, args ...any) error { return New(InvalidArgument, format, args...) }

// NotImpl is a convenience constructor for KindNotImplemented errors.
func NotImpl(format string, args ...any) error { return New(NotImplemented, format, args...) }

// NumFailure is a convenience constructor for KindNumericalFailure errors.
func NumFailure(format string, args ...any) error { return New(NumericalFailure, format, args...) }

// As extracts the *Err from err, if any.
func As(err error) (*Err, bool) {
	var e *Err
	ok := errors.As(err, &e)
	return e, ok
}
