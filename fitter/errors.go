package fitter

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies the step of a fit that failed.
type Kind int

const (
	// KindDecode means the source could not be opened, sniffed or decoded.
	KindDecode Kind = iota + 1
	// KindEncode means the canvas could not be encoded as PNG.
	KindEncode
	// KindWrite means the encoded PNG could not be persisted.
	KindWrite
	// KindResize means the decoded source could not be placed or resampled.
	KindResize
)

// Sentinels matched by FitError.Is.
var (
	ErrDecodeFailed = errors.New("decode failed")
	ErrEncodeFailed = errors.New("encode failed")
	ErrWriteFailed  = errors.New("write failed")
	ErrResizeFailed = errors.New("resize failed")
)

func (k Kind) sentinel() error {
	switch k {
	case KindDecode:
		return ErrDecodeFailed
	case KindEncode:
		return ErrEncodeFailed
	case KindWrite:
		return ErrWriteFailed
	case KindResize:
		return ErrResizeFailed
	default:
		return nil
	}
}

func (k Kind) String() string {
	if s := k.sentinel(); s != nil {
		return s.Error()
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// FitError is returned for every per-file failure. It never aborts a batch.
type FitError struct {
	// Kind is the failed step.
	Kind Kind
	// Path is the source for decode and resize failures and the destination
	// otherwise.
	Path string
	// Err is the underlying cause.
	Err error
}

func newFitError(kind Kind, path string, err error) *FitError {
	return &FitError{Kind: kind, Path: path, Err: err}
}

func (e *FitError) Error() string {
	return fmt.Sprintf("%s for %q: %v", e.Kind, e.Path, e.Err)
}

// Unwrap exposes the cause to errors.Is and errors.As.
func (e *FitError) Unwrap() error { return e.Err }

// Cause exposes the cause to errors.Cause.
func (e *FitError) Cause() error { return e.Err }

// Is reports whether target is the sentinel for e.Kind.
func (e *FitError) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}
