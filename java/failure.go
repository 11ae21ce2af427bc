package java

import (
	"github.com/cockroachdb/errors"
)

// Sentinel errors for load failures. Wrap them with errors.Mark so
// callers can classify with errors.Is.
var (
	// ErrNotFound: the type, or a supertype it depends on, is absent from
	// every archive and from the platform.
	ErrNotFound = errors.New("type not found")

	// ErrIncompatible: the class bytes contradict what the type's
	// references require.
	ErrIncompatible = errors.New("incompatible class change")
)

type FailureKind int

const (
	FailureNone FailureKind = iota
	FailureNotFound
	FailureIncompatible
	FailureUnexpected
)

func (k FailureKind) String() string {
	switch k {
	case FailureNone:
		return "none"
	case FailureNotFound:
		return "not-found"
	case FailureIncompatible:
		return "incompatible"
	}
	return "unexpected"
}

// Classify maps a load error onto its failure kind.
func Classify(err error) FailureKind {
	switch {
	case err == nil:
		return FailureNone
	case errors.Is(err, ErrNotFound):
		return FailureNotFound
	case errors.Is(err, ErrIncompatible):
		return FailureIncompatible
	}
	return FailureUnexpected
}

func NotFoundf(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), ErrNotFound)
}

func Incompatiblef(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), ErrIncompatible)
}
