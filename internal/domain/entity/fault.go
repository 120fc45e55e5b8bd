package entity

import (
	"errors"
	"fmt"
)

// FaultKind classifies a reported failure
type FaultKind string

const (
	TransportFault  FaultKind = "transport"
	ValidationFault FaultKind = "validation"
	ConflictFault   FaultKind = "conflict"
)

// Gateway sentinel errors. Implementations wrap them so the controller can
// classify failures.
var (
	ErrConflict     = errors.New("backend rejected the request")
	ErrNotFound     = errors.New("entity not found")
	ErrDuplicateKey = errors.New("duplicate key")
	ErrInvalidKey   = errors.New("invalid key")
	ErrMissingField = errors.New("missing required field")
	ErrReadOnly     = errors.New("collection is read-only")
)

// Fault is a reported failure condition of a controller operation
type Fault struct {
	Kind FaultKind
	Op   string
	Err  error
}

func (f *Fault) Error() string {
	return fmt.Sprintf("%s fault during %s: %v", f.Kind, f.Op, f.Err)
}

func (f *Fault) Unwrap() error {
	return f.Err
}

// NewFault wraps err as a fault of the given kind
func NewFault(kind FaultKind, op string, err error) *Fault {
	return &Fault{Kind: kind, Op: op, Err: err}
}

// ClassifyFault turns any gateway error into a fault. Errors that already
// are faults keep their kind; conflict sentinels become ConflictFault,
// invalid keys become ValidationFault and everything else is a transport
// problem.
func ClassifyFault(op string, err error) *Fault {
	var f *Fault
	if errors.As(err, &f) {
		if f.Op == "" {
			return &Fault{Kind: f.Kind, Op: op, Err: f.Err}
		}
		return f
	}

	switch {
	case errors.Is(err, ErrConflict), errors.Is(err, ErrNotFound), errors.Is(err, ErrDuplicateKey):
		return NewFault(ConflictFault, op, err)
	case errors.Is(err, ErrInvalidKey), errors.Is(err, ErrMissingField), errors.Is(err, ErrReadOnly):
		return NewFault(ValidationFault, op, err)
	default:
		return NewFault(TransportFault, op, err)
	}
}

// IsFaultKind reports whether err is a fault of the given kind
func IsFaultKind(err error, kind FaultKind) bool {
	var f *Fault
	return errors.As(err, &f) && f.Kind == kind
}
