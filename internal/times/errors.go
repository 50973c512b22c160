package times

import "errors"

// Contract errors. Backends wrap these with context; callers compare with errors.Is.
var (
	// ErrNotFound is returned when a Times, Post or Todo id does not exist in the addressed scope.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned when creating a Times whose title is taken.
	ErrAlreadyExists = errors.New("already exists")

	// ErrUnsupported is returned by operations a backend deliberately does not implement.
	ErrUnsupported = errors.New("operation not supported")

	// ErrInvalidStateTransition is returned when a Todo is moved to the state it is already in.
	ErrInvalidStateTransition = errors.New("invalid state transition")

	// ErrBackendFailure wraps I/O, encoding and transport failures.
	ErrBackendFailure = errors.New("backend failure")
)

// Kind is a stable name for a contract error, used where errors cross a process boundary.
type Kind string

const (
	KindNone                   Kind = ""
	KindNotFound               Kind = "not_found"
	KindAlreadyExists          Kind = "already_exists"
	KindUnsupported            Kind = "unsupported"
	KindInvalidStateTransition Kind = "invalid_state_transition"
	KindBackendFailure         Kind = "backend_failure"
)

var kinds = []struct {
	kind Kind
	err  error
}{
	{KindNotFound, ErrNotFound},
	{KindAlreadyExists, ErrAlreadyExists},
	{KindUnsupported, ErrUnsupported},
	{KindInvalidStateTransition, ErrInvalidStateTransition},
	{KindBackendFailure, ErrBackendFailure},
}

// KindOf classifies err. Errors outside the taxonomy are reported as backend failures.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindBackendFailure
}

// ErrorForKind returns the sentinel error for kind.
func ErrorForKind(kind Kind) error {
	for _, k := range kinds {
		if k.kind == kind {
			return k.err
		}
	}
	return ErrBackendFailure
}
