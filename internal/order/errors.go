package order

import (
	"errors"
	"fmt"
)

var ErrNotReady = errors.New("list view is not ready")

type ErrorKind int

const (
	FetchError ErrorKind = iota + 1
	PersistError
	DeleteError
)

func (k ErrorKind) String() string {
	switch k {
	case FetchError:
		return "fetch"
	case PersistError:
		return "persist"
	case DeleteError:
		return "delete"
	default:
		return "unknown"
	}
}

// Error is a failure of one list view operation.
type Error struct {
	Kind ErrorKind
	ID   int // entity id for DeleteError, otherwise zero
	Err  error
}

func (e *Error) Error() string {
	if e.Kind == DeleteError {
		return fmt.Sprintf("%s %d: %v", e.Kind, e.ID, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Message is the user-facing banner text.
func (e *Error) Message() string {
	switch e.Kind {
	case FetchError:
		return "Error fetching list"
	case PersistError:
		return "Error updating order"
	case DeleteError:
		return "Error deleting item"
	default:
		return "Something went wrong"
	}
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var oe *Error
	return errors.As(err, &oe) && oe.Kind == kind
}
