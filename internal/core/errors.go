package core

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is wrapped by StorageError when a row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrStaleRule means a rule's next_due moved since it was read.
	ErrStaleRule = errors.New("recurring rule already advanced")
)

// NamespaceError reports a username that cannot be used as a storage key.
type NamespaceError struct {
	Username string
	Reason   string
}

func (e *NamespaceError) Error() string {
	return fmt.Sprintf("invalid namespace %q: %s", e.Username, e.Reason)
}

// StorageError wraps a persistence failure with the operation that hit it.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
