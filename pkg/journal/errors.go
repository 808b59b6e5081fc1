package journal

import (
	"errors"
	"fmt"

	"github.com/unowned-ai/innervoice/pkg/notes"
)

var (
	// ErrValidation is the parent of every input error returned by Service.
	ErrValidation = errors.New("invalid input")

	ErrEmptyContent   = fmt.Errorf("%w: content is empty", ErrValidation)
	ErrContentTooLong = fmt.Errorf("%w: content is too long", ErrValidation)
	ErrEmptyEmotion   = fmt.Errorf("%w: emotion label is empty", ErrValidation)

	// ErrNoteNotFound is returned when the addressed note does not exist.
	ErrNoteNotFound = notes.ErrNoteNotFound

	// ErrPersistence matches any *PersistenceError.
	ErrPersistence = errors.New("persistence failure")
)

// PersistenceError reports a failed store read or write.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s note: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrPersistence) match.
func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

// storeErr passes not-found through and wraps everything else.
func storeErr(op string, err error) error {
	if err == nil || errors.Is(err, ErrNoteNotFound) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}
