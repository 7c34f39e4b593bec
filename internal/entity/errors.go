package entity

import (
	"errors"
	"fmt"
)

var (
	// Extraction errors
	ErrInvalidArchive  = errors.New("invalid zip archive")
	ErrUnsafePath      = errors.New("unsafe path in archive")
	ErrArchiveTooLarge = errors.New("archive exceeds extraction limits")

	// Rename errors
	ErrRenameCollision = errors.New("rename target already exists")

	// Result errors
	ErrResultNotFound = errors.New("result not found")
	ErrEmptyUpload    = errors.New("empty upload")
)

type ErrorKind string

const (
	ExtractionError ErrorKind = "ExtractionError"
	RenameError     ErrorKind = "RenameError"
	BuildError      ErrorKind = "BuildError"
)

// ProcessError is the single failure result of an archive processing request.
type ProcessError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func NewProcessError(kind ErrorKind, op string, err error) *ProcessError {
	return &ProcessError{Kind: kind, Op: op, Err: err}
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *ProcessError) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of a ProcessError anywhere in err's chain, or "".
func KindOf(err error) ErrorKind {
	var pe *ProcessError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}
