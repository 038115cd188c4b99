package crudgen

import (
	"errors"
	"fmt"
)

// Standard sentinel errors shared by the loader, the generator and the backup manager.
var (
	// ErrInvalidInput is returned when the schema input is missing, unreadable or malformed.
	// Input errors are fatal and reported before any file is touched.
	ErrInvalidInput = errors.New("crudgen: invalid input")

	// ErrFileOperation is returned when a single file operation fails.
	ErrFileOperation = errors.New("crudgen: file operation failed")

	// ErrConflict is returned when an artifact already exists and overwriting was not requested.
	ErrConflict = errors.New("crudgen: artifact already exists")

	// ErrAborted is returned when the operator declines a confirmation prompt.
	ErrAborted = errors.New("crudgen: aborted by operator")
)

// InputError represents a fatal schema input error.
type InputError struct {
	Path    string // Schema file path (if known)
	Line    int    // 1-based line in the schema file, 0 if unknown
	Message string
	Cause   error
}

// Error returns the error string.
func (e *InputError) Error() string {
	loc := e.Path
	if loc == "" {
		loc = "schema"
	}
	if e.Line > 0 {
		loc = fmt.Sprintf("%s:%d", loc, e.Line)
	}
	if e.Cause != nil {
		return fmt.Sprintf("crudgen: %s: %s: %v", loc, e.Message, e.Cause)
	}
	return fmt.Sprintf("crudgen: %s: %s", loc, e.Message)
}

// Unwrap returns the underlying error.
func (e *InputError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target error matches InputError.
// This allows errors.Is(inputErr, ErrInvalidInput) to return true.
func (e *InputError) Is(err error) bool {
	return err == ErrInvalidInput
}

// NewInputError returns a new InputError.
func NewInputError(path string, line int, message string, cause error) *InputError {
	return &InputError{Path: path, Line: line, Message: message, Cause: cause}
}

// IsInputError returns true if the error is an InputError.
func IsInputError(err error) bool {
	if err == nil {
		return false
	}
	var e *InputError
	return errors.As(err, &e) || errors.Is(err, ErrInvalidInput)
}

// FileError wraps a failed file operation with the path and operation name.
type FileError struct {
	Op   string // Operation (e.g., "backup", "restore", "write")
	Path string
	Err  error
}

// Error returns the error string.
func (e *FileError) Error() string {
	return fmt.Sprintf("crudgen: %s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *FileError) Unwrap() error {
	return e.Err
}

// Is reports whether the target error matches FileError.
func (e *FileError) Is(err error) bool {
	return err == ErrFileOperation
}

// NewFileError returns a new FileError.
func NewFileError(op, path string, err error) *FileError {
	return &FileError{Op: op, Path: path, Err: err}
}

// IsFileError returns true if the error is a FileError.
func IsFileError(err error) bool {
	if err == nil {
		return false
	}
	var e *FileError
	return errors.As(err, &e)
}

// ConflictError reports an artifact that was left untouched because it already exists.
type ConflictError struct {
	Entity   string
	Artifact string
	Path     string
}

// Error returns the error string.
func (e *ConflictError) Error() string {
	return fmt.Sprintf("crudgen: %s %s already exists at %s", e.Entity, e.Artifact, e.Path)
}

// Is reports whether the target error matches ConflictError.
func (e *ConflictError) Is(err error) bool {
	return err == ErrConflict
}

// NewConflictError returns a new ConflictError.
func NewConflictError(entity, artifact, path string) *ConflictError {
	return &ConflictError{Entity: entity, Artifact: artifact, Path: path}
}

// IsConflictError returns true if the error is a ConflictError.
func IsConflictError(err error) bool {
	if err == nil {
		return false
	}
	var e *ConflictError
	return errors.As(err, &e) || errors.Is(err, ErrConflict)
}
