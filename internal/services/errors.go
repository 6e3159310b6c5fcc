package services

import "errors"

var (
	// ErrValidation marks input that failed a precondition.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks a missing (or not owned) floss code or pattern.
	ErrNotFound = errors.New("not found")
	// ErrConflict marks an attempt to create something that already exists.
	ErrConflict = errors.New("already exists")
	// ErrInvalidCredentials is returned for any failed login.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Pattern upload rejections.
var (
	ErrMissingName        = wrap(ErrValidation, "pattern name is required")
	ErrNameTooLong        = wrap(ErrValidation, "pattern name is too long")
	ErrMissingFile        = wrap(ErrValidation, "pattern file is required")
	ErrDisallowedFileType = wrap(ErrValidation, "file type is not allowed")
)

type wrappedError struct {
	base error
	msg  string
}

func wrap(base error, msg string) error {
	return &wrappedError{base: base, msg: msg}
}

func (e *wrappedError) Error() string { return e.msg }

func (e *wrappedError) Unwrap() error { return e.base }
