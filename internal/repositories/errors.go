package repositories

import "errors"

// ErrRecordNotFound is returned (wrapped) when a lookup matches no row.
var ErrRecordNotFound = errors.New("record not found")

// ErrDuplicateRecord is returned (wrapped) when an insert hits a unique index.
var ErrDuplicateRecord = errors.New("duplicate record")
