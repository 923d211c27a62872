package repository

import "errors"

// ErrNotFound is returned when a row does not exist. Callers branch on it to
// separate missing records from storage failures.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when a unique constraint rejects an insert, such
// as registering a handle that is already taken.
var ErrDuplicate = errors.New("already exists")
