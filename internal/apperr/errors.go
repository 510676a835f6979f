// Package apperr defines sentinel errors shared across service boundaries.
package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrEmptyInput    = errors.New("input is empty")
	ErrInvalidImport = errors.New("invalid import payload")
	ErrNoDueDate     = errors.New("task has no due date")
)
