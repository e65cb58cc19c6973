// Package domain provides shared domain-level sentinel errors.
package domain

import "errors"

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrValidation indicates the client request is missing required fields
// or carries values outside the accepted domain.
var ErrValidation = errors.New("validation failed")

// ErrInvalidModelOutput indicates the model's buffered output could not
// be parsed into a task list after cleaning.
var ErrInvalidModelOutput = errors.New("invalid model output")

// ErrUpstream indicates the model call itself failed before any usable
// output was produced.
var ErrUpstream = errors.New("upstream generation failed")
