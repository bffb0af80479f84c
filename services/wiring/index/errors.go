// Copyright (C) 2025 Wirecheck Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package index

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidClass indicates a class symbol failed validation.
	ErrInvalidClass = errors.New("invalid class symbol")

	// ErrDuplicateClass indicates a class with the same qualified name
	// already exists in the table.
	ErrDuplicateClass = errors.New("duplicate class symbol")

	// ErrMaxClassesExceeded indicates the table is at capacity.
	ErrMaxClassesExceeded = errors.New("maximum class count exceeded")
)

// BatchError aggregates errors from a batched add.
type BatchError struct {
	Errors []error
}

// Error returns a summary of all contained errors.
func (e *BatchError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d errors:", len(e.Errors))
	for _, err := range e.Errors {
		sb.WriteString("\n  ")
		sb.WriteString(err.Error())
	}
	return sb.String()
}

// Unwrap returns the contained errors for errors.Is/As matching.
func (e *BatchError) Unwrap() []error {
	return e.Errors
}
