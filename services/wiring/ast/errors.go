// Copyright (C) 2025 Wirecheck Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ast

import "errors"

var (
	// ErrFileTooLarge is returned when a source file exceeds the parser's
	// configured maximum size.
	ErrFileTooLarge = errors.New("file exceeds maximum size")

	// ErrInvalidContent is returned when source content is not valid UTF-8.
	ErrInvalidContent = errors.New("invalid file content")
)
