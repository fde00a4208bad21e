package search

import "errors"

var (
	// ErrBadRef is returned when a composite line reference cannot be decoded.
	ErrBadRef = errors.New("search: malformed line reference")

	// ErrCorruptIndex is returned when a serialized index cannot be decoded.
	ErrCorruptIndex = errors.New("search: corrupt index blob")

	// ErrIndexVersion is returned when a serialized index was written by a
	// different index format version. Callers should rebuild.
	ErrIndexVersion = errors.New("search: index version mismatch")
)
