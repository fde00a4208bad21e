// Package services defines the business logic that sits between storage and
// transport: storing and parsing hymnal documents, maintaining their search
// indexes, and computing search, category and selection views.
//
// This file centralizes common service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// These errors are intended for internal use by the service layer and translation
// into user-facing messages or HTTP status codes should be performed at the
// handler/controller layer.
package services

import "errors"

var (
	// ErrDocumentNotFound indicates that no document is stored under the id.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrEntryNotFound indicates that the document has no entry with the id.
	ErrEntryNotFound = errors.New("entry not found")

	// ErrInvalidDocument wraps a hymnal.ParseError for sources that cannot be
	// parsed. Use errors.As to reach the underlying cause.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrIDMismatch is returned when the id a document is stored under does
	// not match the id declared by its root element.
	ErrIDMismatch = errors.New("document id does not match the id in the markup")

	// ErrDocumentTooLarge is returned when a source exceeds the configured
	// size limit.
	ErrDocumentTooLarge = errors.New("document too large")

	// ErrUnknownFacet is returned for facet types the model does not know.
	ErrUnknownFacet = errors.New("unknown facet type")

	// ErrUnknownContext is returned for selection contexts that are neither
	// a facet type nor the search context.
	ErrUnknownContext = errors.New("unknown selection context")
)
