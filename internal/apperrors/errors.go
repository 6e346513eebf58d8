package apperrors

import "errors"

// Domain entity errors represent missing entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrEntryNotFound indicates that an entry with the given ID does not exist.
	// A concurrent user may have deleted it; callers should refresh their view.
	ErrEntryNotFound = errors.New("entry not found")

	// ErrAttachmentNotFound indicates that an attachment with the given ID does not exist.
	ErrAttachmentNotFound = errors.New("attachment not found")
)

// Business logic errors represent validation failures or constraint violations.
// These errors indicate that an operation cannot be completed due to business rules.
var (
	// ErrMissingRequiredField indicates that a required field is missing or empty.
	ErrMissingRequiredField = errors.New("missing required field")

	// ErrInvalidDate indicates that a date string could not be parsed.
	ErrInvalidDate = errors.New("invalid date format")

	// ErrInvalidBroker indicates a broker value outside the accepted set.
	ErrInvalidBroker = errors.New("invalid broker")

	// ErrInvalidStatus indicates a workflow status outside pending/in_progress/completed.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrInvalidFilter indicates an unknown entry list filter.
	ErrInvalidFilter = errors.New("invalid filter")

	// ErrInvalidEntryID indicates that a provided entry ID is not a positive integer.
	ErrInvalidEntryID = errors.New("invalid entry ID")

	// ErrInvalidUUID indicates that a provided attachment ID is not a valid UUID format.
	ErrInvalidUUID = errors.New("invalid UUID format")
)

// Storage errors represent failures of the persistence layer itself.
var (
	// ErrStoreBusy indicates the database stayed locked past the bounded
	// busy wait. The single operation may be retried; nothing was persisted.
	ErrStoreBusy = errors.New("store busy")

	// ErrAttachmentKeyInvalid indicates the configured attachment encryption
	// key could not decode a stored payload.
	ErrAttachmentKeyInvalid = errors.New("attachment encryption key invalid")
)
