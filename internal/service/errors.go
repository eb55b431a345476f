package service

import "errors"

// Common service errors
var (
	// ErrNotFound is returned when a resource does not exist or is
	// outside the caller's workspace
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict is returned on duplicates or illegal state transitions
	ErrConflict = errors.New("resource conflict")

	// ErrUnauthorized is returned when the caller is not authenticated
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidStatus is returned when a status value is not a valid enum member
	ErrInvalidStatus = errors.New("invalid status")

	// ErrInvalidStage is returned when a stage value is not a valid enum member
	ErrInvalidStage = errors.New("invalid stage")

	// ErrTagNotFound is returned when removing a tag that is not attached
	ErrTagNotFound = errors.New("tag not found")

	// ErrOfferNotEditable is returned when mutating an offer that left draft
	ErrOfferNotEditable = errors.New("offer is no longer editable")

	// ErrNoRecipient is returned when an SMS has no usable phone number
	ErrNoRecipient = errors.New("no recipient phone number")

	// ErrSmsDisabled is returned when the SMS gateway is not configured
	ErrSmsDisabled = errors.New("sms gateway disabled")

	// ErrProviderNotLinked is returned when a user has no mail provider linked
	ErrProviderNotLinked = errors.New("email provider not linked")
)
