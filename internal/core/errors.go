// Package core defines the fundamental types and errors for PulseMind.
package core

import "errors"

// Core errors that can occur across the system
var (
	// Storage errors
	ErrRecordNotFound  = errors.New("record not found")
	ErrDuplicateRecord = errors.New("duplicate record")
	ErrMigrationFailed = errors.New("migration failed")

	// Journal errors
	ErrEntryNotFound = errors.New("journal entry not found")
	ErrEmptyEntry    = errors.New("journal entry has no text and no mood")

	// Reading errors
	ErrUnknownChannel = errors.New("unknown biometric channel")

	// Bridge errors
	ErrMalformedReport = errors.New("malformed device report")

	// Validation errors
	ErrInvalidInput = errors.New("invalid input")
)
