// Package common defines shared constants and sentinel errors used across the
// profile engine and its collaborator clients. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Generic backend failures: network or storage errors from the profile
	// store (PersistenceError) and blob storage (UploadError). Neither is
	// retried implicitly; the edit buffer is preserved so the user can retry.
	ErrorPersistence = errors.New("persistence error")
	ErrorUpload      = errors.New("upload error")

	// Validation errors are always user-recoverable and cause no state change.
	ErrorValidation   = errors.New("validation error")
	ErrorFileTooLarge = errors.New("file too large")

	// Username registry errors.
	ErrorUsernameTaken   = errors.New("username already taken")
	ErrorInvalidUsername = errors.New("invalid username")
	ErrorCooldownActive  = errors.New("username change cooldown active")

	// Identity errors.
	ErrorUnauthorized = errors.New("unauthorized")
	ErrInvalidToken   = errors.New("invalid token")

	// Controller-level flow control: a save or upload is already in flight.
	ErrorBusy = errors.New("operation in progress")
)
