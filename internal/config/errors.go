package config

import "errors"

// Validation errors returned by [StructuredConfig.validate] when required
// configuration groups are incomplete or invalid.
var (
	// ErrInvalidAPIConfigs indicates missing remote API settings
	// (base URL, API key or user id).
	ErrInvalidAPIConfigs = errors.New("invalid api configuration")
	// ErrInvalidStorageConfigs indicates invalid local storage settings
	// (for example, empty DSN, unsupported in-memory DSN, or a missing
	// file store directory).
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration")
)
