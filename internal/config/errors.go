package config

import "errors"

var (
	// ErrInvalid indicates a configuration value is missing or malformed.
	ErrInvalid = errors.New("config: invalid")

	// ErrMissingEnv indicates a ${VAR} reference to an unset variable.
	ErrMissingEnv = errors.New("config: missing required environment variables")

	// ErrSecret indicates a secretref: value could not be resolved.
	ErrSecret = errors.New("config: secret reference")
)
