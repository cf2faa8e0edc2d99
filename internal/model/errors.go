package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means a name has no entry in the reference tables.
	// It is a normal outcome and never aborts a finder run.
	ErrNotFound = errors.New("name not found")

	// ErrInvalidConfig is matched by every *ConfigError
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrDataIntegrity is matched by every *DataIntegrityError
	ErrDataIntegrity = errors.New("reference data integrity")
)

// ConfigError reports an invalid tunable, detected before processing starts
type ConfigError struct {
	Field  string
	Value  interface{}
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid config %s=%v: %s", e.Field, e.Value, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

// DataIntegrityError reports a malformed or unreadable reference store
type DataIntegrityError struct {
	Source string // Database path or "memory"
	Table  string
	Row    string // Offending row key, if any
	Err    error
}

func (e *DataIntegrityError) Error() string {
	msg := "reference data"
	if e.Source != "" {
		msg += " " + e.Source
	}
	if e.Table != "" {
		msg += ": table " + e.Table
	}
	if e.Row != "" {
		msg += ": row " + e.Row
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is makes errors.Is(err, ErrDataIntegrity) hold while Unwrap exposes the cause
func (e *DataIntegrityError) Is(target error) bool {
	return target == ErrDataIntegrity
}

func (e *DataIntegrityError) Unwrap() error {
	return e.Err
}
