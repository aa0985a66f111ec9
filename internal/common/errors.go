// Package common defines shared sentinel errors and small helpers used across
// fsrkeeper components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Environment errors: the device lacks a capability the core depends on
	// (storage, random source). These are not user-facing.
	ErrEnvironment = errors.New("environment misconfigured")
)
