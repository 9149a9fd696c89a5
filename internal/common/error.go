// Package common defines shared sentinel errors used across the intake
// service. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Validation errors (bad form fields or rejected files).
	ErrorValidation = errors.New("validation error")

	// Storage errors (metadata or file write failed).
	ErrorStorage = errors.New("storage error")

	// Admission control (rate limit window exhausted).
	ErrorRateLimited = errors.New("rate limited")

	// Feature gating (applications paused or closed).
	ErrorApplicationsClosed = errors.New("applications closed")

	// Generic internal flow control.
	ErrorInternal = errors.New("internal error")
)
