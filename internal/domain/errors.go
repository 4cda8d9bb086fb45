// Package domain holds the error taxonomy shared by the pure subtitle and
// segmentation packages below it.
package domain

import "errors"

var (
	// ErrInvalidTimestamp is returned for negative or non-finite times.
	ErrInvalidTimestamp = errors.New("invalid timestamp")

	// ErrInvalidConfiguration is returned for unusable limits, styles or
	// segment lengths.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)
