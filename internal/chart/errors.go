package chart

import "errors"

var (
	// ErrInvalidPeriod is returned for a period the chart does not support.
	ErrInvalidPeriod = errors.New("invalid chart period")

	// ErrInvalidShape is returned for a shape that is not <columns>x<rows>
	// with positive dimensions, or that exceeds the configured tile limit.
	ErrInvalidShape = errors.New("invalid chart shape")

	// ErrMalformedRecord is returned when an upstream album record is
	// missing its artist, its name or its cover image entry.
	ErrMalformedRecord = errors.New("malformed album record")

	// ErrUpstream wraps failures fetching album metadata.
	ErrUpstream = errors.New("fetching top albums")
)
