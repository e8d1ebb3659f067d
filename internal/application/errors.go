package application

import "errors"

var (
	// ErrExhaustedRetries is returned when every attempt failed with a transient error
	ErrExhaustedRetries = errors.New("exhausted retries waiting for kafka")

	// ErrInvalidTopicSpec is returned when the topic descriptor is invalid
	ErrInvalidTopicSpec = errors.New("invalid topic spec")

	// ErrInvalidRetryPolicy is returned when the retry policy is invalid
	ErrInvalidRetryPolicy = errors.New("invalid retry policy")
)
