package domain

import "errors"

var (
	// ErrConnection marks failures caused by the cluster being unreachable or not ready yet.
	ErrConnection = errors.New("kafka cluster unavailable")

	// ErrTopicAlreadyExists is returned by a creation call when the topic is already present.
	ErrTopicAlreadyExists = errors.New("topic already exists")
)

// IsTransient reports whether err is worth another attempt.
func IsTransient(err error) bool {
	return errors.Is(err, ErrConnection)
}
