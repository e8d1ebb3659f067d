package kafka

import (
	"context"
	"errors"
	"fmt"

	"github.com/OliveiraNt/topic-provisioner/internal/domain"
	"github.com/OliveiraNt/topic-provisioner/internal/utils"
	"github.com/twmb/franz-go/pkg/kerr"
)

// classify maps franz-go errors onto the domain error kinds.
// Non-Kafka errors (dial failures, EOF, request deadlines) mean the cluster is not reachable yet.
// A parent-context cancellation is passed through so the caller can tell it apart.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}

	var ke *kerr.Error
	switch {
	case errors.Is(err, kerr.TopicAlreadyExists):
		return fmt.Errorf("%s: %w: %w", op, domain.ErrTopicAlreadyExists, err)
	case errors.As(err, &ke):
		// InvalidReplicationFactor shows up while brokers are still registering with the controller.
		if ke.Retriable || ke == kerr.InvalidReplicationFactor {
			return fmt.Errorf("%s: %w: %w", op, domain.ErrConnection, err)
		}
		return fmt.Errorf("%s: %w", op, err)
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("%s: %w", op, err)
	default:
		return fmt.Errorf("%s: %w: %w", op, domain.ErrConnection, err)
	}
}

// explainReplication adds the broker count seen at handshake to a rejected replication factor.
func explainReplication(spec domain.TopicSpec, brokers int, err error) error {
	if !errors.Is(err, kerr.InvalidReplicationFactor) {
		return err
	}
	utils.Logger.Warn("replication factor exceeds registered brokers",
		"topic", spec.Name,
		"replication_factor", spec.ReplicationFactor,
		"brokers", brokers,
	)
	return fmt.Errorf("replication factor %d with %d registered brokers: %w", spec.ReplicationFactor, brokers, err)
}
