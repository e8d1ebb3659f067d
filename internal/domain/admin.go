package domain

import (
	"context"

	"github.com/OliveiraNt/topic-provisioner/internal/config"
)

// AdminConnector opens admin connections to a cluster.
type AdminConnector interface {
	Connect(ctx context.Context, cfg config.ClusterConfig) (AdminClient, error)
}

// AdminClient defines the cluster metadata operations the provisioner needs.
type AdminClient interface {
	// ListTopics returns non-internal topics as name -> partition count.
	ListTopics(ctx context.Context) (map[string]int, error)
	CreateTopic(ctx context.Context, spec TopicSpec) error
	// ValidateTopic asks the broker to validate a creation request without applying it.
	ValidateTopic(ctx context.Context, spec TopicSpec) error
	Close()
}
