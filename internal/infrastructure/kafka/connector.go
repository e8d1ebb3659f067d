package kafka

import (
	"context"

	"github.com/OliveiraNt/topic-provisioner/internal/config"
	"github.com/OliveiraNt/topic-provisioner/internal/domain"
	"github.com/OliveiraNt/topic-provisioner/internal/utils"
)

// Connector opens franz-go admin connections.
type Connector struct{}

// NewConnector creates a new connector.
func NewConnector() *Connector {
	return &Connector{}
}

// Connect builds a client from cfg and performs a metadata handshake. The client is closed
// when the handshake fails.
func (f *Connector) Connect(ctx context.Context, cfg config.ClusterConfig) (domain.AdminClient, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}

	meta, err := client.Handshake(ctx)
	if err != nil {
		client.Close()
		return nil, err
	}

	utils.Logger.Debug("connected to cluster", "cluster_id", meta.Cluster, "brokers", len(meta.Brokers), "controller", meta.Controller)
	return client, nil
}
