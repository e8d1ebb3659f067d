package kafka

import (
	"context"
	"errors"
	"time"

	"github.com/OliveiraNt/topic-provisioner/internal/domain"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
)

const defaultRequestTimeout = 10 * time.Second

type Admin struct {
	client  *kadm.Client
	timeout time.Duration
}

// NewAdmin creates a new Admin bounding every request by timeout.
func NewAdmin(client *kadm.Client, timeout time.Duration) *Admin {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &Admin{client: client, timeout: timeout}
}

// BrokerMetadata returns broker metadata (used as the connection handshake)
func (a *Admin) BrokerMetadata(ctx context.Context) (kadm.Metadata, error) {
	cctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	return a.client.BrokerMetadata(cctx)
}

// ListTopics returns non-internal topics as name->partitions
func (a *Admin) ListTopics(ctx context.Context) (map[string]int, error) {
	cctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	m, err := a.client.ListTopics(cctx)
	if err != nil {
		return nil, err
	}

	out := make(map[string]int, len(m))
	for name, info := range m {
		if errors.Is(info.Err, kerr.UnknownTopicOrPartition) {
			continue
		}
		out[name] = len(info.Partitions)
	}
	return out, nil
}

// CreateTopic creates a topic from spec
func (a *Admin) CreateTopic(ctx context.Context, spec domain.TopicSpec) error {
	cctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	resp, err := a.client.CreateTopics(cctx, spec.Partitions, spec.ReplicationFactor, spec.Configs, spec.Name)
	if err != nil {
		return err
	}
	return firstErr(resp)
}

// ValidateTopic asks the controller to validate the creation of spec without creating it
func (a *Admin) ValidateTopic(ctx context.Context, spec domain.TopicSpec) error {
	cctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	resp, err := a.client.ValidateCreateTopics(cctx, spec.Partitions, spec.ReplicationFactor, spec.Configs, spec.Name)
	if err != nil {
		return err
	}
	return firstErr(resp)
}

func firstErr(resp kadm.CreateTopicResponses) error {
	for _, r := range resp {
		if r.Err != nil {
			return r.Err
		}
	}
	return nil
}
