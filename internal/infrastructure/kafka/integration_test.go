//go:build integration

package kafka

import (
	"context"
	"testing"
	"time"

	"github.com/OliveiraNt/topic-provisioner/internal/config"
	"github.com/OliveiraNt/topic-provisioner/internal/domain"
	"github.com/OliveiraNt/topic-provisioner/internal/utils"
	"github.com/stretchr/testify/require"
)

func TestIntegration_TopicLifecycle(t *testing.T) {
	utils.InitLogger()
	brokers := getTestBrokers(t)
	cfg := config.ClusterConfig{Brokers: brokers, ClientID: "topic_creator", RequestTimeout: 30 * time.Second}

	ctx := context.Background()
	client, err := NewConnector().Connect(ctx, cfg)
	require.NoError(t, err)
	defer client.Close()

	spec := domain.DefaultTopicSpec()

	topics, err := client.ListTopics(ctx)
	require.NoError(t, err)
	require.NotContains(t, topics, spec.Name)

	require.NoError(t, client.ValidateTopic(ctx, spec))
	topics, err = client.ListTopics(ctx)
	require.NoError(t, err)
	require.NotContains(t, topics, spec.Name, "validate-only must not create the topic")

	require.NoError(t, client.CreateTopic(ctx, spec))

	require.Eventually(t, func() bool {
		topics, err := client.ListTopics(ctx)
		return err == nil && topics[spec.Name] == 3
	}, 30*time.Second, 500*time.Millisecond)

	err = client.CreateTopic(ctx, spec)
	require.ErrorIs(t, err, domain.ErrTopicAlreadyExists)

	bad := domain.NewTopicSpec("too_many_replicas", 1, 3)
	err = client.CreateTopic(ctx, bad)
	require.ErrorIs(t, err, domain.ErrConnection, "replication factor above broker count is reported as not ready")
}
