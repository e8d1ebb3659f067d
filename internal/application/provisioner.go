// Package application holds the topic provisioning procedure: wait for the cluster, check for the
// topic, create it when missing.
package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/OliveiraNt/topic-provisioner/internal/config"
	"github.com/OliveiraNt/topic-provisioner/internal/domain"
	"github.com/OliveiraNt/topic-provisioner/internal/utils"
	"github.com/cenkalti/backoff/v4"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// RetryPolicy bounds how long the provisioner waits for the cluster.
type RetryPolicy struct {
	MaxAttempts int           `validate:"gte=1"`
	Delay       time.Duration `validate:"gte=0"`
}

// Validate checks the policy bounds.
func (p RetryPolicy) Validate() error {
	return validate.Struct(p)
}

// Result reports how a successful run ended.
type Result struct {
	Outcome  domain.Outcome
	Attempts int
}

// Provisioner ensures a topic exists on one cluster.
type Provisioner struct {
	connector domain.AdminConnector
	cluster   config.ClusterConfig
	timer     backoff.Timer
	dryRun    bool
}

// Option customizes a Provisioner.
type Option func(*Provisioner)

// WithTimer replaces the timer used between attempts. A nil timer uses a real one.
func WithTimer(timer backoff.Timer) Option {
	return func(p *Provisioner) { p.timer = timer }
}

// WithDryRun makes the provisioner validate the creation request instead of applying it.
func WithDryRun(dryRun bool) Option {
	return func(p *Provisioner) { p.dryRun = dryRun }
}

// NewProvisioner creates a provisioner talking to cluster through connector.
func NewProvisioner(connector domain.AdminConnector, cluster config.ClusterConfig, opts ...Option) *Provisioner {
	p := &Provisioner{
		connector: connector,
		cluster:   cluster,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// EnsureTopic makes sure spec exists on the cluster, retrying while the cluster is unreachable.
// A topic that already exists, or that a concurrent creator wins the race for, is a success.
// Errors other than connection errors are returned at once; running out of attempts returns
// ErrExhaustedRetries wrapping the last cause.
func (p *Provisioner) EnsureTopic(ctx context.Context, spec domain.TopicSpec, policy RetryPolicy) (Result, error) {
	if err := spec.Validate(); err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrInvalidTopicSpec, err)
	}
	if err := policy.Validate(); err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrInvalidRetryPolicy, err)
	}

	var (
		attempt int
		outcome domain.Outcome
	)
	operation := func() error {
		attempt++
		out, err := p.attempt(ctx, spec)
		if err == nil {
			outcome = out
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return backoff.Permanent(ctxErr)
		}
		if !domain.IsTransient(err) {
			utils.Logger.Error("topic provisioning failed", "topic", spec.Name, "attempt", attempt, "err", err)
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, next time.Duration) {
		utils.Logger.Warn("kafka not ready yet", "attempt", attempt, "max_attempts", policy.MaxAttempts, "retry_in", next, "err", err)
	}

	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(policy.Delay), uint64(policy.MaxAttempts-1)), ctx)
	err := backoff.RetryNotifyWithTimer(operation, b, notify, p.timer)
	switch {
	case err == nil:
		return Result{Outcome: outcome, Attempts: attempt}, nil
	case ctx.Err() != nil:
		return Result{Attempts: attempt}, ctx.Err()
	case !domain.IsTransient(err):
		return Result{Attempts: attempt}, err
	}

	utils.Logger.Error("gave up waiting for kafka", "attempts", attempt, "err", err)
	return Result{Attempts: attempt}, fmt.Errorf("%w after %d attempts: %w", ErrExhaustedRetries, attempt, err)
}

// attempt runs one connect/list/create round on a fresh connection.
func (p *Provisioner) attempt(ctx context.Context, spec domain.TopicSpec) (domain.Outcome, error) {
	client, err := p.connector.Connect(ctx, p.cluster)
	if err != nil {
		return 0, err
	}
	defer client.Close()

	topics, err := client.ListTopics(ctx)
	if err != nil {
		return 0, err
	}

	if partitions, ok := topics[spec.Name]; ok {
		if partitions != int(spec.Partitions) {
			utils.Logger.Warn("existing topic partition count differs", "topic", spec.Name, "partitions", partitions, "requested", spec.Partitions)
		}
		utils.Logger.Info("topic already exists, skipping creation", "topic", spec.Name)
		return domain.OutcomeAlreadyExists, nil
	}

	if p.dryRun {
		err = client.ValidateTopic(ctx, spec)
	} else {
		err = client.CreateTopic(ctx, spec)
	}

	switch {
	case err == nil && p.dryRun:
		utils.Logger.Info("topic creation validated (dry run)", "topic", spec.Name, "partitions", spec.Partitions, "replication_factor", spec.ReplicationFactor)
		return domain.OutcomeValidated, nil
	case err == nil:
		utils.Logger.Info("topic created", "topic", spec.Name, "partitions", spec.Partitions, "replication_factor", spec.ReplicationFactor)
		return domain.OutcomeCreated, nil
	case errors.Is(err, domain.ErrTopicAlreadyExists):
		utils.Logger.Info("topic created concurrently by another provisioner", "topic", spec.Name)
		return domain.OutcomeAlreadyExists, nil
	default:
		return 0, err
	}
}
