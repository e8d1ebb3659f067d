// Package cmd provides the topic-provisioner command line. It resolves configuration from the
// config file, environment and flags, runs the provisioner and maps its result to an exit status.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/OliveiraNt/topic-provisioner/internal/application"
	"github.com/OliveiraNt/topic-provisioner/internal/config"
	"github.com/OliveiraNt/topic-provisioner/internal/domain"
	"github.com/OliveiraNt/topic-provisioner/internal/infrastructure/kafka"
	"github.com/OliveiraNt/topic-provisioner/internal/utils"
	"github.com/spf13/cobra"
)

type options struct {
	configPath      string
	brokers         []string
	clientID        string
	requestTimeout  time.Duration
	topic           string
	partitions      int32
	replication     int16
	topicConfigs    map[string]string
	maxAttempts     int
	retryDelay      time.Duration
	failOnExhausted bool
	dryRun          bool
	logLevel        string
}

// Execute runs the root command against a real cluster and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := NewRootCmd(kafka.NewConnector())
	if err := root.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// NewRootCmd builds the command. opts are passed to the provisioner, after the dry-run setting.
func NewRootCmd(connector domain.AdminConnector, opts ...application.Option) *cobra.Command {
	o := &options{}
	cmd := &cobra.Command{
		Use:   "topic-provisioner",
		Short: "Wait for a Kafka cluster and make sure a topic exists",
		Long: `topic-provisioner polls a Kafka cluster until it answers, then creates the configured
topic unless it already exists. It is meant to run once before the services that depend on the
topic start, and is safe to run concurrently from several replicas.

Configuration is read from a YAML file (--config, TOPIC_PROVISIONER_CONFIG, or
./topic-provisioner.yml, $XDG_CONFIG_HOME/topic-provisioner/, ~/.config/topic-provisioner/,
/etc/topic-provisioner/), then TOPIC_PROVISIONER_* environment variables, then flags.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, o, connector, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.configPath, "config", "c", "", "path to the YAML config file")
	f.StringSliceVarP(&o.brokers, "brokers", "b", nil, "bootstrap broker addresses (host:port, comma separated)")
	f.StringVar(&o.clientID, "client-id", "", "Kafka client id")
	f.DurationVar(&o.requestTimeout, "request-timeout", 0, "timeout for each admin request")
	f.StringVarP(&o.topic, "topic", "t", "", "name of the topic to ensure")
	f.Int32VarP(&o.partitions, "partitions", "p", 0, "partition count used when creating the topic")
	f.Int16VarP(&o.replication, "replication-factor", "r", 0, "replication factor used when creating the topic")
	f.StringToStringVar(&o.topicConfigs, "topic-config", nil, "topic-level config applied on creation (key=value, repeatable)")
	f.IntVar(&o.maxAttempts, "max-attempts", 0, "attempts before giving up on the cluster")
	f.DurationVar(&o.retryDelay, "retry-delay", 0, "delay between attempts")
	f.BoolVar(&o.failOnExhausted, "fail-on-exhausted", true, "exit non-zero when the cluster never became reachable")
	f.BoolVar(&o.dryRun, "dry-run", false, "validate the creation request without creating the topic")
	f.StringVar(&o.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	return cmd
}

func run(cmd *cobra.Command, o *options, connector domain.AdminConnector, opts []application.Option) error {
	cfg, err := loadConfig(cmd, o)
	if err != nil {
		utils.Logger.Error("invalid configuration", "err", err)
		return err
	}
	if err := cfg.Cluster.Validate(); err != nil {
		utils.Logger.Error("invalid configuration", "err", err)
		return err
	}
	warnCertificateExpiry(cfg.Cluster)

	spec := topicSpec(cfg.Topic)
	policy := application.RetryPolicy{MaxAttempts: cfg.Retry.MaxAttempts, Delay: cfg.Retry.Delay}

	utils.Logger.Info("ensuring topic",
		"topic", spec.Name,
		"partitions", spec.Partitions,
		"replication_factor", spec.ReplicationFactor,
		"brokers", cfg.Cluster.Brokers,
		"auth", cfg.Cluster.GetAuthType(),
		"max_attempts", policy.MaxAttempts,
		"retry_delay", policy.Delay,
	)

	popts := append([]application.Option{application.WithDryRun(o.dryRun)}, opts...)
	p := application.NewProvisioner(connector, cfg.Cluster, popts...)
	res, err := p.EnsureTopic(cmd.Context(), spec, policy)
	switch {
	case err == nil:
		utils.Logger.Info("topic ready", "topic", spec.Name, "outcome", res.Outcome, "attempts", res.Attempts)
		return nil
	case errors.Is(err, application.ErrExhaustedRetries) && !cfg.Retry.FailOnExhausted:
		utils.Logger.Warn("giving up on topic provisioning, exiting normally", "topic", spec.Name, "fail_on_exhausted", false)
		return nil
	case errors.Is(err, application.ErrInvalidTopicSpec), errors.Is(err, application.ErrInvalidRetryPolicy):
		utils.Logger.Error("invalid configuration", "err", err)
		return err
	default:
		utils.Logger.Error("topic provisioning aborted", "topic", spec.Name, "attempts", res.Attempts, "err", err)
		return err
	}
}

// loadConfig layers defaults, the config file, the environment and explicitly set flags.
func loadConfig(cmd *cobra.Command, o *options) (config.FileConfig, error) {
	path := o.configPath
	if path == "" {
		path = os.Getenv(config.EnvPrefix + "CONFIG")
	}
	if path == "" {
		path = config.FindConfigPath()
	}

	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.ReadConfig(path); err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if err := config.ApplyEnv(&cfg); err != nil {
		return cfg, err
	}

	f := cmd.Flags()
	if f.Changed("brokers") {
		cfg.Cluster.Brokers = o.brokers
	}
	if f.Changed("client-id") {
		cfg.Cluster.ClientID = o.clientID
	}
	if f.Changed("request-timeout") {
		cfg.Cluster.RequestTimeout = o.requestTimeout
	}
	if f.Changed("topic") {
		cfg.Topic.Name = o.topic
	}
	if f.Changed("partitions") {
		cfg.Topic.Partitions = o.partitions
	}
	if f.Changed("replication-factor") {
		cfg.Topic.ReplicationFactor = o.replication
	}
	if f.Changed("topic-config") {
		if cfg.Topic.Configs == nil {
			cfg.Topic.Configs = make(map[string]string, len(o.topicConfigs))
		}
		for k, v := range o.topicConfigs {
			cfg.Topic.Configs[k] = v
		}
	}
	if f.Changed("max-attempts") {
		cfg.Retry.MaxAttempts = o.maxAttempts
	}
	if f.Changed("retry-delay") {
		cfg.Retry.Delay = o.retryDelay
	}
	if f.Changed("fail-on-exhausted") {
		cfg.Retry.FailOnExhausted = o.failOnExhausted
	}
	if f.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}

	if cfg.LogLevel != "" {
		utils.SetLogLevel(cfg.LogLevel)
	}
	if path != "" {
		utils.Logger.Debug("configuration loaded", "path", path)
	}
	return cfg, nil
}

func topicSpec(t config.TopicConfig) domain.TopicSpec {
	spec := domain.NewTopicSpec(t.Name, t.Partitions, t.ReplicationFactor)
	if len(t.Configs) > 0 {
		spec.Configs = make(map[string]*string, len(t.Configs))
		for k, v := range t.Configs {
			v := v // per-iteration copy; go 1.21 loop variables are shared
			spec.Configs[k] = &v
		}
	}
	return spec
}

func warnCertificateExpiry(c config.ClusterConfig) {
	info, err := c.GetCertificateInfo()
	if err != nil {
		utils.Logger.Warn("get certificate info failed", "cert_file", c.TLS.CertFile, "err", err)
		return
	}
	if info == nil || info.Status == "valid" {
		return
	}
	utils.Logger.Warn("client certificate expiring", "status", info.Status, "days_to_expiry", info.DaysToExpiry, "not_after", info.NotAfter)
}
