package kafka

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"os"

	"github.com/OliveiraNt/topic-provisioner/internal/config"
	"github.com/OliveiraNt/topic-provisioner/internal/domain"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/pkg/sasl"
	"github.com/twmb/franz-go/pkg/sasl/aws"
	"github.com/twmb/franz-go/pkg/sasl/plain"
	"github.com/twmb/franz-go/pkg/sasl/scram"
)

// Client implements domain.AdminClient using franz-go.
type Client struct {
	client *kgo.Client
	admin  *Admin
	// brokers is the broker count reported by the last handshake.
	brokers int
}

// NewClient creates a new Kafka client from configuration. No connection is made until the
// first request.
func NewClient(cfg config.ClusterConfig) (*Client, error) {
	opts := []kgo.Opt{kgo.WithLogger(newKgoLogger())}

	if cfg.ClientID != "" {
		opts = append(opts, kgo.ClientID(cfg.ClientID))
	}
	if len(cfg.Brokers) > 0 {
		opts = append(opts, kgo.SeedBrokers(cfg.Brokers...))
	}
	if cfg.TLS != nil && cfg.TLS.Enabled {
		tlsCfg, err := buildTLSConfig(cfg.TLS)
		if err != nil {
			return nil, err
		}
		opts = append(opts, kgo.DialTLSConfig(tlsCfg))
	}
	if cfg.SASL != nil && cfg.SASL.Mechanism != "" {
		mech, err := buildSASLMechanism(cfg.SASL)
		if err != nil {
			return nil, err
		}
		if mech != nil {
			opts = append(opts, kgo.SASL(mech))
		}
	}
	if cfg.AWS != nil && cfg.AWS.IAM {
		awsMech, err := buildAWSMechanism(cfg.AWS)
		if err != nil {
			return nil, err
		}
		if awsMech != nil {
			opts = append(opts, kgo.SASL(awsMech))
		}
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, err
	}

	return &Client{
		client: client,
		admin:  NewAdmin(kadm.NewClient(client), cfg.RequestTimeout),
	}, nil
}

// Handshake fetches broker metadata, proving at least one seed broker answers.
func (c *Client) Handshake(ctx context.Context) (kadm.Metadata, error) {
	if c == nil || c.admin == nil {
		return kadm.Metadata{}, domain.ErrConnection
	}
	meta, err := c.admin.BrokerMetadata(ctx)
	if err == nil {
		c.brokers = len(meta.Brokers)
	}
	return meta, classify("broker metadata", err)
}

// ListTopics returns non-internal topics with partition counts.
func (c *Client) ListTopics(ctx context.Context) (map[string]int, error) {
	if c == nil || c.admin == nil {
		return nil, domain.ErrConnection
	}
	topics, err := c.admin.ListTopics(ctx)
	return topics, classify("list topics", err)
}

// CreateTopic creates spec on the cluster.
func (c *Client) CreateTopic(ctx context.Context, spec domain.TopicSpec) error {
	if c == nil || c.admin == nil {
		return domain.ErrConnection
	}
	err := explainReplication(spec, c.brokers, c.admin.CreateTopic(ctx, spec))
	return classify("create topic "+spec.Name, err)
}

// ValidateTopic runs a validate-only creation request for spec.
func (c *Client) ValidateTopic(ctx context.Context, spec domain.TopicSpec) error {
	if c == nil || c.admin == nil {
		return domain.ErrConnection
	}
	err := explainReplication(spec, c.brokers, c.admin.ValidateTopic(ctx, spec))
	return classify("validate topic "+spec.Name, err)
}

// Close releases resources
func (c *Client) Close() {
	if c != nil && c.client != nil {
		c.client.Close()
	}
}

// buildTLSConfig reads cert files and builds a tls.Config
func buildTLSConfig(t *config.TLSConfig) (*tls.Config, error) {
	rootCAs := x509.NewCertPool()
	if t.CAFile != "" {
		b, err := os.ReadFile(t.CAFile)
		if err != nil {
			return nil, err
		}
		rootCAs.AppendCertsFromPEM(b)
	}

	var cert tls.Certificate
	if t.CertFile != "" && t.KeyFile != "" {
		c, err := tls.LoadX509KeyPair(t.CertFile, t.KeyFile)
		if err != nil {
			return nil, err
		}
		cert = c
	}

	cfg := &tls.Config{
		RootCAs:            rootCAs,
		InsecureSkipVerify: t.InsecureSkipVerify,
	}
	if len(cert.Certificate) > 0 {
		cfg.Certificates = []tls.Certificate{cert}
	}
	return cfg, nil
}

// buildSASLMechanism creates a franz-go sasl.Mechanism based on SASLConfig.
// Env-provided credentials take precedence over inline ones.
func buildSASLMechanism(s *config.SASLConfig) (sasl.Mechanism, error) {
	username := s.Username
	password := s.Password

	if s.UsernameEnv != "" {
		if v := os.Getenv(s.UsernameEnv); v != "" {
			username = v
		}
	}
	if s.PasswordEnv != "" {
		if v := os.Getenv(s.PasswordEnv); v != "" {
			password = v
		}
	}

	switch s.Mechanism {
	case "PLAIN", "plain":
		return plain.Auth{User: username, Pass: password}.AsMechanism(), nil
	case "SCRAM-SHA-256", "SCRAM-SHA256", "scram-sha-256":
		return scram.Auth{User: username, Pass: password}.AsSha256Mechanism(), nil
	case "SCRAM-SHA-512", "SCRAM-SHA512", "scram-sha-512":
		return scram.Auth{User: username, Pass: password}.AsSha512Mechanism(), nil
	default:
		return nil, nil
	}
}

// buildAWSMechanism constructs an MSK IAM mechanism, falling back to the standard AWS env vars.
func buildAWSMechanism(a *config.AWSConfig) (sasl.Mechanism, error) {
	access, secret, session := "", "", ""

	if a != nil {
		if a.AccessKeyEnv != "" {
			access = os.Getenv(a.AccessKeyEnv)
		}
		if a.SecretKeyEnv != "" {
			secret = os.Getenv(a.SecretKeyEnv)
		}
		if a.SessionTokenEnv != "" {
			session = os.Getenv(a.SessionTokenEnv)
		}
	}

	if access == "" {
		access = os.Getenv("AWS_ACCESS_KEY_ID")
	}
	if secret == "" {
		secret = os.Getenv("AWS_SECRET_ACCESS_KEY")
	}
	if session == "" {
		session = os.Getenv("AWS_SESSION_TOKEN")
	}

	if access == "" || secret == "" {
		return nil, nil
	}

	return aws.Auth{
		AccessKey:    access,
		SecretKey:    secret,
		SessionToken: session,
	}.AsManagedStreamingIAMMechanism(), nil
}
