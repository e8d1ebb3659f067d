package config

import (
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	DefaultBroker         = "kafka:9092"
	DefaultClientID       = "topic_creator"
	DefaultRequestTimeout = 10 * time.Second
	DefaultMaxAttempts    = 30
	DefaultRetryDelay     = 5 * time.Second
)

var validate = validator.New()

// ClusterConfig holds cluster connectivity and security configuration.
type ClusterConfig struct {
	Brokers        []string      `yaml:"brokers" json:"brokers" validate:"required,min=1,dive,hostname_port"`
	ClientID       string        `yaml:"client_id,omitempty" json:"client_id,omitempty"`
	RequestTimeout time.Duration `yaml:"request_timeout,omitempty" json:"request_timeout,omitempty" validate:"gt=0"`
	TLS            *TLSConfig    `yaml:"tls,omitempty" json:"tls,omitempty"`
	SASL           *SASLConfig   `yaml:"sasl,omitempty" json:"sasl,omitempty"`
	AWS            *AWSConfig    `yaml:"aws,omitempty" json:"aws,omitempty"`
}

// TLSConfig holds TLS related fields.
type TLSConfig struct {
	Enabled            bool   `yaml:"enabled,omitempty" json:"enabled,omitempty"`
	CAFile             string `yaml:"ca_file,omitempty" json:"ca_file,omitempty"`
	CertFile           string `yaml:"cert_file,omitempty" json:"cert_file,omitempty"`
	KeyFile            string `yaml:"key_file,omitempty" json:"key_file,omitempty"`
	InsecureSkipVerify bool   `yaml:"insecure_skip_verify,omitempty" json:"insecure_skip_verify,omitempty"`
}

// SASLConfig holds SASL configuration. Credentials may be provided inline or via env var names.
type SASLConfig struct {
	Mechanism   string `yaml:"mechanism,omitempty" json:"mechanism,omitempty"` // e.g. PLAIN, SCRAM-SHA-256, SCRAM-SHA-512
	Username    string `yaml:"username,omitempty" json:"username,omitempty"`
	Password    string `yaml:"password,omitempty" json:"password,omitempty"`
	UsernameEnv string `yaml:"username_env,omitempty" json:"username_env,omitempty"`
	PasswordEnv string `yaml:"password_env,omitempty" json:"password_env,omitempty"`
}

// AWSConfig holds AWS IAM SASL config.
type AWSConfig struct {
	IAM             bool   `yaml:"iam,omitempty" json:"iam,omitempty"`
	Region          string `yaml:"region,omitempty" json:"region,omitempty"`
	AccessKeyEnv    string `yaml:"access_key_env,omitempty" json:"access_key_env,omitempty"`
	SecretKeyEnv    string `yaml:"secret_key_env,omitempty" json:"secret_key_env,omitempty"`
	SessionTokenEnv string `yaml:"session_token_env,omitempty" json:"session_token_env,omitempty"`
}

// TopicConfig describes the topic to ensure.
type TopicConfig struct {
	Name              string            `yaml:"name" json:"name"`
	Partitions        int32             `yaml:"partitions" json:"partitions"`
	ReplicationFactor int16             `yaml:"replication_factor" json:"replication_factor"`
	Configs           map[string]string `yaml:"configs,omitempty" json:"configs,omitempty"`
}

// RetryConfig controls how long the provisioner waits for the cluster.
type RetryConfig struct {
	MaxAttempts     int           `yaml:"max_attempts" json:"max_attempts"`
	Delay           time.Duration `yaml:"delay" json:"delay"`
	FailOnExhausted bool          `yaml:"fail_on_exhausted" json:"fail_on_exhausted"`
}

type FileConfig struct {
	Cluster  ClusterConfig `yaml:"cluster" json:"cluster"`
	Topic    TopicConfig   `yaml:"topic" json:"topic"`
	Retry    RetryConfig   `yaml:"retry" json:"retry"`
	LogLevel string        `yaml:"log_level,omitempty" json:"log_level,omitempty"`
}

// Default returns the configuration used when no file, env or flag overrides anything.
func Default() FileConfig {
	return FileConfig{
		Cluster: ClusterConfig{
			Brokers:        []string{DefaultBroker},
			ClientID:       DefaultClientID,
			RequestTimeout: DefaultRequestTimeout,
		},
		Topic: TopicConfig{
			Name:              "mock_data_topic",
			Partitions:        3,
			ReplicationFactor: 1,
		},
		Retry: RetryConfig{
			MaxAttempts:     DefaultMaxAttempts,
			Delay:           DefaultRetryDelay,
			FailOnExhausted: true,
		},
	}
}

// ReadConfig loads path on top of Default(); keys absent from the file keep their defaults.
func ReadConfig(path string) (FileConfig, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}

// Validate checks the cluster connectivity settings.
func (c *ClusterConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid cluster configuration: %w", err)
	}
	return nil
}

// GetAuthType returns a human-readable authentication type based on the cluster config
func (c *ClusterConfig) GetAuthType() string {
	if c.AWS != nil && c.AWS.IAM {
		return "AWS IAM"
	}

	if c.SASL != nil && c.SASL.Mechanism != "" {
		mechanism := c.SASL.Mechanism
		if c.TLS != nil && c.TLS.Enabled {
			return "SASL/" + mechanism + " + TLS"
		}
		return "SASL/" + mechanism
	}

	// mTLS when a client certificate is configured
	if c.TLS != nil && c.TLS.Enabled {
		if c.TLS.CertFile != "" && c.TLS.KeyFile != "" {
			return "mTLS"
		}
		return "TLS"
	}

	return "PLAINTEXT"
}

// CertificateInfo holds certificate validity information
type CertificateInfo struct {
	NotBefore    time.Time `json:"not_before"`
	NotAfter     time.Time `json:"not_after"`
	DaysToExpiry int       `json:"days_to_expiry"`
	Status       string    `json:"status"` // "valid", "warning", "critical", "expired"
}

// GetCertificateInfo reads and parses the client certificate to extract validity information.
func (c *ClusterConfig) GetCertificateInfo() (*CertificateInfo, error) {
	if !c.HasCertificate() {
		return nil, nil
	}

	certPEM, err := os.ReadFile(c.TLS.CertFile)
	if err != nil {
		return nil, err
	}

	block, _ := pem.Decode(certPEM)
	if block == nil {
		return nil, nil // not PEM
	}

	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	daysToExpiry := int(time.Until(cert.NotAfter).Hours() / 24)

	status := "valid"
	if now.After(cert.NotAfter) {
		status = "expired"
	} else if daysToExpiry <= 7 {
		status = "critical"
	} else if daysToExpiry <= 30 {
		status = "warning"
	}

	return &CertificateInfo{
		NotBefore:    cert.NotBefore,
		NotAfter:     cert.NotAfter,
		DaysToExpiry: daysToExpiry,
		Status:       status,
	}, nil
}

// HasCertificate returns true if the cluster uses certificate-based authentication
func (c *ClusterConfig) HasCertificate() bool {
	return c.TLS != nil && c.TLS.Enabled && c.TLS.CertFile != ""
}
