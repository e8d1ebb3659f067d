package kafka

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/OliveiraNt/topic-provisioner/internal/config"
	"github.com/OliveiraNt/topic-provisioner/internal/domain"
	"github.com/OliveiraNt/topic-provisioner/internal/utils"
	"github.com/stretchr/testify/require"
)

type testPKI struct {
	caFile, certFile, keyFile string
}

func writePEM(t *testing.T, path, typ string, der []byte) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, pem.EncodeToMemory(&pem.Block{Type: typ, Bytes: der}), 0600))
}

func newTestPKI(t *testing.T) testPKI {
	t.Helper()
	dir := t.TempDir()

	caKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	caTemplate := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{Organization: []string{"Test CA"}},
		NotBefore:             time.Now(),
		NotAfter:              time.Now().Add(24 * time.Hour),
		KeyUsage:              x509.KeyUsageCertSign,
		BasicConstraintsValid: true,
		IsCA:                  true,
	}
	caDER, err := x509.CreateCertificate(rand.Reader, caTemplate, caTemplate, &caKey.PublicKey, caKey)
	require.NoError(t, err)

	clientKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	clientTemplate := &x509.Certificate{
		SerialNumber: big.NewInt(2),
		Subject:      pkix.Name{Organization: []string{"Test Client"}},
		NotBefore:    time.Now(),
		NotAfter:     time.Now().Add(24 * time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth},
	}
	clientDER, err := x509.CreateCertificate(rand.Reader, clientTemplate, caTemplate, &clientKey.PublicKey, caKey)
	require.NoError(t, err)

	p := testPKI{
		caFile:   filepath.Join(dir, "ca.pem"),
		certFile: filepath.Join(dir, "client.pem"),
		keyFile:  filepath.Join(dir, "client-key.pem"),
	}
	writePEM(t, p.caFile, "CERTIFICATE", caDER)
	writePEM(t, p.certFile, "CERTIFICATE", clientDER)
	writePEM(t, p.keyFile, "RSA PRIVATE KEY", x509.MarshalPKCS1PrivateKey(clientKey))
	return p
}

func TestNewClient(t *testing.T) {
	utils.InitLogger()

	t.Run("basic client creation", func(t *testing.T) {
		cfg := config.ClusterConfig{Brokers: []string{"localhost:9092"}, ClientID: "topic_creator", RequestTimeout: time.Second}
		client, err := NewClient(cfg)
		require.NoError(t, err)
		require.NotNil(t, client)
		defer client.Close()

		require.Equal(t, time.Second, client.admin.timeout)
		require.Zero(t, client.brokers, "no handshake yet")
	})

	t.Run("default request timeout", func(t *testing.T) {
		client, err := NewClient(config.ClusterConfig{Brokers: []string{"localhost:9092"}})
		require.NoError(t, err)
		defer client.Close()
		require.Equal(t, defaultRequestTimeout, client.admin.timeout)
	})

	t.Run("tls", func(t *testing.T) {
		pki := newTestPKI(t)
		client, err := NewClient(config.ClusterConfig{
			Brokers: []string{"localhost:9093"},
			TLS:     &config.TLSConfig{Enabled: true, CAFile: pki.caFile, CertFile: pki.certFile, KeyFile: pki.keyFile},
		})
		require.NoError(t, err)
		client.Close()
	})

	t.Run("tls with missing CA file", func(t *testing.T) {
		_, err := NewClient(config.ClusterConfig{
			Brokers: []string{"localhost:9093"},
			TLS:     &config.TLSConfig{Enabled: true, CAFile: "/nonexistent/ca.pem"},
		})
		require.Error(t, err)
	})

	t.Run("sasl scram", func(t *testing.T) {
		client, err := NewClient(config.ClusterConfig{
			Brokers: []string{"localhost:9092"},
			SASL:    &config.SASLConfig{Mechanism: "SCRAM-SHA-512", Username: "u", Password: "p"},
		})
		require.NoError(t, err)
		client.Close()
	})

	t.Run("aws iam", func(t *testing.T) {
		t.Setenv("AWS_ACCESS_KEY_ID", "test-access")
		t.Setenv("AWS_SECRET_ACCESS_KEY", "test-secret")
		client, err := NewClient(config.ClusterConfig{
			Brokers: []string{"localhost:9098"},
			AWS:     &config.AWSConfig{IAM: true, Region: "us-east-1"},
		})
		require.NoError(t, err)
		client.Close()
	})
}

func TestClientNilSafety(t *testing.T) {
	var c *Client
	ctx := context.Background()

	_, err := c.ListTopics(ctx)
	require.ErrorIs(t, err, domain.ErrConnection)
	require.ErrorIs(t, c.CreateTopic(ctx, domain.DefaultTopicSpec()), domain.ErrConnection)
	require.ErrorIs(t, c.ValidateTopic(ctx, domain.DefaultTopicSpec()), domain.ErrConnection)
	_, err = c.Handshake(ctx)
	require.ErrorIs(t, err, domain.ErrConnection)
	require.NotPanics(t, c.Close)
}

func TestBuildTLSConfig(t *testing.T) {
	pki := newTestPKI(t)

	t.Run("CA only", func(t *testing.T) {
		cfg, err := buildTLSConfig(&config.TLSConfig{Enabled: true, CAFile: pki.caFile})
		require.NoError(t, err)
		require.NotNil(t, cfg.RootCAs)
		require.Empty(t, cfg.Certificates)
	})

	t.Run("mTLS", func(t *testing.T) {
		cfg, err := buildTLSConfig(&config.TLSConfig{Enabled: true, CAFile: pki.caFile, CertFile: pki.certFile, KeyFile: pki.keyFile})
		require.NoError(t, err)
		require.Len(t, cfg.Certificates, 1)
	})

	t.Run("insecure skip verify", func(t *testing.T) {
		cfg, err := buildTLSConfig(&config.TLSConfig{Enabled: true, InsecureSkipVerify: true})
		require.NoError(t, err)
		require.True(t, cfg.InsecureSkipVerify)
	})

	t.Run("invalid cert/key pair", func(t *testing.T) {
		_, err := buildTLSConfig(&config.TLSConfig{Enabled: true, CertFile: "/nonexistent/cert.pem", KeyFile: "/nonexistent/key.pem"})
		require.Error(t, err)
	})
}

func TestBuildSASLMechanism(t *testing.T) {
	for _, m := range []string{"PLAIN", "plain", "SCRAM-SHA-256", "SCRAM-SHA256", "scram-sha-256", "SCRAM-SHA-512", "scram-sha-512"} {
		t.Run(m, func(t *testing.T) {
			mech, err := buildSASLMechanism(&config.SASLConfig{Mechanism: m, Username: "user", Password: "pass"})
			require.NoError(t, err)
			require.NotNil(t, mech)
		})
	}

	t.Run("credentials from env", func(t *testing.T) {
		t.Setenv("SASL_USER", "envuser")
		t.Setenv("SASL_PASS", "envpass")
		mech, err := buildSASLMechanism(&config.SASLConfig{Mechanism: "PLAIN", UsernameEnv: "SASL_USER", PasswordEnv: "SASL_PASS"})
		require.NoError(t, err)
		require.NotNil(t, mech)
	})

	t.Run("unknown mechanism", func(t *testing.T) {
		mech, err := buildSASLMechanism(&config.SASLConfig{Mechanism: "GSSAPI"})
		require.NoError(t, err)
		require.Nil(t, mech)
	})
}

func TestBuildAWSMechanism(t *testing.T) {
	t.Run("default env variables", func(t *testing.T) {
		t.Setenv("AWS_ACCESS_KEY_ID", "test-access")
		t.Setenv("AWS_SECRET_ACCESS_KEY", "test-secret")
		mech, err := buildAWSMechanism(&config.AWSConfig{IAM: true})
		require.NoError(t, err)
		require.NotNil(t, mech)
	})

	t.Run("custom env variables", func(t *testing.T) {
		t.Setenv("AWS_ACCESS_KEY_ID", "")
		t.Setenv("AWS_SECRET_ACCESS_KEY", "")
		t.Setenv("CUSTOM_ACCESS", "custom-access")
		t.Setenv("CUSTOM_SECRET", "custom-secret")
		t.Setenv("CUSTOM_SESSION", "custom-session")
		mech, err := buildAWSMechanism(&config.AWSConfig{
			IAM:             true,
			AccessKeyEnv:    "CUSTOM_ACCESS",
			SecretKeyEnv:    "CUSTOM_SECRET",
			SessionTokenEnv: "CUSTOM_SESSION",
		})
		require.NoError(t, err)
		require.NotNil(t, mech)
	})

	t.Run("incomplete credentials", func(t *testing.T) {
		t.Setenv("AWS_ACCESS_KEY_ID", "test-access")
		t.Setenv("AWS_SECRET_ACCESS_KEY", "")
		mech, err := buildAWSMechanism(nil)
		require.NoError(t, err)
		require.Nil(t, mech)
	})
}
