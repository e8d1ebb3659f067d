package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// EnvPrefix prefixes every environment variable the provisioner reads.
const EnvPrefix = "TOPIC_PROVISIONER_"

// ApplyEnv overrides cfg with any TOPIC_PROVISIONER_* variables that are set.
func ApplyEnv(cfg *FileConfig) error {
	if v, ok := lookup("BROKERS"); ok {
		cfg.Cluster.Brokers = SplitList(v)
	}
	if v, ok := lookup("CLIENT_ID"); ok {
		cfg.Cluster.ClientID = v
	}
	if v, ok := lookup("REQUEST_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return envErr("REQUEST_TIMEOUT", err)
		}
		cfg.Cluster.RequestTimeout = d
	}
	if v, ok := lookup("TOPIC"); ok {
		cfg.Topic.Name = v
	}
	if v, ok := lookup("PARTITIONS"); ok {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil {
			return envErr("PARTITIONS", err)
		}
		cfg.Topic.Partitions = int32(n)
	}
	if v, ok := lookup("REPLICATION_FACTOR"); ok {
		n, err := strconv.ParseInt(v, 10, 16)
		if err != nil {
			return envErr("REPLICATION_FACTOR", err)
		}
		cfg.Topic.ReplicationFactor = int16(n)
	}
	if v, ok := lookup("MAX_ATTEMPTS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return envErr("MAX_ATTEMPTS", err)
		}
		cfg.Retry.MaxAttempts = n
	}
	if v, ok := lookup("RETRY_DELAY"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return envErr("RETRY_DELAY", err)
		}
		cfg.Retry.Delay = d
	}
	if v, ok := lookup("FAIL_ON_EXHAUSTED"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return envErr("FAIL_ON_EXHAUSTED", err)
		}
		cfg.Retry.FailOnExhausted = b
	}
	if v, ok := lookup("LOG_LEVEL"); ok {
		cfg.LogLevel = v
	}
	return nil
}

// SplitList splits a comma separated list, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(EnvPrefix + key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func envErr(key string, err error) error {
	return fmt.Errorf("parse %s%s: %w", EnvPrefix, key, err)
}
