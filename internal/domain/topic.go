// Package domain defines the entities and collaborator interfaces of the topic provisioner:
// the topic descriptor that gets ensured on a cluster, the outcome of a provisioning run, and the
// admin client abstractions the provisioner drives.
package domain

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

const (
	DefaultTopicName         = "mock_data_topic"
	DefaultPartitions        = int32(3)
	DefaultReplicationFactor = int16(1)
)

// maxTopicNameLength is the broker-side limit on topic names.
const maxTopicNameLength = 249

var topicNamePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

var validate = validator.New()

func init() {
	_ = validate.RegisterValidation("topicname", validateTopicName)
}

// validateTopicName mirrors the broker's legal topic name rules.
func validateTopicName(fl validator.FieldLevel) bool {
	name := fl.Field().String()
	if name == "." || name == ".." {
		return false
	}
	return len(name) <= maxTopicNameLength && topicNamePattern.MatchString(name)
}

// TopicSpec describes the topic to ensure on the cluster.
type TopicSpec struct {
	Name              string             `json:"name" validate:"required,topicname"`
	Partitions        int32              `json:"partitions" validate:"gte=1"`
	ReplicationFactor int16              `json:"replication_factor" validate:"gte=1"`
	Configs           map[string]*string `json:"configs,omitempty"`
}

// NewTopicSpec builds a spec with no topic-level configs.
func NewTopicSpec(name string, partitions int32, replicationFactor int16) TopicSpec {
	return TopicSpec{Name: name, Partitions: partitions, ReplicationFactor: replicationFactor}
}

// DefaultTopicSpec returns the descriptor used when nothing is configured.
func DefaultTopicSpec() TopicSpec {
	return NewTopicSpec(DefaultTopicName, DefaultPartitions, DefaultReplicationFactor)
}

// Validate checks the spec against broker naming and sizing rules.
func (s TopicSpec) Validate() error {
	return validate.Struct(s)
}

// Outcome is the successful result of a provisioning run.
type Outcome int

const (
	OutcomeCreated Outcome = iota
	OutcomeAlreadyExists
	OutcomeValidated
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCreated:
		return "created"
	case OutcomeAlreadyExists:
		return "already_exists"
	case OutcomeValidated:
		return "validated"
	default:
		return "unknown"
	}
}
