package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/OliveiraNt/topic-provisioner/internal/config"
	"github.com/OliveiraNt/topic-provisioner/internal/domain"
)

// FakeAdminClient is a test double implementing domain.AdminClient with configurable responses.
type FakeAdminClient struct {
	mu sync.Mutex

	Topics map[string]int
	// ListErrs and CreateErrs are consumed one per call; once drained, calls succeed.
	ListErrs    []error
	CreateErrs  []error
	ValidateErr error

	CreateCalls   []domain.TopicSpec
	ValidateCalls []domain.TopicSpec
	ListCalls     int
	Closed        int
}

func NewFakeAdminClient() *FakeAdminClient {
	return &FakeAdminClient{Topics: map[string]int{}}
}

func (f *FakeAdminClient) ListTopics(_ context.Context) (map[string]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ListCalls++
	if err := pop(&f.ListErrs); err != nil {
		return nil, err
	}
	out := make(map[string]int, len(f.Topics))
	for k, v := range f.Topics {
		out[k] = v
	}
	return out, nil
}

func (f *FakeAdminClient) CreateTopic(_ context.Context, spec domain.TopicSpec) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CreateCalls = append(f.CreateCalls, spec)
	if err := pop(&f.CreateErrs); err != nil {
		return err
	}
	f.Topics[spec.Name] = int(spec.Partitions)
	return nil
}

func (f *FakeAdminClient) ValidateTopic(_ context.Context, spec domain.TopicSpec) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ValidateCalls = append(f.ValidateCalls, spec)
	return f.ValidateErr
}

func (f *FakeAdminClient) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed++
}

// FakeConnector hands out Client once the scripted connection errors are drained.
type FakeConnector struct {
	mu sync.Mutex

	Client      *FakeAdminClient
	ConnectErrs []error
	// AlwaysErr, when set, fails every Connect call.
	AlwaysErr error

	Calls   int
	Configs []config.ClusterConfig
}

func NewFakeConnector(client *FakeAdminClient) *FakeConnector {
	return &FakeConnector{Client: client}
}

func (f *FakeConnector) Connect(_ context.Context, cfg config.ClusterConfig) (domain.AdminClient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls++
	f.Configs = append(f.Configs, cfg)
	if f.AlwaysErr != nil {
		return nil, f.AlwaysErr
	}
	if err := pop(&f.ConnectErrs); err != nil {
		return nil, err
	}
	return f.Client, nil
}

// FakeTimer is a backoff.Timer that fires at once and records the requested delays.
type FakeTimer struct {
	mu     sync.Mutex
	Delays []time.Duration
	// OnStart runs each time the timer is armed.
	OnStart func(d time.Duration)
	// Hold keeps the timer from ever firing.
	Hold bool

	c chan time.Time
}

func (t *FakeTimer) Start(d time.Duration) {
	t.mu.Lock()
	t.Delays = append(t.Delays, d)
	hook := t.OnStart
	c := make(chan time.Time, 1)
	if !t.Hold {
		c <- time.Time{}
	}
	t.c = c
	t.mu.Unlock()

	if hook != nil {
		hook(d)
	}
}

func (t *FakeTimer) Stop() {}

func (t *FakeTimer) C() <-chan time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.c
}

func pop(errs *[]error) error {
	if len(*errs) == 0 {
		return nil
	}
	err := (*errs)[0]
	*errs = (*errs)[1:]
	return err
}
