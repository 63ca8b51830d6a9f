package mqtt

import (
	"fmt"
	"sync"

	"github.com/FilipeDoria/genetic-load-manager/core/model"
	coremqtt "github.com/FilipeDoria/genetic-load-manager/core/mqtt"
)

// Client mirrors the core mqtt.Client interface.
type Client = coremqtt.Client

// MockPublisher is a simple publisher used in tests.
type MockPublisher struct {
	Plans      []model.RunResult
	Setpoints  []float64
	FailRunIDs map[string]bool
	mu         sync.Mutex
}

// NewMockPublisher creates a new MockPublisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{FailRunIDs: make(map[string]bool)}
}

// PublishPlan records the plan or returns an error if configured to fail.
func (m *MockPublisher) PublishPlan(res model.RunResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailRunIDs[res.ID] {
		return fmt.Errorf("publish failed")
	}
	m.Plans = append(m.Plans, res.Clone())
	if res.Plan.Horizon() > 0 {
		m.Setpoints = append(m.Setpoints, res.Plan.FirstActionKW())
	}
	return nil
}

// PublishSetpoint records the battery power command.
func (m *MockPublisher) PublishSetpoint(powerKW float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Setpoints = append(m.Setpoints, powerKW)
	return nil
}

// Topic reports the plan topic the real publisher would use.
func (m *MockPublisher) Topic() string { return "home/energy/plan" }

// LastPlan returns the most recently published plan.
func (m *MockPublisher) LastPlan() (model.RunResult, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Plans) == 0 {
		return model.RunResult{}, false
	}
	return m.Plans[len(m.Plans)-1].Clone(), true
}
