package mqtt

import (
	"fmt"
	"sync"

	coremqtt "github.com/kilianp07/smartpark/core/mqtt"
	"github.com/kilianp07/smartpark/core/model"
)

// Publisher mirrors the core mqtt.Publisher interface.
type Publisher = coremqtt.Publisher

// MockPublisher records published messages. It is used in tests and when no
// broker is configured.
type MockPublisher struct {
	Current   []model.CurrentTier
	Schedules []model.WeeklySchedule
	Fail      bool
	mu        sync.Mutex
}

// NewMockPublisher creates a new MockPublisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

// PublishCurrent records the tier or returns an error if configured to fail.
func (m *MockPublisher) PublishCurrent(cur model.CurrentTier) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail {
		return fmt.Errorf("%w: mock", coremqtt.ErrPublishFailed)
	}
	m.Current = append(m.Current, cur)
	return nil
}

// PublishSchedule records the schedule or returns an error if configured to fail.
func (m *MockPublisher) PublishSchedule(s model.WeeklySchedule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail {
		return fmt.Errorf("%w: mock", coremqtt.ErrPublishFailed)
	}
	m.Schedules = append(m.Schedules, s)
	return nil
}

// Counts returns the number of recorded current and schedule messages.
func (m *MockPublisher) Counts() (current, schedules int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Current), len(m.Schedules)
}
