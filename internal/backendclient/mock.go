package backendclient

import (
	"context"
	"sync"

	"github.com/siantika/dispenserd/internal/domain"
)

// MockClient is a programmable BackendClient for Network and Primary
// tests, following the teacher's MockBackend call-tracking idiom.
type MockClient struct {
	mu sync.Mutex

	InitialData    domain.InitialData
	InitialDataErr error

	RegisterErr    error
	RegisteredTix  []domain.Ticket

	QueueInfo    domain.VehicleQueueInfo
	QueueInfoErr error

	callCounts map[string]int
}

func NewMockClient() *MockClient {
	return &MockClient{callCounts: map[string]int{}}
}

func (m *MockClient) GetInitialData(ctx context.Context) (domain.InitialData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCounts["GetInitialData"]++
	return m.InitialData, m.InitialDataErr
}

func (m *MockClient) RegisterTicket(ctx context.Context, t domain.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCounts["RegisterTicket"]++
	if m.RegisterErr != nil {
		return m.RegisterErr
	}
	m.RegisteredTix = append(m.RegisteredTix, t)
	return nil
}

func (m *MockClient) GetQueueInfo(ctx context.Context) (domain.VehicleQueueInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCounts["GetQueueInfo"]++
	return m.QueueInfo, m.QueueInfoErr
}

func (m *MockClient) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCounts[method]
}

var _ BackendClient = (*MockClient)(nil)
