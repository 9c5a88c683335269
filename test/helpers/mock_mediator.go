package helpers

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/andrescamacho/factorio-calculator/internal/application/common"
	"github.com/andrescamacho/factorio-calculator/internal/application/mediator"
)

// MockMediator is a test double for the Mediator interface that records
// every request and answers from a caller-supplied function
type MockMediator struct {
	mu       sync.Mutex
	sendFunc func(ctx context.Context, request common.Request) (common.Response, error)
	requests []common.Request
}

// NewMockMediator creates a MockMediator answering with sendFunc
func NewMockMediator(sendFunc func(ctx context.Context, request common.Request) (common.Response, error)) *MockMediator {
	return &MockMediator{sendFunc: sendFunc}
}

// Send records the request and delegates to the send function
func (m *MockMediator) Send(ctx context.Context, request common.Request) (common.Response, error) {
	m.mu.Lock()
	m.requests = append(m.requests, request)
	m.mu.Unlock()

	if m.sendFunc == nil {
		return nil, fmt.Errorf("no response configured for %s", reflect.TypeOf(request))
	}
	return m.sendFunc(ctx, request)
}

// Register is a no-op
func (m *MockMediator) Register(requestType reflect.Type, handler mediator.RequestHandler) error {
	return nil
}

// Use is a no-op
func (m *MockMediator) Use(middleware mediator.Middleware) {}

// Requests returns the requests sent so far
func (m *MockMediator) Requests() []common.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]common.Request(nil), m.requests...)
}
