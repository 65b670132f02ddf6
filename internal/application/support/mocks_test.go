package support

import (
	"context"
	"io"
	"time"

	"github.com/aquaportal/backend/internal/domain/shared"
	"github.com/aquaportal/backend/internal/domain/support"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockComplaintRepository is a mock implementation of support.ComplaintRepository
type MockComplaintRepository struct {
	mock.Mock
}

func (m *MockComplaintRepository) Create(ctx context.Context, complaint *support.Complaint) error {
	args := m.Called(ctx, complaint)
	return args.Error(0)
}

func (m *MockComplaintRepository) Update(ctx context.Context, complaint *support.Complaint) error {
	args := m.Called(ctx, complaint)
	return args.Error(0)
}

func (m *MockComplaintRepository) FindByID(ctx context.Context, id uuid.UUID) (*support.Complaint, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*support.Complaint), args.Error(1)
}

func (m *MockComplaintRepository) List(ctx context.Context, filter support.ComplaintFilter, opts shared.ListOptions) ([]*support.Complaint, int64, error) {
	args := m.Called(ctx, filter, opts)
	return args.Get(0).([]*support.Complaint), args.Get(1).(int64), args.Error(2)
}

func (m *MockComplaintRepository) Count(ctx context.Context, filter support.ComplaintFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// memoryStorage keeps uploaded objects in a map
type memoryStorage struct {
	objects map[string][]byte
	types   map[string]string
	putErr  error
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{objects: map[string][]byte{}, types: map[string]string{}}
}

func (s *memoryStorage) Put(_ context.Context, key string, body io.Reader, _ int64, contentType string) error {
	if s.putErr != nil {
		return s.putErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	s.objects[key] = data
	s.types[key] = contentType
	return nil
}

func (s *memoryStorage) PresignGet(_ context.Context, key string) (string, time.Time, error) {
	return "https://files.example.test/" + key + "?sig=abc", time.Date(2026, 9, 1, 8, 15, 0, 0, time.UTC), nil
}

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}
