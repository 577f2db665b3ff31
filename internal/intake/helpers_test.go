package intake

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/MikeSquared-Agency/Qualis/internal/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func intPtr(v int) *int { return &v }

// MockStore implements store.Store for testing.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) CreateAssessment(ctx context.Context, a *store.Assessment) error {
	args := m.Called(ctx, a)
	if args.Error(0) == nil {
		a.ID = uuid.New()
		a.CreatedAt = time.Now()
	}
	return args.Error(0)
}

func (m *MockStore) GetAssessment(ctx context.Context, id uuid.UUID) (*store.Assessment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Assessment), args.Error(1)
}

func (m *MockStore) ListAssessments(ctx context.Context, f store.AssessmentFilter) ([]*store.Assessment, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*store.Assessment), args.Error(1)
}

func (m *MockStore) GetStats(ctx context.Context) (*store.AssessmentStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.AssessmentStats), args.Error(1)
}

func (m *MockStore) Close() error { return nil }

type published struct {
	subject string
	data    interface{}
}

// fakeHermes records publishes and captures the subscription handler.
type fakeHermes struct {
	mu         sync.Mutex
	handler    func(string, []byte)
	subject    string
	queue      string
	subErr     error
	publishErr error
	out        chan published
}

func newFakeHermes() *fakeHermes {
	return &fakeHermes{out: make(chan published, 16)}
}

func (f *fakeHermes) Publish(subject string, data interface{}) error {
	f.out <- published{subject: subject, data: data}
	return f.publishErr
}

func (f *fakeHermes) QueueSubscribe(subject, queue string, handler func(string, []byte)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subErr != nil {
		return f.subErr
	}
	f.subject, f.queue, f.handler = subject, queue, handler
	return nil
}

func (f *fakeHermes) Close() {}

func (f *fakeHermes) deliver(data []byte) {
	f.mu.Lock()
	h := f.handler
	f.mu.Unlock()
	h(f.subject, data)
}
