package task

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/taskwell/matrix-api/internal/classify"
	"github.com/taskwell/matrix-api/internal/domain"
	"github.com/taskwell/matrix-api/internal/realtime"
	"github.com/taskwell/matrix-api/internal/store"
)

// stubClassifier returns a fixed assessment.
type stubClassifier struct {
	assessment classify.Assessment
	calls      int
}

func (c *stubClassifier) Classify(_ context.Context, _ string) classify.Assessment {
	c.calls++
	return c.assessment
}

// mockTaskStore records Update calls and can be primed with a task or error.
type mockTaskStore struct {
	mu         sync.Mutex
	task       *domain.Task
	updateErr  error
	lastID     uuid.UUID
	lastOwner  uuid.UUID
	lastUpdate store.TaskUpdate
	updates    int
}

func (m *mockTaskStore) Create(_ context.Context, _ *domain.Task) error { return nil }

func (m *mockTaskStore) GetByID(_ context.Context, _, _ uuid.UUID) (*domain.Task, error) {
	return m.task, nil
}

func (m *mockTaskStore) List(_ context.Context, _ uuid.UUID) ([]*domain.Task, error) {
	return nil, nil
}

func (m *mockTaskStore) Update(
	_ context.Context,
	id, ownerID uuid.UUID,
	update store.TaskUpdate,
) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates++
	m.lastID = id
	m.lastOwner = ownerID
	m.lastUpdate = update
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	return m.task, nil
}

func (m *mockTaskStore) Delete(_ context.Context, _, _ uuid.UUID) error { return nil }

func (m *mockTaskStore) ListDaily(_ context.Context, _ uuid.UUID, _ time.Time) ([]*domain.Task, error) {
	return nil, nil
}

func (m *mockTaskStore) ListMonthly(
	_ context.Context,
	_ uuid.UUID,
	_ store.MonthWindow,
) ([]*domain.Task, error) {
	return nil, nil
}

func (m *mockTaskStore) Ping(_ context.Context) error { return nil }

var _ store.TaskStore = (*mockTaskStore)(nil)

// mockBroadcaster records published messages.
type mockBroadcaster struct {
	mu       sync.Mutex
	messages []realtime.Message
	owners   []uuid.UUID
}

func (b *mockBroadcaster) Publish(ownerID uuid.UUID, msg realtime.Message) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.owners = append(b.owners, ownerID)
	b.messages = append(b.messages, msg)
}

// mockJob is a controllable job for queue and pool tests.
type mockJob struct {
	id      uuid.UUID
	execute func(ctx context.Context) error
}

func newMockJob(execute func(ctx context.Context) error) *mockJob {
	return &mockJob{id: uuid.New(), execute: execute}
}

func (j *mockJob) ID() uuid.UUID   { return j.id }
func (j *mockJob) Type() string    { return "mock" }
func (j *mockJob) Payload() []byte { return nil }

func (j *mockJob) Execute(ctx context.Context) error {
	if j.execute == nil {
		return nil
	}
	return j.execute(ctx)
}
