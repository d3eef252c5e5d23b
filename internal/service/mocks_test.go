package service

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

// fakeTaskStore is an in-memory TaskStore. Individual operations can be
// forced to fail through the err* fields.
type fakeTaskStore struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]*domain.Task

	errCreate error
	errGet    error
	errList   error
	errUpdate error
	errDelete error
	errPing   error

	daily   []*domain.Task
	monthly []*domain.Task
	errView error

	getCalls    int
	updateCalls int
}

func newFakeTaskStore() *fakeTaskStore {
	return &fakeTaskStore{tasks: make(map[uuid.UUID]*domain.Task)}
}

var _ store.TaskStore = (*fakeTaskStore)(nil)

func (f *fakeTaskStore) Create(_ context.Context, task *domain.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.errCreate != nil {
		return f.errCreate
	}
	copied := *task
	f.tasks[task.ID] = &copied
	return nil
}

func (f *fakeTaskStore) GetByID(_ context.Context, id, ownerID uuid.UUID) (*domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	if f.errGet != nil {
		return nil, f.errGet
	}
	task, ok := f.tasks[id]
	if !ok || task.OwnerID != ownerID {
		return nil, store.ErrTaskNotFound
	}
	copied := *task
	return &copied, nil
}

func (f *fakeTaskStore) List(_ context.Context, ownerID uuid.UUID) ([]*domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.errList != nil {
		return nil, f.errList
	}
	var out []*domain.Task
	for _, task := range f.tasks {
		if task.OwnerID == ownerID {
			copied := *task
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeTaskStore) Update(
	_ context.Context,
	id, ownerID uuid.UUID,
	update store.TaskUpdate,
) (*domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls++
	if f.errUpdate != nil {
		return nil, f.errUpdate
	}
	task, ok := f.tasks[id]
	if !ok || task.OwnerID != ownerID {
		return nil, store.ErrTaskNotFound
	}

	if update.Title != nil {
		task.Title = *update.Title
	}
	if update.Description != nil {
		task.Description = *update.Description
	}
	if update.Urgency != nil {
		task.Urgency = *update.Urgency
	}
	if update.Importance != nil {
		task.Importance = *update.Importance
	}
	if update.Quadrant != nil {
		task.Quadrant = *update.Quadrant
	}
	if update.PriorityScore != nil {
		task.PriorityScore = *update.PriorityScore
	}
	if update.Status != nil {
		task.Status = *update.Status
	}
	if update.Kind != nil {
		task.Kind = *update.Kind
	}
	if update.IsRecurring != nil {
		task.IsRecurring = *update.IsRecurring
	}
	if update.RecurrencePattern != nil {
		task.RecurrencePattern = *update.RecurrencePattern
	}
	if update.RecurrenceDays != nil {
		task.RecurrenceDays = *update.RecurrenceDays
	}
	if update.RecurrenceEndDate != nil {
		task.RecurrenceEndDate = update.RecurrenceEndDate
	}
	if update.DueDate != nil {
		task.DueDate = update.DueDate
	}
	if update.DueTime != nil {
		task.DueTime = *update.DueTime
	}
	if update.ParentTaskID != nil {
		task.ParentTaskID = update.ParentTaskID
	}
	task.UpdatedAt = time.Now().UTC()

	copied := *task
	return &copied, nil
}

func (f *fakeTaskStore) Delete(_ context.Context, id, ownerID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.errDelete != nil {
		return f.errDelete
	}
	task, ok := f.tasks[id]
	if !ok || task.OwnerID != ownerID {
		return store.ErrTaskNotFound
	}
	delete(f.tasks, id)
	return nil
}

func (f *fakeTaskStore) ListDaily(
	_ context.Context,
	_ uuid.UUID,
	_ time.Time,
) ([]*domain.Task, error) {
	if f.errView != nil {
		return nil, f.errView
	}
	return f.daily, nil
}

func (f *fakeTaskStore) ListMonthly(
	_ context.Context,
	_ uuid.UUID,
	_ store.MonthWindow,
) ([]*domain.Task, error) {
	if f.errView != nil {
		return nil, f.errView
	}
	return f.monthly, nil
}

func (f *fakeTaskStore) Ping(_ context.Context) error {
	return f.errPing
}

// recordingBroadcaster captures published messages in order.
type recordingBroadcaster struct {
	mu       sync.Mutex
	owners   []uuid.UUID
	messages []realtime.Message
}

func (b *recordingBroadcaster) Publish(ownerID uuid.UUID, msg realtime.Message) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.owners = append(b.owners, ownerID)
	b.messages = append(b.messages, msg)
}

func (b *recordingBroadcaster) actions() []realtime.Action {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]realtime.Action, len(b.messages))
	for i, m := range b.messages {
		out[i] = m.Action
	}
	return out
}

// stubClassifier returns a fixed assessment.
type stubClassifier struct {
	assessment classify.Assessment
	calls      int
}

func (c *stubClassifier) Classify(_ context.Context, _ string) classify.Assessment {
	c.calls++
	return c.assessment
}
