package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskwell/matrix-api/internal/api/shared"
	"github.com/taskwell/matrix-api/internal/domain"
	"github.com/taskwell/matrix-api/internal/service"
	"github.com/taskwell/matrix-api/internal/store"
)

// mockTaskService is a hand-rolled TaskService double driven by function
// fields; unset fields fail the test if called.
type mockTaskService struct {
	createFn    func(ctx context.Context, ownerID uuid.UUID, input service.CreateTaskInput) (*domain.Task, error)
	getFn       func(ctx context.Context, id, ownerID uuid.UUID) (*domain.Task, error)
	listFn      func(ctx context.Context, ownerID uuid.UUID) ([]*domain.Task, error)
	updateFn    func(ctx context.Context, id, ownerID uuid.UUID, input service.UpdateTaskInput) (*domain.Task, error)
	deleteFn    func(ctx context.Context, id, ownerID uuid.UUID) error
	reanalyzeFn func(ctx context.Context, id, ownerID uuid.UUID) (*domain.Task, error)
	dailyFn     func(ctx context.Context, ownerID uuid.UUID, day time.Time) ([]*domain.Task, error)
	monthlyFn   func(ctx context.Context, ownerID uuid.UUID, year, month int) ([]*domain.Task, error)
	analyticsFn func(ctx context.Context, ownerID uuid.UUID, year, month int) (*service.TaskAnalytics, error)
	healthFn    func(ctx context.Context) service.HealthStatus
}

var _ service.TaskService = (*mockTaskService)(nil)

func (m *mockTaskService) CreateTask(ctx context.Context, ownerID uuid.UUID, input service.CreateTaskInput) (*domain.Task, error) {
	return m.createFn(ctx, ownerID, input)
}

func (m *mockTaskService) GetTask(ctx context.Context, id, ownerID uuid.UUID) (*domain.Task, error) {
	return m.getFn(ctx, id, ownerID)
}

func (m *mockTaskService) ListTasks(ctx context.Context, ownerID uuid.UUID) ([]*domain.Task, error) {
	return m.listFn(ctx, ownerID)
}

func (m *mockTaskService) UpdateTask(ctx context.Context, id, ownerID uuid.UUID, input service.UpdateTaskInput) (*domain.Task, error) {
	return m.updateFn(ctx, id, ownerID, input)
}

func (m *mockTaskService) DeleteTask(ctx context.Context, id, ownerID uuid.UUID) error {
	return m.deleteFn(ctx, id, ownerID)
}

func (m *mockTaskService) ReanalyzeTask(ctx context.Context, id, ownerID uuid.UUID) (*domain.Task, error) {
	return m.reanalyzeFn(ctx, id, ownerID)
}

func (m *mockTaskService) DailyView(ctx context.Context, ownerID uuid.UUID, day time.Time) ([]*domain.Task, error) {
	return m.dailyFn(ctx, ownerID, day)
}

func (m *mockTaskService) MonthlyView(ctx context.Context, ownerID uuid.UUID, year, month int) ([]*domain.Task, error) {
	return m.monthlyFn(ctx, ownerID, year, month)
}

func (m *mockTaskService) MonthlyAnalytics(ctx context.Context, ownerID uuid.UUID, year, month int) (*service.TaskAnalytics, error) {
	return m.analyticsFn(ctx, ownerID, year, month)
}

func (m *mockTaskService) Health(ctx context.Context) service.HealthStatus {
	return m.healthFn(ctx)
}

// newTestRouter wires the handler under the routes the server uses, with a
// stub auth layer injecting userID into the context.
func newTestRouter(svc service.TaskService, userID uuid.UUID) http.Handler {
	handler := NewTaskHandler(svc, testLogger())

	r := chi.NewRouter()
	r.Get("/tasks/health", handler.Health)
	r.Group(func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				ctx := context.WithValue(req.Context(), shared.UserIDContextKey, userID)
				next.ServeHTTP(w, req.WithContext(ctx))
			})
		})
		r.Get("/tasks", handler.ListTasks)
		r.Post("/tasks", handler.CreateTask)
		r.Get("/tasks/daily", handler.DailyTasks)
		r.Get("/tasks/monthly", handler.MonthlyTasks)
		r.Get("/tasks/analytics", handler.Analytics)
		r.Get("/tasks/{id}", handler.GetTask)
		r.Patch("/tasks/{id}", handler.UpdateTask)
		r.Delete("/tasks/{id}", handler.DeleteTask)
		r.Post("/tasks/{id}/reanalyze", handler.ReanalyzeTask)
	})
	return r
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleTask(t *testing.T, ownerID uuid.UUID) *domain.Task {
	t.Helper()
	task, err := domain.NewTask(ownerID, "Pay taxes", "due soon", 4, 4)
	require.NoError(t, err)
	return task
}

func TestCreateTaskHandler(t *testing.T) {
	t.Parallel()

	t.Run("created", func(t *testing.T) {
		t.Parallel()

		ownerID := uuid.New()
		task := sampleTask(t, ownerID)
		svc := &mockTaskService{
			createFn: func(_ context.Context, gotOwner uuid.UUID, input service.CreateTaskInput) (*domain.Task, error) {
				assert.Equal(t, ownerID, gotOwner)
				assert.Equal(t, "Pay taxes", input.Title)
				return task, nil
			},
		}

		body := bytes.NewBufferString(`{"title":"Pay taxes","description":"due soon","urgency":4,"importance":4}`)
		req := httptest.NewRequest(http.MethodPost, "/tasks", body)
		rec := httptest.NewRecorder()
		newTestRouter(svc, ownerID).ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)

		var resp struct {
			ID            uuid.UUID `json:"id"`
			Quadrant      string    `json:"quadrant"`
			QuadrantLabel string    `json:"quadrant_label"`
			PriorityScore int       `json:"priority_score"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, task.ID, resp.ID)
		assert.Equal(t, "Q1", resp.Quadrant)
		assert.Equal(t, "Do First", resp.QuadrantLabel)
		assert.Equal(t, 1060, resp.PriorityScore)
	})

	t.Run("malformed body", func(t *testing.T) {
		t.Parallel()

		svc := &mockTaskService{}
		req := httptest.NewRequest(http.MethodPost, "/tasks", bytes.NewBufferString(`{`))
		rec := httptest.NewRecorder()
		newTestRouter(svc, uuid.New()).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing title", func(t *testing.T) {
		t.Parallel()

		svc := &mockTaskService{}
		req := httptest.NewRequest(http.MethodPost, "/tasks", bytes.NewBufferString(`{"urgency":2}`))
		rec := httptest.NewRecorder()
		newTestRouter(svc, uuid.New()).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("monthly recurrence on a month day", func(t *testing.T) {
		t.Parallel()

		ownerID := uuid.New()
		task := sampleTask(t, ownerID)
		svc := &mockTaskService{
			createFn: func(_ context.Context, _ uuid.UUID, input service.CreateTaskInput) (*domain.Task, error) {
				assert.Equal(t, []int{15}, input.RecurrenceDays)
				return task, nil
			},
		}

		// Weekly patterns use weekdays 0-6, monthly ones use days 1-31;
		// day 15 must pass request validation.
		body := bytes.NewBufferString(
			`{"title":"Pay rent","is_recurring":true,"recurrence_pattern":"monthly","recurrence_days":[15]}`)
		req := httptest.NewRequest(http.MethodPost, "/tasks", body)
		rec := httptest.NewRecorder()
		newTestRouter(svc, ownerID).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("recurrence day past any month", func(t *testing.T) {
		t.Parallel()

		svc := &mockTaskService{}
		req := httptest.NewRequest(http.MethodPost, "/tasks",
			bytes.NewBufferString(`{"title":"x","recurrence_days":[32]}`))
		rec := httptest.NewRecorder()
		newTestRouter(svc, uuid.New()).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("out-of-range urgency", func(t *testing.T) {
		t.Parallel()

		svc := &mockTaskService{}
		req := httptest.NewRequest(http.MethodPost, "/tasks",
			bytes.NewBufferString(`{"title":"x","urgency":7}`))
		rec := httptest.NewRecorder()
		newTestRouter(svc, uuid.New()).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("store unavailable maps to 503", func(t *testing.T) {
		t.Parallel()

		svc := &mockTaskService{
			createFn: func(context.Context, uuid.UUID, service.CreateTaskInput) (*domain.Task, error) {
				return nil, store.ErrUnavailable
			},
		}
		req := httptest.NewRequest(http.MethodPost, "/tasks", bytes.NewBufferString(`{"title":"x"}`))
		rec := httptest.NewRecorder()
		newTestRouter(svc, uuid.New()).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestGetTaskHandler(t *testing.T) {
	t.Parallel()

	t.Run("found", func(t *testing.T) {
		t.Parallel()

		ownerID := uuid.New()
		task := sampleTask(t, ownerID)
		svc := &mockTaskService{
			getFn: func(_ context.Context, id, _ uuid.UUID) (*domain.Task, error) {
				assert.Equal(t, task.ID, id)
				return task, nil
			},
		}
		req := httptest.NewRequest(http.MethodGet, "/tasks/"+task.ID.String(), nil)
		rec := httptest.NewRecorder()
		newTestRouter(svc, ownerID).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()

		svc := &mockTaskService{
			getFn: func(context.Context, uuid.UUID, uuid.UUID) (*domain.Task, error) {
				return nil, service.ErrTaskNotFound
			},
		}
		req := httptest.NewRequest(http.MethodGet, "/tasks/"+uuid.NewString(), nil)
		rec := httptest.NewRecorder()
		newTestRouter(svc, uuid.New()).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		t.Parallel()

		svc := &mockTaskService{}
		req := httptest.NewRequest(http.MethodGet, "/tasks/not-a-uuid", nil)
		rec := httptest.NewRecorder()
		newTestRouter(svc, uuid.New()).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestListTasksHandler(t *testing.T) {
	t.Parallel()

	t.Run("empty list is an array, not null", func(t *testing.T) {
		t.Parallel()

		svc := &mockTaskService{
			listFn: func(context.Context, uuid.UUID) ([]*domain.Task, error) {
				return []*domain.Task{}, nil
			},
		}
		req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
		rec := httptest.NewRecorder()
		newTestRouter(svc, uuid.New()).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "[]\n", rec.Body.String())
	})
}

func TestUpdateTaskHandler(t *testing.T) {
	t.Parallel()

	t.Run("status-only patch", func(t *testing.T) {
		t.Parallel()

		ownerID := uuid.New()
		task := sampleTask(t, ownerID)
		task.Status = domain.TaskStatusCompleted
		svc := &mockTaskService{
			updateFn: func(_ context.Context, _, _ uuid.UUID, input service.UpdateTaskInput) (*domain.Task, error) {
				require.NotNil(t, input.Status)
				assert.Equal(t, domain.TaskStatusCompleted, *input.Status)
				assert.Nil(t, input.Urgency)
				return task, nil
			},
		}
		req := httptest.NewRequest(http.MethodPatch, "/tasks/"+task.ID.String(),
			bytes.NewBufferString(`{"status":"completed"}`))
		rec := httptest.NewRecorder()
		newTestRouter(svc, ownerID).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("invalid status value", func(t *testing.T) {
		t.Parallel()

		svc := &mockTaskService{}
		req := httptest.NewRequest(http.MethodPatch, "/tasks/"+uuid.NewString(),
			bytes.NewBufferString(`{"status":"archived"}`))
		rec := httptest.NewRecorder()
		newTestRouter(svc, uuid.New()).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestDeleteTaskHandler(t *testing.T) {
	t.Parallel()

	t.Run("deleted", func(t *testing.T) {
		t.Parallel()

		svc := &mockTaskService{
			deleteFn: func(context.Context, uuid.UUID, uuid.UUID) error { return nil },
		}
		req := httptest.NewRequest(http.MethodDelete, "/tasks/"+uuid.NewString(), nil)
		rec := httptest.NewRecorder()
		newTestRouter(svc, uuid.New()).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("missing task", func(t *testing.T) {
		t.Parallel()

		svc := &mockTaskService{
			deleteFn: func(context.Context, uuid.UUID, uuid.UUID) error {
				return service.ErrTaskNotFound
			},
		}
		req := httptest.NewRequest(http.MethodDelete, "/tasks/"+uuid.NewString(), nil)
		rec := httptest.NewRecorder()
		newTestRouter(svc, uuid.New()).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestReanalyzeTaskHandler(t *testing.T) {
	t.Parallel()

	t.Run("no description maps to 400", func(t *testing.T) {
		t.Parallel()

		svc := &mockTaskService{
			reanalyzeFn: func(context.Context, uuid.UUID, uuid.UUID) (*domain.Task, error) {
				return nil, service.ErrNoDescription
			},
		}
		req := httptest.NewRequest(http.MethodPost, "/tasks/"+uuid.NewString()+"/reanalyze", nil)
		rec := httptest.NewRecorder()
		newTestRouter(svc, uuid.New()).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("returns the reclassified task", func(t *testing.T) {
		t.Parallel()

		ownerID := uuid.New()
		task := sampleTask(t, ownerID)
		svc := &mockTaskService{
			reanalyzeFn: func(context.Context, uuid.UUID, uuid.UUID) (*domain.Task, error) {
				return task, nil
			},
		}
		req := httptest.NewRequest(http.MethodPost, "/tasks/"+task.ID.String()+"/reanalyze", nil)
		rec := httptest.NewRecorder()
		newTestRouter(svc, ownerID).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestViewHandlers(t *testing.T) {
	t.Parallel()

	t.Run("monthly defaults to the current month", func(t *testing.T) {
		t.Parallel()

		now := time.Now().UTC()
		svc := &mockTaskService{
			monthlyFn: func(_ context.Context, _ uuid.UUID, year, month int) ([]*domain.Task, error) {
				assert.Equal(t, now.Year(), year)
				assert.Equal(t, int(now.Month()), month)
				return nil, nil
			},
		}
		req := httptest.NewRequest(http.MethodGet, "/tasks/monthly", nil)
		rec := httptest.NewRecorder()
		newTestRouter(svc, uuid.New()).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("monthly with explicit period", func(t *testing.T) {
		t.Parallel()

		svc := &mockTaskService{
			monthlyFn: func(_ context.Context, _ uuid.UUID, year, month int) ([]*domain.Task, error) {
				assert.Equal(t, 2026, year)
				assert.Equal(t, 2, month)
				return nil, nil
			},
		}
		req := httptest.NewRequest(http.MethodGet, "/tasks/monthly?year=2026&month=2", nil)
		rec := httptest.NewRecorder()
		newTestRouter(svc, uuid.New()).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("garbage month parameter", func(t *testing.T) {
		t.Parallel()

		svc := &mockTaskService{}
		req := httptest.NewRequest(http.MethodGet, "/tasks/monthly?month=abc", nil)
		rec := httptest.NewRecorder()
		newTestRouter(svc, uuid.New()).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("daily with explicit date", func(t *testing.T) {
		t.Parallel()

		svc := &mockTaskService{
			dailyFn: func(_ context.Context, _ uuid.UUID, day time.Time) ([]*domain.Task, error) {
				assert.Equal(t, 2026, day.Year())
				assert.Equal(t, time.September, day.Month())
				assert.Equal(t, 14, day.Day())
				return nil, nil
			},
		}
		req := httptest.NewRequest(http.MethodGet, "/tasks/daily?date=2026-09-14", nil)
		rec := httptest.NewRecorder()
		newTestRouter(svc, uuid.New()).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("invalid daily date", func(t *testing.T) {
		t.Parallel()

		svc := &mockTaskService{}
		req := httptest.NewRequest(http.MethodGet, "/tasks/daily?date=14-09-2026", nil)
		rec := httptest.NewRecorder()
		newTestRouter(svc, uuid.New()).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAnalyticsHandler(t *testing.T) {
	t.Parallel()

	svc := &mockTaskService{
		analyticsFn: func(_ context.Context, _ uuid.UUID, year, month int) (*service.TaskAnalytics, error) {
			return &service.TaskAnalytics{
				Year: year, Month: month, MonthName: time.Month(month).String(),
			}, nil
		},
	}
	req := httptest.NewRequest(http.MethodGet, "/tasks/analytics?year=2026&month=8", nil)
	rec := httptest.NewRecorder()
	newTestRouter(svc, uuid.New()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp service.TaskAnalytics
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "August", resp.MonthName)
	assert.Zero(t, resp.CompletionRate)
}

func TestHealthHandler(t *testing.T) {
	t.Parallel()

	t.Run("healthy", func(t *testing.T) {
		t.Parallel()

		svc := &mockTaskService{
			healthFn: func(context.Context) service.HealthStatus {
				return service.HealthStatus{Status: "ok", DatabaseConnected: true}
			},
		}
		req := httptest.NewRequest(http.MethodGet, "/tasks/health", nil)
		rec := httptest.NewRecorder()
		newTestRouter(svc, uuid.Nil).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp service.HealthStatus
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.DatabaseConnected)
	})

	t.Run("store down", func(t *testing.T) {
		t.Parallel()

		svc := &mockTaskService{
			healthFn: func(context.Context) service.HealthStatus {
				return service.HealthStatus{Status: "error", DatabaseConnected: false, Error: "dial tcp"}
			},
		}
		req := httptest.NewRequest(http.MethodGet, "/tasks/health", nil)
		rec := httptest.NewRecorder()
		newTestRouter(svc, uuid.Nil).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}
