package api

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/MikeSquared-Agency/Verdict/internal/store"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) SaveSession(ctx context.Context, s *store.Session) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockStore) GetSession(ctx context.Context, id uuid.UUID) (*store.Session, error) {
	args := m.Called(ctx, id)
	s, _ := args.Get(0).(*store.Session)
	return s, args.Error(1)
}

func (m *MockStore) ListSessions(ctx context.Context, filter store.SessionFilter) ([]*store.Session, error) {
	args := m.Called(ctx, filter)
	s, _ := args.Get(0).([]*store.Session)
	return s, args.Error(1)
}

func (m *MockStore) DeleteSession(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockStore) CreateSessionEvent(ctx context.Context, e *store.SessionEvent) error {
	return m.Called(ctx, e).Error(0)
}

func (m *MockStore) GetSessionEvents(ctx context.Context, id uuid.UUID, limit int) ([]*store.SessionEvent, error) {
	args := m.Called(ctx, id, limit)
	e, _ := args.Get(0).([]*store.SessionEvent)
	return e, args.Error(1)
}

func (m *MockStore) GetStats(ctx context.Context) (*store.SessionStats, error) {
	args := m.Called(ctx)
	s, _ := args.Get(0).(*store.SessionStats)
	return s, args.Error(1)
}

func (m *MockStore) Close() error {
	return m.Called().Error(0)
}

var errDatabase = errors.New("database unavailable")

func TestStoreFailuresMapTo500(t *testing.T) {
	id := uuid.New()
	path := "/api/v1/sessions/" + id.String()

	tests := []struct {
		name   string
		setup  func(ms *MockStore)
		method string
		path   string
		body   interface{}
	}{
		{
			name: "create",
			setup: func(ms *MockStore) {
				ms.On("SaveSession", mock.Anything, mock.Anything).Return(errDatabase)
			},
			method: "POST", path: "/api/v1/sessions", body: CreateSessionRequest{Name: "x"},
		},
		{
			name: "get",
			setup: func(ms *MockStore) {
				ms.On("GetSession", mock.Anything, id).Return(nil, errDatabase)
			},
			method: "GET", path: path,
		},
		{
			name: "list",
			setup: func(ms *MockStore) {
				ms.On("ListSessions", mock.Anything, mock.Anything).Return(nil, errDatabase)
			},
			method: "GET", path: "/api/v1/sessions",
		},
		{
			name: "history",
			setup: func(ms *MockStore) {
				ms.On("GetSession", mock.Anything, id).Return(&store.Session{ID: id}, nil)
				ms.On("GetSessionEvents", mock.Anything, id, 50).Return(nil, errDatabase)
			},
			method: "GET", path: path + "/history",
		},
		{
			name: "stats",
			setup: func(ms *MockStore) {
				ms.On("GetStats", mock.Anything).Return(nil, errDatabase)
			},
			method: "GET", path: "/api/v1/stats",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ms := new(MockStore)
			tt.setup(ms)
			router := NewRouter(newManager(ms), "", 0, testLogger())

			w := do(t, router, tt.method, tt.path, tt.body)
			assert.Equal(t, http.StatusInternalServerError, w.Code, w.Body.String())
			assert.Contains(t, w.Body.String(), "database unavailable")
			ms.AssertExpectations(t)
		})
	}
}

func TestMutationStoreFailureKeepsMatrix(t *testing.T) {
	id := uuid.New()
	ms := new(MockStore)
	ms.On("GetSession", mock.Anything, id).Return(&store.Session{ID: id, Name: "fruit", Revision: 3}, nil)
	ms.On("SaveSession", mock.Anything, mock.Anything).Return(errDatabase).Once()
	ms.On("SaveSession", mock.Anything, mock.Anything).Return(nil)
	ms.On("CreateSessionEvent", mock.Anything, mock.Anything).Return(nil)

	router := NewRouter(newManager(ms), "", 0, testLogger())
	base := "/api/v1/sessions/" + id.String()

	w := do(t, router, "POST", base+"/choices", NameRequest{Name: "apple"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	w = do(t, router, "GET", base+"/results", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	res := decodeResults(t, w)
	assert.Empty(t, res.Percentages)
	assert.Equal(t, int64(3), res.Revision)

	w = do(t, router, "POST", base+"/choices", NameRequest{Name: "apple"})
	assert.Equal(t, http.StatusCreated, w.Code)
	res = decodeResults(t, w)
	assert.Contains(t, res.Percentages, "apple")
	assert.Equal(t, int64(4), res.Revision)
}
