package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/khsolheim/tms-mobile-sync/internal/logger"
	"github.com/khsolheim/tms-mobile-sync/internal/mock"
	"github.com/khsolheim/tms-mobile-sync/internal/service"
	"github.com/khsolheim/tms-mobile-sync/internal/store"
	"github.com/khsolheim/tms-mobile-sync/internal/workers"
	"github.com/khsolheim/tms-mobile-sync/models"
)

// newTestHandler wires a real queue and sync engine over mocked storage and
// transport, the same shape the agent assembles at startup.
func newTestHandler(t *testing.T, remote *mock.MockRemoteAdapter) (*Handler, service.ActionQueue) {
	t.Helper()

	ctrl := gomock.NewController(t)
	kv := mock.NewMockKeyValueRepository(ctrl)
	kv.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, store.ErrKeyNotFound).AnyTimes()
	kv.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	kv.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	queue := service.NewActionQueue(kv, service.QueuePolicy{}, logger.Nop())
	engine := service.NewSyncEngine(queue, remote, logger.Nop())
	monitor := workers.NewConnectivityMonitor(engine, nil, time.Hour, logger.Nop())

	services := &service.Services{Queue: queue, SyncEngine: engine}
	return NewHandler(services, monitor, logger.Nop()), queue
}

func TestHandler_Status(t *testing.T) {
	ctrl := gomock.NewController(t)
	remote := mock.NewMockRemoteAdapter(ctrl)
	h, queue := newTestHandler(t, remote)

	_, err := queue.Enqueue(context.Background(), "CREATE_BOOKING", "/api/bookings", "POST", nil, 0)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.Init().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp statusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, models.StateOffline, resp.Connectivity)
	assert.Equal(t, 1, resp.QueueDepth)
	assert.Nil(t, resp.LastRun, "no run has happened yet")
}

func TestHandler_Status_IncludesLastRun(t *testing.T) {
	ctrl := gomock.NewController(t)
	remote := mock.NewMockRemoteAdapter(ctrl)
	h, _ := newTestHandler(t, remote)

	// An empty-queue run still records a result.
	rec := httptest.NewRecorder()
	h.Init().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sync", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.Init().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp statusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.LastRun)
	assert.True(t, resp.LastRun.Success)
}

func TestHandler_ForceSync(t *testing.T) {
	ctrl := gomock.NewController(t)
	remote := mock.NewMockRemoteAdapter(ctrl)
	h, queue := newTestHandler(t, remote)

	_, err := queue.Enqueue(context.Background(), "CREATE_BOOKING", "/api/bookings", "POST", nil, 0)
	require.NoError(t, err)
	remote.EXPECT().Execute(gomock.Any(), gomock.Any()).Return(nil)

	rec := httptest.NewRecorder()
	h.Init().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sync", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var result models.SyncRunResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Success)
	assert.Equal(t, 1, result.SyncedCount)
	assert.Zero(t, queue.Len())
}

func TestHandler_ForceSync_BusyReturnsConflict(t *testing.T) {
	ctrl := gomock.NewController(t)
	remote := mock.NewMockRemoteAdapter(ctrl)
	h, queue := newTestHandler(t, remote)

	_, err := queue.Enqueue(context.Background(), "SLOW", "/api/x", "POST", nil, 0)
	require.NoError(t, err)

	entered := make(chan struct{})
	release := make(chan struct{})
	remote.EXPECT().Execute(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, models.QueuedAction) error {
			close(entered)
			<-release
			return nil
		})

	done := make(chan struct{})
	go func() {
		defer close(done)
		rec := httptest.NewRecorder()
		h.Init().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sync", nil))
	}()

	<-entered
	rec := httptest.NewRecorder()
	h.Init().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sync", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)

	close(release)
	<-done
}

func TestHandler_UnknownRoute(t *testing.T) {
	ctrl := gomock.NewController(t)
	remote := mock.NewMockRemoteAdapter(ctrl)
	h, _ := newTestHandler(t, remote)

	rec := httptest.NewRecorder()
	h.Init().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
