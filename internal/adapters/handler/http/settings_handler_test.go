package http_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adapterHTTP "github.com/dayadict/dayadict-server/internal/adapters/handler/http"
	"github.com/dayadict/dayadict-server/internal/core/domain"
	"github.com/dayadict/dayadict-server/internal/core/services"
)

type MockSettingsStore struct {
	store map[string]*domain.ReminderSettings
}

func NewMockSettingsStore() *MockSettingsStore {
	return &MockSettingsStore{store: make(map[string]*domain.ReminderSettings)}
}

func (m *MockSettingsStore) Get(ctx context.Context, userID string) (*domain.ReminderSettings, error) {
	s, ok := m.store[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *s
	return &clone, nil
}

func (m *MockSettingsStore) Save(ctx context.Context, settings *domain.ReminderSettings) error {
	clone := *settings
	m.store[settings.UserID] = &clone
	return nil
}

func setupSettingsRouter() (*gin.Engine, *MockSettingsStore) {
	gin.SetMode(gin.TestMode)

	repo := NewMockSettingsStore()
	svc := services.NewSettingsService(repo, nil)
	handler := adapterHTTP.NewSettingsHandler(svc)

	r := gin.New()
	group := r.Group("/api/v1")
	group.Use(headerAuth())
	handler.RegisterRoutes(group)
	return r, repo
}

func TestGetSettings(t *testing.T) {
	t.Run("Success: Defaults for a fresh user", func(t *testing.T) {
		router, _ := setupSettingsRouter()

		req, _ := http.NewRequest("GET", "/api/v1/settings", nil)
		req.Header.Set("X-User-ID", "user-1")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"enabled":false`)
		assert.Contains(t, w.Body.String(), `"hour":22`)
		assert.Contains(t, w.Body.String(), `"minute":0`)
	})

	t.Run("Fail: 401 Unauthorized", func(t *testing.T) {
		router, _ := setupSettingsRouter()

		req, _ := http.NewRequest("GET", "/api/v1/settings", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestUpdateSettings(t *testing.T) {
	t.Run("Success: Partial update preserves the device token", func(t *testing.T) {
		router, repo := setupSettingsRouter()

		device := `{"token": "tok-123"}`
		reqDev, _ := http.NewRequest("POST", "/api/v1/settings/device", bytes.NewBufferString(device))
		reqDev.Header.Set("X-User-ID", "user-1")
		wDev := httptest.NewRecorder()
		router.ServeHTTP(wDev, reqDev)
		require.Equal(t, http.StatusOK, wDev.Code)

		body := `{"enabled": true, "hour": 8, "minute": 30}`
		req, _ := http.NewRequest("PUT", "/api/v1/settings", bytes.NewBufferString(body))
		req.Header.Set("X-User-ID", "user-1")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		stored, err := repo.Get(context.Background(), "user-1")
		require.NoError(t, err)
		assert.True(t, stored.Enabled)
		assert.Equal(t, 8, stored.Hour)
		assert.Equal(t, 30, stored.Minute)
		assert.Equal(t, "tok-123", stored.FCMToken)
	})

	t.Run("Fail: 400 on out-of-range hour", func(t *testing.T) {
		router, repo := setupSettingsRouter()

		body := `{"hour": 25}`
		req, _ := http.NewRequest("PUT", "/api/v1/settings", bytes.NewBufferString(body))
		req.Header.Set("X-User-ID", "user-1")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Empty(t, repo.store)
	})
}

func TestRegisterDevice(t *testing.T) {
	t.Run("Fail: 400 on missing token", func(t *testing.T) {
		router, _ := setupSettingsRouter()

		req, _ := http.NewRequest("POST", "/api/v1/settings/device", bytes.NewBufferString(`{}`))
		req.Header.Set("X-User-ID", "user-1")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
