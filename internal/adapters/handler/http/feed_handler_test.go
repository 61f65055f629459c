package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adapterHTTP "github.com/dayadict/dayadict-server/internal/adapters/handler/http"
	"github.com/dayadict/dayadict-server/internal/adapters/repository"
	"github.com/dayadict/dayadict-server/internal/core/domain"
	"github.com/dayadict/dayadict-server/internal/core/feed"
	"github.com/dayadict/dayadict-server/internal/core/services"
)

type feedFixture struct {
	server *httptest.Server
	repo   *repository.InMemoryHabitRepository
	hub    *feed.Hub
	token  string
}

func setupFeedServer(t *testing.T) *feedFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := repository.NewInMemoryHabitRepository()
	hub := feed.NewHub(repo)

	users := NewMockUserStore()
	user, err := domain.NewUser("user-1", "feed@example.com", "")
	require.NoError(t, err)
	require.NoError(t, users.Create(context.Background(), user))

	tokens := services.NewTokenService("test-secret", "dayadict", time.Hour, users)
	token, err := tokens.GenerateToken("user-1")
	require.NoError(t, err)

	handler := adapterHTTP.NewFeedHandler(hub, tokens)

	r := gin.New()
	handler.RegisterRoutes(r.Group("/api/v1"))

	server := httptest.NewServer(r)
	t.Cleanup(func() {
		hub.Close()
		server.Close()
	})

	return &feedFixture{server: server, repo: repo, hub: hub, token: token}
}

func (f *feedFixture) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	url := strings.Replace(f.server.URL, "http", "ws", 1) + "/api/v1/habits/feed?token=" + f.token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readSnapshot(t *testing.T, conn *websocket.Conn) []map[string]any {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var snapshot []map[string]any
	require.NoError(t, json.Unmarshal(data, &snapshot))
	return snapshot
}

func TestFeedStream(t *testing.T) {
	t.Run("Success: Initial snapshot on connect", func(t *testing.T) {
		fx := setupFeedServer(t)

		h, err := domain.NewHabit("user-1", "Ne pas fumer", time.Now().UTC().AddDate(0, 0, -3), 20)
		require.NoError(t, err)
		require.NoError(t, fx.repo.Create(context.Background(), h))

		conn := fx.dial(t)

		snapshot := readSnapshot(t, conn)
		require.Len(t, snapshot, 1)
		assert.Equal(t, "Ne pas fumer", snapshot[0]["name"])
		assert.Equal(t, float64(3), snapshot[0]["days_since"])
		assert.Equal(t, float64(60), snapshot[0]["units_avoided"])
	})

	t.Run("Success: Full set redelivered after a change", func(t *testing.T) {
		fx := setupFeedServer(t)
		conn := fx.dial(t)

		initial := readSnapshot(t, conn)
		assert.Empty(t, initial)

		h, err := domain.NewHabit("user-1", "Café", time.Now().UTC(), 3)
		require.NoError(t, err)
		require.NoError(t, fx.repo.Create(context.Background(), h))
		fx.hub.Publish(context.Background(), "user-1")

		next := readSnapshot(t, conn)
		require.Len(t, next, 1)
		assert.Equal(t, "Café", next[0]["name"])
	})

	t.Run("Fail: 401 without token", func(t *testing.T) {
		fx := setupFeedServer(t)

		resp, err := http.Get(fx.server.URL + "/api/v1/habits/feed")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("Fail: Websocket dial rejected on bad token", func(t *testing.T) {
		fx := setupFeedServer(t)

		url := strings.Replace(fx.server.URL, "http", "ws", 1) + "/api/v1/habits/feed?token=garbage"
		_, resp, err := websocket.DefaultDialer.Dial(url, nil)

		assert.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}
