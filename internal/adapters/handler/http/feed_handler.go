package http

import (
	"log"
	"net/http"
	"time"

	"github.com/dayadict/dayadict-server/internal/core/feed"
	"github.com/dayadict/dayadict-server/internal/core/services"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	feedWriteWait  = 10 * time.Second
	feedPingPeriod = 30 * time.Second
)

// FeedHandler streams live habit snapshots over a websocket. Browsers
// cannot set an Authorization header on a websocket dial, so the token
// rides in the query string and the handler validates it itself.
type FeedHandler struct {
	hub    *feed.Hub
	tokens *services.TokenService

	upgrader websocket.Upgrader
}

func NewFeedHandler(hub *feed.Hub, tokens *services.TokenService) *FeedHandler {
	return &FeedHandler{
		hub:    hub,
		tokens: tokens,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (h *FeedHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/habits/feed", h.Stream)
}

func (h *FeedHandler) Stream(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "token query parameter required"})
		return
	}

	userID, err := h.tokens.ValidateToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
		return
	}

	sub, err := h.hub.Subscribe(c.Request.Context(), userID)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		sub.Cancel()
		log.Printf("feed: websocket upgrade failed for user %s: %v", userID, err)
		return
	}

	go h.writeLoop(conn, sub)
	h.readLoop(conn, sub)
}

// readLoop drains client frames until the peer goes away, then tears the
// subscription down. Clients never send application data on this socket.
func (h *FeedHandler) readLoop(conn *websocket.Conn, sub *feed.Subscription) {
	defer func() {
		sub.Cancel()
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *FeedHandler) writeLoop(conn *websocket.Conn, sub *feed.Subscription) {
	ticker := time.NewTicker(feedPingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case snapshot, ok := <-sub.Snapshots():
			conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}

			if err := conn.WriteJSON(toHabitResponses(snapshot, time.Now().UTC())); err != nil {
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
