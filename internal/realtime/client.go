package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"matrimony-server/internal/config"
	"matrimony-server/internal/models"
	"matrimony-server/internal/utils"
)

var (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = int64(4096)
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client is one live websocket connection bound to an authenticated user.
type Client struct {
	UserID    string
	FirstName string

	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// ServeWS returns the gin handler that upgrades the connection. The JWT is
// carried in the `token` query parameter because browsers cannot set headers
// on websocket upgrades; the decoded subject, not any client-supplied field,
// decides which room the connection joins.
func ServeWS(hub *Hub, db *gorm.DB, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.Query("token")
		if tokenString == "" {
			utils.Unauthorized(c, "Token is required")
			return
		}

		claims, err := utils.ValidateToken(tokenString, cfg.JWTSecret)
		if err != nil {
			utils.Unauthorized(c, "Invalid token: "+err.Error())
			return
		}

		var user models.User
		if err := db.First(&user, "id = ? AND is_verified = ?", claims.UserID, true).Error; err != nil {
			utils.Unauthorized(c, "User no longer exists or is not verified")
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			hub.log.Error("websocket upgrade failed", zap.Error(err))
			return
		}

		client := &Client{
			UserID:    user.ID,
			FirstName: user.FirstName,
			hub:       hub,
			conn:      conn,
			send:      make(chan []byte, 256),
		}
		hub.register <- client

		go client.writePump()
		go client.readPump()
	}
}

// readPump reads envelopes off the connection and dispatches them. Handler
// failures are logged and swallowed; the socket path is fire-and-forget and
// has no response channel back to the triggering client.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.log.Warn("websocket read error", zap.String("userId", c.UserID), zap.Error(err))
			}
			return
		}

		var envelope Envelope
		if err := json.Unmarshal(raw, &envelope); err != nil {
			c.hub.log.Warn("malformed socket frame", zap.String("userId", c.UserID), zap.Error(err))
			continue
		}

		c.dispatch(envelope)
	}
}

func (c *Client) dispatch(envelope Envelope) {
	switch envelope.Event {
	case "join_room":
		c.hub.handleJoinRoom(c, envelope.Data)
	case "send_message":
		c.hub.handleSendMessage(c, envelope.Data)
	case "mark_as_read":
		c.hub.handleMarkAsRead(c, envelope.Data)
	case "send_interest_notification":
		c.hub.handleInterestNotification(c, envelope.Data)
	default:
		c.hub.log.Warn("unknown socket event",
			zap.String("userId", c.UserID),
			zap.String("event", envelope.Event))
	}
}

// writePump forwards queued frames to the connection and keeps it alive with
// pings. One writer goroutine per connection; the hub never writes directly.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
			// Each ping also refreshes the presence TTL.
			if c.hub.presence != nil {
				if err := c.hub.presence.Online(context.Background(), c.UserID); err != nil {
					c.hub.log.Warn("presence refresh failed", zap.String("userId", c.UserID), zap.Error(err))
				}
			}
		}
	}
}
