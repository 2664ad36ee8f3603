package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"speakup/backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
)

// The thread is the append-only message log attached to a complaint.
// Participants are identified by role only; the intake pipeline itself
// never touches these messages.

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 50 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// threadAccess checks that the caller may read the complaint's thread:
// staff always, a submitter only on their own complaint. The comparison
// happens server-side; the mapped id never reaches a non-auditor.
func (h *Handler) threadAccess(c *gin.Context, complaintID string) bool {
	role := c.GetString("role")
	if role == models.RoleHandler || role == models.RoleAuditor {
		return true
	}

	mappedID, err := h.Storage.GetSubmitterID(complaintID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return false
	}
	if mappedID == "" || mappedID != c.GetString("user_id") {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return false
	}
	return true
}

// GetThreadMessages returns the complaint's message log, oldest first.
func (h *Handler) GetThreadMessages(c *gin.Context) {
	complaintID := c.Param("id")
	if !h.threadAccess(c, complaintID) {
		return
	}

	messages, err := h.Storage.GetThreadMessages(complaintID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, messages)
}

type threadMessageRequest struct {
	Body string `json:"body" binding:"required"`
}

// PostThreadMessage appends a message to the complaint's log and fans it
// out to the live websocket subscribers. Only the sender's role is stored.
func (h *Handler) PostThreadMessage(c *gin.Context) {
	complaintID := c.Param("id")
	if !h.threadAccess(c, complaintID) {
		return
	}

	var req threadMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "body is required"})
		return
	}

	msg := &models.ThreadMessage{
		ComplaintID: complaintID,
		SenderRole:  c.GetString("role"),
		Body:        req.Body,
	}
	if err := h.Storage.SaveThreadMessage(msg); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	if err := h.Storage.PublishThreadMessage(msg); err != nil {
		log.Printf("WARNING: Failed to publish thread message %s: %v", msg.ID, err)
	}

	c.JSON(http.StatusCreated, msg)
}

// ServeThreadSocket upgrades the connection and streams live thread
// messages for one complaint from the Redis channel.
func (h *Handler) ServeThreadSocket(c *gin.Context) {
	complaintID := c.Param("id")
	if !h.threadAccess(c, complaintID) {
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to upgrade connection"})
		return
	}

	pubsub := h.Storage.SubscribeThread(complaintID)
	go h.threadWritePump(conn, pubsub)
	h.threadReadPump(conn, pubsub)
}

// threadReadPump drains the socket until the client goes away, then closes
// the subscription so the write pump exits with it. Inbound frames carry no
// payload the server uses; posting goes through PostThreadMessage.
func (h *Handler) threadReadPump(conn *websocket.Conn, pubsub *redis.PubSub) {
	defer pubsub.Close()

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// threadWritePump forwards published messages to the socket and keeps the
// connection alive with pings. It owns both the connection and the
// subscription and closes them on the way out.
func (h *Handler) threadWritePump(conn *websocket.Conn, pubsub *redis.PubSub) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		pubsub.Close()
		conn.Close()
	}()

	ch := pubsub.Channel()

	for {
		select {
		case redisMsg, ok := <-ch:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			var msg models.ThreadMessage
			if err := json.Unmarshal([]byte(redisMsg.Payload), &msg); err != nil {
				log.Printf("ERROR: Malformed thread payload on %s: %v", redisMsg.Channel, err)
				continue
			}

			if err := conn.WriteJSON(msg); err != nil {
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
