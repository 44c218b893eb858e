package services

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/addisbingo/bingo-backend/game"
	"github.com/addisbingo/bingo-backend/utils/logger"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Event is one message on a session stream.
type Event struct {
	Type    string         `json:"type"` // joined | started | number | finished | state
	Number  int            `json:"number,omitempty"`
	Label   string         `json:"label,omitempty"`
	UserID  int64          `json:"user_id,omitempty"`
	Line    string         `json:"line,omitempty"`
	State   *game.Snapshot `json:"state,omitempty"`
	Message string         `json:"message,omitempty"`
}

// Hub fans session events out to websocket subscribers, one room per
// session. Broadcasts never block: a slow client just drops messages.
//
// A client's send channel is closed only while holding the write lock, and
// every send happens under the read lock, so a send never races the close.
type Hub struct {
	mu    sync.RWMutex
	rooms map[uint]map[*Client]bool
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[uint]map[*Client]bool)}
}

func (h *Hub) join(c *Client) {
	h.mu.Lock()
	room, ok := h.rooms[c.sessionID]
	if !ok {
		room = make(map[*Client]bool)
		h.rooms[c.sessionID] = room
	}
	room[c] = true
	h.mu.Unlock()

	go c.writePump()
	go c.readPump()
}

func (h *Hub) leave(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if room, ok := h.rooms[c.sessionID]; ok {
		delete(room, c)
		if len(room) == 0 {
			delete(h.rooms, c.sessionID)
		}
	}
	c.Close()
}

// Broadcast sends an event to every subscriber of a session.
func (h *Hub) Broadcast(sessionID uint, ev Event) {
	b, err := json.Marshal(ev)
	if err != nil {
		logger.Errorf("[Stream %d] marshal event: %v", sessionID, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[sessionID] {
		select {
		case c.send <- b:
		default:
			logger.Debugf("[Stream %d] dropping event for user %d", sessionID, c.userID)
		}
	}
}

// sendTo delivers one message to a single subscriber if it is still in its
// room. A client that already left has a closed send channel and is skipped.
func (h *Hub) sendTo(c *Client, b []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if room, ok := h.rooms[c.sessionID]; ok && room[c] {
		select {
		case c.send <- b:
		default:
		}
	}
}

// StreamHandler upgrades the connection and subscribes the caller to a
// session's event stream, starting with a state snapshot.
func (h *Hub) StreamHandler(registry *game.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
			return
		}
		sess, err := registry.Get(uint(id))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		userID, _ := strconv.ParseInt(c.Query("user_id"), 10, 64)

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Errorf("[Stream %d] upgrade error: %v", id, err)
			return
		}

		client := &Client{
			userID:    userID,
			sessionID: sess.ID,
			conn:      conn,
			hub:       h,
			send:      make(chan []byte, 32),
		}
		h.join(client)

		snap := sess.Snapshot()
		if b, err := json.Marshal(Event{Type: "state", State: &snap}); err == nil {
			h.sendTo(client, b)
		}
	}
}
