package services

import (
	"sync"

	"github.com/gorilla/websocket"

	"github.com/addisbingo/bingo-backend/utils/logger"
)

// Client is one websocket subscriber of a session stream.
type Client struct {
	userID    int64
	sessionID uint
	conn      *websocket.Conn
	hub       *Hub
	send      chan []byte
	once      sync.Once
}

// Close shuts the client down. Only the hub's leave path calls it, while
// holding the hub's write lock, so the channel close cannot race a send.
func (c *Client) Close() {
	c.once.Do(func() {
		close(c.send)
		c.conn.Close()
	})
}

// readPump discards inbound frames; clients act through the REST API. It
// exists to detect disconnects and keep the connection alive.
func (c *Client) readPump() {
	defer c.hub.leave(c)

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debugf("[Stream %d] user %d disconnected", c.sessionID, c.userID)
			} else {
				logger.Debugf("[Stream %d] user %d read error: %v", c.sessionID, c.userID, err)
			}
			return
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			logger.Debugf("[Stream %d] user %d write error: %v", c.sessionID, c.userID, err)
			return
		}
	}
}
