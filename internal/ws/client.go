package ws

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"secondhand_market/pkg/logger"
)

const (
	writeWait       = 10 * time.Second
	pongWait        = 60 * time.Second
	pingPeriod      = (pongWait * 9) / 10
	dispatchTimeout = 10 * time.Second
)

// Client is one authenticated realtime connection.
type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	userID     uuid.UUID
	dispatcher *Dispatcher
	log        logger.Logger

	// owned by the hub goroutine
	channels map[string]struct{}

	maxMessageSize int64
}

func NewClient(hub *Hub, conn *websocket.Conn, userID uuid.UUID, dispatcher *Dispatcher, sendBuffer int, maxMessageSize int64) *Client {
	if sendBuffer <= 0 {
		sendBuffer = 64
	}
	return &Client{
		hub:            hub,
		conn:           conn,
		send:           make(chan []byte, sendBuffer),
		userID:         userID,
		dispatcher:     dispatcher,
		log:            hub.log.With("user_id", userID),
		channels:       make(map[string]struct{}),
		maxMessageSize: maxMessageSize,
	}
}

func (c *Client) UserID() uuid.UUID { return c.userID }

// ReadPump decodes inbound events until the connection fails. It unregisters
// the client on exit.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregisterClient(c)
		c.conn.Close()
	}()

	if c.maxMessageSize > 0 {
		c.conn.SetReadLimit(c.maxMessageSize)
	}
	c.conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug("Realtime connection closed", "error", err)
			}
			return
		}

		var msg Inbound
		if err := json.Unmarshal(data, &msg); err != nil {
			c.log.Warn("Malformed realtime event", "error", err)
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		if err := c.dispatcher.Dispatch(ctx, c, msg); err != nil {
			c.log.Warn("Realtime event failed", "event", msg.Event, "error", err)
		}
		cancel()
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{}) //nolint:errcheck
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message) //nolint:errcheck
			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
