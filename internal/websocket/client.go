package websocket

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// In production, implement proper origin checking
		return true
	},
}

// Client is one live websocket connection. It implements
// coordinator.Sender; the coordinator only ever sees its id.
type Client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	sendClosed int32
}

func NewClient(hub *Hub, conn *websocket.Conn, id string) *Client {
	return &Client{
		id:   id,
		hub:  hub,
		conn: conn,
		send: make(chan []byte, 256),
	}
}

func (c *Client) ID() string {
	return c.id
}

// Send queues one outbound event frame. A full buffer means the peer
// stopped draining; the client is torn down rather than blocking the
// hub.
func (c *Client) Send(event, payload string) error {
	if atomic.LoadInt32(&c.sendClosed) == 1 {
		return ErrClientDisconnected
	}

	data, err := json.Marshal(outboundFrame{Event: event, Msg: payload})
	if err != nil {
		return err
	}

	select {
	case c.send <- data:
		return nil
	default:
		c.hub.logger.Warn("Send buffer full, closing client", "connID", c.id)
		c.closeSend()
		return ErrClientDisconnected
	}
}

func (c *Client) closeSend() {
	if atomic.CompareAndSwapInt32(&c.sendClosed, 0, 1) {
		close(c.send)
	}
}

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
		_, messageBytes, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Error("WebSocket error", "connID", c.id, "error", err)
			}
			break
		}

		var frame Frame
		if err := json.Unmarshal(messageBytes, &frame); err != nil {
			c.hub.logger.Debug("Dropping malformed frame", "connID", c.id, "error", err)
			continue
		}

		c.hub.inbound <- &clientFrame{client: c, frame: frame}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ServeWS upgrades the request and hands the connection to the hub.
func ServeWS(hub *Hub, w http.ResponseWriter, r *http.Request, connID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		hub.logger.Error("Failed to upgrade WebSocket connection", "connID", connID, "error", err)
		return
	}

	client := NewClient(hub, conn, connID)
	hub.logger.Info("New WebSocket connection established", "connID", connID)

	hub.register <- client

	go client.writePump()
	go client.readPump()
}
