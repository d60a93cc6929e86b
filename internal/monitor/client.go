package monitor

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	sendBufferSize = 256
)

// client is one websocket consumer. All writes go through the buffered
// sendCh so the broadcast path never blocks on a slow peer. The channel is
// never closed; done signals shutdown so broadcasts racing a disconnect
// cannot panic.
type client struct {
	id     uuid.UUID
	conn   *websocket.Conn
	sendCh chan []byte
	done   chan struct{}
	logger *zap.Logger

	closeOnce sync.Once
}

func newClient(conn *websocket.Conn, logger *zap.Logger) *client {
	return &client{
		id:     uuid.New(),
		conn:   conn,
		sendCh: make(chan []byte, sendBufferSize),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// send queues payload for delivery; returns false when the buffer is full.
// Sending to a closed client is a silent no-op.
func (c *client) send(payload []byte) bool {
	if payload == nil {
		return true
	}
	select {
	case <-c.done:
		return true
	default:
	}
	select {
	case c.sendCh <- payload:
		return true
	case <-c.done:
		return true
	default:
		return false
	}
}

func (c *client) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// readLoop consumes inbound frames to keep the connection healthy. The
// monitor is read-only, so incoming payloads are discarded.
func (c *client) readLoop() {
	defer func() {
		c.close()
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Debug("Websocket read error",
					zap.Error(err), zap.String("client_id", c.id.String()))
			}
			return
		}
	}
}

func (c *client) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload := <-c.sendCh:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				c.logger.Debug("Websocket write error",
					zap.Error(err), zap.String("client_id", c.id.String()))
				return
			}
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
