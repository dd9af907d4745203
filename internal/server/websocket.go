package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/pbutterworth/gochlorinator/internal/logging"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Outbound updates queued per subscriber before it is dropped
	sendBuffer = 8
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The bridge serves local dashboards; it performs no origin policing.
	CheckOrigin: func(*http.Request) bool { return true },
}

// client is one WebSocket subscriber. A dedicated writer goroutine owns the
// connection's write side; updates flow through a bounded channel and slow
// consumers get disconnected rather than block the gather loop.
type client struct {
	conn    *websocket.Conn
	updates chan *Update
	done    chan struct{}
	once    sync.Once
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn("websocket upgrade failed",
			zap.String("remote_addr", r.RemoteAddr), zap.Error(err))
		return
	}

	c := &client{
		conn:    conn,
		updates: make(chan *Update, sendBuffer),
		done:    make(chan struct{}),
	}
	s.addClient(c)
	logging.Info("websocket subscriber connected",
		zap.String("remote_addr", r.RemoteAddr))

	go c.writeLoop()
	c.readLoop() // blocks until the peer goes away

	s.removeClient(c)
	c.close()
	logging.Info("websocket subscriber disconnected",
		zap.String("remote_addr", r.RemoteAddr))
}

// send queues an update without blocking. A subscriber whose queue is full
// is cut loose; it can reconnect and resynchronize from the latest state.
func (c *client) send(update *Update) {
	select {
	case c.updates <- update:
	case <-c.done:
	default:
		logging.Warn("dropping slow websocket subscriber")
		c.close()
	}
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

// readLoop discards inbound messages and keeps the pong deadline fresh.
func (c *client) readLoop() {
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writeLoop pushes queued updates and keepalive pings to the peer.
func (c *client) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case update := <-c.updates:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(update); err != nil {
				c.close()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}
		}
	}
}
