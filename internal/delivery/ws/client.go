package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"taskhub/internal/infra/relay"

	"nhooyr.io/websocket"
)

// client is one relay socket. Frames reach it through Deliver and leave
// through writePump; readPump owns everything read from the socket.
type client struct {
	handler *Handler
	conn    *websocket.Conn
	logger  *slog.Logger

	// boundUser is the token subject, empty for anonymous sockets.
	boundUser string

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func newClient(h *Handler, conn *websocket.Conn, boundUser string) *client {
	return &client{
		handler:   h,
		conn:      conn,
		logger:    h.logger.With(slog.String("boundUser", boundUser)),
		boundUser: boundUser,
		send:      make(chan []byte, h.cfg.SendBuffer),
		done:      make(chan struct{}),
	}
}

// Deliver implements relay.Endpoint.
func (c *client) Deliver(frame []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

// Subject implements relay.Endpoint.
func (c *client) Subject() string {
	return c.boundUser
}

// close leaves the hub and closes the socket once.
func (c *client) close(status websocket.StatusCode, reason string) {
	c.closeOnce.Do(func() {
		c.handler.hub.Remove(c)
		close(c.done)
		_ = c.conn.Close(status, reason)
	})
}

func (c *client) readPump(ctx context.Context) {
	defer c.close(websocket.StatusNormalClosure, "")

	for {
		typ, data, err := c.conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				c.logger.Debug("Relay client disconnected")
			} else {
				c.logger.Debug("Relay read ended", slog.Any("error", err))
			}

			return
		}
		if typ != websocket.MessageText {
			c.sendError(relay.CodeInvalidMessage, "only text frames are accepted")

			continue
		}

		var msg relay.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.sendError(relay.CodeInvalidMessage, "message is not valid JSON")

			continue
		}
		c.handle(&msg)
	}
}

func (c *client) writePump(ctx context.Context) {
	ticker := time.NewTicker(c.handler.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case frame := <-c.send:
			if err := c.write(ctx, frame); err != nil {
				c.logger.Debug("Relay write failed", slog.Any("error", err))
				c.close(websocket.StatusInternalError, "write failed")

				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, c.handler.cfg.WriteTimeout)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				c.logger.Debug("Relay ping failed", slog.Any("error", err))
				c.close(websocket.StatusPolicyViolation, "ping timeout")

				return
			}
		case <-c.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (c *client) write(ctx context.Context, frame []byte) error {
	writeCtx, cancel := context.WithTimeout(ctx, c.handler.cfg.WriteTimeout)
	defer cancel()

	return c.conn.Write(writeCtx, websocket.MessageText, frame)
}

func (c *client) handle(msg *relay.Message) {
	switch msg.Type {
	case relay.TypeAnnounce:
		if msg.UserID == "" {
			c.sendError(relay.CodeInvalidMessage, "user_id is required")

			return
		}
		if c.boundUser != "" && msg.UserID != c.boundUser {
			c.sendError(relay.CodeForbidden, "connection is bound to another user")

			return
		}
		c.handler.announce(c, msg.UserID)

	case relay.TypePublish:
		if msg.To == "" {
			c.sendError(relay.CodeInvalidMessage, "to is required")

			return
		}
		frame, err := relay.NotifyFrame("", msg.Payload, c.handler.now())
		if err != nil {
			c.sendError(relay.CodeInvalidMessage, "payload is not valid JSON")

			return
		}
		delivered := c.handler.hub.Publish(msg.To, frame)
		c.logger.Debug("Relay publish", slog.String("to", msg.To), slog.Int("delivered", delivered))

	case relay.TypePing:
		c.enqueue(relay.Message{Type: relay.TypePong})

	default:
		c.sendError(relay.CodeUnknownType, "unknown message type: "+msg.Type)
	}
}

func (c *client) enqueue(msg relay.Message) {
	frame, err := json.Marshal(msg)
	if err != nil {
		return
	}
	c.Deliver(frame)
}

func (c *client) sendError(code, message string) {
	c.Deliver(relay.ErrorFrame(code, message))
}
