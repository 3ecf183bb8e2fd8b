// Package ws serves the notification relay over WebSocket.
package ws

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"taskhub/config"
	domainerrors "taskhub/internal/domain/errors"
	"taskhub/internal/domain/service"
	"taskhub/internal/infra/relay"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
	"nhooyr.io/websocket"
)

// Params defines the required parameters
type Params struct {
	fx.In
	fx.Lifecycle

	Hub    *relay.Hub
	Tokens service.TokenService
	Config *config.Config
	Logger *slog.Logger
}

// Handler upgrades requests to relay sockets and tracks them for shutdown.
type Handler struct {
	hub    *relay.Hub
	tokens service.TokenService
	cfg    *config.RelayConfig
	logger *slog.Logger
	now    func() time.Time

	mu      sync.Mutex
	clients map[*client]struct{}
	closing bool
}

// NewHandler builds the relay handler and closes its sockets on stop.
func NewHandler(params Params) *Handler {
	h := newHandler(params.Hub, params.Tokens, params.Config.Relay, params.Logger)
	params.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			h.Shutdown()

			return nil
		},
	})

	return h
}

func newHandler(hub *relay.Hub, tokens service.TokenService, cfg *config.RelayConfig, logger *slog.Logger) *Handler {
	return &Handler{
		hub:     hub,
		tokens:  tokens,
		cfg:     cfg,
		logger:  logger.With(slog.String("component", "relay")),
		now:     time.Now,
		clients: make(map[*client]struct{}),
	}
}

// Serve handles GET /ws. A ?token query binds the socket to the token's
// subject and announces it right away.
func (h *Handler) Serve(c echo.Context) error {
	boundUser := ""
	if token := c.QueryParam("token"); token != "" {
		userID, err := h.tokens.Verify(token)
		if err != nil {
			return err
		}
		boundUser = userID.String()
	} else if h.cfg.RequireAuth {
		return domainerrors.ErrTokenMissing
	}

	// Server read/write timeouts would otherwise outlive the upgrade.
	rc := http.NewResponseController(c.Response())
	_ = rc.SetReadDeadline(time.Time{})
	_ = rc.SetWriteDeadline(time.Time{})

	conn, err := websocket.Accept(c.Response(), c.Request(), &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		// Accept has already written the failure response
		h.logger.Warn("Relay upgrade failed", slog.Any("error", err))

		return nil
	}
	conn.SetReadLimit(h.cfg.MaxMessageSize)

	cl := newClient(h, conn, boundUser)
	if !h.track(cl) {
		_ = conn.Close(websocket.StatusGoingAway, "server shutting down")

		return nil
	}
	defer h.untrack(cl)

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	if boundUser != "" {
		h.announce(cl, boundUser)
	}

	go cl.writePump(ctx)
	cl.readPump(ctx)

	return nil
}

func (h *Handler) announce(cl *client, userID string) {
	h.hub.Announce(cl, userID)
	cl.enqueue(relay.Message{Type: relay.TypeAnnounced, UserID: userID})
	cl.logger.Debug("Relay client announced", slog.String("userID", userID))
}

func (h *Handler) track(cl *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closing {
		return false
	}
	h.clients[cl] = struct{}{}

	return true
}

func (h *Handler) untrack(cl *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.clients, cl)
}

// Shutdown closes every open socket with a going-away status and refuses new ones.
func (h *Handler) Shutdown() {
	h.mu.Lock()
	h.closing = true
	clients := make([]*client, 0, len(h.clients))
	for cl := range h.clients {
		clients = append(clients, cl)
	}
	h.mu.Unlock()

	var wg sync.WaitGroup
	for _, cl := range clients {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cl.close(websocket.StatusGoingAway, "server shutting down")
		}()
	}
	wg.Wait()
	h.logger.Info("Relay connections closed", slog.Int("count", len(clients)))
}
