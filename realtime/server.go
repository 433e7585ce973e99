package realtime

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// ServerConfig bounds the per-connection transport behavior.
type ServerConfig struct {
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	PingInterval   time.Duration
	MaxMessageSize int64
}

// Server is the WebSocket front door: it upgrades HTTP requests and wires
// one Router per connection to the shared Registry and token verifier.
type Server struct {
	upgrader websocket.Upgrader
	registry *Registry
	verifier TokenVerifier
	filter   ContentFilter
	cfg      ServerConfig
	log      *slog.Logger
}

func NewServer(registry *Registry, verifier TokenVerifier, filter ContentFilter, cfg ServerConfig, log *slog.Logger) *Server {
	return &Server{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// Bearer-token binding happens in-band, not via cookies,
				// so cross-origin upgrades carry no ambient credentials.
				return true
			},
		},
		registry: registry,
		verifier: verifier,
		filter:   filter,
		cfg:      cfg,
		log:      log,
	}
}

// ServeHTTP performs the upgrade handshake and runs the connection's read
// loop until the peer goes away. One goroutine per connection; writes may be
// issued concurrently by other routers through the registry.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	conn := newWSConn(ws, s.cfg.WriteTimeout)
	router := NewRouter(conn, s.registry, s.verifier, s.filter, s.log)

	ws.SetReadLimit(s.cfg.MaxMessageSize)
	if err := ws.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout)); err != nil {
		s.log.Warn("failed to set read deadline", "error", err)
	}
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
	})

	router.HandleConnect()

	done := make(chan struct{})
	go s.keepAlive(conn, done)

	s.readLoop(r.Context(), ws, router)

	close(done)
	router.HandleDisconnect()
	if err := conn.Close(); err != nil {
		s.log.Debug("error closing connection", "error", err)
	}
}

// readLoop pumps inbound frames into the router. A panic inside frame
// handling closes this connection only, never its siblings.
func (s *Server) readLoop(ctx context.Context, ws *websocket.Conn, router *Router) {
	defer func() {
		if rec := recover(); rec != nil {
			s.log.Error("panic in frame handling", "client_id", router.Key(), "panic", rec)
		}
	}()

	for {
		msgType, payload, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure) {
				s.log.Warn("websocket read error", "client_id", router.Key(), "error", err)
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		router.HandleFrame(ctx, string(payload))
	}
}

// keepAlive pings the peer so dead connections fail the read deadline and
// get their registry entries purged instead of lingering.
func (s *Server) keepAlive(conn *wsConn, done <-chan struct{}) {
	ticker := time.NewTicker(s.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.ping(); err != nil {
				return
			}
		}
	}
}
