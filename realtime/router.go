package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"chat-relay/auth"

	"github.com/google/uuid"
)

// Outbound frame formats, plain text on the wire.
const (
	frameClientID       = "Your client ID: %s"
	frameCustomClientID = "Your custom client ID: %d"
	framePrivate        = "Private message from %s: %s"
	frameBroadcast      = "Broadcast message from %s: %s"
	frameTargetNotFound = "Error: Target user %s not found"
	frameUnknownType    = "Error: Unknown message type"
	frameInvalidToken   = "Error: invalid token"
	frameMalformed      = "Error: malformed message"
)

// Message kinds accepted in the chat envelope.
const (
	kindPrivate   = "private"
	kindBroadcast = "broadcast"
)

// ChatMessage is the structured inbound envelope. Anything that does not
// parse as one is treated as a bare bearer token for identity binding.
type ChatMessage struct {
	Type         string `json:"type"`
	TargetUserID string `json:"targetUserId"`
	Content      string `json:"content"`
}

// TokenVerifier is the composed token check (signature + expiry +
// revocation) the router consults during in-band binding.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*auth.Claims, error)
}

// ContentFilter rewrites message content before fan-out. Optional.
type ContentFilter interface {
	Censor(content string) string
}

type routerState int

const (
	stateConnected routerState = iota // ephemeral key registered, identity unproven
	stateBound                        // durable identity key also registered
	stateClosed
)

// Router is the per-connection protocol state machine. One router exists per
// WebSocket connection and runs on that connection's read goroutine; only
// the shared Registry is touched concurrently.
type Router struct {
	key      string // ephemeral key, unique for the connection's lifetime
	conn     Conn
	registry *Registry
	verifier TokenVerifier
	filter   ContentFilter
	log      *slog.Logger
	state    routerState
}

func NewRouter(conn Conn, registry *Registry, verifier TokenVerifier, filter ContentFilter, log *slog.Logger) *Router {
	key := uuid.NewString()
	return &Router{
		key:      key,
		conn:     conn,
		registry: registry,
		verifier: verifier,
		filter:   filter,
		log:      log.With("client_id", key),
	}
}

// Key returns the ephemeral routing key assigned at handshake time.
func (r *Router) Key() string {
	return r.key
}

// HandleConnect registers the ephemeral key and greets the client with it.
func (r *Router) HandleConnect() {
	r.registry.Put(r.key, r.conn)
	r.state = stateConnected
	if err := r.conn.WriteText(fmt.Sprintf(frameClientID, r.key)); err != nil {
		r.log.Warn("failed to send client id", "error", err)
	}
	r.log.Info("client connected")
}

// HandleFrame classifies one inbound text frame and dispatches it. Frames
// carrying a JSON envelope are chat messages; anything else is treated as a
// bearer token binding attempt.
func (r *Router) HandleFrame(ctx context.Context, frame string) {
	if r.state == stateClosed {
		return
	}
	if isEnvelope(frame) {
		r.handleChatMessage(frame)
		return
	}
	r.handleBinding(ctx, strings.TrimSpace(frame))
}

// HandleDisconnect purges every registry key referencing this connection and
// seals the state machine. Errors here are logged and swallowed: cleanup of
// one connection must never take down the shared registry or its siblings.
func (r *Router) HandleDisconnect() {
	if r.state == stateClosed {
		return
	}
	r.state = stateClosed
	removed := r.registry.RemoveAll(r.conn)
	r.log.Info("client disconnected", "keys_removed", removed)
}

// handleBinding verifies a bare token frame and, on success, additionally
// registers the durable identity key. Binding augments the ephemeral
// mapping, never replaces it, and is re-entrant: a later frame may rebind
// the connection to a different identity.
func (r *Router) handleBinding(ctx context.Context, token string) {
	claims, err := r.verifier.Verify(ctx, token)
	if err != nil {
		r.log.Info("rejected binding attempt", "reason", err)
		r.send(frameInvalidToken)
		return
	}

	identityKey := strconv.Itoa(claims.UserID)
	r.registry.Put(identityKey, r.conn)
	r.state = stateBound
	r.send(fmt.Sprintf(frameCustomClientID, claims.UserID))
	r.log.Info("client bound to identity", "user_id", claims.UserID, "user", claims.Name)
}

func (r *Router) handleChatMessage(frame string) {
	var msg ChatMessage
	if err := json.Unmarshal([]byte(frame), &msg); err != nil {
		r.log.Debug("malformed chat message", "error", err)
		r.send(frameMalformed)
		return
	}

	switch msg.Type {
	case kindPrivate:
		r.deliverPrivate(msg)
	case kindBroadcast:
		r.deliverBroadcast(msg)
	default:
		r.send(frameUnknownType)
	}
}

func (r *Router) deliverPrivate(msg ChatMessage) {
	target, ok := r.registry.Get(msg.TargetUserID)
	if !ok {
		r.send(fmt.Sprintf(frameTargetNotFound, msg.TargetUserID))
		return
	}

	out := fmt.Sprintf(framePrivate, r.key, r.censor(msg.Content))
	if err := target.WriteText(out); err != nil {
		r.log.Warn("private delivery failed", "target", msg.TargetUserID, "error", err)
	}
}

func (r *Router) deliverBroadcast(msg ChatMessage) {
	out := fmt.Sprintf(frameBroadcast, r.key, r.censor(msg.Content))
	for _, conn := range r.registry.Connections() {
		if err := conn.WriteText(out); err != nil {
			// A dead peer only hurts itself; its own read loop will
			// run the disconnect cleanup.
			r.log.Warn("broadcast delivery failed", "error", err)
		}
	}
}

func (r *Router) censor(content string) string {
	if r.filter == nil {
		return content
	}
	return r.filter.Censor(content)
}

func (r *Router) send(message string) {
	if err := r.conn.WriteText(message); err != nil {
		r.log.Warn("failed to write frame", "error", err)
	}
}

// isEnvelope reports whether the frame looks like a structured chat message
// rather than a bare token. JWTs never start with '{', so a leading brace is
// a reliable discriminator for this wire format.
func isEnvelope(frame string) bool {
	return strings.HasPrefix(strings.TrimSpace(frame), "{")
}
