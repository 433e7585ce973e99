// Package api exposes the HTTP surface of the relay: the auth endpoints
// that issue and revoke identity tokens, and the WebSocket upgrade path.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"chat-relay/auth"
	apperrors "chat-relay/errors"
	"chat-relay/services"
)

// restBean is the uniform JSON response envelope.
type restBean struct {
	Code    int    `json:"code"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message"`
}

type Handlers struct {
	auth services.IAuthService
	log  *slog.Logger
}

func NewHandlers(authService services.IAuthService, log *slog.Logger) *Handlers {
	return &Handlers{auth: authService, log: log}
}

// Register mounts the auth routes on the mux. The WebSocket path is mounted
// separately by the caller since it belongs to the realtime server.
func (h *Handlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/auth/register", h.handleRegister)
	mux.HandleFunc("POST /api/auth/login", h.handleLogin)
	mux.HandleFunc("POST /api/auth/logout", h.handleLogout)
}

func (h *Handlers) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req auth.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.auth.Register(req.Username, req.Email, req.Password)
	switch {
	case errors.Is(err, apperrors.ErrAccountExists):
		writeFailure(w, http.StatusConflict, "account already exists")
	case errors.Is(err, apperrors.ErrInvalidPassword):
		writeFailure(w, http.StatusBadRequest, err.Error())
	case err != nil:
		h.log.Error("registration failed", "error", err)
		writeFailure(w, http.StatusInternalServerError, "registration failed")
	default:
		writeSuccess(w, session)
	}
}

func (h *Handlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := auth.ValidateLogin(req); err != nil {
		writeFailure(w, http.StatusBadRequest, "username and password are required")
		return
	}

	session, err := h.auth.Login(req.Username, req.Password)
	if err != nil {
		// Deliberately vague: a login probe learns nothing about which
		// part of the credentials was wrong.
		writeFailure(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	writeSuccess(w, session)
}

func (h *Handlers) handleLogout(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(r)
	if !ok {
		writeFailure(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	revoked, err := h.auth.Logout(r.Context(), token)
	if err != nil {
		h.log.Error("logout failed", "error", err)
		writeFailure(w, http.StatusInternalServerError, "logout failed")
		return
	}
	if !revoked {
		writeFailure(w, http.StatusBadRequest, "logout failed")
		return
	}
	writeSuccess(w, nil)
}

// bearerToken extracts the raw token from an "Authorization: Bearer <token>"
// header.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	return strings.TrimPrefix(header, "Bearer "), true
}

func writeSuccess(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, restBean{Code: http.StatusOK, Data: data, Message: "ok"})
}

func writeFailure(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, restBean{Code: code, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, body restBean) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
