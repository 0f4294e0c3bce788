// Package api is the HTTP transport: thin handlers that decode a request,
// resolve the acting principal explicitly, call one service and write the
// result. No handler holds state beyond its service dependencies.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/noteloft/noteloft-server/internal/api/respond"
	"github.com/noteloft/noteloft-server/internal/api/validate"
	"github.com/noteloft/noteloft-server/internal/auth"
	"github.com/noteloft/noteloft-server/internal/services"
)

// AuthHandler serves registration, login and the current-user endpoint.
type AuthHandler struct {
	users    *services.UserService
	sessions *auth.Sessions
}

func NewAuthHandler(users *services.UserService, sessions *auth.Sessions) *AuthHandler {
	return &AuthHandler{users: users, sessions: sessions}
}

// principal resolves the acting user from the bearer token, writing a 401 if
// none can be established. Handlers pass the returned id down explicitly.
func (h *AuthHandler) principal(w http.ResponseWriter, r *http.Request) (string, bool) {
	tok, err := auth.ExtractBearer(r)
	if err != nil {
		respond.WriteUnauthorized(w)
		return "", false
	}
	userID, err := h.sessions.Verify(tok)
	if err != nil {
		respond.WriteUnauthorized(w)
		return "", false
	}
	return userID, true
}

// Register POST /v0/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email       string `json:"email"`
		DisplayName string `json:"displayName"`
		Password    string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "invalid JSON")
		return
	}
	if err := validate.Email(req.Email); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	u, err := h.users.Register(r.Context(), req.Email, req.DisplayName, req.Password)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, u)
}

// Login POST /v0/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "invalid JSON")
		return
	}
	u, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	tok, err := h.sessions.Issue(u.UserID)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"token": tok, "user": u})
}

// Me GET /v0/users/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.principal(w, r)
	if !ok {
		return
	}
	u, err := h.users.Get(r.Context(), actorID)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, u)
}
