package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/noteloft/noteloft-server/internal/api/respond"
	"github.com/noteloft/noteloft-server/internal/services"
)

type NoteHandler struct {
	svc       *services.NoteService
	principal principalFn
}

func NewNoteHandler(svc *services.NoteService, p principalFn) *NoteHandler {
	return &NoteHandler{svc: svc, principal: p}
}

// Create POST /v0/notebooks/{notebookId}/notes
func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.principal(w, r)
	if !ok {
		return
	}
	var req struct {
		Title string `json:"title"`
		Body  string `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "invalid JSON")
		return
	}
	n, err := h.svc.Create(r.Context(), actorID, mux.Vars(r)["notebookId"], req.Title, req.Body)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, n)
}

// List GET /v0/notebooks/{notebookId}/notes
func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.principal(w, r)
	if !ok {
		return
	}
	lst, err := h.svc.List(r.Context(), actorID, mux.Vars(r)["notebookId"])
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"notes": lst, "count": len(lst)})
}

// Get GET /v0/notes/{noteId}
func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.principal(w, r)
	if !ok {
		return
	}
	n, err := h.svc.Get(r.Context(), actorID, mux.Vars(r)["noteId"])
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, n)
}

// Update PUT /v0/notes/{noteId}
func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.principal(w, r)
	if !ok {
		return
	}
	var req struct {
		Title string `json:"title"`
		Body  string `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "invalid JSON")
		return
	}
	n, err := h.svc.Update(r.Context(), actorID, mux.Vars(r)["noteId"], req.Title, req.Body)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, n)
}

// Delete DELETE /v0/notes/{noteId}
func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.principal(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), actorID, mux.Vars(r)["noteId"]); err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
