package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/noteloft/noteloft-server/internal/api/respond"
	"github.com/noteloft/noteloft-server/internal/services"
)

type TaskHandler struct {
	svc       *services.TaskService
	principal principalFn
}

func NewTaskHandler(svc *services.TaskService, p principalFn) *TaskHandler {
	return &TaskHandler{svc: svc, principal: p}
}

type taskReq struct {
	Title   string     `json:"title"`
	Done    bool       `json:"done"`
	DueDate *time.Time `json:"dueDate"`
}

// Create POST /v0/notebooks/{notebookId}/tasks
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.principal(w, r)
	if !ok {
		return
	}
	var req taskReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "invalid JSON")
		return
	}
	t, err := h.svc.Create(r.Context(), actorID, mux.Vars(r)["notebookId"], req.Title, req.DueDate)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, t)
}

// List GET /v0/notebooks/{notebookId}/tasks
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.principal(w, r)
	if !ok {
		return
	}
	lst, err := h.svc.List(r.Context(), actorID, mux.Vars(r)["notebookId"])
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"tasks": lst, "count": len(lst)})
}

// Get GET /v0/tasks/{taskId}
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.principal(w, r)
	if !ok {
		return
	}
	t, err := h.svc.Get(r.Context(), actorID, mux.Vars(r)["taskId"])
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, t)
}

// Update PUT /v0/tasks/{taskId}
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.principal(w, r)
	if !ok {
		return
	}
	var req taskReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "invalid JSON")
		return
	}
	t, err := h.svc.Update(r.Context(), actorID, mux.Vars(r)["taskId"], req.Title, req.Done, req.DueDate)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, t)
}

// Delete DELETE /v0/tasks/{taskId}
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.principal(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), actorID, mux.Vars(r)["taskId"]); err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
