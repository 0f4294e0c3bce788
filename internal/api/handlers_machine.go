package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/noteloft/noteloft-server/internal/api/respond"
	"github.com/noteloft/noteloft-server/internal/model"
	"github.com/noteloft/noteloft-server/internal/services"
)

// MachineHandler serves the X-Api-Key task endpoints for integrations. A
// verified key acts with the notebook owner's authority, so the calls below
// go through the same TaskService checks as browser traffic.
type MachineHandler struct {
	notebooks *services.NotebookService
	tasks     *services.TaskService
}

func NewMachineHandler(notebooks *services.NotebookService, tasks *services.TaskService) *MachineHandler {
	return &MachineHandler{notebooks: notebooks, tasks: tasks}
}

// actor verifies the X-Api-Key header against the notebook in the path and
// returns the owner's user id. Failures write the opaque 403.
func (h *MachineHandler) actor(w http.ResponseWriter, r *http.Request, required model.APIKeyPermission) (string, bool) {
	notebookID := mux.Vars(r)["notebookId"]
	actorID, err := h.notebooks.MachineActor(r.Context(), notebookID, r.Header.Get("X-Api-Key"), required)
	if err != nil {
		respond.WriteServiceError(w, err)
		return "", false
	}
	return actorID, true
}

// ListTasks GET /v0/machine/notebooks/{notebookId}/tasks
func (h *MachineHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.actor(w, r, model.KeyReadOnly)
	if !ok {
		return
	}
	lst, err := h.tasks.List(r.Context(), actorID, mux.Vars(r)["notebookId"])
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"tasks": lst, "count": len(lst)})
}

// CreateTask POST /v0/machine/notebooks/{notebookId}/tasks
func (h *MachineHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.actor(w, r, model.KeyFullAccess)
	if !ok {
		return
	}
	var req taskReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "invalid JSON")
		return
	}
	t, err := h.tasks.Create(r.Context(), actorID, mux.Vars(r)["notebookId"], req.Title, req.DueDate)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, t)
}
