package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/noteloft/noteloft-server/internal/api/respond"
	"github.com/noteloft/noteloft-server/internal/api/validate"
	"github.com/noteloft/noteloft-server/internal/model"
	"github.com/noteloft/noteloft-server/internal/services"
)

// principalFn resolves the acting user for a request or writes a 401.
type principalFn func(w http.ResponseWriter, r *http.Request) (string, bool)

// NotebookHandler serves notebook CRUD, the sharing lifecycle and API-key
// management.
type NotebookHandler struct {
	svc       *services.NotebookService
	principal principalFn
}

func NewNotebookHandler(svc *services.NotebookService, p principalFn) *NotebookHandler {
	return &NotebookHandler{svc: svc, principal: p}
}

type memberFlagsReq struct {
	CanEdit   bool `json:"canEdit"`
	CanCreate bool `json:"canCreate"`
	CanDelete bool `json:"canDelete"`
}

func (f memberFlagsReq) flags() model.MemberFlags {
	return model.MemberFlags{CanEdit: f.CanEdit, CanCreate: f.CanCreate, CanDelete: f.CanDelete}
}

// Create POST /v0/notebooks
func (h *NotebookHandler) Create(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.principal(w, r)
	if !ok {
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "invalid JSON")
		return
	}
	nb, err := h.svc.Create(r.Context(), actorID, req.Name)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, nb)
}

// List GET /v0/notebooks
func (h *NotebookHandler) List(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.principal(w, r)
	if !ok {
		return
	}
	lst, err := h.svc.List(r.Context(), actorID)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"notebooks": lst, "count": len(lst)})
}

// Get GET /v0/notebooks/{notebookId}
func (h *NotebookHandler) Get(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.principal(w, r)
	if !ok {
		return
	}
	nb, err := h.svc.Get(r.Context(), actorID, mux.Vars(r)["notebookId"])
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, nb)
}

// Rename PATCH /v0/notebooks/{notebookId}
func (h *NotebookHandler) Rename(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.principal(w, r)
	if !ok {
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "invalid JSON")
		return
	}
	nb, err := h.svc.Rename(r.Context(), actorID, mux.Vars(r)["notebookId"], req.Name)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, nb)
}

// Delete DELETE /v0/notebooks/{notebookId}
func (h *NotebookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.principal(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), actorID, mux.Vars(r)["notebookId"]); err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Invite POST /v0/notebooks/{notebookId}/members
func (h *NotebookHandler) Invite(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.principal(w, r)
	if !ok {
		return
	}
	var req struct {
		Email string `json:"email"`
		memberFlagsReq
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "invalid JSON")
		return
	}
	if err := validate.Email(req.Email); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	m, err := h.svc.Invite(r.Context(), actorID, mux.Vars(r)["notebookId"], req.Email, req.flags())
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, m)
}

// ListMembers GET /v0/notebooks/{notebookId}/members
func (h *NotebookHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.principal(w, r)
	if !ok {
		return
	}
	lst, err := h.svc.ListMembers(r.Context(), actorID, mux.Vars(r)["notebookId"])
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"members": lst, "count": len(lst)})
}

// Respond POST /v0/notebook-invitations/{memberId}
func (h *NotebookHandler) Respond(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.principal(w, r)
	if !ok {
		return
	}
	var req struct {
		Accept bool `json:"accept"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "invalid JSON")
		return
	}
	if err := h.svc.Respond(r.Context(), actorID, mux.Vars(r)["memberId"], req.Accept); err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PendingInvites GET /v0/notebook-invitations
func (h *NotebookHandler) PendingInvites(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.principal(w, r)
	if !ok {
		return
	}
	lst, err := h.svc.PendingInvites(r.Context(), actorID)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"invitations": lst, "count": len(lst)})
}

// UpdateMember PATCH /v0/notebook-members/{memberId}
func (h *NotebookHandler) UpdateMember(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.principal(w, r)
	if !ok {
		return
	}
	var req memberFlagsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "invalid JSON")
		return
	}
	m, err := h.svc.UpdateMemberFlags(r.Context(), actorID, mux.Vars(r)["memberId"], req.flags())
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, m)
}

// RemoveMember DELETE /v0/notebook-members/{memberId}
func (h *NotebookHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.principal(w, r)
	if !ok {
		return
	}
	if err := h.svc.RemoveMember(r.Context(), actorID, mux.Vars(r)["memberId"]); err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Leave DELETE /v0/notebooks/{notebookId}/membership
func (h *NotebookHandler) Leave(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.principal(w, r)
	if !ok {
		return
	}
	if err := h.svc.Leave(r.Context(), actorID, mux.Vars(r)["notebookId"]); err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MintKey POST /v0/notebooks/{notebookId}/api-key
func (h *NotebookHandler) MintKey(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.principal(w, r)
	if !ok {
		return
	}
	var req struct {
		Permission string `json:"permission"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "invalid JSON")
		return
	}
	k, err := h.svc.MintKey(r.Context(), actorID, mux.Vars(r)["notebookId"], model.APIKeyPermission(req.Permission))
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	// The secret is returned exactly once, at mint time.
	respond.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"keyId":      k.KeyID,
		"notebookId": k.NotebookID,
		"secret":     k.Secret,
		"permission": k.Permission,
	})
}

// RevokeKey DELETE /v0/notebooks/{notebookId}/api-key
func (h *NotebookHandler) RevokeKey(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.principal(w, r)
	if !ok {
		return
	}
	if err := h.svc.RevokeKey(r.Context(), actorID, mux.Vars(r)["notebookId"]); err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
