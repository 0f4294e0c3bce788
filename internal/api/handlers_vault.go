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

// VaultHandler serves vault groups, their sharing lifecycle and entries.
// Entry passwords arrive and leave as plaintext over TLS; at rest they only
// exist encrypted.
type VaultHandler struct {
	groups    *services.VaultGroupService
	entries   *services.VaultEntryService
	principal principalFn
}

func NewVaultHandler(groups *services.VaultGroupService, entries *services.VaultEntryService, p principalFn) *VaultHandler {
	return &VaultHandler{groups: groups, entries: entries, principal: p}
}

// CreateGroup POST /v0/vault-groups
func (h *VaultHandler) CreateGroup(w http.ResponseWriter, r *http.Request) {
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
	g, err := h.groups.Create(r.Context(), actorID, req.Name)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, g)
}

// ListGroups GET /v0/vault-groups
func (h *VaultHandler) ListGroups(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.principal(w, r)
	if !ok {
		return
	}
	lst, err := h.groups.List(r.Context(), actorID)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"groups": lst, "count": len(lst)})
}

// GetGroup GET /v0/vault-groups/{groupId}
func (h *VaultHandler) GetGroup(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.principal(w, r)
	if !ok {
		return
	}
	g, err := h.groups.Get(r.Context(), actorID, mux.Vars(r)["groupId"])
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, g)
}

// RenameGroup PATCH /v0/vault-groups/{groupId}
func (h *VaultHandler) RenameGroup(w http.ResponseWriter, r *http.Request) {
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
	g, err := h.groups.Rename(r.Context(), actorID, mux.Vars(r)["groupId"], req.Name)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, g)
}

// DeleteGroup DELETE /v0/vault-groups/{groupId}
func (h *VaultHandler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.principal(w, r)
	if !ok {
		return
	}
	if err := h.groups.Delete(r.Context(), actorID, mux.Vars(r)["groupId"]); err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Invite POST /v0/vault-groups/{groupId}/members
func (h *VaultHandler) Invite(w http.ResponseWriter, r *http.Request) {
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
	m, err := h.groups.Invite(r.Context(), actorID, mux.Vars(r)["groupId"], req.Email, req.flags())
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, m)
}

// ListMembers GET /v0/vault-groups/{groupId}/members
func (h *VaultHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.principal(w, r)
	if !ok {
		return
	}
	lst, err := h.groups.ListMembers(r.Context(), actorID, mux.Vars(r)["groupId"])
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"members": lst, "count": len(lst)})
}

// Respond POST /v0/vault-invitations/{memberId}
func (h *VaultHandler) Respond(w http.ResponseWriter, r *http.Request) {
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
	if err := h.groups.Respond(r.Context(), actorID, mux.Vars(r)["memberId"], req.Accept); err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PendingInvites GET /v0/vault-invitations
func (h *VaultHandler) PendingInvites(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.principal(w, r)
	if !ok {
		return
	}
	lst, err := h.groups.PendingInvites(r.Context(), actorID)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"invitations": lst, "count": len(lst)})
}

// UpdateMember PATCH /v0/vault-members/{memberId}
func (h *VaultHandler) UpdateMember(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.principal(w, r)
	if !ok {
		return
	}
	var req memberFlagsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "invalid JSON")
		return
	}
	m, err := h.groups.UpdateMemberFlags(r.Context(), actorID, mux.Vars(r)["memberId"], req.flags())
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, m)
}

// RemoveMember DELETE /v0/vault-members/{memberId}
func (h *VaultHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.principal(w, r)
	if !ok {
		return
	}
	if err := h.groups.RemoveMember(r.Context(), actorID, mux.Vars(r)["memberId"]); err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Leave DELETE /v0/vault-groups/{groupId}/membership
func (h *VaultHandler) Leave(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.principal(w, r)
	if !ok {
		return
	}
	if err := h.groups.Leave(r.Context(), actorID, mux.Vars(r)["groupId"]); err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type vaultEntryReq struct {
	Title    string  `json:"title"`
	Username string  `json:"username"`
	Password string  `json:"password"`
	URL      *string `json:"url"`
	Notes    *string `json:"notes"`
}

// CreateEntry POST /v0/vault-groups/{groupId}/entries
func (h *VaultHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.principal(w, r)
	if !ok {
		return
	}
	var req vaultEntryReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "invalid JSON")
		return
	}
	e, err := h.entries.Create(r.Context(), actorID, &model.VaultEntry{
		GroupID:  mux.Vars(r)["groupId"],
		Title:    req.Title,
		Username: req.Username,
		Password: req.Password,
		URL:      req.URL,
		Notes:    req.Notes,
	})
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, e)
}

// ListEntries GET /v0/vault-groups/{groupId}/entries
func (h *VaultHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.principal(w, r)
	if !ok {
		return
	}
	lst, err := h.entries.List(r.Context(), actorID, mux.Vars(r)["groupId"])
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"entries": lst, "count": len(lst)})
}

// GetEntry GET /v0/vault-entries/{entryId}
func (h *VaultHandler) GetEntry(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.principal(w, r)
	if !ok {
		return
	}
	e, err := h.entries.Get(r.Context(), actorID, mux.Vars(r)["entryId"])
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, e)
}

// UpdateEntry PUT /v0/vault-entries/{entryId}
func (h *VaultHandler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.principal(w, r)
	if !ok {
		return
	}
	var req vaultEntryReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "invalid JSON")
		return
	}
	e, err := h.entries.Update(r.Context(), actorID, &model.VaultEntry{
		EntryID:  mux.Vars(r)["entryId"],
		Title:    req.Title,
		Username: req.Username,
		Password: req.Password,
		URL:      req.URL,
		Notes:    req.Notes,
	})
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, e)
}

// DeleteEntry DELETE /v0/vault-entries/{entryId}
func (h *VaultHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.principal(w, r)
	if !ok {
		return
	}
	if err := h.entries.Delete(r.Context(), actorID, mux.Vars(r)["entryId"]); err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
