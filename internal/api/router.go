package api

import (
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/noteloft/noteloft-server/internal/api/recovery"
	"github.com/noteloft/noteloft-server/internal/auth"
	"github.com/noteloft/noteloft-server/internal/secrets"
	"github.com/noteloft/noteloft-server/internal/services"
	"github.com/noteloft/noteloft-server/internal/store"
)

// NewRouter wires the services and registers all /v0 routes.
func NewRouter(st store.Store, sessions *auth.Sessions, enc *secrets.Encryptor, db Pinger, log zerolog.Logger) *mux.Router {
	router := mux.NewRouter()
	router.Use(recovery.Middleware)

	userSvc := services.NewUserService(st)
	notebookSvc := services.NewNotebookService(st)
	noteSvc := services.NewNoteService(st, notebookSvc.Checker())
	taskSvc := services.NewTaskService(st, notebookSvc.Checker())
	groupSvc := services.NewVaultGroupService(st)
	entrySvc := services.NewVaultEntryService(st, groupSvc.Checker(), enc, log)

	authH := NewAuthHandler(userSvc, sessions)
	notebookH := NewNotebookHandler(notebookSvc, authH.principal)
	noteH := NewNoteHandler(noteSvc, authH.principal)
	taskH := NewTaskHandler(taskSvc, authH.principal)
	vaultH := NewVaultHandler(groupSvc, entrySvc, authH.principal)
	machineH := NewMachineHandler(notebookSvc, taskSvc)
	healthH := NewHealthHandler(db)

	// Health
	router.HandleFunc("/v0/health", healthH.Check).Methods("GET")
	router.HandleFunc("/v0/health/db", healthH.CheckDB).Methods("GET")

	// Auth
	router.HandleFunc("/v0/auth/register", authH.Register).Methods("POST")
	router.HandleFunc("/v0/auth/login", authH.Login).Methods("POST")
	router.HandleFunc("/v0/users/me", authH.Me).Methods("GET")

	// Notebooks
	router.HandleFunc("/v0/notebooks", notebookH.Create).Methods("POST")
	router.HandleFunc("/v0/notebooks", notebookH.List).Methods("GET")
	router.HandleFunc("/v0/notebooks/{notebookId}", notebookH.Get).Methods("GET")
	router.HandleFunc("/v0/notebooks/{notebookId}", notebookH.Rename).Methods("PATCH")
	router.HandleFunc("/v0/notebooks/{notebookId}", notebookH.Delete).Methods("DELETE")
	router.HandleFunc("/v0/notebooks/{notebookId}/members", notebookH.Invite).Methods("POST")
	router.HandleFunc("/v0/notebooks/{notebookId}/members", notebookH.ListMembers).Methods("GET")
	router.HandleFunc("/v0/notebooks/{notebookId}/membership", notebookH.Leave).Methods("DELETE")
	router.HandleFunc("/v0/notebooks/{notebookId}/api-key", notebookH.MintKey).Methods("POST")
	router.HandleFunc("/v0/notebooks/{notebookId}/api-key", notebookH.RevokeKey).Methods("DELETE")
	router.HandleFunc("/v0/notebook-invitations", notebookH.PendingInvites).Methods("GET")
	router.HandleFunc("/v0/notebook-invitations/{memberId}", notebookH.Respond).Methods("POST")
	router.HandleFunc("/v0/notebook-members/{memberId}", notebookH.UpdateMember).Methods("PATCH")
	router.HandleFunc("/v0/notebook-members/{memberId}", notebookH.RemoveMember).Methods("DELETE")

	// Notes
	router.HandleFunc("/v0/notebooks/{notebookId}/notes", noteH.Create).Methods("POST")
	router.HandleFunc("/v0/notebooks/{notebookId}/notes", noteH.List).Methods("GET")
	router.HandleFunc("/v0/notes/{noteId}", noteH.Get).Methods("GET")
	router.HandleFunc("/v0/notes/{noteId}", noteH.Update).Methods("PUT")
	router.HandleFunc("/v0/notes/{noteId}", noteH.Delete).Methods("DELETE")

	// Tasks
	router.HandleFunc("/v0/notebooks/{notebookId}/tasks", taskH.Create).Methods("POST")
	router.HandleFunc("/v0/notebooks/{notebookId}/tasks", taskH.List).Methods("GET")
	router.HandleFunc("/v0/tasks/{taskId}", taskH.Get).Methods("GET")
	router.HandleFunc("/v0/tasks/{taskId}", taskH.Update).Methods("PUT")
	router.HandleFunc("/v0/tasks/{taskId}", taskH.Delete).Methods("DELETE")

	// Vault groups and entries
	router.HandleFunc("/v0/vault-groups", vaultH.CreateGroup).Methods("POST")
	router.HandleFunc("/v0/vault-groups", vaultH.ListGroups).Methods("GET")
	router.HandleFunc("/v0/vault-groups/{groupId}", vaultH.GetGroup).Methods("GET")
	router.HandleFunc("/v0/vault-groups/{groupId}", vaultH.RenameGroup).Methods("PATCH")
	router.HandleFunc("/v0/vault-groups/{groupId}", vaultH.DeleteGroup).Methods("DELETE")
	router.HandleFunc("/v0/vault-groups/{groupId}/members", vaultH.Invite).Methods("POST")
	router.HandleFunc("/v0/vault-groups/{groupId}/members", vaultH.ListMembers).Methods("GET")
	router.HandleFunc("/v0/vault-groups/{groupId}/membership", vaultH.Leave).Methods("DELETE")
	router.HandleFunc("/v0/vault-groups/{groupId}/entries", vaultH.CreateEntry).Methods("POST")
	router.HandleFunc("/v0/vault-groups/{groupId}/entries", vaultH.ListEntries).Methods("GET")
	router.HandleFunc("/v0/vault-entries/{entryId}", vaultH.GetEntry).Methods("GET")
	router.HandleFunc("/v0/vault-entries/{entryId}", vaultH.UpdateEntry).Methods("PUT")
	router.HandleFunc("/v0/vault-entries/{entryId}", vaultH.DeleteEntry).Methods("DELETE")
	router.HandleFunc("/v0/vault-invitations", vaultH.PendingInvites).Methods("GET")
	router.HandleFunc("/v0/vault-invitations/{memberId}", vaultH.Respond).Methods("POST")
	router.HandleFunc("/v0/vault-members/{memberId}", vaultH.UpdateMember).Methods("PATCH")
	router.HandleFunc("/v0/vault-members/{memberId}", vaultH.RemoveMember).Methods("DELETE")

	// Machine integrations, authenticated by per-notebook API key
	router.HandleFunc("/v0/machine/notebooks/{notebookId}/tasks", machineH.ListTasks).Methods("GET")
	router.HandleFunc("/v0/machine/notebooks/{notebookId}/tasks", machineH.CreateTask).Methods("POST")

	return router
}
