package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/noteloft/noteloft-server/internal/model"
	"github.com/noteloft/noteloft-server/internal/share"
	"github.com/noteloft/noteloft-server/internal/store"
)

// NoteService guards every operation with the notebook checker. The owning
// notebook id is always re-derived from the stored note, never taken from the
// caller, so a spoofed parent id in a request cannot widen access.
type NoteService struct {
	store   store.Store
	checker *share.Checker
}

func NewNoteService(s store.Store, c *share.Checker) *NoteService {
	return &NoteService{store: s, checker: c}
}

func (s *NoteService) require(ctx context.Context, notebookID, actorID string, cap model.Capability) error {
	acc, err := s.checker.Require(ctx, notebookID, actorID, cap)
	if err != nil {
		return err
	}
	if !acc.Allowed {
		return model.ErrUnauthorized
	}
	return nil
}

func (s *NoteService) Create(ctx context.Context, actorID, notebookID, title, body string) (*model.Note, error) {
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("%w: title is required", model.ErrValidation)
	}
	if err := s.require(ctx, notebookID, actorID, model.CapabilityCreate); err != nil {
		return nil, err
	}
	return s.store.Notes().Create(ctx, &model.Note{NotebookID: notebookID, Title: title, Body: body})
}

func (s *NoteService) Get(ctx context.Context, actorID, noteID string) (*model.Note, error) {
	n, err := s.store.Notes().GetByID(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if err := s.require(ctx, n.NotebookID, actorID, ""); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *NoteService) List(ctx context.Context, actorID, notebookID string) ([]*model.Note, error) {
	if err := s.require(ctx, notebookID, actorID, ""); err != nil {
		return nil, err
	}
	return s.store.Notes().ListByNotebook(ctx, notebookID)
}

func (s *NoteService) Update(ctx context.Context, actorID, noteID, title, body string) (*model.Note, error) {
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("%w: title is required", model.ErrValidation)
	}
	n, err := s.store.Notes().GetByID(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if err := s.require(ctx, n.NotebookID, actorID, model.CapabilityEdit); err != nil {
		return nil, err
	}
	return s.store.Notes().Update(ctx, noteID, title, body)
}

func (s *NoteService) Delete(ctx context.Context, actorID, noteID string) error {
	n, err := s.store.Notes().GetByID(ctx, noteID)
	if err != nil {
		return err
	}
	if err := s.require(ctx, n.NotebookID, actorID, model.CapabilityDelete); err != nil {
		return err
	}
	return s.store.Notes().Delete(ctx, noteID)
}
