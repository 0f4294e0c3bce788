package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/noteloft/noteloft-server/internal/model"
	"github.com/noteloft/noteloft-server/internal/share"
	"github.com/noteloft/noteloft-server/internal/store"
)

// TaskService mirrors NoteService for the task rows of a notebook. It also
// serves the machine endpoints: a verified API key acts as the notebook
// owner, so both auth paths land on the same checks here.
type TaskService struct {
	store   store.Store
	checker *share.Checker
}

func NewTaskService(s store.Store, c *share.Checker) *TaskService {
	return &TaskService{store: s, checker: c}
}

func (s *TaskService) require(ctx context.Context, notebookID, actorID string, cap model.Capability) error {
	acc, err := s.checker.Require(ctx, notebookID, actorID, cap)
	if err != nil {
		return err
	}
	if !acc.Allowed {
		return model.ErrUnauthorized
	}
	return nil
}

func (s *TaskService) Create(ctx context.Context, actorID, notebookID, title string, due *time.Time) (*model.Task, error) {
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("%w: title is required", model.ErrValidation)
	}
	if err := s.require(ctx, notebookID, actorID, model.CapabilityCreate); err != nil {
		return nil, err
	}
	return s.store.Tasks().Create(ctx, &model.Task{NotebookID: notebookID, Title: title, DueDate: due})
}

func (s *TaskService) Get(ctx context.Context, actorID, taskID string) (*model.Task, error) {
	t, err := s.store.Tasks().GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := s.require(ctx, t.NotebookID, actorID, ""); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TaskService) List(ctx context.Context, actorID, notebookID string) ([]*model.Task, error) {
	if err := s.require(ctx, notebookID, actorID, ""); err != nil {
		return nil, err
	}
	return s.store.Tasks().ListByNotebook(ctx, notebookID)
}

func (s *TaskService) Update(ctx context.Context, actorID, taskID, title string, done bool, due *time.Time) (*model.Task, error) {
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("%w: title is required", model.ErrValidation)
	}
	t, err := s.store.Tasks().GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := s.require(ctx, t.NotebookID, actorID, model.CapabilityEdit); err != nil {
		return nil, err
	}
	t.Title = title
	t.Done = done
	t.DueDate = due
	return s.store.Tasks().Update(ctx, t)
}

func (s *TaskService) Delete(ctx context.Context, actorID, taskID string) error {
	t, err := s.store.Tasks().GetByID(ctx, taskID)
	if err != nil {
		return err
	}
	if err := s.require(ctx, t.NotebookID, actorID, model.CapabilityDelete); err != nil {
		return err
	}
	return s.store.Tasks().Delete(ctx, taskID)
}
