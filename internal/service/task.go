package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"taskhub/internal/domain"
	"taskhub/internal/logger"
	"taskhub/internal/repository"

	"github.com/google/uuid"
)

// TaskRepository is the durable store gateway the orchestrator writes
// through. It is the single source of truth for tasks.
type TaskRepository interface {
	Create(ctx context.Context, t *domain.Task) error
	FindAll(ctx context.Context, userID uuid.UUID) ([]domain.Task, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	Update(ctx context.Context, t *domain.Task) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// TaskCache is the advisory per-user list cache. Its failures never
// fail an operation.
type TaskCache interface {
	Get(ctx context.Context, userID uuid.UUID) ([]domain.Task, bool, error)
	Set(ctx context.Context, userID uuid.UUID, tasks []domain.Task) error
	Invalidate(ctx context.Context, userID uuid.UUID) error
}

// Broadcaster fans a task change event out to the owner's live
// connections. Fire and forget.
type Broadcaster interface {
	Publish(userID uuid.UUID, event string, task *domain.Task)
}

// TaskService orchestrates the store, the read cache and the
// broadcaster. The ordering contract for every mutation is fixed:
// store write, then cache refresh, then publish. A store failure
// stops the operation with no side effects; a cache failure is
// logged and the operation still succeeds.
type TaskService struct {
	repo        TaskRepository
	cache       TaskCache
	broadcaster Broadcaster
}

func NewTaskService(repo TaskRepository, cache TaskCache, broadcaster Broadcaster) *TaskService {
	if repo == nil || cache == nil || broadcaster == nil {
		// wiring bug, not a runtime condition: fail at startup
		panic("service: TaskService requires repo, cache and broadcaster")
	}
	return &TaskService{repo: repo, cache: cache, broadcaster: broadcaster}
}

func (s *TaskService) Create(ctx context.Context, ownerID uuid.UUID, in domain.CreateTaskInput) (*domain.Task, error) {
	if ownerID == uuid.Nil {
		return nil, fmt.Errorf("%w: owner is required", ErrInvalidInput)
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}

	task := &domain.Task{
		UserID:      ownerID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
	}
	if err := s.repo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	s.refreshCache(ctx, ownerID)
	s.broadcaster.Publish(ownerID, domain.EventTaskCreated, task)
	return task, nil
}

// GetAll returns the owner's tasks, serving from the cache when a live
// entry exists. On a miss it reads the store and repopulates the cache
// so repeat reads within the TTL stay cheap.
func (s *TaskService) GetAll(ctx context.Context, ownerID uuid.UUID) ([]domain.Task, error) {
	if ownerID == uuid.Nil {
		return nil, fmt.Errorf("%w: owner is required", ErrInvalidInput)
	}

	if tasks, ok, err := s.cache.Get(ctx, ownerID); err != nil {
		logger.Warn("task cache read failed", "user_id", ownerID, "error", err)
	} else if ok {
		return tasks, nil
	}

	tasks, err := s.repo.FindAll(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	if err := s.cache.Set(ctx, ownerID, tasks); err != nil {
		logger.Warn("task cache write failed", "user_id", ownerID, "error", err)
	}
	return tasks, nil
}

// GetByID fetches one task and asserts the caller owns it.
func (s *TaskService) GetByID(ctx context.Context, callerID, id uuid.UUID) (*domain.Task, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("%w: id is required", ErrInvalidInput)
	}

	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("find task: %w", err)
	}
	if task.UserID != callerID {
		return nil, ErrNotOwner
	}
	return task, nil
}

func (s *TaskService) Update(ctx context.Context, callerID, id uuid.UUID, in domain.UpdateTaskInput) (*domain.Task, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("%w: id is required", ErrInvalidInput)
	}
	if in.Empty() {
		return nil, fmt.Errorf("%w: no fields to update", ErrInvalidInput)
	}
	if in.Title != nil && strings.TrimSpace(*in.Title) == "" {
		return nil, fmt.Errorf("%w: title must not be blank", ErrInvalidInput)
	}

	task, err := s.GetByID(ctx, callerID, id)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		task.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		task.Description = *in.Description
	}
	if in.Completed != nil {
		task.Completed = *in.Completed
	}

	if err := s.repo.Update(ctx, task); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("update task: %w", err)
	}

	s.refreshCache(ctx, task.UserID)
	s.broadcaster.Publish(task.UserID, domain.EventTaskUpdated, task)
	return task, nil
}

// Delete looks the task up first to learn its owner, then deletes,
// invalidates the owner's cache entry and publishes the deletion.
func (s *TaskService) Delete(ctx context.Context, callerID, id uuid.UUID) error {
	if id == uuid.Nil {
		return fmt.Errorf("%w: id is required", ErrInvalidInput)
	}

	task, err := s.GetByID(ctx, callerID, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("delete task: %w", err)
	}

	// cache is keyed by the owner, not the task
	if err := s.cache.Invalidate(ctx, task.UserID); err != nil {
		logger.Warn("task cache invalidate failed", "user_id", task.UserID, "error", err)
	}
	s.broadcaster.Publish(task.UserID, domain.EventTaskDeleted, task)
	return nil
}

// refreshCache replaces the owner's cached list with the store's
// current view. Best effort on both the read and the write.
func (s *TaskService) refreshCache(ctx context.Context, ownerID uuid.UUID) {
	tasks, err := s.repo.FindAll(ctx, ownerID)
	if err != nil {
		logger.Warn("task cache refresh read failed", "user_id", ownerID, "error", err)
		return
	}
	if err := s.cache.Set(ctx, ownerID, tasks); err != nil {
		logger.Warn("task cache refresh write failed", "user_id", ownerID, "error", err)
	}
}
