package server

import (
	"context"

	"github.com/umputun/newswatch/pkg/domain"
	"github.com/umputun/newswatch/pkg/repository"
)

// RepositoryAdapter adapts repositories to server.Database interface
type RepositoryAdapter struct {
	repos *repository.Repositories
}

// NewRepositoryAdapter creates a new repository adapter
func NewRepositoryAdapter(repos *repository.Repositories) *RepositoryAdapter {
	return &RepositoryAdapter{repos: repos}
}

// CreateTask creates a task
func (r *RepositoryAdapter) CreateTask(ctx context.Context, task *domain.Task) error {
	return r.repos.Task.CreateTask(ctx, task)
}

// GetTask returns a task by id
func (r *RepositoryAdapter) GetTask(ctx context.Context, id int64) (*domain.Task, error) {
	return r.repos.Task.GetTask(ctx, id)
}

// ListTasks returns tasks with the given statuses, all if none given
func (r *RepositoryAdapter) ListTasks(ctx context.Context, statuses ...domain.TaskStatus) ([]domain.Task, error) {
	return r.repos.Task.ListTasks(ctx, statuses...)
}

// UpdateStatus changes task status
func (r *RepositoryAdapter) UpdateStatus(ctx context.Context, id int64, status domain.TaskStatus) error {
	return r.repos.Task.UpdateStatus(ctx, id, status)
}

// DeleteTask soft-deletes a task
func (r *RepositoryAdapter) DeleteTask(ctx context.Context, id int64) error {
	return r.repos.Task.DeleteTask(ctx, id)
}

// SeenCount returns the number of dedup records of the task
func (r *RepositoryAdapter) SeenCount(ctx context.Context, taskID int64) (int64, error) {
	return r.repos.Dedup.Count(ctx, taskID)
}

// PurgeSeen removes dedup records of the task
func (r *RepositoryAdapter) PurgeSeen(ctx context.Context, taskID int64) (int64, error) {
	return r.repos.Dedup.PurgeTask(ctx, taskID)
}

// Ping checks the database connection
func (r *RepositoryAdapter) Ping(ctx context.Context) error {
	return r.repos.Ping(ctx)
}
