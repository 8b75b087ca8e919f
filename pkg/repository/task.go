package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/umputun/newswatch/pkg/domain"
)

// TaskRepository handles task-related database operations
type TaskRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

// taskSQL represents a task for SQL operations
type taskSQL struct {
	ID           int64     `db:"id"`
	OwnerContact string    `db:"owner_contact"`
	Description  string    `db:"description"`
	SourceType   string    `db:"source_type"`
	SourceTarget string    `db:"source_target"`
	Criterion    string    `db:"current_criterion"`
	Status       string    `db:"status"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *sqlx.DB) *TaskRepository {
	return &TaskRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// CreateTask inserts a new task, status defaults to active
func (r *TaskRepository) CreateTask(ctx context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	if task.Status == "" {
		task.Status = domain.StatusActive
	}

	now := r.now()
	row := &taskSQL{
		OwnerContact: task.OwnerContact,
		Description:  task.Description,
		SourceType:   string(task.SourceType),
		SourceTarget: task.SourceTarget,
		Criterion:    strings.TrimSpace(task.Criterion),
		Status:       string(task.Status),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	query := `
		INSERT INTO tasks (owner_contact, description, source_type, source_target, current_criterion, status, created_at, updated_at)
		VALUES (:owner_contact, :description, :source_type, :source_target, :current_criterion, :status, :created_at, :updated_at)
	`
	var id int64
	err := withLockRetry(ctx, func() error {
		result, err := r.db.NamedExecContext(ctx, query, row)
		if err != nil {
			return err
		}
		id, err = result.LastInsertId()
		return err
	})
	if err != nil {
		return storeErr("create task", err)
	}

	task.ID = id
	task.Criterion = row.Criterion
	task.CreatedAt = now
	task.UpdatedAt = now
	return nil
}

// GetTask retrieves a task by ID
func (r *TaskRepository) GetTask(ctx context.Context, id int64) (*domain.Task, error) {
	var row taskSQL
	err := r.db.GetContext(ctx, &row, "SELECT * FROM tasks WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get task %d: %w", id, domain.ErrTaskNotFound)
	}
	if err != nil {
		return nil, storeErr(fmt.Sprintf("get task %d", id), err)
	}
	return row.toDomain(), nil
}

// ListTasks returns tasks with any of the given statuses, all tasks if none given
func (r *TaskRepository) ListTasks(ctx context.Context, statuses ...domain.TaskStatus) ([]domain.Task, error) {
	query := "SELECT * FROM tasks"
	var args []interface{}
	if len(statuses) > 0 {
		values := make([]string, len(statuses))
		for i, st := range statuses {
			values[i] = string(st)
		}
		var err error
		query, args, err = sqlx.In("SELECT * FROM tasks WHERE status IN (?)", values)
		if err != nil {
			return nil, fmt.Errorf("build list query: %w", err)
		}
	}
	query += " ORDER BY id"

	var rows []taskSQL
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, storeErr("list tasks", err)
	}

	tasks := make([]domain.Task, len(rows))
	for i := range rows {
		tasks[i] = *rows[i].toDomain()
	}
	return tasks, nil
}

// ListActiveTasks returns all tasks that should be scraped
func (r *TaskRepository) ListActiveTasks(ctx context.Context) ([]domain.Task, error) {
	return r.ListTasks(ctx, domain.StatusActive)
}

// UpdateCriterion replaces the whole criterion of a task in a single-row write and bumps updated_at.
// Concurrent updates are last-write-wins. Deleted tasks are not updated.
func (r *TaskRepository) UpdateCriterion(ctx context.Context, id int64, criterion string) error {
	criterion = strings.TrimSpace(criterion)
	if criterion == "" {
		return fmt.Errorf("update criterion of task %d: empty criterion: %w", id, domain.ErrValidation)
	}

	query := `UPDATE tasks SET current_criterion = ?, updated_at = ? WHERE id = ? AND status != 'deleted'`
	err := withLockRetry(ctx, func() error {
		result, err := r.db.ExecContext(ctx, query, criterion, r.now(), id)
		if err != nil {
			return err
		}
		return r.checkAffected(result, id)
	})
	if errors.Is(err, domain.ErrTaskNotFound) {
		return fmt.Errorf("update criterion: %w", err)
	}
	if err != nil {
		return storeErr(fmt.Sprintf("update criterion of task %d", id), err)
	}
	return nil
}

// UpdateStatus changes the lifecycle status of a task and bumps updated_at
func (r *TaskRepository) UpdateStatus(ctx context.Context, id int64, status domain.TaskStatus) error {
	if !status.Valid() {
		return fmt.Errorf("update status of task %d: unknown status %q: %w", id, status, domain.ErrValidation)
	}

	query := `UPDATE tasks SET status = ?, updated_at = ? WHERE id = ?`
	err := withLockRetry(ctx, func() error {
		result, err := r.db.ExecContext(ctx, query, string(status), r.now(), id)
		if err != nil {
			return err
		}
		return r.checkAffected(result, id)
	})
	if errors.Is(err, domain.ErrTaskNotFound) {
		return fmt.Errorf("update status: %w", err)
	}
	if err != nil {
		return storeErr(fmt.Sprintf("update status of task %d", id), err)
	}
	return nil
}

// DeleteTask marks a task deleted, the row stays for audit
func (r *TaskRepository) DeleteTask(ctx context.Context, id int64) error {
	return r.UpdateStatus(ctx, id, domain.StatusDeleted)
}

func (r *TaskRepository) checkAffected(result sql.Result, id int64) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("task %d: %w", id, domain.ErrTaskNotFound)
	}
	return nil
}

// toDomain converts taskSQL to domain.Task
func (t *taskSQL) toDomain() *domain.Task {
	return &domain.Task{
		ID:           t.ID,
		OwnerContact: t.OwnerContact,
		Description:  t.Description,
		SourceType:   domain.SourceType(t.SourceType),
		SourceTarget: t.SourceTarget,
		Criterion:    t.Criterion,
		Status:       domain.TaskStatus(t.Status),
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}
