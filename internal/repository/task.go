package repository

import (
	"context"

	"taskhub/internal/domain"
)

// TaskFilter narrows a task listing.
type TaskFilter struct {
	// VisibleTo keeps only tasks owned by or assigned to this user. Nil lists everything.
	VisibleTo *int64
	Offset    int
	Limit     int
}

// TaskRepository exposes persistence operations for Task records.
type TaskRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, task *domain.Task) (int64, error)
	Get(ctx context.Context, id int64) (*domain.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
	Update(ctx context.Context, task *domain.Task) error
	// Delete removes the task. It reports whether a row was removed; a missing
	// row is not an error.
	Delete(ctx context.Context, id int64) (bool, error)
}
