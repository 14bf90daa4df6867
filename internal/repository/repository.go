package repository

import (
	"context"

	"github.com/andy/billing/internal/domain"
)

// ClientRepository manages client persistence
type ClientRepository interface {
	Create(ctx context.Context, client *domain.Client) error
	GetByID(ctx context.Context, id int64) (*domain.Client, error)
	GetByName(ctx context.Context, name string) (*domain.Client, error)
	List(ctx context.Context, activeOnly bool) ([]*domain.Client, error)
	// Update replaces every field of an existing client. It returns
	// domain.ErrConflict when the client no longer exists.
	Update(ctx context.Context, client *domain.Client) error
	// Delete removes a client and, by cascade, all of its tasks.
	Delete(ctx context.Context, id int64) error
}

// TaskRepository manages work task persistence. Reads return tasks joined
// with their owning client.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.WorkTask) error
	GetByID(ctx context.Context, id int64) (*domain.WorkTask, error)
	// List returns matching tasks, newest task date first.
	List(ctx context.Context, filter domain.TaskFilter) ([]*domain.WorkTask, error)
	Update(ctx context.Context, task *domain.WorkTask) error
	Delete(ctx context.Context, id int64) error
	// Years returns the distinct years that have tasks, newest first.
	Years(ctx context.Context) ([]int, error)
}
