package repository

import (
	"context"
	"fmt"
	"strconv"

	"github.com/andy/billing/internal/db"
	"github.com/andy/billing/internal/domain"
)

const taskSelect = `
	SELECT t.id, t.client_id, t.task_date, t.task_link, t.description, t.hours_worked, t.created_at,
	       c.id, c.name, c.hourly_rate, c.description, c.email, c.phone, c.currency, c.conversion_rate, c.is_active, c.created_at
	FROM tasks t
	JOIN clients c ON c.id = t.client_id
`

// TaskRepo is a SQL implementation of TaskRepository
type TaskRepo struct {
	db *db.DB
}

// NewTaskRepo creates a new TaskRepo
func NewTaskRepo(database *db.DB) *TaskRepo {
	return &TaskRepo{db: database}
}

// Create inserts a new task
func (r *TaskRepo) Create(ctx context.Context, task *domain.WorkTask) error {
	if err := task.Validate(); err != nil {
		return fmt.Errorf("invalid task: %w", err)
	}
	if err := r.requireClient(ctx, task.ClientID); err != nil {
		return err
	}

	query := `
		INSERT INTO tasks (client_id, task_date, task_link, description, hours_worked, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		task.ClientID,
		formatDate(task.TaskDate),
		task.TaskLink,
		task.Description,
		task.HoursWorked,
		formatTime(task.CreatedAt),
	)
	if err != nil {
		return storeErr("create task", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return storeErr("get task ID", err)
	}

	task.ID = id
	return nil
}

// GetByID retrieves a task with its client
func (r *TaskRepo) GetByID(ctx context.Context, id int64) (*domain.WorkTask, error) {
	task, err := scanTask(r.db.QueryRowContext(ctx, taskSelect+` WHERE t.id = ?`, id))
	if err != nil {
		return nil, notFound("task", err)
	}
	return task, nil
}

// List retrieves tasks matching the filter, newest task date first
func (r *TaskRepo) List(ctx context.Context, filter domain.TaskFilter) ([]*domain.WorkTask, error) {
	query := taskSelect + ` WHERE 1=1`
	args := []any{}

	if filter.ClientID > 0 {
		query += " AND t.client_id = ?"
		args = append(args, filter.ClientID)
	}

	start, end := filter.Window()
	if start != nil {
		query += " AND t.task_date >= ?"
		args = append(args, formatDate(*start))
	}
	if end != nil {
		query += " AND t.task_date <= ?"
		args = append(args, formatDate(*end))
	}

	query += " ORDER BY t.task_date DESC, t.created_at DESC, t.id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr("list tasks", err)
	}
	defer rows.Close()

	tasks := make([]*domain.WorkTask, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, storeErr("scan task", err)
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate tasks", err)
	}

	return tasks, nil
}

// Update replaces an existing task's fields
func (r *TaskRepo) Update(ctx context.Context, task *domain.WorkTask) error {
	if err := task.Validate(); err != nil {
		return fmt.Errorf("invalid task: %w", err)
	}

	// A task removed since it was read is a conflict, even when its client
	// went with it.
	var exists int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks WHERE id = ?`, task.ID).Scan(&exists)
	if err != nil {
		return storeErr("check task", err)
	}
	if exists == 0 {
		return fmt.Errorf("task %d: %w", task.ID, domain.ErrConflict)
	}

	if err := r.requireClient(ctx, task.ClientID); err != nil {
		return err
	}

	query := `
		UPDATE tasks
		SET client_id = ?, task_date = ?, task_link = ?, description = ?, hours_worked = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		task.ClientID,
		formatDate(task.TaskDate),
		task.TaskLink,
		task.Description,
		task.HoursWorked,
		task.ID,
	)
	if err != nil {
		return storeErr("update task", err)
	}

	return requireAffected(result, domain.ErrConflict, fmt.Sprintf("task %d", task.ID))
}

// Delete removes a task
func (r *TaskRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return storeErr("delete task", err)
	}
	return requireAffected(result, domain.ErrNotFound, fmt.Sprintf("task %d", id))
}

// Years returns the distinct task years, newest first
func (r *TaskRepo) Years(ctx context.Context) ([]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT SUBSTR(task_date, 1, 4) AS y FROM tasks ORDER BY y DESC`)
	if err != nil {
		return nil, storeErr("list task years", err)
	}
	defer rows.Close()

	years := make([]int, 0)
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, storeErr("scan task year", err)
		}
		y, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("failed to parse task year %q: %w", s, err)
		}
		years = append(years, y)
	}

	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate task years", err)
	}

	return years, nil
}

// requireClient reports a validation failure when the owning client is absent
func (r *TaskRepo) requireClient(ctx context.Context, clientID int64) error {
	var exists int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM clients WHERE id = ?`, clientID).Scan(&exists)
	if err != nil {
		return storeErr("check client", err)
	}
	if exists == 0 {
		return fmt.Errorf("invalid task: %w", &domain.ValidationError{Fields: []domain.FieldError{
			{Field: "client_id", Message: "client does not exist"},
		}})
	}
	return nil
}

func scanTask(row scanner) (*domain.WorkTask, error) {
	task := &domain.WorkTask{Client: &domain.Client{}}
	c := task.Client
	var taskDate, createdAt, clientCreatedAt string

	err := row.Scan(
		&task.ID,
		&task.ClientID,
		&taskDate,
		&task.TaskLink,
		&task.Description,
		&task.HoursWorked,
		&createdAt,
		&c.ID,
		&c.Name,
		&c.HourlyRate,
		&c.Description,
		&c.Email,
		&c.Phone,
		&c.Currency,
		&c.ConversionRate,
		&c.IsActive,
		&clientCreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if task.TaskDate, err = domain.ParseDate(taskDate); err != nil {
		return nil, fmt.Errorf("failed to parse task_date: %w", err)
	}
	if task.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if c.CreatedAt, err = parseTime(clientCreatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse client created_at: %w", err)
	}
	return task, nil
}
