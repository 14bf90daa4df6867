package repository

import (
	"context"
	"fmt"

	"github.com/andy/billing/internal/db"
	"github.com/andy/billing/internal/domain"
)

const clientColumns = `id, name, hourly_rate, description, email, phone, currency, conversion_rate, is_active, created_at`

// ClientRepo is a SQL implementation of ClientRepository
type ClientRepo struct {
	db *db.DB
}

// NewClientRepo creates a new ClientRepo
func NewClientRepo(database *db.DB) *ClientRepo {
	return &ClientRepo{db: database}
}

// Create inserts a new client into the database
func (r *ClientRepo) Create(ctx context.Context, client *domain.Client) error {
	if err := client.Validate(); err != nil {
		return fmt.Errorf("invalid client: %w", err)
	}

	query := `
		INSERT INTO clients (name, hourly_rate, description, email, phone, currency, conversion_rate, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		client.Name,
		client.HourlyRate,
		client.Description,
		client.Email,
		client.Phone,
		client.Currency,
		client.ConversionRate,
		client.IsActive,
		formatTime(client.CreatedAt),
	)
	if err != nil {
		return storeErr("create client", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return storeErr("get client ID", err)
	}

	client.ID = id
	return nil
}

// GetByID retrieves a client by ID
func (r *ClientRepo) GetByID(ctx context.Context, id int64) (*domain.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = ?`

	client, err := scanClient(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound("client", err)
	}
	return client, nil
}

// GetByName retrieves a client by exact name
func (r *ClientRepo) GetByName(ctx context.Context, name string) (*domain.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE name = ? ORDER BY id LIMIT 1`

	client, err := scanClient(r.db.QueryRowContext(ctx, query, name))
	if err != nil {
		return nil, notFound("client", err)
	}
	return client, nil
}

// List retrieves clients ordered by name, optionally only the active ones
func (r *ClientRepo) List(ctx context.Context, activeOnly bool) ([]*domain.Client, error) {
	query := `
		SELECT ` + clientColumns + `
		FROM clients
		WHERE is_active = 1 OR ? = 0
		ORDER BY name, id
	`

	rows, err := r.db.QueryContext(ctx, query, activeOnly)
	if err != nil {
		return nil, storeErr("list clients", err)
	}
	defer rows.Close()

	clients := make([]*domain.Client, 0)
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, storeErr("scan client", err)
		}
		clients = append(clients, client)
	}

	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate clients", err)
	}

	return clients, nil
}

// Update replaces an existing client's fields
func (r *ClientRepo) Update(ctx context.Context, client *domain.Client) error {
	if err := client.Validate(); err != nil {
		return fmt.Errorf("invalid client: %w", err)
	}

	query := `
		UPDATE clients
		SET name = ?, hourly_rate = ?, description = ?, email = ?, phone = ?,
		    currency = ?, conversion_rate = ?, is_active = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		client.Name,
		client.HourlyRate,
		client.Description,
		client.Email,
		client.Phone,
		client.Currency,
		client.ConversionRate,
		client.IsActive,
		client.ID,
	)
	if err != nil {
		return storeErr("update client", err)
	}

	return requireAffected(result, domain.ErrConflict, fmt.Sprintf("client %d", client.ID))
}

// Delete removes a client; its tasks go with it
func (r *ClientRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM clients WHERE id = ?`, id)
	if err != nil {
		return storeErr("delete client", err)
	}
	return requireAffected(result, domain.ErrNotFound, fmt.Sprintf("client %d", id))
}

func scanClient(row scanner) (*domain.Client, error) {
	client := &domain.Client{}
	var createdAt string

	err := row.Scan(
		&client.ID,
		&client.Name,
		&client.HourlyRate,
		&client.Description,
		&client.Email,
		&client.Phone,
		&client.Currency,
		&client.ConversionRate,
		&client.IsActive,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	if client.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	return client, nil
}
