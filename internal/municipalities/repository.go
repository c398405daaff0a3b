package municipalities

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/assembleia-vote/backend/internal/models"
)

// Repository handles municipality persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a municipalities repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns all municipalities ordered by name.
func (r *Repository) List(ctx context.Context) ([]models.Municipality, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, weight, created_at, updated_at FROM municipalities ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Municipality
	for rows.Next() {
		var m models.Municipality
		if err := rows.Scan(&m.ID, &m.Name, &m.Weight, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// GetByID returns a municipality by ID, or nil when none exists.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Municipality, error) {
	var m models.Municipality
	err := r.pool.QueryRow(ctx, `SELECT id, name, weight, created_at, updated_at FROM municipalities WHERE id = $1`, id).
		Scan(&m.ID, &m.Name, &m.Weight, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// UpdateWeight sets a municipality's weight. Votes already cast keep the
// snapshot taken at cast time.
func (r *Repository) UpdateWeight(ctx context.Context, id uuid.UUID, weight float64) (*models.Municipality, error) {
	var m models.Municipality
	err := r.pool.QueryRow(ctx,
		`UPDATE municipalities SET weight = $1, updated_at = NOW() WHERE id = $2
		RETURNING id, name, weight, created_at, updated_at`, weight, id).
		Scan(&m.ID, &m.Name, &m.Weight, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}
