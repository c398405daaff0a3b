package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/assembleia-vote/backend/internal/models"
)

// Repository handles user persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an auth repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `u.id, u.cpf, u.name, COALESCE(u.password_hash, ''), u.role, u.municipality_id,
	COALESCE(m.name, ''), COALESCE(m.weight, 0), u.active, u.created_at, u.updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.CPF, &u.Name, &u.Password, &u.Role, &u.MunicipalityID,
		&u.MunicipalityName, &u.Weight, &u.Active, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByID returns a user by ID with municipality name and current weight.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users u
		LEFT JOIN municipalities m ON u.municipality_id = m.id WHERE u.id = $1`
	return scanUser(r.pool.QueryRow(ctx, q, id))
}

// GetActiveByCPF returns an active user by CPF, or nil when none matches.
func (r *Repository) GetActiveByCPF(ctx context.Context, cpf string) (*models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users u
		LEFT JOIN municipalities m ON u.municipality_id = m.id WHERE u.cpf = $1 AND u.active`
	u, err := scanUser(r.pool.QueryRow(ctx, q, cpf))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return u, err
}

// List returns all users ordered by name, for e.g. event enrollment.
func (r *Repository) List(ctx context.Context) ([]models.UserPublic, error) {
	q := `SELECT u.id, u.cpf, u.name, u.role, u.municipality_id,
		COALESCE(m.name, ''), COALESCE(m.weight, 0), u.active, u.created_at
		FROM users u LEFT JOIN municipalities m ON u.municipality_id = m.id
		ORDER BY u.name`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.UserPublic
	for rows.Next() {
		var u models.UserPublic
		if err := rows.Scan(&u.ID, &u.CPF, &u.Name, &u.Role, &u.MunicipalityID,
			&u.MunicipalityName, &u.Weight, &u.Active, &u.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, u)
	}
	return list, rows.Err()
}

// EnsureAdmin creates the bootstrap administrator when no user holds that CPF.
func (r *Repository) EnsureAdmin(ctx context.Context, cpf, name, passwordHash string) error {
	const q = `INSERT INTO users (cpf, name, password_hash, role, active)
		VALUES ($1, $2, $3, 'ADMIN', TRUE)
		ON CONFLICT (cpf) DO NOTHING`
	_, err := r.pool.Exec(ctx, q, cpf, name, passwordHash)
	return err
}
