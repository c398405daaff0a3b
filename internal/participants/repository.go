package participants

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/assembleia-vote/backend/internal/models"
)

// Repository is the pgx-backed Store implementation.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a participants repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// EventQuorumPct returns the event's minimum quorum, or nil when absent.
func (r *Repository) EventQuorumPct(ctx context.Context, eventID uuid.UUID) (*float64, error) {
	var pct float64
	err := r.pool.QueryRow(ctx,
		`SELECT min_quorum_pct FROM voting_events WHERE id = $1`, eventID).Scan(&pct)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &pct, nil
}

// EnrollMany inserts roster rows, skipping duplicates. Only active non-ADMIN
// users are enrollable; others are silently skipped.
func (r *Repository) EnrollMany(ctx context.Context, eventID uuid.UUID, userIDs []uuid.UUID) error {
	batch := &pgx.Batch{}
	for _, userID := range userIDs {
		batch.Queue(`
			INSERT INTO participations (event_id, user_id)
			SELECT $1, u.id FROM users u
			WHERE u.id = $2 AND u.active AND u.role <> 'ADMIN'
			ON CONFLICT (event_id, user_id) DO NOTHING`, eventID, userID)
	}
	return r.pool.SendBatch(ctx, batch).Close()
}

// MarkPresent stamps present_at once; repeats keep the original timestamp.
func (r *Repository) MarkPresent(ctx context.Context, eventID, userID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE participations
		SET present_at = COALESCE(present_at, NOW())
		WHERE event_id = $1 AND user_id = $2`, eventID, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// Roster returns the roster joined with users and municipalities, present
// first, then by name.
func (r *Repository) Roster(ctx context.Context, eventID uuid.UUID) ([]models.Participant, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.id, p.event_id, p.user_id, p.present_at, p.created_at,
			u.name, u.cpf, u.role, u.municipality_id,
			COALESCE(m.name, ''), COALESCE(m.weight, 0)
		FROM participations p
		JOIN users u ON u.id = p.user_id
		LEFT JOIN municipalities m ON m.id = u.municipality_id
		WHERE p.event_id = $1
		ORDER BY p.present_at IS NULL, u.name`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roster []models.Participant
	for rows.Next() {
		var p models.Participant
		if err := rows.Scan(
			&p.ID, &p.EventID, &p.UserID, &p.PresentAt, &p.CreatedAt,
			&p.Name, &p.CPF, &p.Role, &p.MunicipalityID,
			&p.MunicipalityName, &p.Weight,
		); err != nil {
			return nil, err
		}
		p.Present = p.PresentAt != nil
		roster = append(roster, p)
	}
	return roster, rows.Err()
}

// Counts aggregates the raw quorum numbers. Municipality weights are counted
// once per distinct municipality.
func (r *Repository) Counts(ctx context.Context, eventID uuid.UUID) (QuorumCounts, error) {
	var c QuorumCounts
	err := r.pool.QueryRow(ctx, `
		WITH roster AS (
			SELECT p.user_id, p.present_at, u.municipality_id, m.weight
			FROM participations p
			JOIN users u ON u.id = p.user_id
			LEFT JOIN municipalities m ON m.id = u.municipality_id
			WHERE p.event_id = $1
		),
		by_municipality AS (
			SELECT municipality_id,
				MAX(weight) AS weight,
				BOOL_OR(present_at IS NOT NULL) AS present
			FROM roster
			WHERE municipality_id IS NOT NULL
			GROUP BY municipality_id
		)
		SELECT
			(SELECT COUNT(*) FROM roster),
			(SELECT COUNT(*) FROM roster WHERE present_at IS NOT NULL),
			COALESCE(SUM(weight) FILTER (WHERE present), 0),
			COALESCE(SUM(weight), 0)
		FROM by_municipality`, eventID).
		Scan(&c.TotalParticipants, &c.TotalPresent, &c.PresentWeight, &c.EnrolledWeight)
	return c, err
}

// IsPresent reports enrollment and presence for one user in one event.
func (r *Repository) IsPresent(ctx context.Context, eventID, userID uuid.UUID) (bool, bool, error) {
	var present bool
	err := r.pool.QueryRow(ctx, `
		SELECT present_at IS NOT NULL
		FROM participations
		WHERE event_id = $1 AND user_id = $2`, eventID, userID).Scan(&present)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, false, nil
	}
	if err != nil {
		return false, false, err
	}
	return true, present, nil
}
