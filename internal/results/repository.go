package results

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

// NewRepository creates a results repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetEvent returns the event, or nil when it does not exist.
func (r *Repository) GetEvent(ctx context.Context, eventID uuid.UUID) (*models.VotingEvent, error) {
	var e models.VotingEvent
	err := r.pool.QueryRow(ctx, `
		SELECT id, title, description, voting_type, options, multiple,
			max_selections, starts_at, ends_at, min_quorum_pct, status,
			created_by, created_at, updated_at
		FROM voting_events WHERE id = $1`, eventID).Scan(
		&e.ID, &e.Title, &e.Description, &e.VotingType, &e.Options, &e.Multiple,
		&e.MaxSelections, &e.StartsAt, &e.EndsAt, &e.MinQuorumPct, &e.Status,
		&e.CreatedBy, &e.CreatedAt, &e.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// OptionAggregates returns per-option counts and weight sums. The unique
// index guarantees one row per (municipality, option), so plain COUNT and
// SUM already aggregate distinct municipalities.
func (r *Repository) OptionAggregates(ctx context.Context, eventID uuid.UUID) ([]OptionAggregate, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT option, COUNT(*), COALESCE(SUM(weight), 0)
		FROM votes
		WHERE event_id = $1
		GROUP BY option`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var aggregates []OptionAggregate
	for rows.Next() {
		var a OptionAggregate
		if err := rows.Scan(&a.Option, &a.Municipalities, &a.Weight); err != nil {
			return nil, err
		}
		aggregates = append(aggregates, a)
	}
	return aggregates, rows.Err()
}

// Totals returns event-wide counts. A multi-select ballot contributes its
// municipality's weight once to TotalWeight.
func (r *Repository) Totals(ctx context.Context, eventID uuid.UUID) (VoteTotals, error) {
	var t VoteTotals
	err := r.pool.QueryRow(ctx, `
		SELECT
			COALESCE((SELECT COUNT(*) FROM (
				SELECT municipality_id FROM votes WHERE event_id = $1 GROUP BY municipality_id
			) mv), 0),
			COALESCE((SELECT SUM(w) FROM (
				SELECT MAX(weight) AS w FROM votes WHERE event_id = $1 GROUP BY municipality_id
			) mw), 0),
			COALESCE((SELECT COUNT(DISTINCT u.municipality_id)
				FROM participations p
				JOIN users u ON u.id = p.user_id
				WHERE p.event_id = $1 AND u.municipality_id IS NOT NULL), 0)`,
		eventID).Scan(&t.MunicipalitiesVoted, &t.TotalWeight, &t.EnrolledMunicipalities)
	return t, err
}
