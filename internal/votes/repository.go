package votes

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/assembleia-vote/backend/internal/models"
)

// Repository is the pgx-backed Store implementation.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a votes repository.
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

// Participation reports enrollment and presence for the user.
func (r *Repository) Participation(ctx context.Context, eventID, userID uuid.UUID) (bool, bool, error) {
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

// MunicipalityBallot reports whether the municipality already voted and who
// cast the ballot.
func (r *Repository) MunicipalityBallot(ctx context.Context, eventID, municipalityID uuid.UUID) (models.MunicipalityBallot, error) {
	var b models.MunicipalityBallot
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(MIN(u.name), '')
		FROM votes v
		JOIN users u ON u.id = v.user_id
		WHERE v.event_id = $1 AND v.municipality_id = $2`, eventID, municipalityID).
		Scan(&b.Count, &b.VoterName)
	if err != nil {
		return b, err
	}
	b.Voted = b.Count > 0
	if !b.Voted {
		b.VoterName = ""
	}
	return b, nil
}

// MunicipalityWeight returns the municipality's current weight.
func (r *Repository) MunicipalityWeight(ctx context.Context, municipalityID uuid.UUID) (float64, error) {
	var w float64
	err := r.pool.QueryRow(ctx,
		`SELECT weight FROM municipalities WHERE id = $1`, municipalityID).Scan(&w)
	return w, err
}

// InsertBallot records all rows of one ballot in a single transaction. The
// unique index on (event_id, municipality_id, selection_index) turns a
// concurrent duplicate into ErrDuplicateBallot.
func (r *Repository) InsertBallot(ctx context.Context, ballot []models.Vote) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, v := range ballot {
		_, err := tx.Exec(ctx, `
			INSERT INTO votes
				(event_id, user_id, municipality_id, option, selection_index, weight, cast_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			v.EventID, v.UserID, v.MunicipalityID, v.Option, v.SelectionIndex, v.Weight, v.CastAt)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return ErrDuplicateBallot
			}
			return err
		}
	}
	return tx.Commit(ctx)
}
