package events

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/assembleia-vote/backend/internal/models"
)

const eventColumns = `
	e.id, e.title, e.description, e.voting_type, e.options, e.multiple,
	e.max_selections, e.starts_at, e.ends_at, e.min_quorum_pct, e.status,
	e.created_by, COALESCE(u.name, ''), e.created_at, e.updated_at`

// Repository is the pgx-backed Store implementation.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an events repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanEvent(row pgx.Row, e *models.VotingEvent) error {
	return row.Scan(
		&e.ID, &e.Title, &e.Description, &e.VotingType, &e.Options, &e.Multiple,
		&e.MaxSelections, &e.StartsAt, &e.EndsAt, &e.MinQuorumPct, &e.Status,
		&e.CreatedBy, &e.CreatorName, &e.CreatedAt, &e.UpdatedAt,
	)
}

// Create inserts the event and fills the generated ID and timestamps.
func (r *Repository) Create(ctx context.Context, e *models.VotingEvent) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO voting_events
			(title, description, voting_type, options, multiple, max_selections,
			 starts_at, ends_at, min_quorum_pct, status, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at`,
		e.Title, e.Description, e.VotingType, e.Options, e.Multiple, e.MaxSelections,
		e.StartsAt, e.EndsAt, e.MinQuorumPct, e.Status, e.CreatedBy,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
}

// Get returns an event by ID, or nil when none exists.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*models.VotingEvent, error) {
	var e models.VotingEvent
	err := scanEvent(r.pool.QueryRow(ctx, `
		SELECT `+eventColumns+`
		FROM voting_events e
		LEFT JOIN users u ON u.id = e.created_by
		WHERE e.id = $1`, id), &e)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// List returns all events newest first, annotated with roster counters and
// how many municipalities have already voted.
func (r *Repository) List(ctx context.Context) ([]models.EventSummary, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+eventColumns+`,
			COALESCE(p.total, 0), COALESCE(p.present, 0), COALESCE(p.present_weight, 0),
			COALESCE(v.voted, 0)
		FROM voting_events e
		LEFT JOIN users u ON u.id = e.created_by
		LEFT JOIN (
			SELECT pa.event_id,
				COUNT(*) AS total,
				COUNT(pa.present_at) AS present,
				COALESCE(SUM(m.weight) FILTER (WHERE pa.present_at IS NOT NULL), 0) AS present_weight
			FROM participations pa
			JOIN users pu ON pu.id = pa.user_id
			LEFT JOIN municipalities m ON m.id = pu.municipality_id
			GROUP BY pa.event_id
		) p ON p.event_id = e.id
		LEFT JOIN (
			SELECT event_id, COUNT(DISTINCT municipality_id) AS voted
			FROM votes
			GROUP BY event_id
		) v ON v.event_id = e.id
		ORDER BY e.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.EventSummary
	for rows.Next() {
		var s models.EventSummary
		if err := rows.Scan(
			&s.ID, &s.Title, &s.Description, &s.VotingType, &s.Options, &s.Multiple,
			&s.MaxSelections, &s.StartsAt, &s.EndsAt, &s.MinQuorumPct, &s.Status,
			&s.CreatedBy, &s.CreatorName, &s.CreatedAt, &s.UpdatedAt,
			&s.TotalParticipants, &s.TotalPresent, &s.PresentWeight,
			&s.MunicipalitiesVoted,
		); err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// TransitionStatus moves the event from exactly `from` to `to`. The WHERE
// clause is the guard; zero rows means the event was not in `from`.
func (r *Repository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to models.EventStatus) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE voting_events SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3`, to, id, from)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// CloseEvent moves any non-terminal event to ENCERRADO.
func (r *Repository) CloseEvent(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE voting_events SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status <> $1`, models.StatusClosed, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// CountVotes returns the number of vote rows recorded for the event.
func (r *Repository) CountVotes(ctx context.Context, id uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM votes WHERE event_id = $1`, id).Scan(&n)
	return n, err
}

// DeleteDraft removes the event only while it is still RASCUNHO.
// Participations cascade at the schema level.
func (r *Repository) DeleteDraft(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM voting_events WHERE id = $1 AND status = $2`, id, models.StatusDraft)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
