package reports

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/assembleia-vote/backend/internal/models"
)

// Repository handles report rows and the joined reads the renderer needs.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a reports repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreatePending inserts a pending report row for the event.
func (r *Repository) CreatePending(ctx context.Context, eventID uuid.UUID) (*models.Report, error) {
	var rep models.Report
	err := r.pool.QueryRow(ctx, `
		INSERT INTO reports (event_id, status)
		VALUES ($1, $2)
		RETURNING id, event_id, status, created_at`,
		eventID, models.ReportPending).
		Scan(&rep.ID, &rep.EventID, &rep.Status, &rep.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &rep, nil
}

// Get returns a report by ID, or nil when none exists.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	var rep models.Report
	err := r.pool.QueryRow(ctx, `
		SELECT id, event_id, status, COALESCE(s3_key, ''), size_bytes, generated_at, created_at
		FROM reports WHERE id = $1`, id).
		Scan(&rep.ID, &rep.EventID, &rep.Status, &rep.S3Key, &rep.SizeBytes, &rep.GeneratedAt, &rep.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rep, nil
}

// LatestCompleted returns the newest completed report for an event, or nil.
func (r *Repository) LatestCompleted(ctx context.Context, eventID uuid.UUID) (*models.Report, error) {
	var rep models.Report
	err := r.pool.QueryRow(ctx, `
		SELECT id, event_id, status, COALESCE(s3_key, ''), size_bytes, generated_at, created_at
		FROM reports
		WHERE event_id = $1 AND status = $2
		ORDER BY generated_at DESC
		LIMIT 1`, eventID, models.ReportCompleted).
		Scan(&rep.ID, &rep.EventID, &rep.Status, &rep.S3Key, &rep.SizeBytes, &rep.GeneratedAt, &rep.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rep, nil
}

// MarkCompleted records the uploaded object key and size.
func (r *Repository) MarkCompleted(ctx context.Context, id uuid.UUID, s3Key string, sizeBytes int64) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE reports SET status = $1, s3_key = $2, size_bytes = $3, generated_at = $4
		WHERE id = $5`,
		models.ReportCompleted, s3Key, sizeBytes, time.Now(), id)
	return err
}

// MarkFailed flags the report after the worker exhausts its retries.
func (r *Repository) MarkFailed(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `UPDATE reports SET status = $1 WHERE id = $2`, models.ReportFailed, id)
	return err
}

// Votes returns the event's vote rows joined with voter and municipality
// names, in cast order.
func (r *Repository) Votes(ctx context.Context, eventID uuid.UUID) ([]models.VoteRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT v.id, v.event_id, v.user_id, v.municipality_id, v.option,
			v.selection_index, v.weight, v.cast_at,
			u.name, u.cpf, m.name
		FROM votes v
		JOIN users u ON u.id = v.user_id
		JOIN municipalities m ON m.id = v.municipality_id
		WHERE v.event_id = $1
		ORDER BY v.cast_at, v.selection_index`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var votes []models.VoteRecord
	for rows.Next() {
		var v models.VoteRecord
		if err := rows.Scan(
			&v.ID, &v.EventID, &v.UserID, &v.MunicipalityID, &v.Option,
			&v.SelectionIndex, &v.Weight, &v.CastAt,
			&v.VoterName, &v.VoterCPF, &v.MunicipalityName,
		); err != nil {
			return nil, err
		}
		votes = append(votes, v)
	}
	return votes, rows.Err()
}
