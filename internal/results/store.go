package results

import (
	"context"

	"github.com/google/uuid"

	"github.com/assembleia-vote/backend/internal/models"
)

// OptionAggregate is the per-option raw aggregate. Each municipality appears
// at most once per option, so the count is distinct municipalities and the
// weight sums their snapshots.
type OptionAggregate struct {
	Option         string
	Municipalities int
	Weight         float64
}

// VoteTotals are the event-wide raw aggregates.
type VoteTotals struct {
	MunicipalitiesVoted    int
	TotalWeight            float64
	EnrolledMunicipalities int
}

// Store is the read-side boundary for tallies.
type Store interface {
	// GetEvent returns the event, or nil when it does not exist.
	GetEvent(ctx context.Context, eventID uuid.UUID) (*models.VotingEvent, error)
	// OptionAggregates returns per-option counts and weight sums.
	OptionAggregates(ctx context.Context, eventID uuid.UUID) ([]OptionAggregate, error)
	// Totals returns event-wide counts. TotalWeight counts each voting
	// municipality's snapshot once, regardless of how many options it picked.
	Totals(ctx context.Context, eventID uuid.UUID) (VoteTotals, error)
}
