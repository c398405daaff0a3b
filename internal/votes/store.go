package votes

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/assembleia-vote/backend/internal/models"
)

// ErrDuplicateBallot is returned by InsertBallot when another ballot for the
// same municipality landed first. The database unique index is the arbiter;
// this sentinel is how the repository reports losing that race.
var ErrDuplicateBallot = errors.New("ballot already recorded for municipality")

// Store is the persistence boundary for ballots.
type Store interface {
	// GetEvent returns the event, or nil when it does not exist.
	GetEvent(ctx context.Context, eventID uuid.UUID) (*models.VotingEvent, error)
	// Participation reports enrollment and presence for the user.
	Participation(ctx context.Context, eventID, userID uuid.UUID) (enrolled, present bool, err error)
	// MunicipalityBallot reports whether the municipality already voted and
	// who cast the ballot.
	MunicipalityBallot(ctx context.Context, eventID, municipalityID uuid.UUID) (models.MunicipalityBallot, error)
	// MunicipalityWeight returns the municipality's current weight.
	MunicipalityWeight(ctx context.Context, municipalityID uuid.UUID) (float64, error)
	// InsertBallot atomically records all rows of one ballot. Returns
	// ErrDuplicateBallot if the municipality already has rows for the event.
	InsertBallot(ctx context.Context, ballot []models.Vote) error
}
