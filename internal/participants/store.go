package participants

import (
	"context"

	"github.com/google/uuid"

	"github.com/assembleia-vote/backend/internal/models"
)

// QuorumCounts are the raw roster numbers; the service derives percentages.
// Weights are summed over distinct municipalities so two representatives of
// the same town never double-count.
type QuorumCounts struct {
	TotalParticipants int
	TotalPresent      int
	PresentWeight     float64
	EnrolledWeight    float64
}

// Store is the persistence boundary for event rosters.
type Store interface {
	// EventQuorumPct returns the event's minimum quorum, or nil when the
	// event does not exist.
	EventQuorumPct(ctx context.Context, eventID uuid.UUID) (*float64, error)
	// EnrollMany adds users to the roster, skipping ones already enrolled.
	EnrollMany(ctx context.Context, eventID uuid.UUID, userIDs []uuid.UUID) error
	// MarkPresent stamps present_at, keeping the first timestamp on repeat
	// calls. Reports whether a participation row exists.
	MarkPresent(ctx context.Context, eventID, userID uuid.UUID) (bool, error)
	// Roster returns the full roster with user and municipality joins.
	Roster(ctx context.Context, eventID uuid.UUID) ([]models.Participant, error)
	// Counts returns the raw quorum numbers for the event.
	Counts(ctx context.Context, eventID uuid.UUID) (QuorumCounts, error)
	// IsPresent reports enrollment and presence for one user.
	IsPresent(ctx context.Context, eventID, userID uuid.UUID) (enrolled, present bool, err error)
}
