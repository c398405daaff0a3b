package events

import (
	"context"

	"github.com/google/uuid"

	"github.com/assembleia-vote/backend/internal/models"
)

// Store is the persistence boundary for voting events. Status moves are
// compare-and-set so concurrent transitions serialize at the database.
type Store interface {
	// Create persists a new event and fills ID and timestamps.
	Create(ctx context.Context, e *models.VotingEvent) error
	// Get returns an event by ID, or nil when none exists.
	Get(ctx context.Context, id uuid.UUID) (*models.VotingEvent, error)
	// List returns all events with roster and period annotations.
	List(ctx context.Context) ([]models.EventSummary, error)
	// TransitionStatus moves the event from exactly `from` to `to`,
	// reporting whether the guarded update won.
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to models.EventStatus) (bool, error)
	// CloseEvent moves any non-terminal event to ENCERRADO, reporting
	// whether a row changed.
	CloseEvent(ctx context.Context, id uuid.UUID) (bool, error)
	// CountVotes returns the number of vote rows recorded for the event.
	CountVotes(ctx context.Context, id uuid.UUID) (int, error)
	// DeleteDraft removes the event only while it is still RASCUNHO,
	// cascading its participations. Reports whether a row was deleted.
	DeleteDraft(ctx context.Context, id uuid.UUID) (bool, error)
}
