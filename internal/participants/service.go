package participants

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/assembleia-vote/backend/internal/models"
)

// Service manages event rosters, presence confirmation and quorum.
type Service struct {
	store  Store
	logger *zap.Logger
}

// NewService creates a participants service.
func NewService(store Store, logger *zap.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// EnrollMany adds users to an event roster. Already enrolled users are
// skipped, so re-sending the same list is harmless.
func (s *Service) EnrollMany(ctx context.Context, eventID uuid.UUID, userIDs []uuid.UUID) error {
	if len(userIDs) == 0 {
		return nil
	}
	pct, err := s.store.EventQuorumPct(ctx, eventID)
	if err != nil {
		s.logger.Error("enroll lookup failed", zap.String("event_id", eventID.String()), zap.Error(err))
		return models.Internal()
	}
	if pct == nil {
		return models.EventNotFound()
	}
	if err := s.store.EnrollMany(ctx, eventID, userIDs); err != nil {
		s.logger.Error("enroll failed", zap.String("event_id", eventID.String()), zap.Error(err))
		return models.Internal()
	}
	return nil
}

// Enroll adds a single user to the roster.
func (s *Service) Enroll(ctx context.Context, eventID, userID uuid.UUID) error {
	return s.EnrollMany(ctx, eventID, []uuid.UUID{userID})
}

// ConfirmPresence stamps the caller present. Repeat confirmations keep the
// first timestamp. Returns NOT_A_PARTICIPANT when the caller is not enrolled.
func (s *Service) ConfirmPresence(ctx context.Context, eventID, userID uuid.UUID) error {
	pct, err := s.store.EventQuorumPct(ctx, eventID)
	if err != nil {
		s.logger.Error("presence lookup failed", zap.String("event_id", eventID.String()), zap.Error(err))
		return models.Internal()
	}
	if pct == nil {
		return models.EventNotFound()
	}
	ok, err := s.store.MarkPresent(ctx, eventID, userID)
	if err != nil {
		s.logger.Error("mark present failed",
			zap.String("event_id", eventID.String()),
			zap.String("user_id", userID.String()),
			zap.Error(err))
		return models.Internal()
	}
	if !ok {
		return models.NotAParticipant()
	}
	return nil
}

// Roster returns the event's full roster.
func (s *Service) Roster(ctx context.Context, eventID uuid.UUID) ([]models.Participant, error) {
	pct, err := s.store.EventQuorumPct(ctx, eventID)
	if err != nil {
		s.logger.Error("roster lookup failed", zap.String("event_id", eventID.String()), zap.Error(err))
		return nil, models.Internal()
	}
	if pct == nil {
		return nil, models.EventNotFound()
	}
	roster, err := s.store.Roster(ctx, eventID)
	if err != nil {
		s.logger.Error("roster failed", zap.String("event_id", eventID.String()), zap.Error(err))
		return nil, models.Internal()
	}
	return roster, nil
}

// Quorum computes the weighted presence summary. WeightPct compares the
// present municipalities' weight against the enrolled municipalities' weight;
// with an empty roster the percentage is zero, never NaN.
func (s *Service) Quorum(ctx context.Context, eventID uuid.UUID) (*models.QuorumSummary, error) {
	pct, err := s.store.EventQuorumPct(ctx, eventID)
	if err != nil {
		s.logger.Error("quorum lookup failed", zap.String("event_id", eventID.String()), zap.Error(err))
		return nil, models.Internal()
	}
	if pct == nil {
		return nil, models.EventNotFound()
	}
	counts, err := s.store.Counts(ctx, eventID)
	if err != nil {
		s.logger.Error("quorum counts failed", zap.String("event_id", eventID.String()), zap.Error(err))
		return nil, models.Internal()
	}
	summary := &models.QuorumSummary{
		TotalParticipants: counts.TotalParticipants,
		TotalPresent:      counts.TotalPresent,
		PresentWeight:     counts.PresentWeight,
		EnrolledWeight:    counts.EnrolledWeight,
		MinQuorumPct:      *pct,
	}
	if counts.EnrolledWeight > 0 {
		summary.WeightPct = counts.PresentWeight / counts.EnrolledWeight * 100
	}
	summary.QuorumReached = summary.WeightPct >= *pct
	return summary, nil
}
