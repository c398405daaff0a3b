package votes

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/assembleia-vote/backend/internal/models"
)

// VoteHook runs after a ballot is recorded. The wiring uses it to push a
// fresh tally to live listeners.
type VoteHook func(ctx context.Context, eventID uuid.UUID)

// Service enforces the voting rules. The precondition chain runs in a fixed
// order so a request failing several rules always reports the same one.
type Service struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time
	onVote VoteHook
}

// NewService creates a votes service.
func NewService(store Store, logger *zap.Logger) *Service {
	return &Service{store: store, logger: logger, now: time.Now}
}

// SetVoteHook registers the post-cast callback.
func (s *Service) SetVoteHook(h VoteHook) {
	s.onVote = h
}

// CastParams carries one ballot attempt.
type CastParams struct {
	EventID        uuid.UUID
	UserID         uuid.UUID
	MunicipalityID *uuid.UUID
	Selections     []string
}

// Cast validates and records a ballot. Checks run in order: event exists,
// period, status, option validity, selection count, enrollment, presence,
// prior municipal ballot. The final insert still races through the unique
// index, so a concurrent duplicate surfaces as ALREADY_VOTED rather than a
// second ballot.
func (s *Service) Cast(ctx context.Context, p CastParams) ([]models.Vote, error) {
	e, err := s.store.GetEvent(ctx, p.EventID)
	if err != nil {
		s.logger.Error("cast: get event failed", zap.String("event_id", p.EventID.String()), zap.Error(err))
		return nil, models.Internal()
	}
	if e == nil {
		return nil, models.EventNotFound()
	}

	switch e.Period(s.now()) {
	case models.PeriodBefore:
		return nil, models.PeriodNotStarted(e.StartsAt)
	case models.PeriodAfter:
		return nil, models.PeriodClosed(e.EndsAt)
	}

	if e.Status != models.StatusActive {
		return nil, models.VotingNotReleased()
	}

	if len(p.Selections) == 0 {
		return nil, models.EmptySelection()
	}
	seen := make(map[string]struct{}, len(p.Selections))
	for _, label := range p.Selections {
		if !e.HasOption(label) {
			return nil, models.InvalidOption(label, e.Options)
		}
		if _, dup := seen[label]; dup {
			return nil, models.DuplicateSelection(label)
		}
		seen[label] = struct{}{}
	}
	if limit := e.SelectionLimit(); len(p.Selections) > limit {
		return nil, models.TooManySelections(len(p.Selections), limit)
	}

	enrolled, present, err := s.store.Participation(ctx, p.EventID, p.UserID)
	if err != nil {
		s.logger.Error("cast: participation lookup failed", zap.String("event_id", p.EventID.String()), zap.Error(err))
		return nil, models.Internal()
	}
	if !enrolled || p.MunicipalityID == nil {
		return nil, models.NotAParticipant()
	}
	if !present {
		return nil, models.PresenceRequired()
	}

	prior, err := s.store.MunicipalityBallot(ctx, p.EventID, *p.MunicipalityID)
	if err != nil {
		s.logger.Error("cast: ballot lookup failed", zap.String("event_id", p.EventID.String()), zap.Error(err))
		return nil, models.Internal()
	}
	if prior.Voted {
		return nil, models.AlreadyVoted(prior.VoterName)
	}

	weight, err := s.store.MunicipalityWeight(ctx, *p.MunicipalityID)
	if err != nil {
		s.logger.Error("cast: weight lookup failed", zap.String("municipality_id", p.MunicipalityID.String()), zap.Error(err))
		return nil, models.Internal()
	}

	castAt := s.now()
	ballot := make([]models.Vote, len(p.Selections))
	for i, label := range p.Selections {
		ballot[i] = models.Vote{
			EventID:        p.EventID,
			UserID:         p.UserID,
			MunicipalityID: *p.MunicipalityID,
			Option:         label,
			SelectionIndex: i + 1,
			Weight:         weight,
			CastAt:         castAt,
		}
	}
	if err := s.store.InsertBallot(ctx, ballot); err != nil {
		if errors.Is(err, ErrDuplicateBallot) {
			// Lost the race; report whoever got there first.
			prior, lookupErr := s.store.MunicipalityBallot(ctx, p.EventID, *p.MunicipalityID)
			if lookupErr != nil {
				return nil, models.AlreadyVoted("")
			}
			return nil, models.AlreadyVoted(prior.VoterName)
		}
		s.logger.Error("cast: insert failed", zap.String("event_id", p.EventID.String()), zap.Error(err))
		return nil, models.Internal()
	}

	s.logger.Info("ballot recorded",
		zap.String("event_id", p.EventID.String()),
		zap.String("municipality_id", p.MunicipalityID.String()),
		zap.Int("selections", len(ballot)),
		zap.Float64("weight", weight))

	if s.onVote != nil {
		s.onVote(ctx, p.EventID)
	}
	return ballot, nil
}

// Status reports whether the caller's municipality already voted in the event.
func (s *Service) Status(ctx context.Context, eventID uuid.UUID, municipalityID *uuid.UUID) (*models.MunicipalityBallot, error) {
	e, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		s.logger.Error("status: get event failed", zap.String("event_id", eventID.String()), zap.Error(err))
		return nil, models.Internal()
	}
	if e == nil {
		return nil, models.EventNotFound()
	}
	if municipalityID == nil {
		return &models.MunicipalityBallot{}, nil
	}
	ballot, err := s.store.MunicipalityBallot(ctx, eventID, *municipalityID)
	if err != nil {
		s.logger.Error("status: ballot lookup failed", zap.String("event_id", eventID.String()), zap.Error(err))
		return nil, models.Internal()
	}
	return &ballot, nil
}
