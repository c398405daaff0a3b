package results

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/assembleia-vote/backend/internal/models"
)

// Service computes tally snapshots. A snapshot is internally consistent:
// every option label of the event is present in the result map, and all
// percentages derive from the same read.
type Service struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a results service.
func NewService(store Store, logger *zap.Logger) *Service {
	return &Service{store: store, logger: logger, now: time.Now}
}

// Compute builds a tally snapshot for the event. Percentages are zero when
// their denominator is zero, never NaN.
func (s *Service) Compute(ctx context.Context, eventID uuid.UUID) (*models.TallyResult, error) {
	e, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		s.logger.Error("tally: get event failed", zap.String("event_id", eventID.String()), zap.Error(err))
		return nil, models.Internal()
	}
	if e == nil {
		return nil, models.EventNotFound()
	}

	aggregates, err := s.store.OptionAggregates(ctx, eventID)
	if err != nil {
		s.logger.Error("tally: aggregates failed", zap.String("event_id", eventID.String()), zap.Error(err))
		return nil, models.Internal()
	}
	totals, err := s.store.Totals(ctx, eventID)
	if err != nil {
		s.logger.Error("tally: totals failed", zap.String("event_id", eventID.String()), zap.Error(err))
		return nil, models.Internal()
	}

	result := &models.TallyResult{
		EventID:    eventID.String(),
		Status:     e.Status,
		Options:    e.Options,
		Results:    make(map[string]models.OptionTally, len(e.Options)),
		ComputedAt: s.now(),
		Totals: models.TallyTotals{
			MunicipalitiesVoted:    totals.MunicipalitiesVoted,
			TotalWeight:            totals.TotalWeight,
			EnrolledMunicipalities: totals.EnrolledMunicipalities,
		},
	}
	for _, opt := range e.Options {
		result.Results[opt] = models.OptionTally{}
	}
	for _, agg := range aggregates {
		// Only declared option labels appear in the result map.
		if _, ok := result.Results[agg.Option]; !ok {
			continue
		}
		tally := models.OptionTally{
			Municipalities: agg.Municipalities,
			Weight:         agg.Weight,
		}
		if totals.MunicipalitiesVoted > 0 {
			tally.CountPct = float64(agg.Municipalities) / float64(totals.MunicipalitiesVoted) * 100
		}
		if totals.TotalWeight > 0 {
			tally.WeightPct = agg.Weight / totals.TotalWeight * 100
		}
		result.Results[agg.Option] = tally
	}
	if totals.EnrolledMunicipalities > 0 {
		result.Totals.ParticipationPct = float64(totals.MunicipalitiesVoted) / float64(totals.EnrolledMunicipalities) * 100
	}
	return result, nil
}
