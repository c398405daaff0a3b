package reports

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/assembleia-vote/backend/internal/models"
	"github.com/assembleia-vote/backend/pkg/queue"
)

// EventSource resolves events. Satisfied by the events service.
type EventSource interface {
	Get(ctx context.Context, id uuid.UUID) (*models.VotingEvent, error)
}

// RosterSource resolves rosters and quorum. Satisfied by the participants service.
type RosterSource interface {
	Roster(ctx context.Context, eventID uuid.UUID) ([]models.Participant, error)
	Quorum(ctx context.Context, eventID uuid.UUID) (*models.QuorumSummary, error)
}

// TallySource computes tallies. Satisfied by the results service.
type TallySource interface {
	Compute(ctx context.Context, eventID uuid.UUID) (*models.TallyResult, error)
}

// Enqueuer schedules archive jobs. Satisfied by the Redis queue.
type Enqueuer interface {
	EnqueueReportArchive(ctx context.Context, payload queue.ReportArchivePayload) error
}

// Service assembles report data, renders the CSV and schedules archival.
type Service struct {
	repo    *Repository
	events  EventSource
	roster  RosterSource
	tallies TallySource
	queue   Enqueuer
	logger  *zap.Logger
}

// NewService creates a reports service. queue may be nil when archival is
// disabled; Schedule then becomes a no-op.
func NewService(repo *Repository, events EventSource, roster RosterSource, tallies TallySource, q Enqueuer, logger *zap.Logger) *Service {
	return &Service{repo: repo, events: events, roster: roster, tallies: tallies, queue: q, logger: logger}
}

// Build assembles and renders the CSV report for an event.
func (s *Service) Build(ctx context.Context, eventID uuid.UUID) ([]byte, *models.VotingEvent, error) {
	e, err := s.events.Get(ctx, eventID)
	if err != nil {
		return nil, nil, err
	}
	quorum, err := s.roster.Quorum(ctx, eventID)
	if err != nil {
		return nil, nil, err
	}
	roster, err := s.roster.Roster(ctx, eventID)
	if err != nil {
		return nil, nil, err
	}
	votes, err := s.repo.Votes(ctx, eventID)
	if err != nil {
		s.logger.Error("report: load votes failed", zap.String("event_id", eventID.String()), zap.Error(err))
		return nil, nil, models.Internal()
	}
	tally, err := s.tallies.Compute(ctx, eventID)
	if err != nil {
		return nil, nil, err
	}
	body, err := RenderCSV(ReportData{
		Event:  e,
		Quorum: quorum,
		Roster: roster,
		Votes:  votes,
		Tally:  tally,
	})
	if err != nil {
		s.logger.Error("report: render failed", zap.String("event_id", eventID.String()), zap.Error(err))
		return nil, nil, models.Internal()
	}
	return body, e, nil
}

// Schedule creates a pending report row and enqueues the archive job. Wired
// to the events service close hook.
func (s *Service) Schedule(ctx context.Context, eventID uuid.UUID) {
	if s.queue == nil {
		return
	}
	rep, err := s.repo.CreatePending(ctx, eventID)
	if err != nil {
		s.logger.Error("report: create pending failed", zap.String("event_id", eventID.String()), zap.Error(err))
		return
	}
	err = s.queue.EnqueueReportArchive(ctx, queue.ReportArchivePayload{
		ReportID: rep.ID,
		EventID:  eventID,
	})
	if err != nil {
		s.logger.Error("report: enqueue failed", zap.String("report_id", rep.ID.String()), zap.Error(err))
		return
	}
	s.logger.Info("report scheduled",
		zap.String("event_id", eventID.String()),
		zap.String("report_id", rep.ID.String()))
}

// Latest returns the newest completed archived report for an event.
func (s *Service) Latest(ctx context.Context, eventID uuid.UUID) (*models.Report, error) {
	if _, err := s.events.Get(ctx, eventID); err != nil {
		return nil, err
	}
	rep, err := s.repo.LatestCompleted(ctx, eventID)
	if err != nil {
		s.logger.Error("report: latest lookup failed", zap.String("event_id", eventID.String()), zap.Error(err))
		return nil, models.Internal()
	}
	return rep, nil
}
