package events

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/assembleia-vote/backend/internal/models"
)

// CloseHook runs after an event is successfully closed. The wiring uses it
// to schedule the CSV archive job without coupling this package to the queue.
type CloseHook func(ctx context.Context, eventID uuid.UUID)

// Service drives the event lifecycle. All status transitions are guarded
// compare-and-set updates so two admins racing the same button cannot move
// an event twice.
type Service struct {
	store   Store
	logger  *zap.Logger
	now     func() time.Time
	onClose CloseHook
}

// NewService creates an events service.
func NewService(store Store, logger *zap.Logger) *Service {
	return &Service{store: store, logger: logger, now: time.Now}
}

// SetCloseHook registers the post-close callback.
func (s *Service) SetCloseHook(h CloseHook) {
	s.onClose = h
}

// CreateParams carries the validated fields for a new event.
type CreateParams struct {
	Title         string
	Description   string
	VotingType    string
	Alternatives  []string
	Multiple      bool
	MaxSelections int
	StartsAt      time.Time
	EndsAt        time.Time
	MinQuorumPct  float64
	CreatedBy     uuid.UUID
}

// Create validates params, derives the ballot options for the voting type
// and persists the event in RASCUNHO.
func (s *Service) Create(ctx context.Context, p CreateParams) (*models.VotingEvent, error) {
	title := strings.TrimSpace(p.Title)
	if title == "" {
		return nil, models.NewDomainError(models.ErrInvalidOption, "Título é obrigatório")
	}
	if !models.ValidVotingType(p.VotingType) {
		return nil, models.NewDomainError(models.ErrInvalidOption, "Tipo de votação inválido: "+p.VotingType)
	}
	vt := models.VotingType(p.VotingType)
	if p.StartsAt.IsZero() || p.EndsAt.IsZero() {
		return nil, models.NewDomainError(models.ErrInvalidOption, "Período do evento é obrigatório")
	}
	if !p.EndsAt.After(p.StartsAt) {
		return nil, models.NewDomainError(models.ErrInvalidOption, "Data de fim deve ser posterior à data de início")
	}
	if p.MinQuorumPct < 0 || p.MinQuorumPct > 100 {
		return nil, models.NewDomainError(models.ErrInvalidOption, "Quórum mínimo deve estar entre 0 e 100")
	}
	alternatives := make([]string, 0, len(p.Alternatives))
	for _, a := range p.Alternatives {
		if a = strings.TrimSpace(a); a != "" {
			alternatives = append(alternatives, a)
		}
	}
	if vt == models.VotingAlternatives && len(alternatives) < 2 {
		return nil, models.NewDomainError(models.ErrInvalidOption, "Votação por alternativas exige ao menos duas alternativas")
	}
	maxSel := p.MaxSelections
	if !p.Multiple || maxSel < 1 {
		maxSel = 1
	}

	e := &models.VotingEvent{
		Title:         title,
		Description:   strings.TrimSpace(p.Description),
		VotingType:    vt,
		Options:       vt.BallotOptions(alternatives),
		Multiple:      p.Multiple && maxSel > 1,
		MaxSelections: maxSel,
		StartsAt:      p.StartsAt,
		EndsAt:        p.EndsAt,
		MinQuorumPct:  p.MinQuorumPct,
		Status:        models.StatusDraft,
		CreatedBy:     p.CreatedBy,
	}
	if err := s.store.Create(ctx, e); err != nil {
		s.logger.Error("create event failed", zap.Error(err))
		return nil, models.Internal()
	}
	return e, nil
}

// Get returns an event, or EVENT_NOT_FOUND.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.VotingEvent, error) {
	e, err := s.store.Get(ctx, id)
	if err != nil {
		s.logger.Error("get event failed", zap.String("event_id", id.String()), zap.Error(err))
		return nil, models.Internal()
	}
	if e == nil {
		return nil, models.EventNotFound()
	}
	return e, nil
}

// List returns all events with roster and period annotations.
func (s *Service) List(ctx context.Context) ([]models.EventSummary, error) {
	list, err := s.store.List(ctx)
	if err != nil {
		s.logger.Error("list events failed", zap.Error(err))
		return nil, models.Internal()
	}
	now := s.now()
	for i := range list {
		list[i].PeriodStatus = list[i].Period(now)
	}
	return list, nil
}

// Start moves RASCUNHO → AGUARDANDO_INICIO. The window must already have
// opened and must not have ended; the period check runs before the status
// check so callers always see the tighter error first.
func (s *Service) Start(ctx context.Context, id uuid.UUID) (*models.VotingEvent, error) {
	return s.transition(ctx, id, models.StatusDraft, models.StatusAwaiting, "iniciar")
}

// Release moves AGUARDANDO_INICIO → ATIVO, opening the ballot box.
func (s *Service) Release(ctx context.Context, id uuid.UUID) (*models.VotingEvent, error) {
	return s.transition(ctx, id, models.StatusAwaiting, models.StatusActive, "liberar votação")
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, from, to models.EventStatus, action string) (*models.VotingEvent, error) {
	e, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	switch e.Period(s.now()) {
	case models.PeriodBefore:
		return nil, models.PeriodNotStarted(e.StartsAt)
	case models.PeriodAfter:
		return nil, models.PeriodClosed(e.EndsAt)
	}
	if e.Status != from {
		return nil, models.InvalidTransition(e.Status, action)
	}
	ok, err := s.store.TransitionStatus(ctx, id, from, to)
	if err != nil {
		s.logger.Error("transition failed", zap.String("event_id", id.String()), zap.String("to", string(to)), zap.Error(err))
		return nil, models.Internal()
	}
	if !ok {
		// Lost the race to a concurrent transition.
		return nil, models.InvalidTransition(e.Status, action)
	}
	e.Status = to
	s.logger.Info("event transitioned",
		zap.String("event_id", id.String()),
		zap.String("from", string(from)),
		zap.String("to", string(to)))
	return e, nil
}

// Close moves any non-terminal event to ENCERRADO. Closing is allowed at
// any point inside or after the window; only an already closed event refuses.
func (s *Service) Close(ctx context.Context, id uuid.UUID) (*models.VotingEvent, error) {
	e, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.Status == models.StatusClosed {
		return nil, models.InvalidTransition(e.Status, "encerrar")
	}
	ok, err := s.store.CloseEvent(ctx, id)
	if err != nil {
		s.logger.Error("close event failed", zap.String("event_id", id.String()), zap.Error(err))
		return nil, models.Internal()
	}
	if !ok {
		return nil, models.InvalidTransition(models.StatusClosed, "encerrar")
	}
	e.Status = models.StatusClosed
	s.logger.Info("event closed", zap.String("event_id", id.String()))
	if s.onClose != nil {
		s.onClose(ctx, id)
	}
	return e, nil
}

// Delete removes a RASCUNHO event with no recorded votes.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	e, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if e.Status != models.StatusDraft {
		return models.InvalidTransition(e.Status, "excluir")
	}
	n, err := s.store.CountVotes(ctx, id)
	if err != nil {
		s.logger.Error("count votes failed", zap.String("event_id", id.String()), zap.Error(err))
		return models.Internal()
	}
	if n > 0 {
		return models.EventHasVotes()
	}
	ok, err := s.store.DeleteDraft(ctx, id)
	if err != nil {
		s.logger.Error("delete event failed", zap.String("event_id", id.String()), zap.Error(err))
		return models.Internal()
	}
	if !ok {
		return models.InvalidTransition(e.Status, "excluir")
	}
	s.logger.Info("event deleted", zap.String("event_id", id.String()))
	return nil
}
