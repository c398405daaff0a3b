package events

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/assembleia-vote/backend/internal/models"
)

type fakeStore struct {
	events map[uuid.UUID]*models.VotingEvent
	votes  map[uuid.UUID]int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		events: make(map[uuid.UUID]*models.VotingEvent),
		votes:  make(map[uuid.UUID]int),
	}
}

func (f *fakeStore) Create(_ context.Context, e *models.VotingEvent) error {
	e.ID = uuid.New()
	e.CreatedAt = time.Now()
	e.UpdatedAt = e.CreatedAt
	cp := *e
	f.events[e.ID] = &cp
	return nil
}

func (f *fakeStore) Get(_ context.Context, id uuid.UUID) (*models.VotingEvent, error) {
	e, ok := f.events[id]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (f *fakeStore) List(_ context.Context) ([]models.EventSummary, error) {
	var list []models.EventSummary
	for _, e := range f.events {
		list = append(list, models.EventSummary{VotingEvent: *e})
	}
	return list, nil
}

func (f *fakeStore) TransitionStatus(_ context.Context, id uuid.UUID, from, to models.EventStatus) (bool, error) {
	e, ok := f.events[id]
	if !ok || e.Status != from {
		return false, nil
	}
	e.Status = to
	return true, nil
}

func (f *fakeStore) CloseEvent(_ context.Context, id uuid.UUID) (bool, error) {
	e, ok := f.events[id]
	if !ok || e.Status == models.StatusClosed {
		return false, nil
	}
	e.Status = models.StatusClosed
	return true, nil
}

func (f *fakeStore) CountVotes(_ context.Context, id uuid.UUID) (int, error) {
	return f.votes[id], nil
}

func (f *fakeStore) DeleteDraft(_ context.Context, id uuid.UUID) (bool, error) {
	e, ok := f.events[id]
	if !ok || e.Status != models.StatusDraft {
		return false, nil
	}
	delete(f.events, id)
	return true, nil
}

func newTestService(store *fakeStore, now time.Time) *Service {
	s := NewService(store, zap.NewNop())
	s.now = func() time.Time { return now }
	return s
}

func seedEvent(store *fakeStore, status models.EventStatus, starts, ends time.Time) uuid.UUID {
	id := uuid.New()
	store.events[id] = &models.VotingEvent{
		ID:         id,
		Title:      "Pauta de teste",
		VotingType: models.VotingBinary,
		Options:    models.VotingBinary.BallotOptions(nil),
		StartsAt:   starts,
		EndsAt:     ends,
		Status:     status,
	}
	return id
}

func TestCreateDerivesBallotOptions(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, time.Now())

	e, err := svc.Create(context.Background(), CreateParams{
		Title:        "Escolha da sede",
		VotingType:   string(models.VotingAlternatives),
		Alternatives: []string{"Vitória", "Vila Velha"},
		StartsAt:     time.Now().Add(time.Hour),
		EndsAt:       time.Now().Add(2 * time.Hour),
		MinQuorumPct: 60,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusDraft, e.Status)
	assert.Equal(t, []string{"Vitória", "Vila Velha", models.OptionBlank, models.OptionNeither}, e.Options)
	assert.Equal(t, 1, e.SelectionLimit())
}

func TestCreateRejectsInvalidParams(t *testing.T) {
	svc := newTestService(newFakeStore(), time.Now())
	base := CreateParams{
		Title:      "Pauta",
		VotingType: string(models.VotingBinary),
		StartsAt:   time.Now(),
		EndsAt:     time.Now().Add(time.Hour),
	}

	cases := []struct {
		name   string
		mutate func(*CreateParams)
	}{
		{"empty title", func(p *CreateParams) { p.Title = "  " }},
		{"unknown type", func(p *CreateParams) { p.VotingType = "RANKED" }},
		{"inverted window", func(p *CreateParams) { p.EndsAt = p.StartsAt.Add(-time.Minute) }},
		{"quorum above 100", func(p *CreateParams) { p.MinQuorumPct = 120 }},
		{"alternatives without options", func(p *CreateParams) {
			p.VotingType = string(models.VotingAlternatives)
			p.Alternatives = []string{"só uma"}
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := base
			tc.mutate(&p)
			_, err := svc.Create(context.Background(), p)
			assert.True(t, models.IsKind(err, models.ErrInvalidOption), "got %v", err)
		})
	}
}

func TestStartBeforeWindow(t *testing.T) {
	store := newFakeStore()
	now := time.Now()
	id := seedEvent(store, models.StatusDraft, now.Add(time.Hour), now.Add(2*time.Hour))
	svc := newTestService(store, now)

	_, err := svc.Start(context.Background(), id)
	assert.True(t, models.IsKind(err, models.ErrPeriodNotStarted), "got %v", err)
	assert.Equal(t, models.StatusDraft, store.events[id].Status)
}

func TestStartExactlyAtWindowOpen(t *testing.T) {
	store := newFakeStore()
	now := time.Now().Truncate(time.Second)
	id := seedEvent(store, models.StatusDraft, now, now.Add(time.Hour))
	svc := newTestService(store, now)

	e, err := svc.Start(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAwaiting, e.Status)
}

func TestStartAfterWindowEnd(t *testing.T) {
	store := newFakeStore()
	now := time.Now()
	id := seedEvent(store, models.StatusDraft, now.Add(-2*time.Hour), now.Add(-time.Hour))
	svc := newTestService(store, now)

	_, err := svc.Start(context.Background(), id)
	assert.True(t, models.IsKind(err, models.ErrPeriodClosed), "got %v", err)
}

func TestReleaseRequiresAwaiting(t *testing.T) {
	store := newFakeStore()
	now := time.Now()
	id := seedEvent(store, models.StatusDraft, now.Add(-time.Minute), now.Add(time.Hour))
	svc := newTestService(store, now)

	_, err := svc.Release(context.Background(), id)
	assert.True(t, models.IsKind(err, models.ErrInvalidTransition), "got %v", err)
}

func TestFullLifecycle(t *testing.T) {
	store := newFakeStore()
	now := time.Now()
	id := seedEvent(store, models.StatusDraft, now.Add(-time.Minute), now.Add(time.Hour))
	svc := newTestService(store, now)

	var closedID uuid.UUID
	svc.SetCloseHook(func(_ context.Context, eventID uuid.UUID) { closedID = eventID })

	e, err := svc.Start(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAwaiting, e.Status)

	e, err = svc.Release(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, e.Status)

	e, err = svc.Close(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusClosed, e.Status)
	assert.Equal(t, id, closedID)

	_, err = svc.Close(context.Background(), id)
	assert.True(t, models.IsKind(err, models.ErrInvalidTransition), "got %v", err)
}

func TestTransitionUnknownEvent(t *testing.T) {
	svc := newTestService(newFakeStore(), time.Now())
	_, err := svc.Start(context.Background(), uuid.New())
	assert.True(t, models.IsKind(err, models.ErrEventNotFound), "got %v", err)
}

func TestDeleteGuards(t *testing.T) {
	store := newFakeStore()
	now := time.Now()
	svc := newTestService(store, now)

	active := seedEvent(store, models.StatusActive, now.Add(-time.Minute), now.Add(time.Hour))
	err := svc.Delete(context.Background(), active)
	assert.True(t, models.IsKind(err, models.ErrInvalidTransition), "got %v", err)

	draft := seedEvent(store, models.StatusDraft, now.Add(time.Hour), now.Add(2*time.Hour))
	store.votes[draft] = 3
	err = svc.Delete(context.Background(), draft)
	assert.True(t, models.IsKind(err, models.ErrEventHasVotes), "got %v", err)

	store.votes[draft] = 0
	require.NoError(t, svc.Delete(context.Background(), draft))
	_, err = svc.Get(context.Background(), draft)
	assert.True(t, models.IsKind(err, models.ErrEventNotFound), "got %v", err)
}
