package results

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
	event      *models.VotingEvent
	aggregates []OptionAggregate
	totals     VoteTotals
}

func (f *fakeStore) GetEvent(_ context.Context, eventID uuid.UUID) (*models.VotingEvent, error) {
	if f.event == nil || f.event.ID != eventID {
		return nil, nil
	}
	cp := *f.event
	return &cp, nil
}

func (f *fakeStore) OptionAggregates(_ context.Context, _ uuid.UUID) ([]OptionAggregate, error) {
	return f.aggregates, nil
}

func (f *fakeStore) Totals(_ context.Context, _ uuid.UUID) (VoteTotals, error) {
	return f.totals, nil
}

func binaryEvent() *models.VotingEvent {
	return &models.VotingEvent{
		ID:         uuid.New(),
		Title:      "Pauta",
		VotingType: models.VotingBinary,
		Options:    models.VotingBinary.BallotOptions(nil),
		Status:     models.StatusActive,
	}
}

func TestComputeWeightedTally(t *testing.T) {
	e := binaryEvent()
	store := &fakeStore{
		event: e,
		aggregates: []OptionAggregate{
			{Option: "Sim", Municipalities: 3, Weight: 7.5},
			{Option: "Não", Municipalities: 1, Weight: 2.5},
		},
		totals: VoteTotals{MunicipalitiesVoted: 4, TotalWeight: 10, EnrolledMunicipalities: 8},
	}
	svc := NewService(store, zap.NewNop())

	result, err := svc.Compute(context.Background(), e.ID)
	require.NoError(t, err)
	assert.Equal(t, e.ID.String(), result.EventID)
	assert.Equal(t, models.StatusActive, result.Status)
	assert.Equal(t, []string{"Sim", "Não"}, result.Options)

	sim := result.Results["Sim"]
	assert.Equal(t, 3, sim.Municipalities)
	assert.InDelta(t, 7.5, sim.Weight, 1e-9)
	assert.InDelta(t, 75.0, sim.CountPct, 1e-9)
	assert.InDelta(t, 75.0, sim.WeightPct, 1e-9)

	nao := result.Results["Não"]
	assert.InDelta(t, 25.0, nao.CountPct, 1e-9)

	assert.Equal(t, 4, result.Totals.MunicipalitiesVoted)
	assert.InDelta(t, 50.0, result.Totals.ParticipationPct, 1e-9)
	assert.False(t, result.ComputedAt.IsZero())
}

func TestComputeZeroVotes(t *testing.T) {
	e := binaryEvent()
	store := &fakeStore{event: e, totals: VoteTotals{EnrolledMunicipalities: 5}}
	svc := NewService(store, zap.NewNop())

	result, err := svc.Compute(context.Background(), e.ID)
	require.NoError(t, err)

	// Every declared option is present with zeroed figures; no NaN.
	require.Len(t, result.Results, 2)
	for _, opt := range e.Options {
		tally, ok := result.Results[opt]
		require.True(t, ok, "missing option %q", opt)
		assert.Zero(t, tally.Municipalities)
		assert.Zero(t, tally.CountPct)
		assert.Zero(t, tally.WeightPct)
	}
	assert.Zero(t, result.Totals.ParticipationPct)
}

func TestComputeUnknownEvent(t *testing.T) {
	svc := NewService(&fakeStore{}, zap.NewNop())
	_, err := svc.Compute(context.Background(), uuid.New())
	assert.True(t, models.IsKind(err, models.ErrEventNotFound), "got %v", err)
}

func TestComputeSkipsUndeclaredOptions(t *testing.T) {
	e := binaryEvent()
	store := &fakeStore{
		event: e,
		aggregates: []OptionAggregate{
			{Option: "Sim", Municipalities: 1, Weight: 1},
			{Option: "Talvez", Municipalities: 1, Weight: 1},
		},
		totals: VoteTotals{MunicipalitiesVoted: 2, TotalWeight: 2, EnrolledMunicipalities: 2},
	}
	svc := NewService(store, zap.NewNop())

	result, err := svc.Compute(context.Background(), e.ID)
	require.NoError(t, err)
	assert.Len(t, result.Results, 2)
	assert.NotContains(t, result.Results, "Talvez")
}

type fakePublisher struct {
	frames []string
}

func (f *fakePublisher) BroadcastToEventAndPublish(_ uuid.UUID, event string, _ interface{}) {
	f.frames = append(f.frames, event)
}

func TestBroadcasterPushNow(t *testing.T) {
	e := binaryEvent()
	store := &fakeStore{event: e}
	svc := NewService(store, zap.NewNop())
	pub := &fakePublisher{}
	b := NewBroadcaster(svc, pub, time.Minute, zap.NewNop())
	defer b.Close()

	b.PushNow(context.Background(), e.ID)
	require.Len(t, pub.frames, 1)
	assert.Equal(t, FrameTally, pub.frames[0])
}

func TestBroadcasterServeRequest(t *testing.T) {
	e := binaryEvent()
	svc := NewService(&fakeStore{event: e}, zap.NewNop())
	b := NewBroadcaster(svc, &fakePublisher{}, time.Minute, zap.NewNop())
	defer b.Close()

	var got interface{}
	b.ServeRequest(e.ID, func(event string, payload interface{}) {
		assert.Equal(t, FrameTally, event)
		got = payload
	})
	result, ok := got.(*models.TallyResult)
	require.True(t, ok)
	assert.Equal(t, e.ID.String(), result.EventID)
}
