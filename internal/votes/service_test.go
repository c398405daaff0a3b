package votes

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/assembleia-vote/backend/internal/models"
)

type participation struct {
	enrolled bool
	present  bool
}

type fakeStore struct {
	mu             sync.Mutex
	event          *models.VotingEvent
	participations map[uuid.UUID]participation
	weights        map[uuid.UUID]float64
	voterNames     map[uuid.UUID]string
	ballots        map[uuid.UUID][]models.Vote // keyed by municipality
}

func newFakeStore(e *models.VotingEvent) *fakeStore {
	return &fakeStore{
		event:          e,
		participations: make(map[uuid.UUID]participation),
		weights:        make(map[uuid.UUID]float64),
		voterNames:     make(map[uuid.UUID]string),
		ballots:        make(map[uuid.UUID][]models.Vote),
	}
}

func (f *fakeStore) GetEvent(_ context.Context, eventID uuid.UUID) (*models.VotingEvent, error) {
	if f.event == nil || f.event.ID != eventID {
		return nil, nil
	}
	cp := *f.event
	return &cp, nil
}

func (f *fakeStore) Participation(_ context.Context, _, userID uuid.UUID) (bool, bool, error) {
	p := f.participations[userID]
	return p.enrolled, p.present, nil
}

func (f *fakeStore) MunicipalityBallot(_ context.Context, _, municipalityID uuid.UUID) (models.MunicipalityBallot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rows := f.ballots[municipalityID]
	if len(rows) == 0 {
		return models.MunicipalityBallot{}, nil
	}
	return models.MunicipalityBallot{
		Voted:     true,
		VoterName: f.voterNames[rows[0].UserID],
		Count:     len(rows),
	}, nil
}

func (f *fakeStore) MunicipalityWeight(_ context.Context, municipalityID uuid.UUID) (float64, error) {
	return f.weights[municipalityID], nil
}

func (f *fakeStore) InsertBallot(_ context.Context, ballot []models.Vote) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	town := ballot[0].MunicipalityID
	if len(f.ballots[town]) > 0 {
		return ErrDuplicateBallot
	}
	f.ballots[town] = append([]models.Vote(nil), ballot...)
	return nil
}

func activeEvent(now time.Time) *models.VotingEvent {
	return &models.VotingEvent{
		ID:         uuid.New(),
		Title:      "Aprovação de contas",
		VotingType: models.VotingApproval,
		Options:    models.VotingApproval.BallotOptions(nil),
		StartsAt:   now.Add(-time.Hour),
		EndsAt:     now.Add(time.Hour),
		Status:     models.StatusActive,
	}
}

type voter struct {
	userID uuid.UUID
	town   uuid.UUID
}

func enrollVoter(store *fakeStore, weight float64, present bool) voter {
	v := voter{userID: uuid.New(), town: uuid.New()}
	store.participations[v.userID] = participation{enrolled: true, present: present}
	store.weights[v.town] = weight
	store.voterNames[v.userID] = "Prefeito " + v.userID.String()[:8]
	return v
}

func newTestService(store *fakeStore, now time.Time) *Service {
	s := NewService(store, zap.NewNop())
	s.now = func() time.Time { return now }
	return s
}

func castParams(e *models.VotingEvent, v voter, selections ...string) CastParams {
	town := v.town
	return CastParams{
		EventID:        e.ID,
		UserID:         v.userID,
		MunicipalityID: &town,
		Selections:     selections,
	}
}

func TestCastRecordsWeightSnapshot(t *testing.T) {
	now := time.Now()
	e := activeEvent(now)
	store := newFakeStore(e)
	v := enrollVoter(store, 2.5, true)
	svc := newTestService(store, now)

	ballot, err := svc.Cast(context.Background(), castParams(e, v, "Aprovar"))
	require.NoError(t, err)
	require.Len(t, ballot, 1)
	assert.Equal(t, "Aprovar", ballot[0].Option)
	assert.Equal(t, 1, ballot[0].SelectionIndex)
	assert.InDelta(t, 2.5, ballot[0].Weight, 1e-9)

	// Later weight edits must not touch the stored snapshot.
	store.weights[v.town] = 9
	assert.InDelta(t, 2.5, store.ballots[v.town][0].Weight, 1e-9)
}

func TestCastPreconditionOrder(t *testing.T) {
	now := time.Now()

	t.Run("unknown event", func(t *testing.T) {
		store := newFakeStore(activeEvent(now))
		svc := newTestService(store, now)
		v := enrollVoter(store, 1, true)
		p := castParams(store.event, v, "Aprovar")
		p.EventID = uuid.New()
		_, err := svc.Cast(context.Background(), p)
		assert.True(t, models.IsKind(err, models.ErrEventNotFound), "got %v", err)
	})

	t.Run("before window beats released check", func(t *testing.T) {
		e := activeEvent(now)
		e.StartsAt = now.Add(time.Minute)
		e.Status = models.StatusDraft
		store := newFakeStore(e)
		svc := newTestService(store, now)
		v := enrollVoter(store, 1, true)
		_, err := svc.Cast(context.Background(), castParams(e, v, "Aprovar"))
		assert.True(t, models.IsKind(err, models.ErrPeriodNotStarted), "got %v", err)
	})

	t.Run("closed window beats enrollment check", func(t *testing.T) {
		e := activeEvent(now)
		e.EndsAt = now.Add(-time.Minute)
		store := newFakeStore(e)
		svc := newTestService(store, now)
		v := voter{userID: uuid.New(), town: uuid.New()} // not enrolled
		_, err := svc.Cast(context.Background(), castParams(e, v, "Aprovar"))
		assert.True(t, models.IsKind(err, models.ErrPeriodClosed), "got %v", err)
	})

	t.Run("not released", func(t *testing.T) {
		e := activeEvent(now)
		e.Status = models.StatusAwaiting
		store := newFakeStore(e)
		svc := newTestService(store, now)
		v := enrollVoter(store, 1, true)
		_, err := svc.Cast(context.Background(), castParams(e, v, "Aprovar"))
		assert.True(t, models.IsKind(err, models.ErrVotingNotReleased), "got %v", err)
	})

	t.Run("invalid option beats enrollment check", func(t *testing.T) {
		e := activeEvent(now)
		store := newFakeStore(e)
		svc := newTestService(store, now)
		v := voter{userID: uuid.New(), town: uuid.New()} // not enrolled
		_, err := svc.Cast(context.Background(), castParams(e, v, "Talvez"))
		assert.True(t, models.IsKind(err, models.ErrInvalidOption), "got %v", err)
	})

	t.Run("empty selection", func(t *testing.T) {
		e := activeEvent(now)
		store := newFakeStore(e)
		svc := newTestService(store, now)
		v := enrollVoter(store, 1, true)
		_, err := svc.Cast(context.Background(), castParams(e, v))
		assert.True(t, models.IsKind(err, models.ErrInvalidOption), "got %v", err)
	})

	t.Run("duplicate selection", func(t *testing.T) {
		e := activeEvent(now)
		store := newFakeStore(e)
		svc := newTestService(store, now)
		v := enrollVoter(store, 1, true)
		_, err := svc.Cast(context.Background(), castParams(e, v, "Aprovar", "Aprovar"))
		assert.True(t, models.IsKind(err, models.ErrInvalidOption), "got %v", err)
	})

	t.Run("too many selections on single-choice ballot", func(t *testing.T) {
		e := activeEvent(now)
		store := newFakeStore(e)
		svc := newTestService(store, now)
		v := enrollVoter(store, 1, true)
		_, err := svc.Cast(context.Background(), castParams(e, v, "Aprovar", "Reprovar"))
		assert.True(t, models.IsKind(err, models.ErrTooManySelections), "got %v", err)
	})

	t.Run("not enrolled", func(t *testing.T) {
		e := activeEvent(now)
		store := newFakeStore(e)
		svc := newTestService(store, now)
		v := voter{userID: uuid.New(), town: uuid.New()}
		_, err := svc.Cast(context.Background(), castParams(e, v, "Aprovar"))
		assert.True(t, models.IsKind(err, models.ErrNotAParticipant), "got %v", err)
	})

	t.Run("admin without municipality", func(t *testing.T) {
		e := activeEvent(now)
		store := newFakeStore(e)
		svc := newTestService(store, now)
		v := enrollVoter(store, 1, true)
		p := castParams(e, v, "Aprovar")
		p.MunicipalityID = nil
		_, err := svc.Cast(context.Background(), p)
		assert.True(t, models.IsKind(err, models.ErrNotAParticipant), "got %v", err)
	})

	t.Run("enrolled but absent", func(t *testing.T) {
		e := activeEvent(now)
		store := newFakeStore(e)
		svc := newTestService(store, now)
		v := enrollVoter(store, 1, false)
		_, err := svc.Cast(context.Background(), castParams(e, v, "Aprovar"))
		assert.True(t, models.IsKind(err, models.ErrPresenceRequired), "got %v", err)
	})
}

func TestCastWindowBoundaries(t *testing.T) {
	now := time.Now().Truncate(time.Second)
	e := activeEvent(now)
	e.StartsAt = now
	e.EndsAt = now.Add(time.Hour)
	store := newFakeStore(e)
	v := enrollVoter(store, 1, true)

	// Exactly at starts_at: accepted.
	svc := newTestService(store, now)
	_, err := svc.Cast(context.Background(), castParams(e, v, "Aprovar"))
	require.NoError(t, err)

	// Exactly at ends_at: rejected.
	w := enrollVoter(store, 1, true)
	svc = newTestService(store, e.EndsAt)
	_, err = svc.Cast(context.Background(), castParams(e, w, "Aprovar"))
	assert.True(t, models.IsKind(err, models.ErrPeriodClosed), "got %v", err)
}

func TestCastMultiSelect(t *testing.T) {
	now := time.Now()
	e := activeEvent(now)
	e.VotingType = models.VotingAlternatives
	e.Options = models.VotingAlternatives.BallotOptions([]string{"Obra A", "Obra B", "Obra C"})
	e.Multiple = true
	e.MaxSelections = 2
	store := newFakeStore(e)
	v := enrollVoter(store, 1.5, true)
	svc := newTestService(store, now)

	ballot, err := svc.Cast(context.Background(), castParams(e, v, "Obra A", "Obra C"))
	require.NoError(t, err)
	require.Len(t, ballot, 2)
	assert.Equal(t, 1, ballot[0].SelectionIndex)
	assert.Equal(t, 2, ballot[1].SelectionIndex)

	_, err = svc.Cast(context.Background(), castParams(e, enrollVoter(store, 1, true), "Obra A", "Obra B", "Obra C"))
	assert.True(t, models.IsKind(err, models.ErrTooManySelections), "got %v", err)
}

func TestCastSecondBallotSameMunicipality(t *testing.T) {
	now := time.Now()
	e := activeEvent(now)
	store := newFakeStore(e)
	first := enrollVoter(store, 1, true)
	svc := newTestService(store, now)

	_, err := svc.Cast(context.Background(), castParams(e, first, "Aprovar"))
	require.NoError(t, err)

	// A colleague from the same municipality tries next.
	second := voter{userID: uuid.New(), town: first.town}
	store.participations[second.userID] = participation{enrolled: true, present: true}
	_, err = svc.Cast(context.Background(), castParams(e, second, "Reprovar"))
	require.True(t, models.IsKind(err, models.ErrAlreadyVoted), "got %v", err)
	assert.Contains(t, err.Error(), store.voterNames[first.userID])
}

func TestCastConcurrentSameMunicipality(t *testing.T) {
	now := time.Now()
	e := activeEvent(now)
	store := newFakeStore(e)
	svc := newTestService(store, now)

	town := uuid.New()
	store.weights[town] = 1
	const voters = 8
	ids := make([]uuid.UUID, voters)
	for i := range ids {
		ids[i] = uuid.New()
		store.participations[ids[i]] = participation{enrolled: true, present: true}
		store.voterNames[ids[i]] = "Representante"
	}

	var wg sync.WaitGroup
	results := make([]error, voters)
	for i := 0; i < voters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			t := town
			_, results[i] = svc.Cast(context.Background(), CastParams{
				EventID:        e.ID,
				UserID:         ids[i],
				MunicipalityID: &t,
				Selections:     []string{"Aprovar"},
			})
		}(i)
	}
	wg.Wait()

	var okCount int
	for _, err := range results {
		if err == nil {
			okCount++
		} else {
			assert.True(t, models.IsKind(err, models.ErrAlreadyVoted), "got %v", err)
		}
	}
	assert.Equal(t, 1, okCount, "exactly one ballot must win")
	assert.Len(t, store.ballots[town], 1)
}

func TestVoteHookFiresAfterCast(t *testing.T) {
	now := time.Now()
	e := activeEvent(now)
	store := newFakeStore(e)
	v := enrollVoter(store, 1, true)
	svc := newTestService(store, now)

	var hooked uuid.UUID
	svc.SetVoteHook(func(_ context.Context, eventID uuid.UUID) { hooked = eventID })

	_, err := svc.Cast(context.Background(), castParams(e, v, "Aprovar"))
	require.NoError(t, err)
	assert.Equal(t, e.ID, hooked)
}

func TestStatus(t *testing.T) {
	now := time.Now()
	e := activeEvent(now)
	store := newFakeStore(e)
	v := enrollVoter(store, 1, true)
	svc := newTestService(store, now)

	town := v.town
	ballot, err := svc.Status(context.Background(), e.ID, &town)
	require.NoError(t, err)
	assert.False(t, ballot.Voted)

	_, err = svc.Cast(context.Background(), castParams(e, v, "Aprovar"))
	require.NoError(t, err)

	ballot, err = svc.Status(context.Background(), e.ID, &town)
	require.NoError(t, err)
	assert.True(t, ballot.Voted)
	assert.Equal(t, 1, ballot.Count)
}
