package participants

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

type rosterEntry struct {
	municipalityID uuid.UUID
	weight         float64
	presentAt      *time.Time
}

type fakeStore struct {
	quorumPct map[uuid.UUID]float64
	roster    map[uuid.UUID]map[uuid.UUID]*rosterEntry
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		quorumPct: make(map[uuid.UUID]float64),
		roster:    make(map[uuid.UUID]map[uuid.UUID]*rosterEntry),
	}
}

func (f *fakeStore) addEvent(pct float64) uuid.UUID {
	id := uuid.New()
	f.quorumPct[id] = pct
	f.roster[id] = make(map[uuid.UUID]*rosterEntry)
	return id
}

func (f *fakeStore) EventQuorumPct(_ context.Context, eventID uuid.UUID) (*float64, error) {
	pct, ok := f.quorumPct[eventID]
	if !ok {
		return nil, nil
	}
	return &pct, nil
}

func (f *fakeStore) EnrollMany(_ context.Context, eventID uuid.UUID, userIDs []uuid.UUID) error {
	for _, userID := range userIDs {
		if _, ok := f.roster[eventID][userID]; !ok {
			f.roster[eventID][userID] = &rosterEntry{municipalityID: uuid.New(), weight: 1}
		}
	}
	return nil
}

func (f *fakeStore) MarkPresent(_ context.Context, eventID, userID uuid.UUID) (bool, error) {
	entry, ok := f.roster[eventID][userID]
	if !ok {
		return false, nil
	}
	if entry.presentAt == nil {
		now := time.Now()
		entry.presentAt = &now
	}
	return true, nil
}

func (f *fakeStore) Roster(_ context.Context, eventID uuid.UUID) ([]models.Participant, error) {
	var list []models.Participant
	for userID, entry := range f.roster[eventID] {
		list = append(list, models.Participant{
			Participation: models.Participation{
				EventID:   eventID,
				UserID:    userID,
				Present:   entry.presentAt != nil,
				PresentAt: entry.presentAt,
			},
			Weight: entry.weight,
		})
	}
	return list, nil
}

func (f *fakeStore) Counts(_ context.Context, eventID uuid.UUID) (QuorumCounts, error) {
	var c QuorumCounts
	seen := make(map[uuid.UUID]bool)
	presentTown := make(map[uuid.UUID]bool)
	weights := make(map[uuid.UUID]float64)
	for _, entry := range f.roster[eventID] {
		c.TotalParticipants++
		if entry.presentAt != nil {
			c.TotalPresent++
			presentTown[entry.municipalityID] = true
		}
		seen[entry.municipalityID] = true
		weights[entry.municipalityID] = entry.weight
	}
	for town := range seen {
		c.EnrolledWeight += weights[town]
		if presentTown[town] {
			c.PresentWeight += weights[town]
		}
	}
	return c, nil
}

func (f *fakeStore) IsPresent(_ context.Context, eventID, userID uuid.UUID) (bool, bool, error) {
	entry, ok := f.roster[eventID][userID]
	if !ok {
		return false, false, nil
	}
	return true, entry.presentAt != nil, nil
}

func newTestService(store *fakeStore) *Service {
	return NewService(store, zap.NewNop())
}

func TestEnrollIdempotent(t *testing.T) {
	store := newFakeStore()
	eventID := store.addEvent(60)
	svc := newTestService(store)

	userID := uuid.New()
	require.NoError(t, svc.Enroll(context.Background(), eventID, userID))
	require.NoError(t, svc.Enroll(context.Background(), eventID, userID))

	roster, err := svc.Roster(context.Background(), eventID)
	require.NoError(t, err)
	assert.Len(t, roster, 1)
}

func TestEnrollUnknownEvent(t *testing.T) {
	svc := newTestService(newFakeStore())
	err := svc.Enroll(context.Background(), uuid.New(), uuid.New())
	assert.True(t, models.IsKind(err, models.ErrEventNotFound), "got %v", err)
}

func TestConfirmPresenceKeepsFirstTimestamp(t *testing.T) {
	store := newFakeStore()
	eventID := store.addEvent(60)
	svc := newTestService(store)

	userID := uuid.New()
	require.NoError(t, svc.Enroll(context.Background(), eventID, userID))
	require.NoError(t, svc.ConfirmPresence(context.Background(), eventID, userID))
	first := *store.roster[eventID][userID].presentAt

	require.NoError(t, svc.ConfirmPresence(context.Background(), eventID, userID))
	assert.Equal(t, first, *store.roster[eventID][userID].presentAt)
}

func TestConfirmPresenceNotEnrolled(t *testing.T) {
	store := newFakeStore()
	eventID := store.addEvent(60)
	svc := newTestService(store)

	err := svc.ConfirmPresence(context.Background(), eventID, uuid.New())
	assert.True(t, models.IsKind(err, models.ErrNotAParticipant), "got %v", err)
}

func TestQuorumWeightedByDistinctMunicipality(t *testing.T) {
	store := newFakeStore()
	eventID := store.addEvent(60)
	svc := newTestService(store)

	// Two participants of the same municipality: weight counts once.
	town := uuid.New()
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	store.roster[eventID][a] = &rosterEntry{municipalityID: town, weight: 3}
	store.roster[eventID][b] = &rosterEntry{municipalityID: town, weight: 3}
	store.roster[eventID][c] = &rosterEntry{municipalityID: uuid.New(), weight: 2}

	require.NoError(t, svc.ConfirmPresence(context.Background(), eventID, a))
	require.NoError(t, svc.ConfirmPresence(context.Background(), eventID, b))

	summary, err := svc.Quorum(context.Background(), eventID)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.TotalParticipants)
	assert.Equal(t, 2, summary.TotalPresent)
	assert.InDelta(t, 3.0, summary.PresentWeight, 1e-9)
	assert.InDelta(t, 5.0, summary.EnrolledWeight, 1e-9)
	assert.InDelta(t, 60.0, summary.WeightPct, 1e-9)
	assert.True(t, summary.QuorumReached)
}

func TestQuorumEmptyRoster(t *testing.T) {
	store := newFakeStore()
	eventID := store.addEvent(60)
	svc := newTestService(store)

	summary, err := svc.Quorum(context.Background(), eventID)
	require.NoError(t, err)
	assert.Zero(t, summary.WeightPct)
	assert.False(t, summary.QuorumReached)
}
