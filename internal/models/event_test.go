package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBallotOptions(t *testing.T) {
	assert.Equal(t, []string{"Sim", "Não"}, VotingBinary.BallotOptions(nil))
	assert.Equal(t, []string{"Aprovar", "Reprovar", "Abstenção"}, VotingApproval.BallotOptions(nil))
	assert.Equal(t, []string{"SIM", "NÃO", "ABSTENÇÃO", "AUSENTE"}, VotingYesNo.BallotOptions(nil))
	assert.Equal(t,
		[]string{"Chapa 1", "Chapa 2", OptionBlank, OptionNeither},
		VotingAlternatives.BallotOptions([]string{"Chapa 1", "Chapa 2"}))
}

func TestBallotOptionsIgnoresAlternativesForFixedTypes(t *testing.T) {
	assert.Equal(t, []string{"Sim", "Não"}, VotingBinary.BallotOptions([]string{"X", "Y"}))
}

func TestPeriodBoundaries(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)
	e := &VotingEvent{StartsAt: start, EndsAt: end}

	assert.Equal(t, PeriodBefore, e.Period(start.Add(-time.Second)))
	assert.Equal(t, PeriodWithin, e.Period(start), "exactly starts_at is within the window")
	assert.Equal(t, PeriodWithin, e.Period(end.Add(-time.Second)))
	assert.Equal(t, PeriodAfter, e.Period(end), "exactly ends_at is outside the window")
}

func TestSelectionLimit(t *testing.T) {
	single := &VotingEvent{Multiple: false, MaxSelections: 5}
	assert.Equal(t, 1, single.SelectionLimit())

	multi := &VotingEvent{Multiple: true, MaxSelections: 3}
	assert.Equal(t, 3, multi.SelectionLimit())

	degenerate := &VotingEvent{Multiple: true, MaxSelections: 1}
	assert.Equal(t, 1, degenerate.SelectionLimit())
}

func TestDomainErrorMessages(t *testing.T) {
	err := InvalidOption("Talvez", []string{"Sim", "Não"})
	assert.Equal(t, ErrInvalidOption, err.Kind)
	assert.Contains(t, err.Message, `"Talvez"`)
	assert.Contains(t, err.Message, "Sim, Não")

	err = TooManySelections(3, 2)
	assert.Equal(t, ErrTooManySelections, err.Kind)
	assert.Contains(t, err.Message, "3")
	assert.Contains(t, err.Message, "2")

	err = AlreadyVoted("Maria Silva")
	assert.Equal(t, ErrAlreadyVoted, err.Kind)
	assert.Contains(t, err.Message, "Maria Silva")

	assert.True(t, IsKind(PresenceRequired(), ErrPresenceRequired))
	assert.False(t, IsKind(PresenceRequired(), ErrAlreadyVoted))
}
