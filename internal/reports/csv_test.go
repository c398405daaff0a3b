package reports

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assembleia-vote/backend/internal/models"
)

func TestRenderCSV(t *testing.T) {
	eventID := uuid.New()
	castAt := time.Date(2026, 8, 20, 14, 30, 0, 0, time.UTC)
	data := ReportData{
		Event: &models.VotingEvent{
			ID:          eventID,
			Title:       "Aprovação do orçamento",
			Description: "Orçamento anual do consórcio",
			VotingType:  models.VotingBinary,
			Options:     models.VotingBinary.BallotOptions(nil),
			StartsAt:    castAt.Add(-time.Hour),
			EndsAt:      castAt.Add(time.Hour),
			Status:      models.StatusClosed,
		},
		Quorum: &models.QuorumSummary{
			TotalParticipants: 2,
			TotalPresent:      2,
			PresentWeight:     4,
			EnrolledWeight:    4,
			WeightPct:         100,
			MinQuorumPct:      60,
			QuorumReached:     true,
		},
		Roster: []models.Participant{
			{
				Participation:    models.Participation{Present: true},
				Name:             "Maria Souza",
				CPF:              "00000000191",
				Role:             models.RoleMayor,
				MunicipalityName: "Vitória",
				Weight:           2.5,
			},
		},
		Votes: []models.VoteRecord{
			{
				Vote: models.Vote{
					Option:         "Sim",
					SelectionIndex: 1,
					Weight:         2.5,
					CastAt:         castAt,
				},
				VoterName:        "Maria Souza",
				MunicipalityName: "Vitória",
			},
		},
		Tally: &models.TallyResult{
			EventID: eventID.String(),
			Options: []string{"Sim", "Não"},
			Results: map[string]models.OptionTally{
				"Sim": {Municipalities: 1, Weight: 2.5, CountPct: 100, WeightPct: 100},
				"Não": {},
			},
			Totals: models.TallyTotals{
				MunicipalitiesVoted:    1,
				TotalWeight:            2.5,
				EnrolledMunicipalities: 2,
				ParticipationPct:       50,
			},
		},
	}

	body, err := RenderCSV(data)
	require.NoError(t, err)
	out := string(body)

	assert.True(t, strings.HasPrefix(out, "\uFEFF"), "missing UTF-8 BOM")
	assert.Contains(t, out, "RELATÓRIO DE VOTAÇÃO")
	assert.Contains(t, out, "Evento;Aprovação do orçamento")
	assert.Contains(t, out, "Quórum atingido;Sim")
	assert.Contains(t, out, "Vitória;Maria Souza;00000000191;PREFEITO;Sim;2.50")
	assert.Contains(t, out, "Vitória;Maria Souza;Sim;1;2.50;20/08/2026 14:30")
	assert.Contains(t, out, "Sim;1;2.50;100.00%;100.00%")
	assert.Contains(t, out, "Não;0;0.00;0.00%;0.00%")
	assert.Contains(t, out, "Participação;50.00%")
}

func TestRenderCSVWithoutOptionalSections(t *testing.T) {
	data := ReportData{
		Event: &models.VotingEvent{
			ID:         uuid.New(),
			Title:      "Pauta sem votos",
			VotingType: models.VotingApproval,
			Options:    models.VotingApproval.BallotOptions(nil),
			Status:     models.StatusDraft,
		},
	}
	body, err := RenderCSV(data)
	require.NoError(t, err)
	out := string(body)
	assert.Contains(t, out, "PARTICIPANTES")
	assert.Contains(t, out, "VOTOS")
	assert.NotContains(t, out, "QUÓRUM\n")
	assert.NotContains(t, out, "RESULTADO")
}
