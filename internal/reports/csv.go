package reports

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/assembleia-vote/backend/internal/models"
)

const timeLayout = "02/01/2006 15:04"

// ReportData is everything a rendered report carries: the event, its quorum
// picture, the roster, the recorded votes and the final tally.
type ReportData struct {
	Event  *models.VotingEvent
	Quorum *models.QuorumSummary
	Roster []models.Participant
	Votes  []models.VoteRecord
	Tally  *models.TallyResult
}

func pct(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64) + "%"
}

func weight(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// RenderCSV renders the report as semicolon-separated CSV, the format the
// municipal spreadsheets expect. Sections are separated by blank lines.
func RenderCSV(data ReportData) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("\uFEFF") // BOM so Excel opens UTF-8 accents correctly
	w := csv.NewWriter(&buf)
	w.Comma = ';'

	e := data.Event
	rows := [][]string{
		{"RELATÓRIO DE VOTAÇÃO"},
		{"Evento", e.Title},
		{"Descrição", e.Description},
		{"Tipo", string(e.VotingType)},
		{"Período", e.StartsAt.Format(timeLayout) + " a " + e.EndsAt.Format(timeLayout)},
		{"Status", string(e.Status)},
		{},
	}

	if q := data.Quorum; q != nil {
		rows = append(rows,
			[]string{"QUÓRUM"},
			[]string{"Participantes cadastrados", strconv.Itoa(q.TotalParticipants)},
			[]string{"Presenças confirmadas", strconv.Itoa(q.TotalPresent)},
			[]string{"Peso presente", weight(q.PresentWeight)},
			[]string{"Peso cadastrado", weight(q.EnrolledWeight)},
			[]string{"Percentual de quórum", pct(q.WeightPct)},
			[]string{"Quórum mínimo", pct(q.MinQuorumPct)},
			[]string{"Quórum atingido", boolPT(q.QuorumReached)},
			[]string{},
		)
	}

	rows = append(rows,
		[]string{"PARTICIPANTES"},
		[]string{"Município", "Nome", "CPF", "Cargo", "Presente", "Peso"},
	)
	for _, p := range data.Roster {
		rows = append(rows, []string{
			p.MunicipalityName, p.Name, p.CPF, string(p.Role),
			boolPT(p.Present), weight(p.Weight),
		})
	}
	rows = append(rows, []string{})

	rows = append(rows,
		[]string{"VOTOS"},
		[]string{"Município", "Votante", "Opção", "Seleção", "Peso", "Registrado em"},
	)
	for _, v := range data.Votes {
		rows = append(rows, []string{
			v.MunicipalityName, v.VoterName, v.Option,
			strconv.Itoa(v.SelectionIndex), weight(v.Weight),
			v.CastAt.Format(timeLayout),
		})
	}
	rows = append(rows, []string{})

	if t := data.Tally; t != nil {
		rows = append(rows,
			[]string{"RESULTADO"},
			[]string{"Opção", "Municípios", "Peso", "% Municípios", "% Peso"},
		)
		for _, opt := range t.Options {
			tally := t.Results[opt]
			rows = append(rows, []string{
				opt, strconv.Itoa(tally.Municipalities), weight(tally.Weight),
				pct(tally.CountPct), pct(tally.WeightPct),
			})
		}
		rows = append(rows,
			[]string{},
			[]string{"Municípios votantes", strconv.Itoa(t.Totals.MunicipalitiesVoted)},
			[]string{"Peso total apurado", weight(t.Totals.TotalWeight)},
			[]string{"Participação", pct(t.Totals.ParticipationPct)},
		)
	}

	if err := w.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return buf.Bytes(), nil
}

func boolPT(b bool) string {
	if b {
		return "Sim"
	}
	return "Não"
}
