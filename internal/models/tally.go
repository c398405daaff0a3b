package models

import "time"

// OptionTally aggregates votes for one ballot option. Counts are distinct
// municipalities, not raw vote rows; weight sums the stored snapshots.
type OptionTally struct {
	Municipalities int     `json:"municipalities"`
	Weight         float64 `json:"weight"`
	CountPct       float64 `json:"count_pct"`
	WeightPct      float64 `json:"weight_pct"`
}

// TallyTotals summarizes participation across an event.
type TallyTotals struct {
	MunicipalitiesVoted    int     `json:"municipalities_voted"`
	TotalWeight            float64 `json:"total_weight"`
	EnrolledMunicipalities int     `json:"enrolled_municipalities"`
	ParticipationPct       float64 `json:"participation_pct"`
}

// TallyResult is one internally-consistent snapshot of an event's results.
// Every declared option label is present even with zero votes, so consumers
// never need nil checks.
type TallyResult struct {
	EventID    string                 `json:"event_id"`
	Status     EventStatus            `json:"status"`
	Options    []string               `json:"options"`
	Results    map[string]OptionTally `json:"results"`
	Totals     TallyTotals            `json:"totals"`
	ComputedAt time.Time              `json:"computed_at"`
}
