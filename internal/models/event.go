package models

import (
	"time"

	"github.com/google/uuid"
)

// VotingType determines the ballot shape of an event.
type VotingType string

const (
	VotingBinary       VotingType = "BINARIO"
	VotingApproval     VotingType = "APROVACAO"
	VotingAlternatives VotingType = "ALTERNATIVAS"
	VotingYesNo        VotingType = "SIM_NAO"
)

// Implicit options appended to every ALTERNATIVAS ballot.
const (
	OptionBlank   = "Voto em Branco"
	OptionNeither = "Nenhuma das alternativas"
)

// ValidVotingType reports whether s is a known voting type.
func ValidVotingType(s string) bool {
	switch VotingType(s) {
	case VotingBinary, VotingApproval, VotingAlternatives, VotingYesNo:
		return true
	}
	return false
}

// BallotOptions returns the fixed option list for the voting type.
// For ALTERNATIVAS the supplied alternatives are augmented with the blank
// and none-of-the-above options; other types ignore the argument. The list
// is persisted once at event creation and never re-derived afterwards.
func (t VotingType) BallotOptions(alternatives []string) []string {
	switch t {
	case VotingBinary:
		return []string{"Sim", "Não"}
	case VotingApproval:
		return []string{"Aprovar", "Reprovar", "Abstenção"}
	case VotingYesNo:
		return []string{"SIM", "NÃO", "ABSTENÇÃO", "AUSENTE"}
	case VotingAlternatives:
		opts := make([]string, 0, len(alternatives)+2)
		opts = append(opts, alternatives...)
		return append(opts, OptionBlank, OptionNeither)
	}
	return nil
}

// EventStatus is the lifecycle status of a voting event. Transitions are
// strictly forward: RASCUNHO → AGUARDANDO_INICIO → ATIVO → ENCERRADO.
type EventStatus string

const (
	StatusDraft    EventStatus = "RASCUNHO"
	StatusAwaiting EventStatus = "AGUARDANDO_INICIO"
	StatusActive   EventStatus = "ATIVO"
	StatusClosed   EventStatus = "ENCERRADO"
)

// PeriodStatus places the current time relative to the event window.
type PeriodStatus string

const (
	PeriodBefore PeriodStatus = "ANTES_PERIODO"
	PeriodWithin PeriodStatus = "DENTRO_PERIODO"
	PeriodAfter  PeriodStatus = "APOS_PERIODO"
)

// VotingEvent is a single voting exercise with its options, window and status.
type VotingEvent struct {
	ID            uuid.UUID   `json:"id"`
	Title         string      `json:"title"`
	Description   string      `json:"description"`
	VotingType    VotingType  `json:"voting_type"`
	Options       []string    `json:"options"`
	Multiple      bool        `json:"multiple"`
	MaxSelections int         `json:"max_selections"`
	StartsAt      time.Time   `json:"starts_at"`
	EndsAt        time.Time   `json:"ends_at"`
	MinQuorumPct  float64     `json:"min_quorum_pct"`
	Status        EventStatus `json:"status"`
	CreatedBy     uuid.UUID   `json:"created_by"`
	CreatorName   string      `json:"creator_name,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// Period returns where now falls relative to the event window.
// The window is half-open: exactly starts_at is within, exactly ends_at is after.
func (e *VotingEvent) Period(now time.Time) PeriodStatus {
	if now.Before(e.StartsAt) {
		return PeriodBefore
	}
	if !now.Before(e.EndsAt) {
		return PeriodAfter
	}
	return PeriodWithin
}

// HasOption reports whether label is one of the event's ballot options.
func (e *VotingEvent) HasOption(label string) bool {
	for _, o := range e.Options {
		if o == label {
			return true
		}
	}
	return false
}

// SelectionLimit is how many options a single ballot may carry.
func (e *VotingEvent) SelectionLimit() int {
	if e.Multiple && e.MaxSelections > 1 {
		return e.MaxSelections
	}
	return 1
}

// EventSummary is a list-view row with roster and period annotations.
type EventSummary struct {
	VotingEvent
	PeriodStatus       PeriodStatus `json:"period_status"`
	TotalParticipants  int          `json:"total_participants"`
	TotalPresent       int          `json:"total_present"`
	PresentWeight      float64      `json:"present_weight"`
	MunicipalitiesVoted int         `json:"municipalities_voted"`
}
