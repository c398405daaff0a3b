package models

import (
	"time"

	"github.com/google/uuid"
)

// Vote is one recorded selection. A multi-select ballot produces one row per
// selection sharing (event, municipality) and differing by SelectionIndex.
// Weight is the municipality weight snapshot taken at cast time; later weight
// edits never alter it.
type Vote struct {
	ID             uuid.UUID `json:"id"`
	EventID        uuid.UUID `json:"event_id"`
	UserID         uuid.UUID `json:"user_id"`
	MunicipalityID uuid.UUID `json:"municipality_id"`
	Option         string    `json:"option"`
	SelectionIndex int       `json:"selection_index"`
	Weight         float64   `json:"weight"`
	CastAt         time.Time `json:"cast_at"`
}

// VoteRecord is a vote joined with voter and municipality names (reports).
type VoteRecord struct {
	Vote
	VoterName        string `json:"voter_name"`
	VoterCPF         string `json:"voter_cpf"`
	MunicipalityName string `json:"municipality_name"`
}

// MunicipalityBallot describes whether a municipality has voted in an event.
type MunicipalityBallot struct {
	Voted     bool   `json:"voted"`
	VoterName string `json:"voter_name,omitempty"`
	Count     int    `json:"count"`
}
