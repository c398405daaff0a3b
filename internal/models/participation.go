package models

import (
	"time"

	"github.com/google/uuid"
)

// Participation enrolls a user in a voting event. Unique per (event, user).
type Participation struct {
	ID        uuid.UUID  `json:"id"`
	EventID   uuid.UUID  `json:"event_id"`
	UserID    uuid.UUID  `json:"user_id"`
	Present   bool       `json:"present"`
	PresentAt *time.Time `json:"present_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// Participant is a roster row: participation joined with user and municipality.
type Participant struct {
	Participation
	Name             string     `json:"name"`
	CPF              string     `json:"cpf"`
	Role             Role       `json:"role"`
	MunicipalityID   *uuid.UUID `json:"municipality_id,omitempty"`
	MunicipalityName string     `json:"municipality_name,omitempty"`
	Weight           float64    `json:"weight"`
}

// QuorumSummary is the weighted-presence picture of an event. Weights are
// summed over distinct municipalities, not individual participants.
type QuorumSummary struct {
	TotalParticipants int     `json:"total_participants"`
	TotalPresent      int     `json:"total_present"`
	PresentWeight     float64 `json:"present_weight"`
	EnrolledWeight    float64 `json:"enrolled_weight"`
	WeightPct         float64 `json:"weight_pct"`
	MinQuorumPct      float64 `json:"min_quorum_pct"`
	QuorumReached     bool    `json:"quorum_reached"`
}
