package models

import (
	"time"

	"github.com/google/uuid"
)

// Municipality is a voting municipality with its tally weight.
type Municipality struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Weight    float64   `json:"weight"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
