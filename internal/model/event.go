package model

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// EventStatus tracks whether registrations are accepted.
type EventStatus string

const (
	EventUpcoming  EventStatus = "upcoming"
	EventOngoing   EventStatus = "ongoing"
	EventCompleted EventStatus = "completed"
)

// TeamSize bounds the number of members for team events.
type TeamSize struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Prize is one placement reward of an event.
type Prize struct {
	Position string          `json:"position"`
	Amount   decimal.Decimal `json:"amount"`
}

// Event is a festival event in the catalog.
type Event struct {
	ID                  string          `json:"id"`
	Name                string          `json:"name"`
	Description         string          `json:"description"`
	Category            string          `json:"category"`
	Tags                []string        `json:"tags"`
	Date                time.Time       `json:"date"`
	Venue               string          `json:"venue"`
	RegistrationFee     decimal.Decimal `json:"registrationFee"`
	MaxParticipants     int             `json:"maxParticipants"`
	CurrentParticipants int             `json:"currentParticipants"`
	IsTeamEvent         bool            `json:"isTeamEvent"`
	TeamSize            *TeamSize       `json:"teamSize,omitempty"`
	Prizes              []Prize         `json:"prizes,omitempty"`
	Status              EventStatus     `json:"status"`
}

// SpotsLeft reports remaining capacity; zero MaxParticipants means unlimited
// and yields -1.
func (e Event) SpotsLeft() int {
	if e.MaxParticipants <= 0 {
		return -1
	}
	if left := e.MaxParticipants - e.CurrentParticipants; left > 0 {
		return left
	}
	return 0
}

// IsFull is true once a capped event has no spots left.
func (e Event) IsFull() bool {
	return e.SpotsLeft() == 0
}

// Clone returns a copy of e that shares no slices or pointers with it.
func (e Event) Clone() Event {
	e.Tags = slices.Clone(e.Tags)
	e.Prizes = slices.Clone(e.Prizes)
	if e.TeamSize != nil {
		ts := *e.TeamSize
		e.TeamSize = &ts
	}
	return e
}
