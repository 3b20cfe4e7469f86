package models

import "github.com/google/uuid"

// Participant is a registered user as seen by the matchmaking engine. It is
// referenced by rosters, teams and judge panels but never mutated by them.
type Participant struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// Label returns the display name, falling back to a short form of the id.
func (p Participant) Label() string {
	if p.Name != "" {
		return p.Name
	}
	return "User_" + p.ID.String()[:4]
}
