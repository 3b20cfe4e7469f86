package models

import "github.com/google/uuid"

// SpeakerRecord is one filled team slot in an archived round.
type SpeakerRecord struct {
	Participant Participant `json:"participant"`
	Position    string      `json:"position"`
}

// RoundRecord is the archived form of a sealed round, published to the
// historian queue and persisted by the historian service.
type RoundRecord struct {
	RoundID    int64           `json:"round_id"`
	Lobby      string          `json:"lobby"`
	Format     string          `json:"format"`
	Topic      string          `json:"topic"`
	HostID     uuid.UUID       `json:"host_id"`
	Government []SpeakerRecord `json:"government"`
	Opposition []SpeakerRecord `json:"opposition"`
	Chair      *Participant    `json:"chair,omitempty"`
	Panelists  []Participant   `json:"panelists"`
	SealedAt   int64           `json:"sealed_at"` // epoch millis
}
