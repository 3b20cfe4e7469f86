package matchmaking

import (
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/apdebate/internal/models"
)

// SpeakerSnapshot is a filled team slot with its position name.
type SpeakerSnapshot struct {
	Participant models.Participant `json:"participant"`
	Position    string             `json:"position"`
}

// TeamSnapshot is a copy of a team for presentation.
type TeamSnapshot struct {
	Side     Side              `json:"side"`
	Label    string            `json:"label"`
	Type     TeamType          `json:"type"`
	Capacity int               `json:"capacity"`
	Speakers []SpeakerSnapshot `json:"speakers"`
}

// RoundSnapshot is an immutable copy of a round, safe to hand to the
// transport layer after the round's lock is released.
type RoundSnapshot struct {
	ID         int64                `json:"id"`
	Format     RoundFormat          `json:"format"`
	Lobby      string               `json:"lobby"`
	HostID     uuid.UUID            `json:"host_id"`
	State      RoundState           `json:"state"`
	Topic      string               `json:"topic,omitempty"`
	Government TeamSnapshot         `json:"government"`
	Opposition TeamSnapshot         `json:"opposition"`
	Chair      *models.Participant  `json:"chair,omitempty"`
	Panelists  []models.Participant `json:"panelists"`
}

func snapshotTeam(t *Team) TeamSnapshot {
	speakers := make([]SpeakerSnapshot, t.Len())
	for i, p := range t.slots {
		speakers[i] = SpeakerSnapshot{Participant: p, Position: t.PositionName(i)}
	}
	return TeamSnapshot{
		Side:     t.Side,
		Label:    t.Side.Label(),
		Type:     t.Type,
		Capacity: t.Type.Capacity(),
		Speakers: speakers,
	}
}

// Snapshot copies the round under its lock.
func (r *Round) Snapshot() RoundSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	snap := RoundSnapshot{
		ID:         r.ID,
		Format:     r.Format,
		Lobby:      r.Lobby,
		HostID:     r.HostID,
		State:      r.state,
		Topic:      r.topic,
		Government: snapshotTeam(r.pro),
		Opposition: snapshotTeam(r.con),
		Panelists:  r.judges.Panelists(),
	}
	if c, ok := r.judges.Chair(); ok {
		snap.Chair = &c
	}
	return snap
}

// Record converts a sealed round snapshot into its archived form.
func (s RoundSnapshot) Record(sealedAt time.Time) models.RoundRecord {
	speakers := func(t TeamSnapshot) []models.SpeakerRecord {
		out := make([]models.SpeakerRecord, len(t.Speakers))
		for i, sp := range t.Speakers {
			out[i] = models.SpeakerRecord{Participant: sp.Participant, Position: sp.Position}
		}
		return out
	}
	return models.RoundRecord{
		RoundID:    s.ID,
		Lobby:      s.Lobby,
		Format:     string(s.Format),
		Topic:      s.Topic,
		HostID:     s.HostID,
		Government: speakers(s.Government),
		Opposition: speakers(s.Opposition),
		Chair:      s.Chair,
		Panelists:  s.Panelists,
		SealedAt:   sealedAt.UnixMilli(),
	}
}
