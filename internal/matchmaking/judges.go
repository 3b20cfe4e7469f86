package matchmaking

import (
	"slices"

	"github.com/google/uuid"
	"github.com/jason-s-yu/apdebate/internal/models"
)

// JudgePanel is a chair plus panelists in promotion order. The chair never
// appears among the panelists.
type JudgePanel struct {
	chair     *models.Participant
	panelists []models.Participant
}

// Add seats p as chair when the chair is empty, otherwise appends p to the
// panelists. Adding a judge already on the panel is a no-op.
func (jp *JudgePanel) Add(p models.Participant) {
	if jp.contains(p.ID) {
		return
	}
	if jp.chair == nil {
		jp.chair = &p
		return
	}
	jp.panelists = append(jp.panelists, p)
}

// Remove takes id off the panel. Removing the chair promotes the first
// panelist. It reports whether id was on the panel.
func (jp *JudgePanel) Remove(id uuid.UUID) bool {
	if jp.chair != nil && jp.chair.ID == id {
		jp.chair = nil
		if len(jp.panelists) > 0 {
			next := jp.panelists[0]
			jp.chair = &next
			jp.panelists = slices.Delete(jp.panelists, 0, 1)
		}
		return true
	}
	if i := indexOf(jp.panelists, id); i >= 0 {
		jp.panelists = slices.Delete(jp.panelists, i, i+1)
		return true
	}
	return false
}

// Chair returns the chair and whether one is seated.
func (jp *JudgePanel) Chair() (models.Participant, bool) {
	if jp.chair == nil {
		return models.Participant{}, false
	}
	return *jp.chair, true
}

func (jp *JudgePanel) Panelists() []models.Participant { return slices.Clone(jp.panelists) }

// All returns the chair followed by the panelists.
func (jp *JudgePanel) All() []models.Participant {
	all := make([]models.Participant, 0, jp.Len())
	if jp.chair != nil {
		all = append(all, *jp.chair)
	}
	return append(all, jp.panelists...)
}

func (jp *JudgePanel) Len() int {
	n := len(jp.panelists)
	if jp.chair != nil {
		n++
	}
	return n
}

func (jp *JudgePanel) contains(id uuid.UUID) bool {
	return (jp.chair != nil && jp.chair.ID == id) || indexOf(jp.panelists, id) >= 0
}
