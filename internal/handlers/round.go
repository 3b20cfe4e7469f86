// internal/handlers/round.go
package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/jason-s-yu/apdebate/internal/matchmaking"
	"github.com/jason-s-yu/apdebate/internal/service"
)

type swapRequest struct {
	First  uuid.UUID `json:"first"`
	Second uuid.UUID `json:"second"`
}

type moveRequest struct {
	Participant uuid.UUID `json:"participant"`
	Side        string    `json:"side,omitempty"`
}

type resizeRequest struct {
	Side string `json:"side"`
	Type string `json:"type"`
}

type sealRequest struct {
	Topic string `json:"topic"`
}

func GetRoundHandler(mm *service.Matchmaker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := roundIDParam(r)
		if err != nil {
			writeError(w, err)
			return
		}
		snap, err := mm.GetRound(id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

// roundAction decodes the body into req, then runs fn with the round id and
// caller session and writes the resulting snapshot.
func roundAction[T any](fn func(r *http.Request, id int64, req T) (matchmaking.RoundSnapshot, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := roundIDParam(r)
		if err != nil {
			writeError(w, err)
			return
		}
		var req T
		if err := decodeBody(r, &req); err != nil {
			writeError(w, err)
			return
		}
		snap, err := fn(r, id, req)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

func SwapHandler(mm *service.Matchmaker) http.HandlerFunc {
	return roundAction(func(r *http.Request, id int64, req swapRequest) (matchmaking.RoundSnapshot, error) {
		sess := sessionFrom(r)
		return mm.Swap(id, sess.Participant.ID, sess.Operator, req.First, req.Second)
	})
}

func MoveToJudgeHandler(mm *service.Matchmaker) http.HandlerFunc {
	return roundAction(func(r *http.Request, id int64, req moveRequest) (matchmaking.RoundSnapshot, error) {
		sess := sessionFrom(r)
		return mm.MoveToJudge(id, sess.Participant.ID, sess.Operator, req.Participant)
	})
}

func MoveToTeamHandler(mm *service.Matchmaker) http.HandlerFunc {
	return roundAction(func(r *http.Request, id int64, req moveRequest) (matchmaking.RoundSnapshot, error) {
		side, err := matchmaking.ParseSide(req.Side)
		if err != nil {
			return matchmaking.RoundSnapshot{}, err
		}
		sess := sessionFrom(r)
		return mm.MoveToTeam(id, sess.Participant.ID, sess.Operator, req.Participant, side)
	})
}

func ResizeTeamHandler(mm *service.Matchmaker) http.HandlerFunc {
	return roundAction(func(r *http.Request, id int64, req resizeRequest) (matchmaking.RoundSnapshot, error) {
		side, err := matchmaking.ParseSide(req.Side)
		if err != nil {
			return matchmaking.RoundSnapshot{}, err
		}
		typ, err := matchmaking.ParseTeamType(req.Type)
		if err != nil {
			return matchmaking.RoundSnapshot{}, err
		}
		sess := sessionFrom(r)
		return mm.ResizeTeam(id, sess.Participant.ID, sess.Operator, side, typ)
	})
}

func SealHandler(mm *service.Matchmaker) http.HandlerFunc {
	return roundAction(func(r *http.Request, id int64, req sealRequest) (matchmaking.RoundSnapshot, error) {
		sess := sessionFrom(r)
		return mm.Seal(r.Context(), id, sess.Participant.ID, sess.Operator, req.Topic)
	})
}

func CancelHandler(mm *service.Matchmaker) http.HandlerFunc {
	return roundAction(func(r *http.Request, id int64, _ struct{}) (matchmaking.RoundSnapshot, error) {
		sess := sessionFrom(r)
		return mm.Cancel(id, sess.Participant.ID, sess.Operator)
	})
}
