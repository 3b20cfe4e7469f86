// internal/handlers/lobby.go
package handlers

import (
	"net/http"

	"github.com/jason-s-yu/apdebate/internal/lobby"
	"github.com/jason-s-yu/apdebate/internal/matchmaking"
	"github.com/jason-s-yu/apdebate/internal/service"
)

type createLobbyRequest struct {
	Name string `json:"name"`
}

type joinRequest struct {
	Role string `json:"role"`
}

type joinResponse struct {
	Outcome  string               `json:"outcome"`
	Previous string               `json:"previous,omitempty"`
	Lobby    lobby.RosterSnapshot `json:"lobby"`
}

type leaveResponse struct {
	Removed bool                 `json:"removed"`
	Lobby   lobby.RosterSnapshot `json:"lobby"`
}

type clearResponse struct {
	Dropped int                  `json:"dropped"`
	Lobby   lobby.RosterSnapshot `json:"lobby"`
}

// ListLobbiesHandler returns the lobbies the caller hosts or is registered in.
func ListLobbiesHandler(mm *service.Matchmaker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := sessionFrom(r)
		writeJSON(w, http.StatusOK, mm.ListLobbies(sess.Participant.ID))
	}
}

// LobbyNamesHandler lists every live lobby name.
func LobbyNamesHandler(mm *service.Matchmaker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, mm.LobbyNames())
	}
}

// CreateLobbyHandler creates a lobby hosted by the caller.
func CreateLobbyHandler(mm *service.Matchmaker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createLobbyRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, err)
			return
		}
		snap, err := mm.CreateLobby(req.Name, sessionFrom(r).Participant)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, snap)
	}
}

func GetLobbyHandler(mm *service.Matchmaker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := mm.GetLobby(lobbyNameParam(r))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

// EndLobbyHandler disbands a lobby (host or operator).
func EndLobbyHandler(mm *service.Matchmaker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := sessionFrom(r)
		if _, err := mm.EndLobby(lobbyNameParam(r), sess.Participant.ID, sess.Operator); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// JoinLobbyHandler registers the caller as a debater or judge.
func JoinLobbyHandler(mm *service.Matchmaker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req joinRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, err)
			return
		}
		role, err := matchmaking.ParseRole(req.Role)
		if err != nil {
			writeError(w, err)
			return
		}
		res, err := mm.Join(lobbyNameParam(r), sessionFrom(r).Participant, role)
		if err != nil {
			writeError(w, err)
			return
		}
		resp := joinResponse{Outcome: res.Outcome.String(), Lobby: res.Snapshot}
		if res.Previous != matchmaking.RoleNone {
			resp.Previous = res.Previous.String()
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func LeaveLobbyHandler(mm *service.Matchmaker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		removed, snap, err := mm.Leave(lobbyNameParam(r), sessionFrom(r).Participant.ID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, leaveResponse{Removed: removed, Lobby: snap})
	}
}

// ClearLobbyHandler empties the roster (host or operator).
func ClearLobbyHandler(mm *service.Matchmaker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := sessionFrom(r)
		n, snap, err := mm.ClearLobby(lobbyNameParam(r), sess.Participant.ID, sess.Operator)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, clearResponse{Dropped: n, Lobby: snap})
	}
}

// StartRoundHandler allocates a round from the lobby roster.
func StartRoundHandler(mm *service.Matchmaker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := sessionFrom(r)
		snap, err := mm.StartRound(lobbyNameParam(r), sess.Participant.ID, sess.Operator)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, snap)
	}
}
