// internal/matchmaking/errors.go
package matchmaking

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the engine wraps exactly one of these so
// callers can classify it with errors.Is.
var (
	ErrNotFound            = errors.New("not found")
	ErrAlreadyExists       = errors.New("already exists")
	ErrInvalidState        = errors.New("invalid state")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrNoMatchingFormat    = errors.New("no matching round format")
	ErrInsufficientPlayers = errors.New("insufficient players")
	ErrInvalidArgument     = errors.New("invalid argument")
)

var (
	ErrRoundClosed = fmt.Errorf("round is no longer open: %w", ErrInvalidState)
	ErrTeamFull    = fmt.Errorf("team is full: %w", ErrInvalidState)
	ErrNotInRound  = fmt.Errorf("participant is not in the round: %w", ErrNotFound)
	ErrNotOnTeam   = fmt.Errorf("participant is not on a team: %w", ErrInvalidState)
	ErrNotJudge    = fmt.Errorf("participant is not a judge: %w", ErrInvalidState)
	ErrEmptyTopic  = fmt.Errorf("topic cannot be empty: %w", ErrInvalidArgument)
	ErrBadSide     = fmt.Errorf("unknown team side: %w", ErrInvalidArgument)
	ErrBadTeamType = fmt.Errorf("unknown team type: %w", ErrInvalidArgument)
)

var (
	ErrLobbyExists    = fmt.Errorf("lobby already exists: %w", ErrAlreadyExists)
	ErrLobbyNotFound  = fmt.Errorf("lobby not found: %w", ErrNotFound)
	ErrLobbyClosed    = fmt.Errorf("lobby is closed: %w", ErrInvalidState)
	ErrRoundNotFound  = fmt.Errorf("round not found: %w", ErrNotFound)
	ErrNotHost        = fmt.Errorf("requester is not the lobby host: %w", ErrPermissionDenied)
	ErrBlankLobbyName = fmt.Errorf("lobby name cannot be blank: %w", ErrInvalidArgument)
)
