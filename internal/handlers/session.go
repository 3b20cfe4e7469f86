// internal/handlers/session.go
package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jason-s-yu/apdebate/internal/auth"
	"github.com/jason-s-yu/apdebate/internal/matchmaking"
	"github.com/jason-s-yu/apdebate/internal/models"
	"github.com/sirupsen/logrus"
)

type sessionRequest struct {
	Name        string `json:"name"`
	OperatorKey string `json:"operator_key,omitempty"`
}

type sessionResponse struct {
	Token       string             `json:"token"`
	Participant models.Participant `json:"participant"`
	Operator    bool               `json:"operator"`
}

// CreateSessionHandler issues a session token for a display name. A caller
// that already holds a valid token keeps its participant id, so renaming
// does not drop lobby registrations. Supplying the operator key grants the
// operator claim.
func CreateSessionHandler(logger *logrus.Logger, operatorKeyHash string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req sessionRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, err)
			return
		}
		name := strings.TrimSpace(req.Name)
		if name == "" {
			writeError(w, fmt.Errorf("name is required: %w", matchmaking.ErrInvalidArgument))
			return
		}

		p := models.Participant{ID: uuid.New(), Name: name}
		if prev, err := authenticate(r); err == nil {
			p.ID = prev.Participant.ID
		}

		operator := false
		if req.OperatorKey != "" {
			ok, err := verifyOperator(req.OperatorKey, operatorKeyHash)
			if err != nil {
				logger.WithError(err).Error("operator key check failed")
			}
			if !ok {
				writeJSON(w, http.StatusForbidden, errorBody{Error: "operator key rejected", Kind: "permission_denied"})
				return
			}
			operator = true
		}

		token, err := auth.CreateJWT(p, operator)
		if err != nil {
			logger.WithError(err).Error("failed to sign session token")
			writeError(w, err)
			return
		}
		http.SetCookie(w, &http.Cookie{
			Name:     authCookieName,
			Value:    token,
			HttpOnly: true,
			Path:     "/",
			SameSite: http.SameSiteLaxMode,
		})
		logger.WithFields(logrus.Fields{"participant": p.ID, "operator": operator}).Debug("session issued")
		writeJSON(w, http.StatusOK, sessionResponse{Token: token, Participant: p, Operator: operator})
	}
}

func verifyOperator(key, hash string) (bool, error) {
	if hash == "" {
		return false, nil
	}
	return auth.VerifyOperatorKey(key, hash)
}
