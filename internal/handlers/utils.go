// internal/handlers/utils.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jason-s-yu/apdebate/internal/auth"
	"github.com/jason-s-yu/apdebate/internal/matchmaking"
)

const authCookieName = "auth_token"

type ctxKey int

const sessionKey ctxKey = iota

// extractCookieToken extracts a named cookie value from "Cookie" header, or returns empty if not found.
func extractCookieToken(cookieHeader, cookieName string) string {
	for _, part := range strings.Split(cookieHeader, ";") {
		name, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if ok && name == cookieName {
			return value
		}
	}
	return ""
}

// extractToken looks for a session token in the auth cookie, then in a
// Bearer authorization header.
func extractToken(r *http.Request) string {
	if token := extractCookieToken(r.Header.Get("Cookie"), authCookieName); token != "" {
		return token
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return ""
}

// authenticate resolves the caller's session from the request.
func authenticate(r *http.Request) (auth.Session, error) {
	token := extractToken(r)
	if token == "" {
		return auth.Session{}, auth.ErrInvalidToken
	}
	return auth.AuthenticateJWT(token)
}

// RequireSession rejects requests without a valid session token and stores
// the session in the request context.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := authenticate(r)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: "a valid session token is required", Kind: "unauthenticated"})
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey, sess)))
	})
}

func sessionFrom(r *http.Request) auth.Session {
	sess, _ := r.Context().Value(sessionKey).(auth.Session)
	return sess
}

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps engine error kinds onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	status, kind := http.StatusInternalServerError, "internal"
	switch {
	case errors.Is(err, matchmaking.ErrNotFound):
		status, kind = http.StatusNotFound, "not_found"
	case errors.Is(err, matchmaking.ErrAlreadyExists):
		status, kind = http.StatusConflict, "already_exists"
	case errors.Is(err, matchmaking.ErrInvalidState):
		status, kind = http.StatusConflict, "invalid_state"
	case errors.Is(err, matchmaking.ErrPermissionDenied):
		status, kind = http.StatusForbidden, "permission_denied"
	case errors.Is(err, matchmaking.ErrNoMatchingFormat):
		status, kind = http.StatusUnprocessableEntity, "no_matching_format"
	case errors.Is(err, matchmaking.ErrInsufficientPlayers):
		status, kind = http.StatusUnprocessableEntity, "insufficient_players"
	case errors.Is(err, matchmaking.ErrInvalidArgument):
		status, kind = http.StatusBadRequest, "invalid_argument"
	}
	writeJSON(w, status, errorBody{Error: err.Error(), Kind: kind})
}

// decodeBody decodes a JSON request body into v. An empty body leaves v at
// its zero value.
func decodeBody(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return errors.Join(matchmaking.ErrInvalidArgument, err)
	}
	return nil
}

// lobbyNameParam returns the {name} path segment, unescaped.
func lobbyNameParam(r *http.Request) string {
	name := chi.URLParam(r, "name")
	if unescaped, err := url.PathUnescape(name); err == nil {
		return unescaped
	}
	return name
}

func roundIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.Join(matchmaking.ErrInvalidArgument, errors.New("round id must be a positive integer"))
	}
	return id, nil
}
