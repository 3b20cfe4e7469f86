// internal/handlers/api_server.go
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jason-s-yu/apdebate/internal/middleware"
	"github.com/jason-s-yu/apdebate/internal/service"
	"github.com/sirupsen/logrus"
)

// RouterOptions carries the settings the HTTP layer needs beyond the matchmaker.
type RouterOptions struct {
	OperatorKeyHash string
	// AllowedOrigins for CORS; empty allows any http(s) origin.
	AllowedOrigins []string
}

// NewRouter wires the lobby, round, session and events routes.
func NewRouter(logger *logrus.Logger, mm *service.Matchmaker, hub *Hub, opts RouterOptions) http.Handler {
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"https://*", "http://*"}
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Heartbeat("/ping"))
	r.Use(middleware.LogMiddleware(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/session", CreateSessionHandler(logger, opts.OperatorKeyHash))
	r.Get("/events/ws", EventsWSHandler(logger, hub))

	r.Group(func(r chi.Router) {
		r.Use(RequireSession)

		r.Route("/lobbies", func(r chi.Router) {
			r.Get("/", ListLobbiesHandler(mm))
			r.Post("/", CreateLobbyHandler(mm))
			r.Get("/names", LobbyNamesHandler(mm))
			r.Route("/{name}", func(r chi.Router) {
				r.Get("/", GetLobbyHandler(mm))
				r.Delete("/", EndLobbyHandler(mm))
				r.Post("/join", JoinLobbyHandler(mm))
				r.Post("/leave", LeaveLobbyHandler(mm))
				r.Post("/clear", ClearLobbyHandler(mm))
				r.Post("/start", StartRoundHandler(mm))
			})
		})

		r.Route("/rounds/{id}", func(r chi.Router) {
			r.Get("/", GetRoundHandler(mm))
			r.Post("/swap", SwapHandler(mm))
			r.Post("/move-to-judge", MoveToJudgeHandler(mm))
			r.Post("/move-to-team", MoveToTeamHandler(mm))
			r.Post("/resize", ResizeTeamHandler(mm))
			r.Post("/seal", SealHandler(mm))
			r.Post("/cancel", CancelHandler(mm))
		})
	})
	return r
}
