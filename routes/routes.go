package routes

import (
	"net/http"

	"github.com/Dosada05/tournament-brackets/handlers"
	"github.com/Dosada05/tournament-brackets/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
)

// SetupRoutes mounts every endpoint on the router. Reads, the websocket
// and the operational endpoints stay open; anything that mutates state
// sits behind bearer authentication.
func SetupRoutes(
	router *chi.Mux,
	jwtSecret string,
	metricsHandler http.Handler,
	healthHandler *handlers.HealthHandler,
	tournamentHandler *handlers.TournamentHandler,
	teamHandler *handlers.TeamHandler,
	groupHandler *handlers.GroupHandler,
	matchHandler *handlers.MatchHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate([]byte(jwtSecret))

	router.Get("/healthz", healthHandler.StatusHandler)
	router.Handle("/metrics", metricsHandler)

	router.Route("/tournaments", func(r chi.Router) {
		r.Get("/", tournamentHandler.ListHandler)
		r.Get("/{tournamentID}", tournamentHandler.GetByIDHandler)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Post("/", tournamentHandler.CreateHandler)
			r.Patch("/{tournamentID}", tournamentHandler.UpdateHandler)
		})

		r.Route("/{tournamentID}/groups", func(r chi.Router) {
			r.Get("/", groupHandler.ListHandler)
			r.Get("/{groupID}", groupHandler.GetByIDHandler)
			r.Get("/{groupID}/teams", groupHandler.ListRosterHandler)
			r.Get("/{groupID}/matches", matchHandler.GetBracketHandler)

			r.Group(func(r chi.Router) {
				r.Use(authenticate)

				r.Post("/", groupHandler.CreateHandler)
				r.Post("/{groupID}/teams", groupHandler.AddTeamHandler)
			})
		})
	})

	router.Route("/teams", func(r chi.Router) {
		r.Get("/", teamHandler.ListHandler)
		r.Get("/{teamID}", teamHandler.GetByIDHandler)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Post("/", teamHandler.CreateHandler)
		})
	})

	router.Get("/matches/{matchID}", matchHandler.GetByIDHandler)

	router.Get("/ws/tournaments/{tournamentID}", webSocketHandler.ServeWs)
}
