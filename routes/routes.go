package routes

import (
	"github.com/champions4change/tournament-engine/handlers"
	"github.com/champions4change/tournament-engine/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

// SetupRoutes builds the route tree: public reads, organizer-guarded
// writes, the websocket subscription endpoint and the swagger UI.
func SetupRoutes(
	router *chi.Mux,
	jwtSecret []byte,
	tournamentHandler *handlers.TournamentHandler,
	matchHandler *handlers.MatchHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/swagger/*", httpSwagger.Handler())

	router.Route("/tournaments", func(r chi.Router) {
		// Public read endpoints.
		r.Get("/", tournamentHandler.List)
		r.Get("/{id}", tournamentHandler.Get)
		r.Get("/{id}/matches", matchHandler.List)
		r.Get("/{id}/live", matchHandler.LiveScores)

		// Writes are organizer-only.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticator(jwtSecret))
			r.Use(middleware.RequireRole("organizer"))

			r.Post("/", tournamentHandler.Create)
		})
	})

	router.Route("/matches", func(r chi.Router) {
		r.Get("/{matchID}", matchHandler.Get)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticator(jwtSecret))
			r.Use(middleware.RequireRole("organizer", "scorekeeper"))

			r.Post("/{matchID}/start", matchHandler.Start)
			r.Post("/{matchID}/score", matchHandler.LiveScore)
			r.Post("/{matchID}/result", matchHandler.SubmitResult)
		})
	})

	router.Get("/ws/tournaments/{id}", webSocketHandler.ServeWs)
}
