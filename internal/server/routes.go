package server

import (
	"database/sql"
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"

	"github.com/isitlab/isitgame/internal/progression"
)

func addRoutes(r chi.Router, logger *slog.Logger, store Store, engine *progression.Engine, db *sql.DB, spaDir string) {
	broker := NewBroker()

	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("IS/IT Game API", "/openapi.json", "/docs"))
	r.Get("/healthz", handleHealth(logger, db))

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", handleLogin(store))
		r.Post("/logout", handleLogout(store))
		r.Get("/me", handleMe(store))
		r.Get("/me/metrics", handleMetrics(store))

		r.Get("/next", handleNext(store, engine))

		r.Route("/polls", func(r chi.Router) {
			r.Get("/", handlePollList(store))
			r.Get("/{pollID}", handlePollView(store))
			r.Post("/{pollID}/vote", handleVote(store, engine, broker))
			r.Get("/{pollID}/results", handlePollResults(store))
			r.Get("/{pollID}/events", handleEvents(store, broker))
		})
	})

	if spaDir != "" {
		if info, err := os.Stat(spaDir); err == nil && info.IsDir() {
			logger.Info("serving SPA", "dir", spaDir)
			r.NotFound(handleSPA(spaDir))
		}
	}
}
