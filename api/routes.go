package api

import (
	"github.com/gorilla/mux"
	"github.com/strikenet/strikenet/internal/config"
	"github.com/strikenet/strikenet/internal/db"
	"github.com/strikenet/strikenet/internal/repository/sqlite"
)

func SetupRoutes(cfg *config.Config, version, buildTime string, database *db.DB, classifier Identifier) *mux.Router {
	r := mux.NewRouter()

	// Middleware chain
	r.Use(LoggingMiddleware)
	r.Use(CORSMiddleware)
	r.Use(RecoveryMiddleware)

	// Repository
	repo := sqlite.New(database, nil)

	// Create handlers
	systemHandler := &SystemHandler{}
	sightingsHandler := NewSightingsHandler(repo, classifier, cfg.Classifier.Timeout)

	// System endpoints
	r.HandleFunc("/version", systemHandler.VersionHandler(version, buildTime)).Methods("GET")
	r.HandleFunc("/health", systemHandler.HealthHandler).Methods("GET")

	// Sightings endpoints
	apiRouter := r.PathPrefix("/api").Subrouter()
	apiRouter.HandleFunc("/sightings", sightingsHandler.ListSightings).Methods("GET")
	apiRouter.HandleFunc("/sightings", sightingsHandler.CreateSighting).Methods("POST")
	apiRouter.HandleFunc("/sightings/{id}/verify", sightingsHandler.VerifySighting).Methods("PATCH")

	return r
}
