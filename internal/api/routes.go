package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/heimdex/heimdex-turnover/internal/catalog"
)

func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))
	r.Use(CORSAllowlist())

	r.Get("/health", healthHandler(cfg))

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.Repository, cfg.Logger))

		r.Get("/status", statusHandler(cfg))
		r.Get("/sources", listSourcesHandler(cfg))
		r.Post("/sources/folders", addFolderHandler(cfg))
		r.Delete("/sources/{id}", deleteSourceHandler(cfg))
		r.Get("/sources/{id}/files", listFilesHandler(cfg))
		r.Post("/scan", scanHandler(cfg))
		r.Get("/jobs", listJobsHandler(cfg))
		r.Get("/jobs/{id}", getJobHandler(cfg))

		r.Post("/parse", parseHandler(cfg))
		r.Post("/markers/match", matchMarkersHandler(cfg))

		r.Route("/projects/{projectID}", func(r chi.Router) {
			r.Post("/imports", importHandler(cfg))
			r.Get("/shots", listShotsHandler(cfg))
			r.Get("/source-media", listSourceMediaHandler(cfg))
			r.Get("/source-media/summary", sourceMediaSummaryHandler(cfg))
			r.Post("/match-source-media", matchSourceMediaHandler(cfg))
		})

		r.With(LoopbackGuard()).Post("/export/{format}", exportHandler(cfg))
	})

	return r
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		version := cfg.Version
		if version == "" {
			version = "dev"
		}
		uptime := int64(time.Since(cfg.StartTime).Seconds())
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:   "ok",
			Version:  version,
			UptimeS:  uptime,
			DeviceID: cfg.DeviceID,
		})
	}
}

func statusHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		sources, _ := cfg.CatalogService.GetSources(ctx)
		filesCount, _ := cfg.CatalogService.CountFiles(ctx)
		jobs, _ := cfg.Repository.ListJobs(ctx, 10)
		pending, _ := cfg.Repository.ListPendingJobs(ctx)

		state := "idle"
		var activeJob *JobResponse
		jobsRunning := 0
		lastError := ""

		if cfg.Runner != nil && cfg.Runner.IsPaused() {
			state = "paused"
		}

		for _, j := range jobs {
			if j.Status == catalog.JobStatusRunning {
				state = "importing"
				resp := JobToResponse(j)
				activeJob = &resp
				jobsRunning++
			}
			if j.Status == catalog.JobStatusFailed && lastError == "" {
				lastError = j.Error
			}
		}

		if lastError != "" && state == "idle" {
			state = "error"
		}

		WriteJSON(w, http.StatusOK, StatusResponse{
			State:        state,
			LastError:    lastError,
			SourcesCount: len(sources),
			FilesCount:   filesCount,
			JobsRunning:  jobsRunning,
			JobsPending:  len(pending),
			ActiveJob:    activeJob,
			DefaultFPS:   cfg.CatalogService.DefaultFPS(),
		})
	}
}
