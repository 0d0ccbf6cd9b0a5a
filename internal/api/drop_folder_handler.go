package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/heimdex/heimdex-turnover/internal/catalog"
)

const (
	defaultJobsLimit = 50
	maxJobsLimit     = 500
)

// listSourcesHandler lists drop folders, optionally only those of
// ?project_id=.
func listSourcesHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sources, err := cfg.CatalogService.GetSources(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list drop folders", "INTERNAL_ERROR")
			return
		}

		projectID := r.URL.Query().Get("project_id")
		resp := SourcesResponse{Sources: []SourceResponse{}}
		for _, s := range sources {
			if projectID != "" && s.ProjectID != projectID {
				continue
			}
			resp.Sources = append(resp.Sources, SourceToResponse(s))
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func addFolderHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AddFolderRequest
		if err := decodeJSON(cfg, w, r, &req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if req.Path == "" {
			WriteError(w, http.StatusBadRequest, "path is required", "BAD_REQUEST")
			return
		}
		if req.ProjectID == "" {
			req.ProjectID = cfg.DefaultProjectID
		}

		source, err := cfg.CatalogService.AddFolder(r.Context(), req.ProjectID, req.Path, req.DisplayName)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}
		WriteJSON(w, http.StatusCreated, AddFolderResponse{SourceID: source.ID})
	}
}

func deleteSourceHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		source, ok := lookupSource(cfg, w, r)
		if !ok {
			return
		}
		if err := cfg.CatalogService.RemoveSource(r.Context(), source.ID); err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func listFilesHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		source, ok := lookupSource(cfg, w, r)
		if !ok {
			return
		}
		files, err := cfg.CatalogService.GetFiles(r.Context(), source.ID)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}

		resp := FilesResponse{Files: make([]FileResponse, len(files))}
		for i, f := range files {
			resp.Files[i] = FileToResponse(f)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

// lookupSource resolves the {id} URL parameter, writing a 404 when the drop
// folder is unknown.
func lookupSource(cfg ServerConfig, w http.ResponseWriter, r *http.Request) (*catalog.Source, bool) {
	source, err := cfg.CatalogService.GetSource(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
		return nil, false
	}
	if source == nil {
		WriteError(w, http.StatusNotFound, "drop folder not found", "NOT_FOUND")
		return nil, false
	}
	return source, true
}

// scanHandler queues scan jobs. Without a source id every drop folder of the
// project is rescanned.
func scanHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ScanRequest
		if err := decodeJSON(cfg, w, r, &req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		sourceIDs := []string{req.SourceID}
		if req.SourceID == "" {
			projectID := req.ProjectID
			if projectID == "" {
				projectID = cfg.DefaultProjectID
			}
			sources, err := cfg.CatalogService.GetSources(r.Context())
			if err != nil {
				WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
				return
			}
			sourceIDs = sourceIDs[:0]
			for _, s := range sources {
				if s.ProjectID == projectID {
					sourceIDs = append(sourceIDs, s.ID)
				}
			}
			if len(sourceIDs) == 0 {
				WriteError(w, http.StatusBadRequest, "no drop folders for project "+projectID, "BAD_REQUEST")
				return
			}
		}

		resp := ScanResponse{JobIDs: make([]string, 0, len(sourceIDs))}
		for _, id := range sourceIDs {
			job, err := cfg.CatalogService.ScanSource(r.Context(), id)
			if err != nil {
				WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
				return
			}
			resp.JobIDs = append(resp.JobIDs, job.ID)
		}
		WriteJSON(w, http.StatusAccepted, resp)
	}
}

// listJobsHandler returns the most recent jobs; ?limit= caps the count.
func listJobsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := defaultJobsLimit
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				WriteError(w, http.StatusBadRequest, "limit must be a positive integer", "BAD_REQUEST")
				return
			}
			limit = min(n, maxJobsLimit)
		}

		jobs, err := cfg.Repository.ListJobs(r.Context(), limit)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list jobs", "INTERNAL_ERROR")
			return
		}

		resp := JobsResponse{Jobs: make([]JobResponse, len(jobs))}
		for i, j := range jobs {
			resp.Jobs[i] = JobToResponse(j)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func getJobHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		job, err := cfg.Repository.GetJob(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}
		if job == nil {
			WriteError(w, http.StatusNotFound, "job not found", "NOT_FOUND")
			return
		}
		WriteJSON(w, http.StatusOK, JobToResponse(job))
	}
}
