package api

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/heimdex/heimdex-turnover/internal/catalog"
	"github.com/heimdex/heimdex-turnover/internal/diag"
	"github.com/heimdex/heimdex-turnover/internal/interchange"
	"github.com/heimdex/heimdex-turnover/internal/logging"
	"github.com/heimdex/heimdex-turnover/internal/marker"
	"github.com/heimdex/heimdex-turnover/internal/matching"
	"github.com/heimdex/heimdex-turnover/internal/sourcemedia"
)

var errEmptyUpload = errors.New("request body is empty")

// readUpload returns the uploaded file. A multipart form carries it in the
// "file" field; any other body is the file itself, named by ?filename=.
func readUpload(cfg ServerConfig, w http.ResponseWriter, r *http.Request) (string, []byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, cfg.maxUpload())

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(cfg.maxUpload()); err != nil {
			return "", nil, fmt.Errorf("invalid multipart body: %w", err)
		}
		f, header, err := r.FormFile("file")
		if err != nil {
			return "", nil, fmt.Errorf("missing file field: %w", err)
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			return "", nil, err
		}
		if len(data) == 0 {
			return "", nil, errEmptyUpload
		}
		return header.Filename, data, nil
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		return "", nil, err
	}
	if len(data) == 0 {
		return "", nil, errEmptyUpload
	}
	return r.URL.Query().Get("filename"), data, nil
}

func uploadError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		WriteError(w, http.StatusRequestEntityTooLarge, "upload too large", "TOO_LARGE")
		return
	}
	WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
}

// queryFPS reads ?fps=, falling back to the service default.
func queryFPS(cfg ServerConfig, r *http.Request) (float64, error) {
	v := r.URL.Query().Get("fps")
	if v == "" {
		return cfg.CatalogService.DefaultFPS(), nil
	}
	fps, err := strconv.ParseFloat(v, 64)
	if err != nil || fps <= 0 {
		return 0, fmt.Errorf("fps must be a positive number")
	}
	return fps, nil
}

func parseHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filename, data, err := readUpload(cfg, w, r)
		if err != nil {
			uploadError(w, err)
			return
		}

		q := r.URL.Query()
		fps, err := queryFPS(cfg, r)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}
		opts := interchange.Options{
			FPS:       fps,
			ProjectID: q.Get("project_id"),
			ShootDate: q.Get("shoot_date"),
			ShootDay:  q.Get("shoot_day"),
		}
		if f := q.Get("format"); f != "" {
			format, ok := interchange.ParseFormat(f)
			if !ok {
				WriteError(w, http.StatusBadRequest, "unknown format "+strconv.Quote(f), "BAD_REQUEST")
				return
			}
			opts.Format = format
		}

		result := interchange.Parse(filename, data, opts)
		WriteJSON(w, http.StatusOK, ParseResponse{
			Result:      result,
			Shots:       result.Shots(),
			RecordCount: result.RecordCount(),
		})
	}
}

func importHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID := chi.URLParam(r, "projectID")
		filename, data, err := readUpload(cfg, w, r)
		if err != nil {
			uploadError(w, err)
			return
		}
		if filename == "" {
			WriteError(w, http.StatusBadRequest, "filename is required", "BAD_REQUEST")
			return
		}

		summary, err := cfg.CatalogService.ImportFile(r.Context(), projectID, filename, data)
		if errors.Is(err, catalog.ErrUnsupportedFormat) {
			WriteError(w, http.StatusUnsupportedMediaType, err.Error(), "UNSUPPORTED_FORMAT")
			return
		}
		if err != nil {
			requestID, _ := r.Context().Value(RequestIDKey).(string)
			logger := logging.WithProjectID(logging.WithRequestID(cfg.Logger, requestID), projectID)
			logger.Error("import failed", "filename", filename, "error", err)
			WriteError(w, http.StatusInternalServerError, "import failed", "INTERNAL_ERROR")
			return
		}

		WriteJSON(w, http.StatusOK, summary)
	}
}

func listShotsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID := chi.URLParam(r, "projectID")
		shots, err := cfg.CatalogService.ListShots(r.Context(), projectID)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list shots", "INTERNAL_ERROR")
			return
		}
		if shots == nil {
			shots = []*catalog.ShotRecord{}
		}
		WriteJSON(w, http.StatusOK, ShotsResponse{ProjectID: projectID, Shots: shots})
	}
}

func listSourceMediaHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID := chi.URLParam(r, "projectID")
		media, err := cfg.CatalogService.ListSourceMedia(r.Context(), projectID)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list source media", "INTERNAL_ERROR")
			return
		}

		if clip := strings.TrimSpace(r.URL.Query().Get("clip")); clip != "" {
			filtered := media[:0]
			for _, m := range media {
				if strings.EqualFold(m.ClipName, clip) {
					filtered = append(filtered, m)
				}
			}
			media = filtered
		}
		if media == nil {
			media = []sourcemedia.Record{}
		}
		WriteJSON(w, http.StatusOK, SourceMediaResponse{ProjectID: projectID, SourceMedia: media})
	}
}

func sourceMediaSummaryHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := cfg.CatalogService.SummarizeSourceMedia(r.Context(), chi.URLParam(r, "projectID"))
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to summarize source media", "INTERNAL_ERROR")
			return
		}
		WriteJSON(w, http.StatusOK, summary)
	}
}

func matchSourceMediaHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := cfg.CatalogService.MatchSourceMedia(r.Context(), chi.URLParam(r, "projectID"))
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to match source media", "INTERNAL_ERROR")
			return
		}
		WriteJSON(w, http.StatusOK, summary)
	}
}

func matchMarkersHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req MarkerMatchRequest
		if err := decodeJSON(cfg, w, r, &req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if req.Content == "" && len(req.Markers) == 0 {
			WriteError(w, http.StatusBadRequest, "content or markers is required", "BAD_REQUEST")
			return
		}
		fps := req.FPS
		if fps <= 0 {
			fps = cfg.CatalogService.DefaultFPS()
		}

		markers := req.Markers
		warnings := diag.List{}
		if req.Content != "" {
			parsed := marker.Parse(req.Content, fps)
			markers = append(markers, parsed.Markers...)
			warnings.Append(parsed.Warnings)
		}

		WriteJSON(w, http.StatusOK, MarkerMatchResponse{
			MarkerMatch: matching.MatchMarkers(markers, req.Shots, fps),
			Warnings:    warnings,
		})
	}
}
