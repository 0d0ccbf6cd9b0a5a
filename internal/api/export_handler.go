package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/heimdex/heimdex-turnover/internal/export"
	"github.com/heimdex/heimdex-turnover/internal/shot"
)

func decodeJSON(cfg ServerConfig, w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, cfg.maxUpload())
	return json.NewDecoder(r.Body).Decode(v)
}

func exportHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		format, ok := export.ParseFormat(chi.URLParam(r, "format"))
		if !ok {
			WriteError(w, http.StatusBadRequest, "format must be one of edl, ale, xml, cdl, cc, ccc", "BAD_REQUEST")
			return
		}

		var body ExportBody
		if err := decodeJSON(cfg, w, r, &body); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		if body.OutputDir != "" {
			if err := export.ValidateOutputDir(body.OutputDir); err != nil {
				WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
				return
			}
		}

		req := body.ExportRequest
		if body.ProjectID != "" {
			if err := fillFromProject(cfg, r, body.ProjectID, &req); err != nil {
				cfg.Logger.Error("export lookup failed", "project_id", body.ProjectID, "error", err)
				WriteError(w, http.StatusInternalServerError, "failed to load project", "INTERNAL_ERROR")
				return
			}
			if req.Title == "" {
				req.Title = body.ProjectID
			}
		}
		if req.FPS <= 0 {
			req.FPS = cfg.CatalogService.DefaultFPS()
		}

		if len(req.Shots) == 0 && len(req.CDLs) == 0 {
			WriteError(w, http.StatusUnprocessableEntity, "nothing to export", "EMPTY_EXPORT")
			return
		}

		resp := export.Generate(format, req)

		if body.OutputDir != "" {
			path, err := resp.Save(body.OutputDir)
			if err != nil {
				cfg.Logger.Error("export write failed", "dir", body.OutputDir, "error", err)
				WriteError(w, http.StatusInternalServerError, "failed to write export file", "INTERNAL_ERROR")
				return
			}
			cfg.Logger.Info("export written", "format", string(format), "path", path, "count", resp.Count)
			WriteJSON(w, http.StatusOK, ExportSavedResponse{Format: string(format), Path: path, Count: resp.Count})
			return
		}

		if body.Download || r.URL.Query().Get("download") == "1" {
			w.Header().Set("Content-Type", format.ContentType())
			w.Header().Set("Content-Disposition", "attachment; filename="+strconv.Quote(resp.Filename))
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(resp.Content))
			return
		}

		WriteJSON(w, http.StatusOK, resp)
	}
}

// fillFromProject supplies stored shots and source media for whatever the
// request leaves empty.
func fillFromProject(cfg ServerConfig, r *http.Request, projectID string, req *export.ExportRequest) error {
	ctx := r.Context()
	if len(req.Shots) == 0 {
		records, err := cfg.CatalogService.ListShots(ctx, projectID)
		if err != nil {
			return err
		}
		req.Shots = make([]shot.Shot, 0, len(records))
		for _, rec := range records {
			req.Shots = append(req.Shots, rec.Shot)
		}
	}
	if len(req.SourceMedia) == 0 {
		media, err := cfg.CatalogService.ListSourceMedia(ctx, projectID)
		if err != nil {
			return err
		}
		req.SourceMedia = media
	}
	return nil
}
