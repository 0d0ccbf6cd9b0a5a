package api

import (
	"time"

	"github.com/heimdex/heimdex-turnover/internal/catalog"
	"github.com/heimdex/heimdex-turnover/internal/diag"
	"github.com/heimdex/heimdex-turnover/internal/export"
	"github.com/heimdex/heimdex-turnover/internal/interchange"
	"github.com/heimdex/heimdex-turnover/internal/marker"
	"github.com/heimdex/heimdex-turnover/internal/matching"
	"github.com/heimdex/heimdex-turnover/internal/shot"
	"github.com/heimdex/heimdex-turnover/internal/sourcemedia"
)

type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	UptimeS  int64  `json:"uptime_s"`
	DeviceID string `json:"device_id"`
}

type StatusResponse struct {
	State        string       `json:"state"`
	LastError    string       `json:"last_error,omitempty"`
	SourcesCount int          `json:"sources_count"`
	FilesCount   int          `json:"files_count"`
	JobsRunning  int          `json:"jobs_running"`
	JobsPending  int          `json:"jobs_pending"`
	ActiveJob    *JobResponse `json:"active_job,omitempty"`
	DefaultFPS   float64      `json:"default_fps"`
}

type AddFolderRequest struct {
	ProjectID   string `json:"project_id,omitempty"`
	Path        string `json:"path"`
	DisplayName string `json:"display_name,omitempty"`
}

type AddFolderResponse struct {
	SourceID string `json:"source_id"`
}

type SourceResponse struct {
	ID          string `json:"id"`
	ProjectID   string `json:"project_id"`
	Type        string `json:"type"`
	Path        string `json:"path"`
	DisplayName string `json:"display_name"`
	Present     bool   `json:"present"`
	CreatedAt   string `json:"created_at"`
}

type SourcesResponse struct {
	Sources []SourceResponse `json:"sources"`
}

// ScanRequest queues a scan of one drop folder, or of every drop folder in
// ProjectID when SourceID is empty.
type ScanRequest struct {
	SourceID  string `json:"source_id,omitempty"`
	ProjectID string `json:"project_id,omitempty"`
}

type ScanResponse struct {
	JobIDs []string `json:"job_ids"`
}

type JobResponse struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Status    string `json:"status"`
	SourceID  string `json:"source_id,omitempty"`
	FileID    string `json:"file_id,omitempty"`
	Progress  int    `json:"progress"`
	Error     string `json:"error,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type JobsResponse struct {
	Jobs []JobResponse `json:"jobs"`
}

type FileResponse struct {
	ID          string `json:"id"`
	SourceID    string `json:"source_id"`
	Path        string `json:"path"`
	Filename    string `json:"filename"`
	Format      string `json:"format,omitempty"`
	Size        int64  `json:"size"`
	Fingerprint string `json:"fingerprint"`
	Imported    bool   `json:"imported"`
	CreatedAt   string `json:"created_at"`
}

type FilesResponse struct {
	Files []FileResponse `json:"files"`
}

// ParseResponse is a parsed interchange file together with the shots it
// yields, when it is a timeline format.
type ParseResponse struct {
	*interchange.Result
	Shots       []shot.Shot `json:"shots,omitempty"`
	RecordCount int         `json:"record_count"`
}

type ShotsResponse struct {
	ProjectID string                `json:"project_id"`
	Shots     []*catalog.ShotRecord `json:"shots"`
}

type SourceMediaResponse struct {
	ProjectID   string               `json:"project_id"`
	SourceMedia []sourcemedia.Record `json:"source_media"`
}

// MarkerMatchRequest carries markers either as raw marker-list text in
// Content or already parsed in Markers.
type MarkerMatchRequest struct {
	Content string               `json:"content,omitempty"`
	Markers []marker.Entry       `json:"markers,omitempty"`
	Shots   []matching.ShotRange `json:"shots"`
	FPS     float64              `json:"fps,omitempty"`
}

type MarkerMatchResponse struct {
	matching.MarkerMatch
	Warnings diag.List `json:"warnings"`
}

// ExportBody is an export request. With ProjectID set, the project's stored
// shots and source media fill in whatever the request leaves empty. With
// OutputDir set, the file is written there instead of returned.
type ExportBody struct {
	export.ExportRequest
	ProjectID string `json:"project_id,omitempty"`
	OutputDir string `json:"output_dir,omitempty"`
	Download  bool   `json:"download,omitempty"`
}

type ExportSavedResponse struct {
	Format string `json:"format"`
	Path   string `json:"path"`
	Count  int    `json:"count"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func SourceToResponse(s *catalog.Source) SourceResponse {
	return SourceResponse{
		ID:          s.ID,
		ProjectID:   s.ProjectID,
		Type:        s.Type,
		Path:        s.Path,
		DisplayName: s.DisplayName,
		Present:     s.Present,
		CreatedAt:   s.CreatedAt.Format(time.RFC3339),
	}
}

func JobToResponse(j *catalog.Job) JobResponse {
	return JobResponse{
		ID:        j.ID,
		Type:      j.Type,
		Status:    j.Status,
		SourceID:  j.SourceID,
		FileID:    j.FileID,
		Progress:  j.Progress,
		Error:     j.Error,
		CreatedAt: j.CreatedAt.Format(time.RFC3339),
		UpdatedAt: j.UpdatedAt.Format(time.RFC3339),
	}
}

func FileToResponse(f *catalog.File) FileResponse {
	return FileResponse{
		ID:          f.ID,
		SourceID:    f.SourceID,
		Path:        f.Path,
		Filename:    f.Filename,
		Format:      f.Format,
		Size:        f.Size,
		Fingerprint: f.Fingerprint,
		Imported:    !f.NeedsImport(),
		CreatedAt:   f.CreatedAt.Format(time.RFC3339),
	}
}
