package catalog

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/heimdex/heimdex-turnover/internal/logging"
	"github.com/heimdex/heimdex-turnover/internal/sourcemedia"
	"github.com/heimdex/heimdex-turnover/internal/timecode"
)

const fingerprintSize = 64 * 1024

type CatalogService interface {
	AddFolder(ctx context.Context, projectID, path, displayName string) (*Source, error)
	RemoveSource(ctx context.Context, id string) error
	GetSources(ctx context.Context) ([]*Source, error)
	GetSource(ctx context.Context, id string) (*Source, error)
	GetFiles(ctx context.Context, sourceID string) ([]*File, error)
	GetFile(ctx context.Context, id string) (*File, error)
	CountFiles(ctx context.Context) (int, error)
	ScanSource(ctx context.Context, sourceID string) (*Job, error)
	ExecuteScan(ctx context.Context, jobID, sourceID, path string) error
	ExecuteImport(ctx context.Context, jobID, fileID string) error

	ImportFile(ctx context.Context, projectID, filename string, data []byte) (*ImportSummary, error)
	ListSourceMedia(ctx context.Context, projectID string) ([]sourcemedia.Record, error)
	SummarizeSourceMedia(ctx context.Context, projectID string) (sourcemedia.Summary, error)
	ListShots(ctx context.Context, projectID string) ([]*ShotRecord, error)
	MatchSourceMedia(ctx context.Context, projectID string) (*MatchSummary, error)
	DefaultFPS() float64
}

type Service struct {
	repo   Repository
	logger *slog.Logger

	mu         sync.RWMutex
	defaultFPS float64
	extensions map[string]bool
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		logger:     logger,
		defaultFPS: timecode.DefaultFPS,
		extensions: InterchangeExtensions,
	}
}

// SetDefaultFPS sets the rate used for files that carry none (EDL, markers).
func (s *Service) SetDefaultFPS(fps float64) {
	if fps <= 0 {
		return
	}
	s.mu.Lock()
	s.defaultFPS = fps
	s.mu.Unlock()
}

func (s *Service) DefaultFPS() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.defaultFPS
}

// SetScanExtensions replaces the extensions a scan picks up. An empty list
// keeps the current set.
func (s *Service) SetScanExtensions(exts []string) {
	if len(exts) == 0 {
		return
	}
	set := make(map[string]bool, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		set[e] = true
	}
	s.mu.Lock()
	s.extensions = set
	s.mu.Unlock()
}

func (s *Service) wantsFile(name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.extensions[strings.ToLower(filepath.Ext(name))]
}

func (s *Service) AddFolder(ctx context.Context, projectID, path, displayName string) (*Source, error) {
	if strings.TrimSpace(projectID) == "" {
		return nil, fmt.Errorf("project id is required")
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("path does not exist: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory")
	}

	existing, err := s.repo.GetSourceByPath(ctx, absPath)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	if displayName == "" {
		displayName = filepath.Base(absPath)
	}

	source := &Source{
		ID:          NewID(),
		ProjectID:   projectID,
		Type:        "folder",
		Path:        absPath,
		DisplayName: displayName,
		Present:     true,
		CreatedAt:   time.Now(),
	}

	if err := s.repo.CreateSource(ctx, source); err != nil {
		return nil, err
	}

	if s.logger != nil {
		logging.WithSourceID(s.logger, source.ID).Info("drop folder added", "project_id", projectID, "path", logging.SanitizePath(absPath))
	}
	return source, nil
}

func (s *Service) RemoveSource(ctx context.Context, id string) error {
	if err := s.repo.DeleteFilesBySource(ctx, id); err != nil {
		return err
	}
	return s.repo.DeleteSource(ctx, id)
}

func (s *Service) GetSources(ctx context.Context) ([]*Source, error) {
	return s.repo.ListSources(ctx)
}

func (s *Service) GetSource(ctx context.Context, id string) (*Source, error) {
	return s.repo.GetSource(ctx, id)
}

func (s *Service) GetFiles(ctx context.Context, sourceID string) ([]*File, error) {
	return s.repo.GetFilesBySource(ctx, sourceID)
}

func (s *Service) GetFile(ctx context.Context, id string) (*File, error) {
	return s.repo.GetFile(ctx, id)
}

func (s *Service) CountFiles(ctx context.Context) (int, error) {
	return s.repo.CountFiles(ctx)
}

func (s *Service) ScanSource(ctx context.Context, sourceID string) (*Job, error) {
	source, err := s.repo.GetSource(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	if source == nil {
		return nil, fmt.Errorf("source not found")
	}

	job := newJob(JobTypeScan, sourceID, "")
	if err := s.repo.CreateJob(ctx, job); err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.Info("scan job created", "job_id", job.ID, "source_id", sourceID)
	}
	return job, nil
}

// ExecuteScan walks a drop folder, records every interchange file with its
// fingerprint and queues an import job for each new or changed file.
func (s *Service) ExecuteScan(ctx context.Context, jobID, sourceID, path string) error {
	s.repo.UpdateJobStatus(ctx, jobID, JobStatusRunning, "")
	if s.logger != nil {
		logging.WithJobID(s.logger, jobID).Info("starting scan", "path", logging.SanitizePath(path))
	}

	if _, err := os.Stat(path); err != nil {
		s.repo.UpdateSourcePresent(ctx, sourceID, false)
		s.repo.UpdateJobStatus(ctx, jobID, JobStatusFailed, "source folder missing")
		return fmt.Errorf("scan %s: %w", path, err)
	}
	s.repo.UpdateSourcePresent(ctx, sourceID, true)

	var files []string
	err := filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() && p != path && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if !d.IsDir() && s.wantsFile(d.Name()) {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		s.repo.UpdateJobStatus(ctx, jobID, JobStatusFailed, err.Error())
		return err
	}

	total := len(files)
	if s.logger != nil {
		s.logger.Info("found interchange files", "count", total)
	}

	for i, filePath := range files {
		select {
		case <-ctx.Done():
			s.repo.UpdateJobStatus(ctx, jobID, JobStatusFailed, "cancelled")
			return ctx.Err()
		default:
		}

		if err := s.processFile(ctx, sourceID, filePath); err != nil {
			if s.logger != nil {
				s.logger.Warn("failed to process file", "path", logging.SanitizePath(filePath), "error", err)
			}
		}

		progress := 0
		if total > 0 {
			progress = (i + 1) * 100 / total
		}
		s.repo.UpdateJobProgress(ctx, jobID, progress)
	}

	s.repo.UpdateJobStatus(ctx, jobID, JobStatusCompleted, "")
	if s.logger != nil {
		s.logger.Info("scan completed", "job_id", jobID, "files_processed", total)
	}

	s.createImportJobs(ctx, sourceID)
	return nil
}

// createImportJobs queues one import per file whose fingerprint differs from
// the last imported one, unless an import for it is already queued.
func (s *Service) createImportJobs(ctx context.Context, sourceID string) {
	files, err := s.repo.GetFilesBySource(ctx, sourceID)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("failed to list files for import job creation", "source_id", sourceID, "error", err)
		}
		return
	}

	pending, err := s.repo.ListPendingJobs(ctx)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("failed to list pending jobs", "error", err)
		}
		return
	}
	queued := make(map[string]bool)
	for _, j := range pending {
		if j.Type == JobTypeImport && j.FileID != "" {
			queued[j.FileID] = true
		}
	}

	created := 0
	for _, f := range files {
		if !f.NeedsImport() || queued[f.ID] {
			continue
		}
		job := newJob(JobTypeImport, sourceID, f.ID)
		if err := s.repo.CreateJob(ctx, job); err != nil {
			if s.logger != nil {
				s.logger.Warn("failed to create import job", "file_id", f.ID, "error", err)
			}
			continue
		}
		created++
	}

	if s.logger != nil {
		s.logger.Info("created import jobs", "source_id", sourceID, "count", created)
	}
}

// ExecuteImport reads a scanned file and imports it into its source's project.
func (s *Service) ExecuteImport(ctx context.Context, jobID, fileID string) error {
	file, err := s.repo.GetFile(ctx, fileID)
	if err != nil || file == nil {
		s.repo.UpdateJobStatus(ctx, jobID, JobStatusFailed, "file not found")
		return fmt.Errorf("import job %s: file %s not found", jobID, fileID)
	}
	source, err := s.repo.GetSource(ctx, file.SourceID)
	if err != nil || source == nil {
		s.repo.UpdateJobStatus(ctx, jobID, JobStatusFailed, "source not found")
		return fmt.Errorf("import job %s: source %s not found", jobID, file.SourceID)
	}

	s.repo.UpdateJobStatus(ctx, jobID, JobStatusRunning, "")

	data, err := os.ReadFile(file.Path)
	if err != nil {
		s.repo.UpdateJobStatus(ctx, jobID, JobStatusFailed, err.Error())
		return fmt.Errorf("read %s: %w", file.Path, err)
	}

	summary, err := s.ImportFile(ctx, source.ProjectID, file.Filename, data)
	if err != nil {
		s.repo.UpdateJobStatus(ctx, jobID, JobStatusFailed, err.Error())
		// An unsupported file stays recorded so it is not retried until it changes.
		s.repo.UpdateFileImport(ctx, file.ID, "", file.Fingerprint)
		return err
	}

	if err := s.repo.UpdateFileImport(ctx, file.ID, summary.Format, file.Fingerprint); err != nil && s.logger != nil {
		s.logger.Warn("failed to record import fingerprint", "file_id", file.ID, "error", err)
	}
	s.repo.UpdateJobProgress(ctx, jobID, 100)
	s.repo.UpdateJobStatus(ctx, jobID, JobStatusCompleted, "")
	return nil
}

func (s *Service) ListSourceMedia(ctx context.Context, projectID string) ([]sourcemedia.Record, error) {
	return s.repo.ListSourceMedia(ctx, projectID)
}

func (s *Service) SummarizeSourceMedia(ctx context.Context, projectID string) (sourcemedia.Summary, error) {
	records, err := s.repo.ListSourceMedia(ctx, projectID)
	if err != nil {
		return sourcemedia.Summary{}, err
	}
	return sourcemedia.Summarize(records), nil
}

func (s *Service) ListShots(ctx context.Context, projectID string) ([]*ShotRecord, error) {
	return s.repo.ListShots(ctx, projectID)
}

func (s *Service) processFile(ctx context.Context, sourceID, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	fingerprint, err := computeFingerprint(path)
	if err != nil {
		return err
	}

	file := &File{
		ID:          NewID(),
		SourceID:    sourceID,
		Path:        path,
		Filename:    filepath.Base(path),
		Size:        info.Size(),
		Mtime:       info.ModTime(),
		Fingerprint: fingerprint,
		CreatedAt:   time.Now(),
	}

	return s.repo.UpsertFile(ctx, file)
}

func newJob(jobType, sourceID, fileID string) *Job {
	now := time.Now()
	return &Job{
		ID:        NewID(),
		Type:      jobType,
		Status:    JobStatusPending,
		SourceID:  sourceID,
		FileID:    fileID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// computeFingerprint hashes the first 64 KiB and the size. Interchange files
// are small, so in practice this covers the whole file.
func computeFingerprint(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	n, err := io.Copy(h, io.LimitReader(f, fingerprintSize))
	if err != nil {
		return "", err
	}
	if info, err := f.Stat(); err == nil && info.Size() > n {
		fmt.Fprintf(h, ":%d", info.Size())
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
