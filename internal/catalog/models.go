package catalog

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/heimdex/heimdex-turnover/internal/shot"
)

// Source is a drop folder that editorial exports land in.
type Source struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"project_id"`
	Type        string    `json:"type"`
	Path        string    `json:"path"`
	DisplayName string    `json:"display_name"`
	Present     bool      `json:"present"`
	CreatedAt   time.Time `json:"created_at"`
}

type File struct {
	ID                  string    `json:"id"`
	SourceID            string    `json:"source_id"`
	Path                string    `json:"path"`
	Filename            string    `json:"filename"`
	Format              string    `json:"format,omitempty"`
	Size                int64     `json:"size"`
	Mtime               time.Time `json:"mtime"`
	Fingerprint         string    `json:"fingerprint"`
	ImportedFingerprint string    `json:"imported_fingerprint,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
}

// NeedsImport reports whether the file changed since it was last imported.
func (f *File) NeedsImport() bool {
	return f.ImportedFingerprint != f.Fingerprint
}

const (
	JobTypeScan   = "scan"
	JobTypeImport = "import"

	JobStatusPending   = "pending"
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)

type Job struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Status    string    `json:"status"`
	SourceID  string    `json:"source_id,omitempty"`
	FileID    string    `json:"file_id,omitempty"`
	Progress  int       `json:"progress"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ConfigEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// ShotRecord is a stored shot. Code is unique within a project.
type ShotRecord struct {
	ID            string `json:"id"`
	ProjectID     string `json:"project_id"`
	SourceFile    string `json:"source_file,omitempty"`
	SourceMediaID string `json:"source_media_id,omitempty"`
	shot.Shot
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// InterchangeExtensions are the file types a drop-folder scan picks up.
var InterchangeExtensions = map[string]bool{
	".edl":    true,
	".ale":    true,
	".xml":    true,
	".fcpxml": true,
	".cdl":    true,
	".cc":     true,
	".ccc":    true,
	".txt":    true,
	".tab":    true,
	".tsv":    true,
}

func NewID() string {
	return uuid.NewString()
}

func IsInterchangeFile(filename string) bool {
	if strings.HasPrefix(filepath.Base(filename), ".") {
		return false
	}
	return InterchangeExtensions[strings.ToLower(filepath.Ext(filename))]
}
