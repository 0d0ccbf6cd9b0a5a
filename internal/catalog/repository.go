package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/heimdex/heimdex-turnover/internal/sourcemedia"
)

type Repository interface {
	CreateSource(ctx context.Context, source *Source) error
	GetSource(ctx context.Context, id string) (*Source, error)
	GetSourceByPath(ctx context.Context, path string) (*Source, error)
	ListSources(ctx context.Context) ([]*Source, error)
	DeleteSource(ctx context.Context, id string) error
	UpdateSourcePresent(ctx context.Context, id string, present bool) error

	GetFile(ctx context.Context, id string) (*File, error)
	ListFiles(ctx context.Context) ([]*File, error)
	GetFilesBySource(ctx context.Context, sourceID string) ([]*File, error)
	DeleteFilesBySource(ctx context.Context, sourceID string) error
	UpsertFile(ctx context.Context, file *File) error
	UpdateFileImport(ctx context.Context, id, format, fingerprint string) error
	CountFiles(ctx context.Context) (int, error)

	CreateJob(ctx context.Context, job *Job) error
	GetJob(ctx context.Context, id string) (*Job, error)
	ListJobs(ctx context.Context, limit int) ([]*Job, error)
	ListPendingJobs(ctx context.Context) ([]*Job, error)
	UpdateJobStatus(ctx context.Context, id, status, errorMsg string) error
	UpdateJobProgress(ctx context.Context, id string, progress int) error

	UpsertSourceMedia(ctx context.Context, records []sourcemedia.Record) (int, error)
	ListSourceMedia(ctx context.Context, projectID string) ([]sourcemedia.Record, error)

	UpsertShot(ctx context.Context, shot *ShotRecord) error
	ListShots(ctx context.Context, projectID string) ([]*ShotRecord, error)
	UpdateShotNotes(ctx context.Context, projectID, code, notes string) error
	LinkShotSourceMedia(ctx context.Context, shotID, sourceMediaID string) error

	GetConfig(ctx context.Context, key string) (string, error)
	SetConfig(ctx context.Context, key, value string) error
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const sourceColumns = "id, project_id, type, path, display_name, present, created_at"

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func (r *SQLiteRepository) CreateSource(ctx context.Context, s *Source) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sources (`+sourceColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, s.ID, s.ProjectID, s.Type, s.Path, s.DisplayName, boolToInt(s.Present), s.CreatedAt.Format(time.RFC3339))
	return err
}

func (r *SQLiteRepository) GetSource(ctx context.Context, id string) (*Source, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+sourceColumns+" FROM sources WHERE id = ?", id)
	return nilOnNoRows(scanSource(row))
}

func (r *SQLiteRepository) GetSourceByPath(ctx context.Context, path string) (*Source, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+sourceColumns+" FROM sources WHERE path = ?", path)
	return nilOnNoRows(scanSource(row))
}

func scanSource(row rowScanner) (*Source, error) {
	var s Source
	var present int
	var createdAt string

	if err := row.Scan(&s.ID, &s.ProjectID, &s.Type, &s.Path, &s.DisplayName, &present, &createdAt); err != nil {
		return nil, err
	}
	s.Present = present == 1
	s.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &s, nil
}

func (r *SQLiteRepository) ListSources(ctx context.Context) ([]*Source, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+sourceColumns+" FROM sources ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sources []*Source
	for rows.Next() {
		s, err := scanSource(rows)
		if err != nil {
			return nil, err
		}
		sources = append(sources, s)
	}
	return sources, rows.Err()
}

func (r *SQLiteRepository) DeleteSource(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM sources WHERE id = ?", id)
	return err
}

func (r *SQLiteRepository) UpdateSourcePresent(ctx context.Context, id string, present bool) error {
	_, err := r.db.ExecContext(ctx, "UPDATE sources SET present = ? WHERE id = ?", boolToInt(present), id)
	return err
}

const fileColumns = "id, source_id, path, filename, format, size, mtime, fingerprint, imported_fingerprint, created_at"

func (r *SQLiteRepository) GetFile(ctx context.Context, id string) (*File, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+fileColumns+" FROM files WHERE id = ?", id)
	return nilOnNoRows(scanFile(row))
}

func scanFile(row rowScanner) (*File, error) {
	var f File
	var mtime, createdAt string
	var imported sql.NullString

	if err := row.Scan(&f.ID, &f.SourceID, &f.Path, &f.Filename, &f.Format, &f.Size, &mtime, &f.Fingerprint, &imported, &createdAt); err != nil {
		return nil, err
	}
	f.ImportedFingerprint = imported.String
	f.Mtime, _ = time.Parse(time.RFC3339, mtime)
	f.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &f, nil
}

func (r *SQLiteRepository) queryFiles(ctx context.Context, query string, args ...any) ([]*File, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []*File
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

func (r *SQLiteRepository) ListFiles(ctx context.Context) ([]*File, error) {
	return r.queryFiles(ctx, "SELECT "+fileColumns+" FROM files ORDER BY created_at DESC")
}

func (r *SQLiteRepository) GetFilesBySource(ctx context.Context, sourceID string) ([]*File, error) {
	return r.queryFiles(ctx, "SELECT "+fileColumns+" FROM files WHERE source_id = ? ORDER BY filename", sourceID)
}

func (r *SQLiteRepository) DeleteFilesBySource(ctx context.Context, sourceID string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM files WHERE source_id = ?", sourceID)
	return err
}

// UpsertFile records a scanned file. A rescan keeps the row id and the
// fingerprint of the last import.
func (r *SQLiteRepository) UpsertFile(ctx context.Context, f *File) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO files (id, source_id, path, filename, format, size, mtime, fingerprint, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(source_id, path) DO UPDATE SET
			size = excluded.size,
			mtime = excluded.mtime,
			fingerprint = excluded.fingerprint
	`, f.ID, f.SourceID, f.Path, f.Filename, f.Format, f.Size, f.Mtime.Format(time.RFC3339), f.Fingerprint, f.CreatedAt.Format(time.RFC3339))
	return err
}

func (r *SQLiteRepository) UpdateFileImport(ctx context.Context, id, format, fingerprint string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE files SET format = ?, imported_fingerprint = ? WHERE id = ?", format, fingerprint, id)
	return err
}

func (r *SQLiteRepository) CountFiles(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM files").Scan(&count)
	return count, err
}

const jobColumns = "id, type, status, source_id, file_id, progress, error, created_at, updated_at"

func (r *SQLiteRepository) CreateJob(ctx context.Context, j *Job) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO jobs (`+jobColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, j.ID, j.Type, j.Status, nullString(j.SourceID), nullString(j.FileID),
		j.Progress, nullString(j.Error),
		j.CreatedAt.Format(time.RFC3339), j.UpdatedAt.Format(time.RFC3339))
	return err
}

func (r *SQLiteRepository) GetJob(ctx context.Context, id string) (*Job, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+jobColumns+" FROM jobs WHERE id = ?", id)
	return nilOnNoRows(scanJob(row))
}

func scanJob(row rowScanner) (*Job, error) {
	var j Job
	var sourceID, fileID, errMsg sql.NullString
	var createdAt, updatedAt string

	if err := row.Scan(&j.ID, &j.Type, &j.Status, &sourceID, &fileID, &j.Progress, &errMsg, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	j.SourceID = sourceID.String
	j.FileID = fileID.String
	j.Error = errMsg.String
	j.CreatedAt = parseTime(createdAt)
	j.UpdatedAt = parseTime(updatedAt)
	return &j, nil
}

func (r *SQLiteRepository) ListJobs(ctx context.Context, limit int) ([]*Job, error) {
	if limit <= 0 {
		limit = 50
	}
	return r.queryJobs(ctx, "SELECT "+jobColumns+" FROM jobs ORDER BY created_at DESC LIMIT ?", limit)
}

func (r *SQLiteRepository) ListPendingJobs(ctx context.Context) ([]*Job, error) {
	return r.queryJobs(ctx, "SELECT "+jobColumns+" FROM jobs WHERE status = 'pending' ORDER BY created_at ASC, rowid ASC")
}

func (r *SQLiteRepository) queryJobs(ctx context.Context, query string, args ...any) ([]*Job, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

func (r *SQLiteRepository) UpdateJobStatus(ctx context.Context, id, status, errorMsg string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE jobs SET status = ?, error = ?, updated_at = datetime('now') WHERE id = ?
	`, status, nullString(errorMsg), id)
	return err
}

func (r *SQLiteRepository) UpdateJobProgress(ctx context.Context, id string, progress int) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE jobs SET progress = ?, updated_at = datetime('now') WHERE id = ?
	`, progress, id)
	return err
}

// UpsertSourceMedia stores records keyed by (project, clip name, start
// frame). An existing row keeps its id and position; its data is replaced.
// It returns how many rows were new.
func (r *SQLiteRepository) UpsertSourceMedia(ctx context.Context, records []sourcemedia.Record) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	now := time.Now().Format(time.RFC3339)
	added := 0
	for _, rec := range records {
		tcKey := -1
		if rec.TCInFrames != nil {
			tcKey = *rec.TCInFrames
		}

		var existing int
		err := tx.QueryRowContext(ctx,
			"SELECT 1 FROM source_media WHERE project_id = ? AND clip_name = ? AND tc_in_key = ?",
			rec.ProjectID, rec.ClipName, tcKey).Scan(&existing)
		if err == sql.ErrNoRows {
			added++
		} else if err != nil {
			return 0, err
		}

		if rec.ID == "" {
			rec.ID = NewID()
		}
		data, err := json.Marshal(rec)
		if err != nil {
			return 0, fmt.Errorf("encode source media %q: %w", rec.ClipName, err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO source_media (id, project_id, clip_name, tc_in_key, tc_in_frames, tc_out_frames,
				camera, scene, shoot_date, has_cdl, data, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(project_id, clip_name, tc_in_key) DO UPDATE SET
				tc_out_frames = excluded.tc_out_frames,
				camera = excluded.camera,
				scene = excluded.scene,
				shoot_date = excluded.shoot_date,
				has_cdl = excluded.has_cdl,
				data = excluded.data,
				updated_at = excluded.updated_at
		`, rec.ID, rec.ProjectID, rec.ClipName, tcKey, nullInt(rec.TCInFrames), nullInt(rec.TCOutFrames),
			nullString(rec.Camera), nullString(rec.Scene), nullString(rec.ShootDate), boolToInt(rec.CDL != nil),
			string(data), now, now)
		if err != nil {
			return 0, fmt.Errorf("upsert source media %q: %w", rec.ClipName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return added, nil
}

// ListSourceMedia returns a project's records in first-import order.
func (r *SQLiteRepository) ListSourceMedia(ctx context.Context, projectID string) ([]sourcemedia.Record, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, data FROM source_media WHERE project_id = ? ORDER BY rowid", projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []sourcemedia.Record
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, err
		}
		var rec sourcemedia.Record
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			return nil, fmt.Errorf("decode source media %s: %w", id, err)
		}
		rec.ID = id
		records = append(records, rec)
	}
	return records, rows.Err()
}

// UpsertShot stores a shot keyed by (project, code). Notes already on the
// row survive a re-import that carries none, as does the source media link.
func (r *SQLiteRepository) UpsertShot(ctx context.Context, s *ShotRecord) error {
	data, err := json.Marshal(s.Shot)
	if err != nil {
		return fmt.Errorf("encode shot %q: %w", s.Code, err)
	}
	now := time.Now()
	if s.ID == "" {
		s.ID = NewID()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO shots (id, project_id, code, source_file, source_media_id, vfx_notes, data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(project_id, code) DO UPDATE SET
			source_file = excluded.source_file,
			source_media_id = COALESCE(excluded.source_media_id, shots.source_media_id),
			vfx_notes = CASE WHEN excluded.vfx_notes IS NULL THEN shots.vfx_notes ELSE excluded.vfx_notes END,
			data = excluded.data,
			updated_at = excluded.updated_at
	`, s.ID, s.ProjectID, s.Code, nullString(s.SourceFile), nullString(s.SourceMediaID), nullString(s.VFXNotes),
		string(data), s.CreatedAt.Format(time.RFC3339), s.UpdatedAt.Format(time.RFC3339))
	return err
}

// ListShots returns a project's shots ordered by code.
func (r *SQLiteRepository) ListShots(ctx context.Context, projectID string) ([]*ShotRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, project_id, source_file, source_media_id, vfx_notes, data, created_at, updated_at
		FROM shots WHERE project_id = ? ORDER BY code
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shots []*ShotRecord
	for rows.Next() {
		var s ShotRecord
		var sourceFile, mediaID, notes sql.NullString
		var data, createdAt, updatedAt string
		if err := rows.Scan(&s.ID, &s.ProjectID, &sourceFile, &mediaID, &notes, &data, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(data), &s.Shot); err != nil {
			return nil, fmt.Errorf("decode shot %s: %w", s.ID, err)
		}
		s.SourceFile = sourceFile.String
		s.SourceMediaID = mediaID.String
		s.VFXNotes = notes.String
		s.CreatedAt = parseTime(createdAt)
		s.UpdatedAt = parseTime(updatedAt)
		shots = append(shots, &s)
	}
	return shots, rows.Err()
}

func (r *SQLiteRepository) UpdateShotNotes(ctx context.Context, projectID, code, notes string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE shots SET vfx_notes = ?, updated_at = ? WHERE project_id = ? AND code = ?
	`, nullString(notes), time.Now().Format(time.RFC3339), projectID, code)
	return err
}

func (r *SQLiteRepository) LinkShotSourceMedia(ctx context.Context, shotID, sourceMediaID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE shots SET source_media_id = ?, updated_at = ? WHERE id = ?
	`, sourceMediaID, time.Now().Format(time.RFC3339), shotID)
	return err
}

func (r *SQLiteRepository) GetConfig(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, "SELECT value FROM config WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

func (r *SQLiteRepository) SetConfig(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

func nilOnNoRows[T any](v *T, err error) (*T, error) {
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return v, err
}

// parseTime accepts RFC3339 and SQLite's datetime('now') layout.
func parseTime(s string) time.Time {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	t, _ := time.Parse(time.DateTime, s)
	return t
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
