package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/heimdex/heimdex-turnover/internal/cdl"
	"github.com/heimdex/heimdex-turnover/internal/interchange"
	"github.com/heimdex/heimdex-turnover/internal/logging"
	"github.com/heimdex/heimdex-turnover/internal/matching"
	"github.com/heimdex/heimdex-turnover/internal/shot"
	"github.com/heimdex/heimdex-turnover/internal/sourcemedia"
	"github.com/heimdex/heimdex-turnover/internal/timecode"
)

var ErrUnsupportedFormat = errors.New("unsupported interchange format")

// ImportSummary reports what one imported file changed in its project.
type ImportSummary struct {
	ProjectID          string   `json:"project_id"`
	Filename           string   `json:"filename"`
	Format             string   `json:"format"`
	Records            int      `json:"records"`
	SourceMediaAdded   int      `json:"source_media_added,omitempty"`
	SourceMediaUpdated int      `json:"source_media_updated,omitempty"`
	ShotsUpserted      int      `json:"shots_upserted,omitempty"`
	ShotsLinked        int      `json:"shots_linked,omitempty"`
	MarkersMatched     int      `json:"markers_matched,omitempty"`
	MarkersUnmatched   int      `json:"markers_unmatched,omitempty"`
	CorrectionsApplied int      `json:"corrections_applied,omitempty"`
	Warnings           []string `json:"warnings"`
}

// MatchSummary reports a source-media linking pass over a project's shots.
type MatchSummary struct {
	ProjectID  string                    `json:"project_id"`
	Shots      int                       `json:"shots"`
	Linked     int                       `json:"linked"`
	Unmatched  []string                  `json:"unmatched"`
	Strategies map[matching.Strategy]int `json:"strategies"`
}

// ImportFile parses one interchange file and folds it into a project: logs
// become source media, timelines become shots, markers become shot notes and
// CDL files grade the clips and shots they name.
func (s *Service) ImportFile(ctx context.Context, projectID, filename string, data []byte) (*ImportSummary, error) {
	if strings.TrimSpace(projectID) == "" {
		return nil, fmt.Errorf("project id is required")
	}
	fps := s.DefaultFPS()

	result := interchange.Parse(filename, data, interchange.Options{
		FPS:            fps,
		ProjectID:      projectID,
		SourceFilename: filename,
	})
	if result.Format == interchange.FormatUnrecognized {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filename)
	}

	summary := &ImportSummary{
		ProjectID: projectID,
		Filename:  filename,
		Format:    string(result.Format),
		Records:   result.RecordCount(),
		Warnings:  result.Warnings.Strings(),
	}

	var err error
	switch result.Format {
	case interchange.FormatALE:
		err = s.importSourceMedia(ctx, result.SourceMedia, summary)
	case interchange.FormatEDL, interchange.FormatSequenceXML, interchange.FormatFilmScribe:
		err = s.importShots(ctx, projectID, filename, result.Shots(), summary)
	case interchange.FormatMarkers:
		err = s.importMarkers(ctx, projectID, result, fps, summary)
	case interchange.FormatCDL:
		err = s.importCorrections(ctx, projectID, result.CDL, summary)
	}
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", filename, err)
	}

	if s.logger != nil {
		logging.WithProjectID(s.logger, projectID).Info("imported interchange file",
			"filename", filename,
			"format", summary.Format,
			"records", summary.Records,
			"warnings", len(summary.Warnings),
		)
	}
	return summary, nil
}

func (s *Service) importSourceMedia(ctx context.Context, records []sourcemedia.Record, summary *ImportSummary) error {
	records = sourcemedia.Dedup(records)
	added, err := s.repo.UpsertSourceMedia(ctx, records)
	if err != nil {
		return err
	}
	summary.SourceMediaAdded = added
	summary.SourceMediaUpdated = len(records) - added

	// Shots imported before their camera logs can be linked now.
	match, err := s.MatchSourceMedia(ctx, summary.ProjectID)
	if err != nil {
		return err
	}
	summary.ShotsLinked = match.Linked
	return nil
}

func (s *Service) importShots(ctx context.Context, projectID, filename string, shots []shot.Shot, summary *ImportSummary) error {
	for _, sh := range shots {
		if sh.Code == "" {
			continue
		}
		rec := &ShotRecord{ProjectID: projectID, SourceFile: filename, Shot: sh}
		if err := s.repo.UpsertShot(ctx, rec); err != nil {
			return err
		}
		summary.ShotsUpserted++
	}

	match, err := s.MatchSourceMedia(ctx, projectID)
	if err != nil {
		return err
	}
	summary.ShotsLinked = match.Linked
	return nil
}

// importMarkers appends marker notes to the shots whose record span holds
// them. A note already present on the shot is not added twice.
func (s *Service) importMarkers(ctx context.Context, projectID string, result *interchange.Result, fps float64, summary *ImportSummary) error {
	stored, err := s.repo.ListShots(ctx, projectID)
	if err != nil {
		return err
	}
	shots := make([]shot.Shot, 0, len(stored))
	notes := make(map[string]string, len(stored))
	for _, rec := range stored {
		shots = append(shots, rec.Shot)
		notes[rec.Code] = rec.VFXNotes
	}

	sortByRecordIn(shots, fps)

	m := matching.MatchMarkers(result.Markers.Markers, matching.RangesOf(shots), fps)
	for code, note := range m.Matches {
		merged := appendNote(notes[code], note)
		if merged == notes[code] {
			continue
		}
		if err := s.repo.UpdateShotNotes(ctx, projectID, code, merged); err != nil {
			return err
		}
	}
	summary.MarkersMatched = m.MatchedCount
	summary.MarkersUnmatched = len(m.Unmatched)
	return nil
}

// sortByRecordIn puts stored shots back in timeline order, so overlapping
// spans resolve to the earlier shot. Shots without a record in sort first,
// as they span from frame 0.
func sortByRecordIn(shots []shot.Shot, fps float64) {
	start := func(s shot.Shot) int {
		f, err := timecode.ToFrames(s.RecordIn, fps)
		if err != nil {
			return 0
		}
		return f
	}
	sort.SliceStable(shots, func(i, j int) bool {
		return start(shots[i]) < start(shots[j])
	})
}

func appendNote(existing, note string) string {
	if existing == "" {
		return note
	}
	var add []string
	for _, line := range strings.Split(note, "\n") {
		if !strings.Contains(existing, line) {
			add = append(add, line)
		}
	}
	if len(add) == 0 {
		return existing
	}
	return existing + "\n" + strings.Join(add, "\n")
}

// importCorrections grades source media whose clip name matches a correction
// identifier, and shots whose code equals a correction id or whose media name
// matches one.
func (s *Service) importCorrections(ctx context.Context, projectID string, file *cdl.FileResult, summary *ImportSummary) error {
	media, err := s.repo.ListSourceMedia(ctx, projectID)
	if err != nil {
		return err
	}
	var graded []sourcemedia.Record
	for _, rec := range media {
		entry, ok := file.Find(rec.ClipName)
		if !ok {
			continue
		}
		c := entry.Correction
		rec.CDL = &c
		graded = append(graded, rec)
	}
	if len(graded) > 0 {
		if _, err := s.repo.UpsertSourceMedia(ctx, graded); err != nil {
			return err
		}
	}

	shots, err := s.repo.ListShots(ctx, projectID)
	if err != nil {
		return err
	}
	byID := file.ByID()
	applied := len(graded)
	for _, rec := range shots {
		entry, ok := byID[rec.Code]
		if !ok {
			entry, ok = file.Find(rec.MatchName())
		}
		if !ok {
			continue
		}
		c := entry.Correction
		rec.CDL = &c
		if err := s.repo.UpsertShot(ctx, rec); err != nil {
			return err
		}
		applied++
	}
	summary.CorrectionsApplied = applied
	return nil
}

// MatchSourceMedia links every unlinked shot of a project to its source media.
func (s *Service) MatchSourceMedia(ctx context.Context, projectID string) (*MatchSummary, error) {
	shots, err := s.repo.ListShots(ctx, projectID)
	if err != nil {
		return nil, err
	}
	media, err := s.repo.ListSourceMedia(ctx, projectID)
	if err != nil {
		return nil, err
	}

	summary := &MatchSummary{
		ProjectID:  projectID,
		Shots:      len(shots),
		Unmatched:  []string{},
		Strategies: map[matching.Strategy]int{},
	}
	for _, rec := range shots {
		if rec.SourceMediaID != "" {
			summary.Linked++
			continue
		}
		m, ok := matching.MatchClip(matching.RefOf(rec.Shot), media)
		if !ok {
			summary.Unmatched = append(summary.Unmatched, rec.Code)
			continue
		}
		if err := s.repo.LinkShotSourceMedia(ctx, rec.ID, m.Record.ID); err != nil {
			return nil, err
		}
		summary.Linked++
		summary.Strategies[m.Strategy]++
	}

	if s.logger != nil {
		s.logger.Info("source media matched",
			"project_id", projectID,
			"shots", summary.Shots,
			"linked", summary.Linked,
			"unmatched", len(summary.Unmatched),
		)
	}
	return summary, nil
}
