// Package marker reads marker lists exported from Avid and Resolve timelines:
//
//	VFX_41_0010	03:00:45:12	V1	magenta	VFX_41_0010 - Remove light	1
package marker

import (
	"regexp"
	"strings"

	"github.com/heimdex/heimdex-turnover/internal/diag"
	"github.com/heimdex/heimdex-turnover/internal/timecode"
)

const minColumns = 5

type Entry struct {
	ID       string `json:"id"`
	Timecode string `json:"timecode"`
	Track    string `json:"track"`
	Color    string `json:"color"`
	Note     string `json:"note"`
	Frames   int    `json:"frames"`
}

type Result struct {
	Markers  []Entry   `json:"markers"`
	Warnings diag.List `json:"warnings"`
}

var (
	tcShape = regexp.MustCompile(`^\d{2}:\d{2}:\d{2}[:;]\d{2}$`)
	// Space-aligned exports: id, timecode, track, color, then the note.
	spaced = regexp.MustCompile(`^(\S+)\s+(\d{2}:\d{2}:\d{2}[:;]\d{2})\s+(\S+)\s+(\S+)\s+(.+)$`)
)

// Parse reads one marker per line. fps is used for the Frames field only.
func Parse(content string, fps float64) *Result {
	if fps <= 0 {
		fps = timecode.DefaultFPS
	}
	result := &Result{Markers: []Entry{}}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	first := true
	for i, raw := range strings.Split(content, "\n") {
		lineNum := i + 1
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		header := first && looksLikeHeader(line)
		first = false

		parts := fields(line)
		if len(parts) < minColumns {
			if header {
				continue
			}
			result.Warnings.Addf(lineNum, line, "not enough columns (got %d, need %d+)", len(parts), minColumns)
			continue
		}

		tc := strings.TrimSpace(parts[1])
		if !tcShape.MatchString(tc) {
			if header {
				continue
			}
			result.Warnings.Addf(lineNum, line, "invalid timecode format %q", tc)
			continue
		}

		frames, _ := timecode.ToFrames(tc, fps)
		result.Markers = append(result.Markers, Entry{
			ID:       strings.TrimSpace(parts[0]),
			Timecode: tc,
			Track:    strings.TrimSpace(parts[2]),
			Color:    strings.TrimSpace(parts[3]),
			Note:     strings.TrimSpace(parts[4]),
			Frames:   frames,
		})
	}
	return result
}

// fields splits on tabs; lines without any tab fall back to the
// space-aligned layout.
func fields(line string) []string {
	if strings.Contains(line, "\t") {
		return strings.Split(line, "\t")
	}
	if m := spaced.FindStringSubmatch(line); m != nil {
		return m[1:]
	}
	return strings.Fields(line)
}

func looksLikeHeader(line string) bool {
	l := strings.ToLower(line)
	return strings.Contains(l, "timecode") || strings.Contains(l, "marker")
}

// Looks reports whether content has at least one tab-separated line whose
// second column is a timecode.
func Looks(content string) bool {
	for _, line := range strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n") {
		parts := strings.Split(strings.TrimSpace(line), "\t")
		if len(parts) >= minColumns && tcShape.MatchString(strings.TrimSpace(parts[1])) {
			return true
		}
	}
	return false
}
