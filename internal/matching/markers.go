// Package matching links parsed material together: markers to shots, shots
// to camera-original source media, and delivered filenames to shot codes.
package matching

import (
	"math"

	"github.com/heimdex/heimdex-turnover/internal/marker"
	"github.com/heimdex/heimdex-turnover/internal/shot"
	"github.com/heimdex/heimdex-turnover/internal/timecode"
)

// ShotRange is a shot's record span. An empty RecordIn starts at frame 0 and
// an empty RecordOut never ends.
type ShotRange struct {
	Code      string `json:"code"`
	RecordIn  string `json:"record_in,omitempty"`
	RecordOut string `json:"record_out,omitempty"`
}

type MarkerMatch struct {
	Matches      map[string]string `json:"matches"`
	MatchedCount int               `json:"matched_count"`
	Unmatched    []marker.Entry    `json:"unmatched_markers"`
}

// RangesOf returns the record spans of a shot list in order.
func RangesOf(shots []shot.Shot) []ShotRange {
	ranges := make([]ShotRange, 0, len(shots))
	for _, s := range shots {
		ranges = append(ranges, ShotRange{Code: s.Code, RecordIn: s.RecordIn, RecordOut: s.RecordOut})
	}
	return ranges
}

type span struct {
	code       string
	start, end float64
}

// MatchMarkers assigns each marker to the first shot whose [in, out) record
// span holds it. Notes landing on the same shot are joined by newlines.
// Marker positions are recomputed from their timecode at fps so both sides
// use the same frame grid.
func MatchMarkers(markers []marker.Entry, shots []ShotRange, fps float64) MarkerMatch {
	if fps <= 0 {
		fps = timecode.DefaultFPS
	}

	spans := make([]span, 0, len(shots))
	for _, s := range shots {
		sp := span{code: s.Code, end: math.Inf(1)}
		if s.RecordIn != "" {
			f, _ := timecode.ToFrames(s.RecordIn, fps)
			sp.start = float64(f)
		}
		if s.RecordOut != "" {
			f, _ := timecode.ToFrames(s.RecordOut, fps)
			sp.end = float64(f)
		}
		spans = append(spans, sp)
	}

	result := MarkerMatch{Matches: map[string]string{}, Unmatched: []marker.Entry{}}
	for _, m := range markers {
		frame := m.Frames
		if f, err := timecode.ToFrames(m.Timecode, fps); err == nil {
			frame = f
		}

		code, ok := locate(spans, float64(frame))
		if !ok {
			result.Unmatched = append(result.Unmatched, m)
			continue
		}
		if prev, exists := result.Matches[code]; exists {
			result.Matches[code] = prev + "\n" + m.Note
		} else {
			result.Matches[code] = m.Note
		}
		result.MatchedCount++
	}
	return result
}

func locate(spans []span, frame float64) (string, bool) {
	for _, sp := range spans {
		if frame >= sp.start && frame < sp.end {
			return sp.code, true
		}
	}
	return "", false
}
