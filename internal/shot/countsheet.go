package shot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/heimdex/heimdex-turnover/internal/timecode"
)

const DefaultHandles = 8

type CountSheet struct {
	Code           string  `json:"code"`
	CutFrames      int     `json:"cut_frames"`
	HandleHead     int     `json:"handle_head"`
	HandleTail     int     `json:"handle_tail"`
	WorkingFrames  int     `json:"working_frames"`
	CutSeconds     float64 `json:"cut_seconds"`
	WorkingSeconds float64 `json:"working_seconds"`
	SceneTake      string  `json:"scene_take,omitempty"`
	Reposition     string  `json:"reposition,omitempty"`
	Speed          string  `json:"speed,omitempty"`
	Notes          string  `json:"notes,omitempty"`
}

// NewCountSheet computes cut and working lengths. Non-positive handles fall
// back to DefaultHandles.
func NewCountSheet(s Shot, fps float64, head, tail int) CountSheet {
	if fps <= 0 {
		fps = timecode.DefaultFPS
	}
	if head <= 0 {
		head = DefaultHandles
	}
	if tail <= 0 {
		tail = DefaultHandles
	}

	cs := CountSheet{
		Code:       s.Code,
		CutFrames:  s.DurationFrames,
		HandleHead: head,
		HandleTail: tail,
		Reposition: RepositionSummary(s),
		Speed:      SpeedSummary(s),
		Notes:      s.VFXNotes,
	}
	cs.WorkingFrames = cs.CutFrames + head + tail
	cs.CutSeconds = float64(cs.CutFrames) / fps
	cs.WorkingSeconds = float64(cs.WorkingFrames) / fps

	switch {
	case s.Scene != "" && s.Take != "":
		cs.SceneTake = s.Scene + "/" + s.Take
	case s.Scene != "":
		cs.SceneTake = s.Scene
	}
	return cs
}

// RepositionSummary renders a transform as e.g. "110% @+20,-15 rot 2°".
func RepositionSummary(s Shot) string {
	t := s.Transform
	if t == nil || !t.Repositioned() {
		return ""
	}
	parts := []string{num(t.Scale) + "%"}
	if t.PositionX != 0 || t.PositionY != 0 {
		parts = append(parts, "@"+signed(t.PositionX)+","+signed(t.PositionY))
	}
	if t.Rotation != 0 {
		parts = append(parts, "rot "+num(t.Rotation)+"°")
	}
	return strings.Join(parts, " ")
}

func SpeedSummary(s Shot) string {
	sp := s.Speed
	if sp == nil || !sp.Changed() {
		return ""
	}

	var parts []string
	switch {
	case sp.TimeRemapping:
		parts = append(parts, "RETIME (variable)")
	case sp.Ratio < 1:
		parts = append(parts, num(sp.Ratio*100)+"% (slow-mo)")
	case sp.Ratio > 1:
		parts = append(parts, num(sp.Ratio*100)+"% (fast)")
	}
	if sp.Reverse {
		parts = append(parts, "REV")
	}
	return strings.Join(parts, " ")
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func signed(v float64) string {
	return fmt.Sprintf("%+g", v)
}
