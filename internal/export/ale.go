package export

import (
	"strconv"
	"strings"

	"github.com/heimdex/heimdex-turnover/internal/cdl"
	"github.com/heimdex/heimdex-turnover/internal/matching"
	"github.com/heimdex/heimdex-turnover/internal/shot"
	"github.com/heimdex/heimdex-turnover/internal/sourcemedia"
	"github.com/heimdex/heimdex-turnover/internal/timecode"
)

var aleColumns = []string{
	"Name", "Clip Name", "Start", "End", "Duration", "Scene", "Take",
	"Camera", "Camera Model", "Lens", "Focal Length", "ISO", "Shutter",
	"White Balance", "ASC_SOP", "ASC_SAT", "LUT", "Comments",
}

func GenerateALE(shots []shot.Shot, opts Options) string {
	fps := frameRate(opts.FPS)
	videoFormat := opts.VideoFormat
	if videoFormat == "" {
		videoFormat = "1080"
	}

	lines := []string{
		"Heading",
		"FIELD_DELIM\tTABS",
		"VIDEO_FORMAT\t" + videoFormat,
		"FPS\t" + strconv.FormatFloat(fps, 'f', -1, 64),
		"",
		"Column",
		strings.Join(aleColumns, "\t"),
		"",
		"Data",
	}

	for _, s := range shots {
		var media *sourcemedia.Record
		if len(opts.SourceMedia) > 0 {
			if m, ok := matching.MatchClip(matching.RefOf(s), opts.SourceMedia); ok {
				media = &m.Record
			}
		}
		lines = append(lines, strings.Join(aleRow(s, media, fps), "\t"))
	}
	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func aleRow(s shot.Shot, media *sourcemedia.Record, fps float64) []string {
	var m sourcemedia.Record
	if media != nil {
		m = *media
	}

	duration := ""
	if s.DurationFrames > 0 {
		duration = timecode.Format(s.DurationFrames, fps, false)
	}

	grade := s.CDL
	if grade == nil {
		grade = m.CDL
	}
	sop, sat := "", ""
	if grade != nil {
		sop, sat = cdl.FormatSOP(*grade), cdl.FormatSAT(grade.Saturation)
	}

	row := []string{
		s.Code,
		firstNonEmpty(s.ClipName, s.Code),
		s.SourceIn,
		s.SourceOut,
		duration,
		firstNonEmpty(s.Scene, m.Scene),
		firstNonEmpty(s.Take, m.Take),
		firstNonEmpty(s.Camera, m.CameraID, s.CameraRoll),
		m.Camera,
		m.Lens,
		m.FocalLength,
		m.ISO,
		m.Shutter,
		m.WhiteBalance,
		sop,
		sat,
		firstNonEmpty(m.LUT, m.Look),
		s.VFXNotes,
	}
	for i, v := range row {
		row[i] = cleanField(v)
	}
	return row
}

// cleanField keeps a value on one line and inside one column.
func cleanField(v string) string {
	return strings.Join(strings.FieldsFunc(v, func(r rune) bool {
		return r == '\t' || r == '\n' || r == '\r'
	}), " ")
}
