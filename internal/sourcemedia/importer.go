package sourcemedia

import (
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/heimdex/heimdex-turnover/internal/ale"
	"github.com/heimdex/heimdex-turnover/internal/cdl"
	"github.com/heimdex/heimdex-turnover/internal/diag"
	"github.com/heimdex/heimdex-turnover/internal/timecode"
)

// Options are applied to every record of one import. ShootDate and ShootDay
// override whatever the log says.
type Options struct {
	ProjectID string
	ALESource string
	ShootDate string
	ShootDay  string
}

var (
	focalRe    = regexp.MustCompile(`(?i)(\d+(?:-\d+)?)\s*mm`)
	arriDateRe = regexp.MustCompile(`^(\d{4})(\d{2})(\d{2})$`)
)

// Import parses ALE text into source media records. Rows without a clip name
// are skipped with a warning.
func Import(content string, opts Options) ([]Record, diag.List) {
	parsed := ale.Parse(content)
	warnings := append(diag.List{}, parsed.Warnings...)
	fps := timecode.ParseFPS(parsed.Heading.FPS, timecode.DefaultFPS)

	records := make([]Record, 0, len(parsed.Records))
	for i, row := range parsed.Records {
		clipName := strings.TrimSpace(ale.ClipName(row))
		if clipName == "" {
			warnings.Addf(0, "", "record %d: skipping record with no clip name", i+1)
			continue
		}
		records = append(records, FromALE(row, fps, clipName, opts))
	}
	return records, warnings
}

// FromALE maps one ALE row onto a Record.
func FromALE(row ale.Record, fps float64, clipName string, opts Options) Record {
	r := Record{
		ProjectID: opts.ProjectID,
		ClipName:  clipName,
		FPS:       fps,
		Circled:   ale.IsCircled(row),
		ALESource: opts.ALESource,
	}
	for _, s := range synonyms {
		*s.target(&r) = row.First(s.columns...)
	}

	if r.TCIn != "" {
		if f, err := timecode.ToFrames(r.TCIn, fps); err == nil {
			r.TCInFrames = &f
		}
	}
	if r.TCOut != "" {
		if f, err := timecode.ToFrames(r.TCOut, fps); err == nil {
			r.TCOutFrames = &f
		}
	}
	r.DurationFrames = duration(row, r.TCInFrames, r.TCOutFrames, fps)

	if r.FileType == "" {
		r.FileType = extension(clipName)
	}
	r.Resolution = resolution(row)
	if r.FocalLength == "" {
		if m := focalRe.FindStringSubmatch(row.Get(lensTypeColumn)); m != nil {
			r.FocalLength = m[1]
		}
	}
	if r.ShootDate == "" {
		r.ShootDate = arriDate(row.Get(arriDateColumn))
	}
	if opts.ShootDate != "" {
		r.ShootDate = opts.ShootDate
	}
	if opts.ShootDay != "" {
		r.ShootDay = opts.ShootDay
	}

	if c, ok := cdl.FromColumns(row.First(sopColumns...), row.First(satColumns...)); ok {
		r.CDL = &c
	}
	r.CustomMetadata = customMetadata(row)
	return r
}

func duration(row ale.Record, in, out *int, fps float64) *int {
	if in != nil && out != nil {
		d := *out - *in
		return &d
	}
	raw := strings.TrimSpace(row.First(durationColumns...))
	if raw == "" {
		return nil
	}
	if timecode.Looks(raw) {
		if d, err := timecode.ToFrames(raw, fps); err == nil {
			return &d
		}
		return nil
	}
	if d, err := strconv.Atoi(raw); err == nil {
		return &d
	}
	return nil
}

func extension(name string) string {
	ext := path.Ext(name)
	if len(ext) < 2 {
		return ""
	}
	return strings.ToLower(ext[1:])
}

func resolution(row ale.Record) string {
	w, h := row.First(widthColumns...), row.First(heightColumns...)
	if w != "" && h != "" {
		return w + "x" + h
	}
	return row.First(formatColumns...)
}

// arriDate rewrites the YYYYMMDD stamp ARRI cameras log as YYYY-MM-DD.
func arriDate(s string) string {
	if m := arriDateRe.FindStringSubmatch(s); m != nil {
		return m[1] + "-" + m[2] + "-" + m[3]
	}
	return s
}

func customMetadata(row ale.Record) map[string]string {
	var custom map[string]string
	for i, col := range row.Columns() {
		v := row.Values()[i]
		if knownColumns[col] || strings.TrimSpace(v) == "" {
			continue
		}
		if custom == nil {
			custom = make(map[string]string)
		}
		custom[col] = v
	}
	return custom
}
