// Package interchange recognizes an editorial file and routes it to the
// matching parser, returning one result type for every format.
package interchange

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/heimdex/heimdex-turnover/internal/ale"
	"github.com/heimdex/heimdex-turnover/internal/cdl"
	"github.com/heimdex/heimdex-turnover/internal/diag"
	"github.com/heimdex/heimdex-turnover/internal/edl"
	"github.com/heimdex/heimdex-turnover/internal/filmscribe"
	"github.com/heimdex/heimdex-turnover/internal/marker"
	"github.com/heimdex/heimdex-turnover/internal/seqxml"
	"github.com/heimdex/heimdex-turnover/internal/shot"
	"github.com/heimdex/heimdex-turnover/internal/sourcemedia"
	"github.com/heimdex/heimdex-turnover/internal/timecode"
)

type Format string

const (
	FormatEDL          Format = "edl"
	FormatALE          Format = "ale"
	FormatSequenceXML  Format = "sequence_xml"
	FormatFilmScribe   Format = "filmscribe_xml"
	FormatCDL          Format = "cdl"
	FormatMarkers      Format = "markers"
	FormatUnrecognized Format = "unrecognized"
)

// Formats lists every format Parse can produce, in sniff priority order.
var Formats = []Format{FormatEDL, FormatALE, FormatSequenceXML, FormatFilmScribe, FormatCDL, FormatMarkers}

func ParseFormat(s string) (Format, bool) {
	for _, f := range Formats {
		if string(f) == strings.ToLower(strings.TrimSpace(s)) {
			return f, true
		}
	}
	return FormatUnrecognized, false
}

// sniffWindow is how much of a file the content checks look at.
const sniffWindow = 1024

var (
	edlEvent  = regexp.MustCompile(`(?m)^\s*\d{3,6}\s+\S+\s+(?:AA/V|AA|A\d*|V|B)\s+(?:C|D|W\d{3}|K)`)
	cdlRoot   = regexp.MustCompile(`<(?:\w+:)?(?:ColorDecisionList|ColorCorrectionCollection|ColorCorrection)[\s>]`)
	xmemlRoot = regexp.MustCompile(`<xmeml[\s>]`)
)

// Detect picks a format from the file extension, then from the content where
// the extension is ambiguous or missing.
func Detect(filename, content string) Format {
	head := content
	if len(head) > sniffWindow {
		head = head[:sniffWindow]
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".edl":
		return FormatEDL
	case ".ale":
		return FormatALE
	case ".cdl", ".cc", ".ccc":
		return FormatCDL
	case ".xml", ".fcpxml":
		return detectXML(content, head)
	case ".txt", ".tab", ".tsv":
		if looksALE(head) {
			return FormatALE
		}
		if marker.Looks(content) {
			return FormatMarkers
		}
		if edlEvent.MatchString(content) {
			return FormatEDL
		}
		return FormatUnrecognized
	}
	return sniff(content, head)
}

func detectXML(content, head string) Format {
	switch {
	case filmscribe.Detect(head) || filmscribe.Detect(content):
		return FormatFilmScribe
	case cdlRoot.MatchString(head) && !xmemlRoot.MatchString(head):
		return FormatCDL
	}
	return FormatSequenceXML
}

func sniff(content, head string) Format {
	trimmed := strings.TrimSpace(head)
	switch {
	case trimmed == "":
		return FormatUnrecognized
	case strings.HasPrefix(trimmed, "<"):
		return detectXML(content, head)
	case looksALE(head):
		return FormatALE
	case strings.HasPrefix(strings.ToUpper(trimmed), "TITLE:") || edlEvent.MatchString(content):
		return FormatEDL
	case marker.Looks(content):
		return FormatMarkers
	}
	return FormatUnrecognized
}

func looksALE(head string) bool {
	if strings.Contains(head, "FIELD_DELIM") {
		return true
	}
	for _, line := range strings.Split(head, "\n") {
		switch strings.TrimSpace(line) {
		case "Heading", "Column", "Data":
			return true
		}
	}
	return false
}

type Options struct {
	// FPS is used for formats that carry no rate of their own (EDL, markers).
	FPS            float64
	ProjectID      string
	SourceFilename string
	ShootDate      string
	ShootDay       string
	// Format forces a parser instead of detecting one.
	Format Format
}

// Result holds exactly one populated parser result, selected by Format.
type Result struct {
	Format      Format               `json:"format"`
	Filename    string               `json:"filename,omitempty"`
	EDL         *edl.Result          `json:"edl,omitempty"`
	ALE         *ale.Result          `json:"ale,omitempty"`
	SourceMedia []sourcemedia.Record `json:"source_media,omitempty"`
	Sequence    *seqxml.Result       `json:"sequence,omitempty"`
	FilmScribe  *filmscribe.Result   `json:"filmscribe,omitempty"`
	CDL         *cdl.FileResult      `json:"cdl,omitempty"`
	Markers     *marker.Result       `json:"markers,omitempty"`
	Warnings    diag.List            `json:"warnings"`
}

// Parse decodes, detects and parses one file. It never fails: an empty or
// unknown file gives an unrecognized result with a warning.
func Parse(filename string, data []byte, opts Options) *Result {
	content := Decode(data)
	result := &Result{Filename: filename, Warnings: diag.List{}}

	if strings.TrimSpace(content) == "" {
		result.Format = FormatUnrecognized
		result.Warnings.Addf(0, "", "empty input")
		return result
	}

	result.Format = opts.Format
	if result.Format == "" {
		result.Format = Detect(filename, content)
	}
	fps := opts.FPS
	if fps <= 0 {
		fps = timecode.DefaultFPS
	}

	switch result.Format {
	case FormatEDL:
		result.EDL = edl.Parse(content, fps)
		result.Warnings.Append(result.EDL.Warnings)
	case FormatALE:
		result.ALE = ale.Parse(content)
		records, warnings := sourcemedia.Import(content, sourcemedia.Options{
			ProjectID: opts.ProjectID,
			ALESource: firstNonEmpty(opts.SourceFilename, filename),
			ShootDate: opts.ShootDate,
			ShootDay:  opts.ShootDay,
		})
		result.SourceMedia = records
		result.Warnings.Append(warnings)
	case FormatSequenceXML:
		result.Sequence = seqxml.Parse(content)
		result.Warnings.Append(result.Sequence.Warnings)
	case FormatFilmScribe:
		result.FilmScribe = filmscribe.Parse(content)
		result.Warnings.Append(result.FilmScribe.Warnings)
	case FormatCDL:
		result.CDL = cdl.ParseFile(content)
		result.Warnings.Append(result.CDL.Warnings)
	case FormatMarkers:
		result.Markers = marker.Parse(content, fps)
		result.Warnings.Append(result.Markers.Warnings)
	default:
		result.Format = FormatUnrecognized
		result.Warnings.Addf(0, "", "unrecognized file format")
	}
	return result
}

// Shots returns the shot list of a timeline result, or nil for formats that
// carry no timeline.
func (r *Result) Shots() []shot.Shot {
	switch {
	case r.EDL != nil:
		return shot.FromEDL(r.EDL)
	case r.Sequence != nil:
		return shot.FromSequences(r.Sequence)
	case r.FilmScribe != nil:
		return shot.FromFilmScribe(r.FilmScribe)
	}
	return nil
}

// RecordCount is the number of primary items the file yielded.
func (r *Result) RecordCount() int {
	switch {
	case r.EDL != nil:
		return len(r.EDL.Events)
	case r.ALE != nil:
		return len(r.SourceMedia)
	case r.Sequence != nil:
		return r.Sequence.TotalClips
	case r.FilmScribe != nil:
		return len(r.FilmScribe.Events)
	case r.CDL != nil:
		return len(r.CDL.Entries)
	case r.Markers != nil:
		return len(r.Markers.Markers)
	}
	return 0
}

// FPS returns the frame rate the file declares, or def.
func (r *Result) FPS(def float64) float64 {
	switch {
	case r.Sequence != nil && len(r.Sequence.Sequences) > 0 && r.Sequence.Sequences[0].FPS > 0:
		return r.Sequence.Sequences[0].FPS
	case r.FilmScribe != nil && r.FilmScribe.EditRate > 0:
		return r.FilmScribe.EditRate
	case r.ALE != nil:
		return timecode.ParseFPS(r.ALE.Heading.FPS, def)
	}
	return def
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
