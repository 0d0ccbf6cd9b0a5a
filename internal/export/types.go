package export

import (
	"strings"

	"github.com/heimdex/heimdex-turnover/internal/cdl"
	"github.com/heimdex/heimdex-turnover/internal/shot"
	"github.com/heimdex/heimdex-turnover/internal/sourcemedia"
)

type Format string

const (
	FormatEDL Format = "edl"
	FormatALE Format = "ale"
	FormatXML Format = "xml"
	FormatCDL Format = "cdl"
	FormatCC  Format = "cc"
	FormatCCC Format = "ccc"
)

func ParseFormat(s string) (Format, bool) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatEDL, FormatALE, FormatXML, FormatCDL, FormatCC, FormatCCC:
		return f, true
	}
	return "", false
}

func (f Format) Extension() string {
	return "." + string(f)
}

func (f Format) ContentType() string {
	switch f {
	case FormatEDL, FormatALE:
		return "text/plain; charset=utf-8"
	}
	return "application/xml"
}

// Options control every serializer. Zero values fall back to 24 fps and
// 1920x1080.
type Options struct {
	Title       string
	FPS         float64
	DropFrame   bool
	Width       int
	Height      int
	VideoFormat string
	// SourceMedia enriches ALE rows with camera metadata of the matched clip.
	SourceMedia []sourcemedia.Record
}

type ExportRequest struct {
	Title       string               `json:"title"`
	FPS         float64              `json:"fps"`
	DropFrame   bool                 `json:"drop_frame"`
	Width       int                  `json:"width,omitempty"`
	Height      int                  `json:"height,omitempty"`
	Shots       []shot.Shot          `json:"shots"`
	SourceMedia []sourcemedia.Record `json:"source_media,omitempty"`
	CDLs        []cdl.Entry          `json:"cdls,omitempty"`
}

func (r ExportRequest) Options() Options {
	return Options{
		Title:       r.Title,
		FPS:         r.FPS,
		DropFrame:   r.DropFrame,
		Width:       r.Width,
		Height:      r.Height,
		SourceMedia: r.SourceMedia,
	}
}

type ExportResponse struct {
	Format   Format `json:"format"`
	Filename string `json:"filename"`
	Count    int    `json:"count"`
	Content  string `json:"content"`
}

// Generate renders req in the given format. CDL formats use req.CDLs when
// set, otherwise the graded shots.
func Generate(format Format, req ExportRequest) ExportResponse {
	opts := req.Options()
	resp := ExportResponse{Format: format, Filename: Filename(req.Title, format)}

	switch format {
	case FormatEDL:
		resp.Content, resp.Count = GenerateEDL(req.Shots, opts), len(req.Shots)
	case FormatALE:
		resp.Content, resp.Count = GenerateALE(req.Shots, opts), len(req.Shots)
	case FormatXML:
		resp.Content, resp.Count = GenerateXML(req.Shots, opts), len(req.Shots)
	default:
		entries := req.CDLs
		if len(entries) == 0 {
			entries = EntriesFromShots(req.Shots)
		}
		resp.Count = len(entries)
		switch format {
		case FormatCC:
			if len(entries) > 0 {
				resp.Content = GenerateCC(entries[0])
			}
		case FormatCCC:
			resp.Content = GenerateCCC(entries)
		default:
			resp.Content = GenerateCDL(req.Title, entries)
		}
	}
	return resp
}

// Filename builds a download name from a title.
func Filename(title string, format Format) string {
	name := SanitizeName(title, maxNameLen)
	if name == "" {
		name = "turnover"
	}
	return name + format.Extension()
}

const maxNameLen = 120
