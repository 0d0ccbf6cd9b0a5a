// Package seqxml reads xmeml sequence exports from Final Cut Pro 7, Premiere
// Pro and DaVinci Resolve.
package seqxml

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/heimdex/heimdex-turnover/internal/cdl"
	"github.com/heimdex/heimdex-turnover/internal/diag"
	"github.com/heimdex/heimdex-turnover/internal/timecode"
)

type Format string

const (
	FormatPremiere Format = "premiere"
	FormatFCP7     Format = "fcp7"
	FormatResolve  Format = "resolve"
	FormatUnknown  Format = "unknown"
)

const (
	defaultWidth  = 1920
	defaultHeight = 1080
)

type Transform struct {
	Scale     float64 `json:"scale"`
	PositionX float64 `json:"position_x"`
	PositionY float64 `json:"position_y"`
	Rotation  float64 `json:"rotation"`
}

// Repositioned reports whether the transform differs from a 100% centred frame.
func (t Transform) Repositioned() bool {
	return t.Scale != 100 || t.PositionX != 0 || t.PositionY != 0 || t.Rotation != 0
}

type Speed struct {
	Ratio         float64 `json:"ratio"`
	Reverse       bool    `json:"reverse"`
	TimeRemapping bool    `json:"time_remapping"`
}

func (s Speed) Changed() bool {
	return s.Ratio != 1 || s.Reverse || s.TimeRemapping
}

type Clip struct {
	ID                  string          `json:"id"`
	Name                string          `json:"name"`
	SourceFileName      string          `json:"source_file_name,omitempty"`
	SourceFilePath      string          `json:"source_file_path,omitempty"`
	Duration            int             `json:"duration"`
	Start               int             `json:"start"`
	End                 int             `json:"end"`
	In                  int             `json:"in"`
	Out                 int             `json:"out"`
	SourceTimecode      string          `json:"source_timecode,omitempty"`
	SourceTimecodeFrame *int            `json:"source_timecode_frame,omitempty"`
	FPS                 float64         `json:"fps"`
	Scene               string          `json:"scene,omitempty"`
	Take                string          `json:"take,omitempty"`
	CameraRoll          string          `json:"camera_roll,omitempty"`
	ReelName            string          `json:"reel_name,omitempty"`
	Label               string          `json:"label,omitempty"`
	Description         string          `json:"description,omitempty"`
	Transform           *Transform      `json:"transform,omitempty"`
	HasReposition       bool            `json:"has_reposition"`
	Speed               *Speed          `json:"speed,omitempty"`
	HasSpeedChange      bool            `json:"has_speed_change"`
	CDL                 *cdl.Correction `json:"cdl,omitempty"`
	HasCDL              bool            `json:"has_cdl"`
}

type Sequence struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Duration int     `json:"duration"`
	FPS      float64 `json:"fps"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	Clips    []Clip  `json:"clips"`
}

type Result struct {
	Format               Format     `json:"format"`
	Version              string     `json:"version,omitempty"`
	Sequences            []Sequence `json:"sequences"`
	TotalClips           int        `json:"total_clips"`
	ClipsWithReposition  int        `json:"clips_with_reposition"`
	ClipsWithSpeedChange int        `json:"clips_with_speed_change"`
	ClipsWithCDL         int        `json:"clips_with_cdl"`
	Warnings             diag.List  `json:"warnings"`
}

// Parse reads an xmeml document. Sequences are found at any depth (inside
// projects and bins too). Malformed XML ends parsing with a warning; what was
// read before the error is kept.
func Parse(content string) *Result {
	result := &Result{Format: detectFormat(content), Sequences: []Sequence{}}
	files := make(map[string]*xFile)

	dec := xml.NewDecoder(strings.NewReader(content))
	dec.Strict = false
	sawXmeml := false

	for {
		tok, err := dec.Token()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				result.Warnings.Addf(0, "", "malformed XML: %v", err)
			}
			break
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		switch start.Name.Local {
		case "xmeml":
			sawXmeml = true
			for _, a := range start.Attr {
				if a.Name.Local == "version" {
					result.Version = a.Value
				}
			}
		case "sequence":
			var xs xSequence
			if err := dec.DecodeElement(&xs, &start); err != nil {
				result.Warnings.Addf(0, "", "sequence %d: %v", len(result.Sequences)+1, err)
				continue
			}
			result.Sequences = append(result.Sequences, buildSequence(xs, len(result.Sequences), files, &result.Warnings))
		}
	}

	if result.Format == FormatUnknown && sawXmeml {
		result.Format = FormatFCP7
	}

	for _, seq := range result.Sequences {
		result.TotalClips += len(seq.Clips)
		for _, c := range seq.Clips {
			if c.HasReposition {
				result.ClipsWithReposition++
			}
			if c.HasSpeedChange {
				result.ClipsWithSpeedChange++
			}
			if c.HasCDL {
				result.ClipsWithCDL++
			}
		}
	}
	return result
}

func detectFormat(content string) Format {
	switch {
	case strings.Contains(content, "PremierePro") || strings.Contains(content, "Adobe Premiere"):
		return FormatPremiere
	case strings.Contains(content, "Final Cut Pro"):
		return FormatFCP7
	case strings.Contains(content, "DaVinci Resolve"):
		return FormatResolve
	}
	return FormatUnknown
}

func buildSequence(xs xSequence, index int, files map[string]*xFile, warnings *diag.List) Sequence {
	seq := Sequence{
		ID:       xs.ID,
		Name:     strings.TrimSpace(xs.Name),
		Duration: atoi(xs.Duration, 0),
		FPS:      rateFPS(&xs.Rate, timecode.DefaultFPS),
		Width:    atoi(xs.Media.Video.Format.Samples.Width, defaultWidth),
		Height:   atoi(xs.Media.Video.Format.Samples.Height, defaultHeight),
		Clips:    []Clip{},
	}
	if seq.ID == "" {
		seq.ID = fmt.Sprintf("sequence-%d", index)
	}
	if seq.Name == "" {
		seq.Name = fmt.Sprintf("Sequence %d", index+1)
	}

	n := 0
	for _, track := range xs.Media.Video.Tracks {
		for _, item := range track.ClipItems {
			file := resolveFile(item.File, files)
			clip, ok := buildClip(item, file, n, seq.FPS)
			if !ok {
				warnings.Addf(0, "", "sequence %q clip %d: missing name, skipping", seq.Name, n+1)
			} else {
				seq.Clips = append(seq.Clips, clip)
			}
			n++
		}
	}
	return seq
}

// resolveFile registers full file definitions and expands later
// <file id="..."/> references to them.
func resolveFile(f *xFile, files map[string]*xFile) *xFile {
	if f == nil {
		return nil
	}
	if f.defined() {
		if f.ID != "" {
			files[f.ID] = f
		}
		return f
	}
	if def, ok := files[f.ID]; ok {
		return def
	}
	return f
}

func buildClip(item xClipItem, file *xFile, index int, fps float64) (Clip, bool) {
	name := strings.TrimSpace(item.Name)
	if name == "" {
		return Clip{}, false
	}

	clip := Clip{
		ID:       item.ID,
		Name:     name,
		Duration: atoi(item.Duration, 0),
		Start:    atoi(item.Start, 0),
		End:      atoi(item.End, 0),
		In:       atoi(item.In, 0),
		Out:      atoi(item.Out, 0),
		FPS:      fps,
	}
	if clip.ID == "" {
		clip.ID = fmt.Sprintf("clip-%d", index)
	}

	logging, film, color := item.Logging, item.Film, item.Color
	if file != nil {
		clip.SourceFileName = strings.TrimSpace(file.Name)
		clip.SourceFilePath = strings.TrimSpace(file.PathURL)
		if tc := file.Timecode; tc != nil {
			clip.SourceTimecode = strings.TrimSpace(tc.String)
			clip.ReelName = strings.TrimSpace(tc.Reel.Name)
			clip.SourceTimecodeFrame = sourceFrame(tc, fps)
		}
		if logging == nil {
			logging = file.Logging
		}
		if film == nil {
			film = file.Film
		}
		if color == nil {
			color = file.Color
		}
	}
	if logging != nil {
		clip.Scene = strings.TrimSpace(logging.Scene)
		clip.Take = strings.TrimSpace(logging.ShotTake)
		clip.Description = strings.TrimSpace(logging.Description)
	}
	if film != nil {
		clip.CameraRoll = strings.TrimSpace(film.CameraRoll)
	}
	if item.Labels != nil {
		clip.Label = strings.TrimSpace(item.Labels.Label2)
	}
	if color != nil {
		if c, ok := cdl.FromColumns(color.SOP, color.SAT); ok {
			clip.CDL = &c
			clip.HasCDL = !c.IsIdentity()
		}
	}

	if t := parseTransform(item.Filters); t != nil {
		clip.Transform = t
		clip.HasReposition = t.Repositioned()
	}
	if s := parseSpeed(item, file); s != nil {
		clip.Speed = s
		clip.HasSpeedChange = s.Changed()
	}
	return clip, true
}

func sourceFrame(tc *xTimecode, fps float64) *int {
	if f := strings.TrimSpace(tc.Frame); f != "" {
		if n, err := strconv.Atoi(f); err == nil {
			return &n
		}
	}
	if tc.String == "" {
		return nil
	}
	rate := fps
	if tc.Rate != nil {
		rate = rateFPS(tc.Rate, fps)
	}
	n, err := timecode.ToFrames(tc.String, rate)
	if err != nil {
		return nil
	}
	return &n
}

func parseTransform(filters []xFilter) *Transform {
	for _, f := range filters {
		name, id := f.Effect.ident()
		if !strings.Contains(name, "motion") && id != "basic" && id != "motion" {
			continue
		}

		t := &Transform{Scale: 100}
		for _, p := range f.Effect.Parameters {
			label := p.label()
			v := p.value()
			if v == nil {
				continue
			}
			switch {
			case strings.Contains(label, "scale") && !strings.Contains(label, "height") && !strings.Contains(label, "width"):
				t.Scale = numericValue(v.Text)
			case strings.Contains(label, "rotation"):
				t.Rotation = numericValue(v.Text)
			case (strings.Contains(label, "center") || strings.Contains(label, "position")) && !strings.Contains(label, "offset"):
				if v.Horiz != "" || v.Vert != "" {
					t.PositionX = numericValue(v.Horiz)
					t.PositionY = numericValue(v.Vert)
				} else if strings.HasSuffix(label, "y") {
					t.PositionY = numericValue(v.Text)
				} else {
					t.PositionX = numericValue(v.Text)
				}
			}
		}
		return t
	}
	return nil
}

func parseSpeed(item xClipItem, file *xFile) *Speed {
	for _, f := range item.Filters {
		name, id := f.Effect.ident()
		if !strings.Contains(name, "speed") && !strings.Contains(name, "time remap") &&
			!strings.Contains(id, "speed") && !strings.Contains(id, "timeremap") {
			continue
		}

		s := &Speed{Ratio: 1}
		for _, p := range f.Effect.Parameters {
			label := p.label()
			v := p.value()
			if v == nil {
				continue
			}
			switch {
			case strings.Contains(label, "variable"):
				s.TimeRemapping = truthy(v.Text)
			case strings.Contains(label, "reverse"):
				s.Reverse = truthy(v.Text)
			case strings.Contains(label, "speed") || strings.Contains(label, "rate"):
				s.Ratio = numericValue(v.Text) / 100
				if len(p.Keyframes) > 1 {
					s.TimeRemapping = true
				}
			}
		}
		return s
	}

	if item.Rate != nil && file != nil && file.Rate != nil {
		clipBase := atoi(item.Rate.Timebase, 0)
		fileBase := atoi(file.Rate.Timebase, 0)
		if clipBase > 0 && fileBase > 0 && clipBase != fileBase {
			return &Speed{Ratio: float64(fileBase) / float64(clipBase)}
		}
	}
	return nil
}

// numericValue reads plain numbers and Premiere's "ticks,value,..." lists,
// where the value is the second element.
func numericValue(s string) float64 {
	s = strings.TrimSpace(s)
	if parts := strings.Split(s, ","); len(parts) >= 2 {
		s = strings.TrimSpace(parts[1])
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func truthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes":
		return true
	case "false", "no", "":
		return false
	}
	return numericValue(s) != 0
}

func rateFPS(r *xRate, def float64) float64 {
	base := atoi(r.Timebase, 0)
	if base <= 0 {
		return def
	}
	if strings.EqualFold(strings.TrimSpace(r.NTSC), "true") {
		return float64(base) * 1000 / 1001
	}
	return float64(base)
}

func atoi(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return n
}
