package export

import (
	"encoding/xml"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/heimdex/heimdex-turnover/internal/cdl"
	"github.com/heimdex/heimdex-turnover/internal/seqxml"
	"github.com/heimdex/heimdex-turnover/internal/shot"
	"github.com/heimdex/heimdex-turnover/internal/timecode"
)

type xmeml struct {
	XMLName xml.Name   `xml:"xmeml"`
	Version string     `xml:"version,attr"`
	Project xmlProject `xml:"project"`
}

type xmlProject struct {
	Name     string      `xml:"name"`
	Sequence xmlSequence `xml:"children>sequence"`
}

type xmlRate struct {
	Timebase int    `xml:"timebase"`
	NTSC     string `xml:"ntsc"`
}

type xmlSamples struct {
	Width            int      `xml:"width"`
	Height           int      `xml:"height"`
	PixelAspectRatio string   `xml:"pixelaspectratio,omitempty"`
	Rate             *xmlRate `xml:"rate,omitempty"`
}

type xmlSequence struct {
	ID       string     `xml:"id,attr"`
	Name     string     `xml:"name"`
	Duration int        `xml:"duration"`
	Rate     xmlRate    `xml:"rate"`
	Format   xmlSamples `xml:"media>video>format>samplecharacteristics"`
	Clips    []xmlClip  `xml:"media>video>track>clipitem"`
}

type xmlClip struct {
	ID        string        `xml:"id,attr"`
	Name      string        `xml:"name"`
	Duration  int           `xml:"duration"`
	Rate      xmlRate       `xml:"rate"`
	Start     int           `xml:"start"`
	End       int           `xml:"end"`
	In        int           `xml:"in"`
	Out       int           `xml:"out"`
	File      xmlFile       `xml:"file"`
	Filters   []xmlFilter   `xml:"filter"`
	Logging   *xmlLogging   `xml:"logginginfo,omitempty"`
	ColorInfo *xmlColorInfo `xml:"colorinfo,omitempty"`
	FilmData  *xmlFilmData  `xml:"filmdata,omitempty"`
}

type xmlFile struct {
	ID       string      `xml:"id,attr"`
	Name     string      `xml:"name"`
	PathURL  string      `xml:"pathurl,omitempty"`
	Rate     xmlRate     `xml:"rate"`
	Duration int         `xml:"duration"`
	Timecode xmlTimecode `xml:"timecode"`
	Samples  xmlSamples  `xml:"media>video>samplecharacteristics"`
}

type xmlTimecode struct {
	Rate          xmlRate `xml:"rate"`
	String        string  `xml:"string"`
	Frame         int     `xml:"frame"`
	DisplayFormat string  `xml:"displayformat"`
	Reel          *struct {
		Name string `xml:"name"`
	} `xml:"reel,omitempty"`
}

type xmlLogging struct {
	Scene       string `xml:"scene,omitempty"`
	ShotTake    string `xml:"shottake,omitempty"`
	Description string `xml:"description,omitempty"`
}

type xmlColorInfo struct {
	SOP string `xml:"asc_sop"`
	SAT string `xml:"asc_sat"`
}

type xmlFilmData struct {
	CameraRoll string `xml:"cameraroll"`
}

type xmlFilter struct {
	Effect xmlEffect `xml:"effect"`
}

type xmlEffect struct {
	Name       string         `xml:"name"`
	EffectID   string         `xml:"effectid"`
	EffectType string         `xml:"effecttype"`
	MediaType  string         `xml:"mediatype"`
	Parameters []xmlParameter `xml:"parameter"`
}

type xmlParameter struct {
	ID    string   `xml:"parameterid"`
	Name  string   `xml:"name"`
	Value xmlValue `xml:"value"`
}

type xmlValue struct {
	Text  string `xml:",chardata"`
	Horiz string `xml:"horiz,omitempty"`
	Vert  string `xml:"vert,omitempty"`
}

func xmlParam(id, name, value string) xmlParameter {
	return xmlParameter{ID: id, Name: name, Value: xmlValue{Text: value}}
}

// motionFilter writes a transform as the Basic Motion effect.
func motionFilter(t *seqxml.Transform) xmlFilter {
	return xmlFilter{Effect: xmlEffect{
		Name:       "Basic Motion",
		EffectID:   "basic",
		EffectType: "motion",
		MediaType:  "video",
		Parameters: []xmlParameter{
			xmlParam("scale", "Scale", num(t.Scale)),
			xmlParam("rotation", "Rotation", num(t.Rotation)),
			{ID: "center", Name: "Center", Value: xmlValue{Horiz: num(t.PositionX), Vert: num(t.PositionY)}},
		},
	}}
}

// speedFilter writes a retime as the Time Remap effect, speed in percent.
func speedFilter(sp *seqxml.Speed) xmlFilter {
	return xmlFilter{Effect: xmlEffect{
		Name:       "Time Remap",
		EffectID:   "timeremap",
		EffectType: "motion",
		MediaType:  "video",
		Parameters: []xmlParameter{
			xmlParam("variablespeed", "variablespeed", boolNum(sp.TimeRemapping)),
			xmlParam("speed", "speed", num(sp.Ratio*100)),
			xmlParam("reverse", "reverse", strings.ToUpper(strconv.FormatBool(sp.Reverse))),
		},
	}}
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func boolNum(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// GenerateXML writes an xmeml v5 project with one sequence holding every shot
// on a single video track. Shots keep their record timing when they have it;
// the rest are laid end to end after the latest record out.
func GenerateXML(shots []shot.Shot, opts Options) string {
	fps := frameRate(opts.FPS)
	width, height := opts.Width, opts.Height
	if width <= 0 {
		width = 1920
	}
	if height <= 0 {
		height = 1080
	}
	rate := xmlRate{Timebase: timecode.Base(fps), NTSC: "FALSE"}
	if math.Abs(fps-math.Round(fps)) > 0.001 {
		rate.NTSC = "TRUE"
	}
	dropFrame := opts.DropFrame || isDropRate(fps)

	seq := xmlSequence{
		ID:     "sequence-1",
		Name:   opts.Title,
		Rate:   rate,
		Format: xmlSamples{Width: width, Height: height, PixelAspectRatio: "square", Rate: &rate},
	}

	position := 0
	for i, s := range shots {
		in, out, length := sourceSpan(s, fps)
		start := position
		if s.RecordIn != "" {
			if f, err := timecode.ToFrames(s.RecordIn, fps); err == nil {
				start = f
			}
		}
		end := start + length
		position = max(position, end)

		clip := xmlClip{
			ID:       fmt.Sprintf("clipitem-%d", i+1),
			Name:     firstNonEmpty(s.ClipName, s.Code),
			Duration: length,
			Rate:     rate,
			Start:    start,
			End:      end,
			In:       in,
			Out:      out,
			File: xmlFile{
				ID:       fmt.Sprintf("file-%d", i+1),
				Name:     firstNonEmpty(s.SourceFileName, s.ClipName, s.Code),
				PathURL:  pathURL(s.SourceFileName),
				Rate:     rate,
				Duration: out,
				Timecode: xmlTimecode{
					Rate:          rate,
					String:        timecode.Format(0, fps, dropFrame),
					Frame:         0,
					DisplayFormat: displayFormat(dropFrame),
				},
				Samples: xmlSamples{Width: width, Height: height},
			},
		}
		if s.CameraRoll != "" {
			clip.File.Timecode.Reel = &struct {
				Name string `xml:"name"`
			}{Name: s.CameraRoll}
			clip.FilmData = &xmlFilmData{CameraRoll: s.CameraRoll}
		}
		if s.Scene != "" || s.Take != "" || s.VFXNotes != "" {
			clip.Logging = &xmlLogging{Scene: s.Scene, ShotTake: s.Take, Description: s.VFXNotes}
		}
		if s.Transform != nil {
			clip.Filters = append(clip.Filters, motionFilter(s.Transform))
		}
		if s.Speed != nil {
			clip.Filters = append(clip.Filters, speedFilter(s.Speed))
		}
		if s.CDL != nil {
			clip.ColorInfo = &xmlColorInfo{SOP: cdl.FormatSOP(*s.CDL), SAT: cdl.FormatSAT(s.CDL.Saturation)}
		}
		seq.Clips = append(seq.Clips, clip)
	}
	seq.Duration = position

	doc := xmeml{Version: "5", Project: xmlProject{Name: opts.Title, Sequence: seq}}
	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return ""
	}
	return xml.Header + "<!DOCTYPE xmeml>\n" + string(out) + "\n"
}

func displayFormat(dropFrame bool) string {
	if dropFrame {
		return "DF"
	}
	return "NDF"
}

// pathURL turns an absolute path into a file URL; other names are left empty.
func pathURL(name string) string {
	if !strings.HasPrefix(name, "/") {
		return ""
	}
	return "file://localhost" + name
}
