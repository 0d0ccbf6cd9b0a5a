// Package filmscribe reads Avid FilmScribe assemble lists and pairs their
// locator comments (VFX markers) with the events they fall on.
package filmscribe

import (
	"encoding/xml"
	"errors"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/heimdex/heimdex-turnover/internal/diag"
	"github.com/heimdex/heimdex-turnover/internal/timecode"
)

const locatorType = "Locator"

type Event struct {
	Number         int      `json:"event_number"`
	Type           string   `json:"type"`
	Length         int      `json:"length"`
	RecordIn       string   `json:"record_in"`
	RecordOut      string   `json:"record_out"`
	RecordInFrame  int      `json:"record_in_frame"`
	RecordOutFrame int      `json:"record_out_frame"`
	ClipName       string   `json:"clip_name,omitempty"`
	TapeName       string   `json:"tape_name,omitempty"`
	TapeID         string   `json:"tape_id,omitempty"`
	SourceIn       string   `json:"source_in,omitempty"`
	SourceOut      string   `json:"source_out,omitempty"`
	Scene          string   `json:"scene,omitempty"`
	Take           string   `json:"take,omitempty"`
	Camera         string   `json:"camera,omitempty"`
	Comments       string   `json:"comments,omitempty"`
	VFXNotes       []string `json:"vfx_notes"`
	VFXShotCode    string   `json:"vfx_shot_code,omitempty"`
	VFXDescription string   `json:"vfx_description,omitempty"`
}

// HasClip excludes events without a source clip and Avid optical placeholders.
func (e Event) HasClip() bool {
	return e.ClipName != "" && !strings.HasPrefix(e.ClipName, "Opt")
}

func (e Event) contains(frame int) bool {
	return frame >= e.RecordInFrame && frame <= e.RecordOutFrame
}

type Locator struct {
	Timecode       string `json:"timecode"`
	Frame          int    `json:"frame"`
	Text           string `json:"text"`
	ClipName       string `json:"clip_name,omitempty"`
	Color          string `json:"color,omitempty"`
	SourceTimecode string `json:"source_timecode,omitempty"`
	Camera         string `json:"camera,omitempty"`
	VFXScene       string `json:"vfx_scene,omitempty"`
	VFXSequence    string `json:"vfx_sequence,omitempty"`
	VFXShotCode    string `json:"vfx_shot_code,omitempty"`
	VFXDescription string `json:"vfx_description,omitempty"`

	hasFrame bool
}

func (l Locator) HasClip() bool {
	return l.ClipName != "" && !strings.HasPrefix(l.ClipName, "Opt")
}

// MasterFrame is the locator position on the master timeline.
func (l Locator) MasterFrame(editRate float64) int {
	if l.hasFrame {
		return l.Frame
	}
	f, _ := timecode.ToFrames(l.Timecode, editRate)
	return f
}

type Result struct {
	Title             string    `json:"title"`
	Tracks            string    `json:"tracks"`
	EventCount        int       `json:"event_count"`
	EditRate          float64   `json:"edit_rate"`
	MasterDuration    string    `json:"master_duration,omitempty"`
	Events            []Event   `json:"events"`
	Locators          []Locator `json:"locators"`
	EventsWithClips   int       `json:"events_with_clips"`
	EventsWithVFX     int       `json:"events_with_vfx"`
	TotalVFXMarkers   int       `json:"total_vfx_markers"`
	MatchedVFXMarkers int       `json:"matched_vfx_markers"`
	Warnings          diag.List `json:"warnings"`
}

// EventAt returns the first event whose master range contains frame.
func (r *Result) EventAt(frame int) (*Event, bool) {
	for i := range r.Events {
		if r.Events[i].contains(frame) {
			return &r.Events[i], true
		}
	}
	return nil, false
}

// Detect reports whether content looks like a FilmScribe document.
func Detect(content string) bool {
	return strings.Contains(content, "<FilmScribeFile") || strings.Contains(content, "<AssembleList>")
}

var (
	vfxID        = regexp.MustCompile(`(?i)^VFX[_ ]?(\d+)[_ ](\d+)\s*[-–—]?\s*(.*)`)
	cameraPrefix = regexp.MustCompile(`^([A-Z])(?:[\s_]|\d)`)
)

// Parse reads a FilmScribe document. Malformed XML stops parsing with a
// warning and keeps what was read.
func Parse(content string) *Result {
	result := &Result{
		Title:    "Unknown",
		Tracks:   "V1",
		EditRate: timecode.DefaultFPS,
		Events:   []Event{},
		Locators: []Locator{},
	}
	expected := -1

	dec := xml.NewDecoder(strings.NewReader(content))
	dec.Strict = false
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
		case "ListHead":
			var head fsHead
			if err := dec.DecodeElement(&head, &start); err != nil {
				result.Warnings.Addf(0, "", "list head: %v", err)
				continue
			}
			expected = result.applyHead(head)
		case "Event":
			var fe fsEvent
			if err := dec.DecodeElement(&fe, &start); err != nil {
				result.Warnings.Addf(0, "", "event %d: %v", len(result.Events)+1, err)
				continue
			}
			result.Events = append(result.Events, buildEvent(fe))
			for _, c := range fe.Comments {
				result.addLocator(c)
			}
		case "Comment":
			if attr(start, "Type") != locatorType {
				continue
			}
			var c fsComment
			if err := dec.DecodeElement(&c, &start); err != nil {
				result.Warnings.Addf(0, "", "locator %d: %v", len(result.Locators)+1, err)
				continue
			}
			result.addLocator(c)
		}
	}

	result.matchLocators()
	result.count()
	if expected >= 0 && expected != len(result.Events) {
		result.Warnings.Addf(0, "", "expected %d events, found %d", expected, len(result.Events))
	}
	return result
}

func (r *Result) applyHead(h fsHead) int {
	if v := strings.TrimSpace(h.Title); v != "" {
		r.Title = v
	}
	if v := strings.TrimSpace(h.Tracks); v != "" {
		r.Tracks = v
	}
	r.EditRate = timecode.ParseFPS(h.EditRate, timecode.DefaultFPS)
	r.MasterDuration = h.MasterDuration.timecode("TC1")

	if v := strings.TrimSpace(h.EventCount); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return -1
}

func buildEvent(fe fsEvent) Event {
	e := Event{
		Number:         atoi(fe.Num),
		Type:           fe.Type,
		Length:         atoi(fe.Length),
		RecordIn:       fe.Master.Start.timecode("TC1"),
		RecordOut:      fe.Master.End.timecode("TC1"),
		RecordInFrame:  atoi(fe.Master.Start.Frame),
		RecordOutFrame: atoi(fe.Master.End.Frame),
		VFXNotes:       []string{},
	}
	if len(fe.Sources) == 0 {
		return e
	}

	src := fe.Sources[0]
	e.ClipName = strings.TrimSpace(src.ClipName)
	e.TapeName = strings.TrimSpace(src.TapeName)
	e.TapeID = src.custom("TapeID")
	e.SourceIn = src.Start.timecode("Start TC")
	e.SourceOut = src.End.timecode("Start TC")
	e.Scene = src.custom("SCENE")
	e.Take = src.custom("TAKE")
	e.Camera = src.custom("CAMERA")
	e.Comments = src.custom("Comments")
	return e
}

func (r *Result) addLocator(c fsComment) {
	if c.Type != locatorType {
		return
	}
	text := strings.TrimSpace(c.Text)
	if text == "" {
		return
	}

	loc := Locator{
		Timecode: c.Master.timecode("TC1"),
		Text:     text,
		ClipName: strings.TrimSpace(c.ClipName),
		Color:    strings.TrimSpace(c.Color),
	}
	if loc.Timecode == "" {
		loc.Timecode = c.Master.Start.timecode("TC1")
	}
	frame := c.Master.Frame
	if frame == "" {
		frame = c.Master.Start.Frame
	}
	if n, err := strconv.Atoi(strings.TrimSpace(frame)); err == nil {
		loc.Frame, loc.hasFrame = n, true
	}
	if loc.ClipName == "" {
		loc.ClipName = strings.TrimSpace(c.Source.ClipName)
	}

	loc.SourceTimecode = findTimecode(c.Source.Timecodes, "Start TC")
	if loc.SourceTimecode == "" {
		loc.SourceTimecode = c.Source.Start.timecode("Start TC")
	}
	if m := cameraPrefix.FindStringSubmatch(loc.ClipName); m != nil {
		loc.Camera = m[1]
	}
	if m := vfxID.FindStringSubmatch(text); m != nil {
		loc.VFXScene = m[1]
		loc.VFXSequence = m[2]
		loc.VFXShotCode = m[1] + "_" + m[2]
		loc.VFXDescription = strings.TrimSpace(m[3])
	}
	r.Locators = append(r.Locators, loc)
}

// matchLocators attaches each locator to the first event whose closed
// master range holds it.
func (r *Result) matchLocators() {
	for _, loc := range r.Locators {
		event, ok := r.EventAt(loc.MasterFrame(r.EditRate))
		if !ok {
			continue
		}
		event.VFXNotes = append(event.VFXNotes, loc.Text)
		if event.VFXShotCode == "" && loc.VFXShotCode != "" {
			event.VFXShotCode = loc.VFXShotCode
			event.VFXDescription = loc.VFXDescription
		}
		r.MatchedVFXMarkers++
	}
}

func (r *Result) count() {
	r.EventCount = len(r.Events)
	r.TotalVFXMarkers = len(r.Locators)

	for _, e := range r.Events {
		if e.HasClip() {
			r.EventsWithClips++
		}
	}
	if r.EventsWithClips > 0 {
		for _, e := range r.Events {
			if e.HasClip() && e.VFXShotCode != "" {
				r.EventsWithVFX++
			}
		}
		return
	}
	for _, l := range r.Locators {
		if l.HasClip() && l.VFXShotCode != "" {
			r.EventsWithVFX++
		}
	}
}

func findTimecode(tcs []fsTimecode, typ string) string {
	return fsPoint{Timecodes: tcs}.timecode(typ)
}

func attr(se xml.StartElement, name string) string {
	for _, a := range se.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func atoi(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}
