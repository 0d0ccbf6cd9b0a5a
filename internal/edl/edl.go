// Package edl reads CMX 3600 edit decision lists as written by Avid, Premiere
// and Resolve.
package edl

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/heimdex/heimdex-turnover/internal/diag"
	"github.com/heimdex/heimdex-turnover/internal/timecode"
)

type FCM string

const (
	FCMDropFrame    FCM = "DROP_FRAME"
	FCMNonDropFrame FCM = "NON_DROP_FRAME"
	FCMUnknown      FCM = "UNKNOWN"
)

type TrackKind string

const (
	TrackVideo TrackKind = "video"
	TrackAudio TrackKind = "audio"
	TrackBoth  TrackKind = "both"
)

type Event struct {
	Number           int      `json:"event_number"`
	Reel             string   `json:"reel"`
	Track            string   `json:"track"`
	EditType         string   `json:"edit_type"`
	TransitionFrames int      `json:"transition_frames,omitempty"`
	SourceIn         string   `json:"source_in"`
	SourceOut        string   `json:"source_out"`
	RecordIn         string   `json:"record_in"`
	RecordOut        string   `json:"record_out"`
	ClipName         string   `json:"clip_name,omitempty"`
	SourceFile       string   `json:"source_file,omitempty"`
	Comments         []string `json:"comments"`
	FrameStart       int      `json:"frame_start"`
	FrameEnd         int      `json:"frame_end"`
	DurationFrames   int      `json:"duration_frames"`
}

// Kind classifies the raw track column. B and AA/V carry picture and sound.
func (e Event) Kind() TrackKind {
	switch {
	case e.Track == "V":
		return TrackVideo
	case e.Track == "B" || strings.Contains(e.Track, "V"):
		return TrackBoth
	default:
		return TrackAudio
	}
}

type Result struct {
	Title       string    `json:"title"`
	FCM         FCM       `json:"fcm"`
	Events      []Event   `json:"events"`
	Warnings    diag.List `json:"warnings"`
	TotalEvents int       `json:"total_events"`
	// VideoEvents counts V-only events; AudioEvents counts every A track,
	// AA/V included.
	VideoEvents int `json:"video_events"`
	AudioEvents int `json:"audio_events"`
}

// Picture returns the events that carry picture (V, B and AA/V) in list order.
func (r *Result) Picture() []Event {
	var out []Event
	for _, e := range r.Events {
		if e.Kind() != TrackAudio {
			out = append(out, e)
		}
	}
	return out
}

const tcPattern = `(\d{2}:\d{2}:\d{2}[:;]\d{2})`

var (
	eventLine = regexp.MustCompile(`^(\d{3,6})\s+(\S+)\s+(AA/V|AA|A\d*|V|B)\s+(C|D|W\d{3}|KB|KO|K)\s*(\d{3})?\s+` +
		tcPattern + `\s+` + tcPattern + `\s+` + tcPattern + `\s+` + tcPattern)
	titleLine    = regexp.MustCompile(`(?i)^TITLE:\s*(.+)`)
	fcmLine      = regexp.MustCompile(`(?i)^FCM:\s*(DROP\s*FRAME|NON[\s-]*DROP\s*FRAME)`)
	clipNameTag  = regexp.MustCompile(`(?i)FROM CLIP NAME:\s*(.+)`)
	sourceFile   = regexp.MustCompile(`(?i)SOURCE FILE:\s*(.+)`)
	speedLine    = regexp.MustCompile(`^M2\s+`)
	commentStrip = regexp.MustCompile(`^\*\s*`)
)

// Parse reads an EDL. fps drives the frame arithmetic for frame_start,
// frame_end and duration_frames; zero means 24. It never fails: lines it
// cannot place are reported as warnings.
func Parse(content string, fps float64) *Result {
	if fps <= 0 {
		fps = timecode.DefaultFPS
	}

	result := &Result{FCM: FCMUnknown, Events: []Event{}}
	var current *Event

	flush := func() {
		if current != nil {
			result.Events = append(result.Events, *current)
			current = nil
		}
	}

	for i, raw := range splitLines(content) {
		lineNum := i + 1
		line := strings.TrimRight(raw, " \t")
		if strings.TrimSpace(line) == "" {
			continue
		}

		if m := titleLine.FindStringSubmatch(line); m != nil {
			result.Title = strings.TrimSpace(m[1])
			continue
		}

		if m := fcmLine.FindStringSubmatch(line); m != nil {
			if strings.Contains(strings.ToUpper(m[1]), "NON") {
				result.FCM = FCMNonDropFrame
			} else {
				result.FCM = FCMDropFrame
			}
			continue
		}

		if m := eventLine.FindStringSubmatch(line); m != nil {
			flush()
			current = newEvent(m, fps)
			continue
		}

		if strings.HasPrefix(line, "*") || strings.HasPrefix(line, ">>>") {
			if current == nil {
				continue
			}
			if m := clipNameTag.FindStringSubmatch(line); m != nil {
				current.ClipName = strings.TrimSpace(m[1])
			}
			if m := sourceFile.FindStringSubmatch(line); m != nil {
				current.SourceFile = strings.TrimSpace(m[1])
			}
			current.Comments = append(current.Comments, strings.TrimSpace(commentStrip.ReplaceAllString(line, "")))
			continue
		}

		if speedLine.MatchString(line) {
			if current != nil {
				current.Comments = append(current.Comments, "Speed: "+strings.TrimSpace(line))
			}
			continue
		}

		// Header lines before the first event vary by vendor.
		if current != nil || len(result.Events) > 0 {
			result.Warnings.Addf(lineNum, line, "unrecognized line format")
		}
	}
	flush()

	result.TotalEvents = len(result.Events)
	for _, e := range result.Events {
		if e.Track == "V" {
			result.VideoEvents++
		}
		if strings.HasPrefix(e.Track, "A") {
			result.AudioEvents++
		}
	}
	return result
}

func newEvent(m []string, fps float64) *Event {
	number, _ := strconv.Atoi(m[1])
	e := &Event{
		Number:    number,
		Reel:      m[2],
		Track:     m[3],
		EditType:  m[4],
		SourceIn:  m[6],
		SourceOut: m[7],
		RecordIn:  m[8],
		RecordOut: m[9],
		Comments:  []string{},
	}
	if m[5] != "" {
		e.TransitionFrames, _ = strconv.Atoi(m[5])
	}
	// The regexp guarantees four numeric segments, so conversion cannot fail.
	e.FrameStart, _ = timecode.ToFrames(e.SourceIn, fps)
	e.FrameEnd, _ = timecode.ToFrames(e.SourceOut, fps)
	e.DurationFrames = e.FrameEnd - e.FrameStart
	return e
}

func splitLines(content string) []string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	return strings.Split(content, "\n")
}
