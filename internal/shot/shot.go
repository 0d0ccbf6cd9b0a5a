// Package shot turns parsed timelines into the normalized shot list that the
// matching and export stages work on.
package shot

import (
	"strings"

	"github.com/heimdex/heimdex-turnover/internal/cdl"
	"github.com/heimdex/heimdex-turnover/internal/edl"
	"github.com/heimdex/heimdex-turnover/internal/filmscribe"
	"github.com/heimdex/heimdex-turnover/internal/seqxml"
	"github.com/heimdex/heimdex-turnover/internal/timecode"
)

type Shot struct {
	Code           string            `json:"code"`
	ClipName       string            `json:"clip_name,omitempty"`
	SourceFileName string            `json:"source_file_name,omitempty"`
	CameraRoll     string            `json:"camera_roll,omitempty"`
	SourceIn       string            `json:"source_in,omitempty"`
	SourceOut      string            `json:"source_out,omitempty"`
	RecordIn       string            `json:"record_in,omitempty"`
	RecordOut      string            `json:"record_out,omitempty"`
	SourceFrame    *int              `json:"source_frame,omitempty"`
	DurationFrames int               `json:"duration_frames"`
	VFXNotes       string            `json:"vfx_notes,omitempty"`
	Scene          string            `json:"scene,omitempty"`
	Take           string            `json:"take,omitempty"`
	Camera         string            `json:"camera,omitempty"`
	Transform      *seqxml.Transform `json:"transform,omitempty"`
	Speed          *seqxml.Speed     `json:"speed,omitempty"`
	CDL            *cdl.Correction   `json:"cdl,omitempty"`
}

// MatchName is the name used to look the shot up in source media: the
// source file when known, otherwise the clip name.
func (s Shot) MatchName() string {
	if s.SourceFileName != "" {
		return s.SourceFileName
	}
	return s.ClipName
}

// FromEDL builds one shot per picture event.
func FromEDL(result *edl.Result) []Shot {
	events := result.Picture()
	shots := make([]Shot, 0, len(events))
	for i, e := range events {
		frame := e.FrameStart
		shots = append(shots, Shot{
			Code: Code(CodeInput{
				ClipName: e.ClipName,
				Title:    result.Title,
				Reel:     e.Reel,
				Index:    i,
				Total:    len(events),
			}),
			ClipName:       e.ClipName,
			SourceFileName: e.SourceFile,
			CameraRoll:     e.Reel,
			SourceIn:       e.SourceIn,
			SourceOut:      e.SourceOut,
			RecordIn:       e.RecordIn,
			RecordOut:      e.RecordOut,
			SourceFrame:    &frame,
			DurationFrames: e.DurationFrames,
		})
	}
	return shots
}

// FromSequences builds one shot per video clip item, indexing each sequence
// separately.
func FromSequences(result *seqxml.Result) []Shot {
	var shots []Shot
	for _, seq := range result.Sequences {
		for i, c := range seq.Clips {
			s := Shot{
				Code: Code(CodeInput{
					ClipName: c.Name,
					Title:    seq.Name,
					Reel:     c.ReelName,
					Index:    i,
					Total:    len(seq.Clips),
				}),
				ClipName:       c.Name,
				SourceFileName: c.SourceFileName,
				CameraRoll:     firstNonEmpty(c.CameraRoll, c.ReelName),
				RecordIn:       timecode.Format(c.Start, seq.FPS, false),
				RecordOut:      timecode.Format(c.End, seq.FPS, false),
				DurationFrames: c.End - c.Start,
				VFXNotes:       c.Description,
				Scene:          c.Scene,
				Take:           c.Take,
				Transform:      c.Transform,
				Speed:          c.Speed,
				CDL:            c.CDL,
			}
			if s.DurationFrames <= 0 {
				s.DurationFrames = c.Out - c.In
			}

			base := 0
			if c.SourceTimecodeFrame != nil {
				base = *c.SourceTimecodeFrame
				frame := base + c.In
				s.SourceFrame = &frame
			}
			s.SourceIn = timecode.Format(base+c.In, seq.FPS, false)
			s.SourceOut = timecode.Format(base+c.Out, seq.FPS, false)
			shots = append(shots, s)
		}
	}
	return shots
}

// FromFilmScribe promotes events carrying a VFX marker code. When no event
// references a source clip, locators with a VFX code become the shots and
// borrow timing from the event they fall on.
func FromFilmScribe(result *filmscribe.Result) []Shot {
	shots := []Shot{}
	if result.EventsWithClips > 0 {
		for _, e := range result.Events {
			if !e.HasClip() || e.VFXShotCode == "" {
				continue
			}
			notes := e.VFXDescription
			if notes == "" {
				notes = strings.Join(e.VFXNotes, "\n")
			}
			shots = append(shots, Shot{
				Code:           e.VFXShotCode,
				ClipName:       e.ClipName,
				CameraRoll:     firstNonEmpty(e.TapeID, e.TapeName),
				SourceIn:       e.SourceIn,
				SourceOut:      e.SourceOut,
				RecordIn:       e.RecordIn,
				RecordOut:      e.RecordOut,
				DurationFrames: e.Length,
				VFXNotes:       notes,
				Scene:          e.Scene,
				Take:           e.Take,
				Camera:         e.Camera,
			})
		}
		return shots
	}

	for _, loc := range result.Locators {
		if !loc.HasClip() || loc.VFXShotCode == "" {
			continue
		}
		s := Shot{
			Code:     loc.VFXShotCode,
			ClipName: loc.ClipName,
			SourceIn: loc.SourceTimecode,
			RecordIn: loc.Timecode,
			VFXNotes: loc.VFXDescription,
			Scene:    loc.VFXScene,
			Camera:   loc.Camera,
		}
		if e, ok := result.EventAt(loc.MasterFrame(result.EditRate)); ok {
			s.RecordOut = e.RecordOut
			s.DurationFrames = e.Length
		}
		shots = append(shots, s)
	}
	return shots
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
