// Package timecode converts between SMPTE timecode strings and absolute frame counts.
//
// Arithmetic is done against an integer frame-rate bucket: fractional NTSC rates
// are rounded to the nearest integer (23.976 -> 24, 29.97 -> 30). Drop-frame is
// carried as a display flag only; frame numbers are never skipped.
package timecode

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const DefaultFPS = 24.0

var (
	ErrSegmentCount = errors.New("timecode must have four segments")
	ErrNonNumeric   = errors.New("timecode segment is not numeric")
)

type Timecode struct {
	Hours     int  `json:"hours"`
	Minutes   int  `json:"minutes"`
	Seconds   int  `json:"seconds"`
	Frames    int  `json:"frames"`
	DropFrame bool `json:"drop_frame"`
}

// Base returns the integer frame-rate bucket used for modulo arithmetic.
func Base(fps float64) int {
	base := int(math.Round(fps))
	if base <= 0 {
		return int(DefaultFPS)
	}
	return base
}

// Parse splits HH:MM:SS:FF (or HH:MM:SS;FF) into its fields. A semicolon
// anywhere marks the value as drop-frame.
func Parse(text string) (Timecode, error) {
	text = strings.TrimSpace(text)
	parts := strings.FieldsFunc(text, func(r rune) bool { return r == ':' || r == ';' })
	if len(parts) != 4 || strings.Count(text, ":")+strings.Count(text, ";") != 3 {
		return Timecode{}, fmt.Errorf("%w: %q", ErrSegmentCount, text)
	}

	var fields [4]int
	for i, part := range parts {
		n, err := parseSegment(part)
		if err != nil {
			return Timecode{}, fmt.Errorf("%w: %q", ErrNonNumeric, text)
		}
		fields[i] = n
	}

	return Timecode{
		Hours:     fields[0],
		Minutes:   fields[1],
		Seconds:   fields[2],
		Frames:    fields[3],
		DropFrame: strings.Contains(text, ";"),
	}, nil
}

func parseSegment(s string) (int, error) {
	if s == "" {
		return 0, ErrNonNumeric
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, ErrNonNumeric
		}
	}
	return strconv.Atoi(s)
}

// ToFrames converts a timecode string to an absolute frame count. Malformed
// input yields 0 together with the parse error so callers can warn and go on.
func ToFrames(text string, fps float64) (int, error) {
	tc, err := Parse(text)
	if err != nil {
		return 0, err
	}
	return tc.TotalFrames(fps), nil
}

func (t Timecode) TotalFrames(fps float64) int {
	base := Base(fps)
	return t.Hours*3600*base + t.Minutes*60*base + t.Seconds*base + t.Frames
}

// Valid reports whether every field is inside its range for the given rate.
func (t Timecode) Valid(fps float64) bool {
	return t.Hours >= 0 && t.Minutes >= 0 && t.Minutes < 60 &&
		t.Seconds >= 0 && t.Seconds < 60 &&
		t.Frames >= 0 && t.Frames < Base(fps)
}

func FromFrames(frames int, fps float64, dropFrame bool) Timecode {
	if frames < 0 {
		frames = 0
	}
	base := Base(fps)
	return Timecode{
		Hours:     frames / (3600 * base),
		Minutes:   (frames / (60 * base)) % 60,
		Seconds:   (frames / base) % 60,
		Frames:    frames % base,
		DropFrame: dropFrame,
	}
}

func (t Timecode) String() string {
	sep := ":"
	if t.DropFrame {
		sep = ";"
	}
	return fmt.Sprintf("%02d:%02d:%02d%s%02d", t.Hours, t.Minutes, t.Seconds, sep, t.Frames)
}

// Format renders an absolute frame count as timecode text.
func Format(frames int, fps float64, dropFrame bool) string {
	return FromFrames(frames, fps, dropFrame).String()
}

// Looks reports whether s has the shape HH:MM:SS:FF without checking ranges.
func Looks(s string) bool {
	_, err := Parse(s)
	return err == nil
}

// ParseFPS reads a frame-rate value such as "23.976" or "25". Blank or
// unusable values fall back to def.
func ParseFPS(s string, def float64) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}
	return v
}
