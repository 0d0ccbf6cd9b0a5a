package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/heimdex/heimdex-turnover/internal/shot"
	"github.com/heimdex/heimdex-turnover/internal/timecode"
)

// defaultLength is used for shots that carry neither timing nor a duration.
const defaultLength = 100

func GenerateEDL(shots []shot.Shot, opts Options) string {
	fps := frameRate(opts.FPS)
	dropFrame := opts.DropFrame || isDropRate(fps)

	lines := []string{fmt.Sprintf("TITLE: %s", opts.Title)}
	if dropFrame {
		lines = append(lines, "FCM: DROP FRAME")
	} else {
		lines = append(lines, "FCM: NON-DROP FRAME")
	}
	lines = append(lines, "")

	recordOffset := 0
	for i, s := range shots {
		srcIn, srcOut, length := sourceSpan(s, fps)
		recIn, recOut := s.RecordIn, s.RecordOut
		if recIn == "" || recOut == "" {
			recIn = timecode.Format(recordOffset, fps, dropFrame)
			recOut = timecode.Format(recordOffset+length, fps, dropFrame)
		}

		lines = append(lines,
			fmt.Sprintf("%03d  %-8s %-5s C        %s %s %s %s", i+1, reelName(s), "V",
				timecode.Format(srcIn, fps, dropFrame), timecode.Format(srcOut, fps, dropFrame), recIn, recOut),
		)
		if s.ClipName != "" {
			lines = append(lines, fmt.Sprintf("* FROM CLIP NAME:  %s", s.ClipName))
		}
		if s.SourceFileName != "" {
			lines = append(lines, fmt.Sprintf("* SOURCE FILE: %s", s.SourceFileName))
		}
		for _, note := range strings.Split(s.VFXNotes, "\n") {
			if note = strings.TrimSpace(note); note != "" {
				lines = append(lines, fmt.Sprintf("* COMMENT: %s", note))
			}
		}

		recordOffset += length
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

// sourceSpan returns source in/out frames and the event length. Missing
// source timecodes start at zero and run for the shot's duration.
func sourceSpan(s shot.Shot, fps float64) (in, out, length int) {
	length = s.DurationFrames
	inOK, outOK := false, false
	if s.SourceIn != "" {
		if f, err := timecode.ToFrames(s.SourceIn, fps); err == nil {
			in, inOK = f, true
		}
	}
	if s.SourceOut != "" {
		if f, err := timecode.ToFrames(s.SourceOut, fps); err == nil {
			out, outOK = f, true
		}
	}
	if inOK && outOK && out > in {
		if length <= 0 {
			length = out - in
		}
		return in, out, length
	}
	if length <= 0 {
		length = defaultLength
	}
	return in, in + length, length
}

// reelName is the camera roll, falling back to the clip name, then AX.
// Long reels are written whole, as Resolve and Premiere do; whitespace would
// split the event line.
func reelName(s shot.Shot) string {
	reel := strings.Join(strings.Fields(firstNonEmpty(s.CameraRoll, s.ClipName)), "_")
	if reel == "" {
		return "AX"
	}
	return reel
}

func frameRate(fps float64) float64 {
	if fps <= 0 || math.IsNaN(fps) || math.IsInf(fps, 0) {
		return timecode.DefaultFPS
	}
	return fps
}

func isDropRate(fps float64) bool {
	return math.Abs(fps-29.97) < 0.01 || math.Abs(fps-59.94) < 0.01
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
