package edl

import (
	"strings"
	"testing"
)

const sampleEDL = `TITLE: REEL1
FCM: NON-DROP FRAME

001  A001C003 V     C        14:22:10:05 14:22:12:05 01:00:00:00 01:00:02:00
* FROM CLIP NAME:  A001C003_220101_R1AB.mov
* SOURCE FILE: /Volumes/RAID/A001C003_220101_R1AB.mov
002  B002C011 V     D    030 09:10:00:00 09:10:03:00 01:00:02:00 01:00:05:00
M2   B002C011       048.0                09:10:00:00
* LOC: 01:00:03:00 RED     VFX_44_0010
003  A001C004 A     C        14:30:00:00 14:30:01:00 01:00:05:00 01:00:06:00
004  A001C004 AA/V  C        14:30:01:00 14:30:02:00 01:00:06:00 01:00:07:00
`

func TestParse_Header(t *testing.T) {
	result := Parse(sampleEDL, 24)

	if result.Title != "REEL1" {
		t.Fatalf("Title = %q, want REEL1", result.Title)
	}
	if result.FCM != FCMNonDropFrame {
		t.Fatalf("FCM = %q, want %q", result.FCM, FCMNonDropFrame)
	}
	if result.TotalEvents != 4 || result.VideoEvents != 2 || result.AudioEvents != 2 {
		t.Fatalf("counts total=%d video=%d audio=%d", result.TotalEvents, result.VideoEvents, result.AudioEvents)
	}
	if len(result.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", result.Warnings.Strings())
	}
}

func TestParse_EventFields(t *testing.T) {
	result := Parse(sampleEDL, 24)
	first := result.Events[0]

	if first.Number != 1 || first.Reel != "A001C003" || first.Track != "V" || first.EditType != "C" {
		t.Fatalf("first event columns mismatch: %+v", first)
	}
	if first.ClipName != "A001C003_220101_R1AB.mov" {
		t.Fatalf("ClipName = %q", first.ClipName)
	}
	if first.SourceFile != "/Volumes/RAID/A001C003_220101_R1AB.mov" {
		t.Fatalf("SourceFile = %q", first.SourceFile)
	}
	if first.DurationFrames != 48 {
		t.Fatalf("DurationFrames = %d, want 48", first.DurationFrames)
	}
	if len(first.Comments) != 2 {
		t.Fatalf("Comments = %v", first.Comments)
	}

	second := result.Events[1]
	if second.EditType != "D" || second.TransitionFrames != 30 {
		t.Fatalf("transition mismatch: %+v", second)
	}
	if second.ClipName != "" {
		t.Fatalf("comment leaked into next event: %q", second.ClipName)
	}
	if len(second.Comments) != 2 || !strings.HasPrefix(second.Comments[0], "Speed: M2") {
		t.Fatalf("speed or locator comments missing: %v", second.Comments)
	}
	if second.Comments[1] != "LOC: 01:00:03:00 RED     VFX_44_0010" {
		t.Fatalf("unknown comment not preserved verbatim: %q", second.Comments[1])
	}

	if result.Events[3].Kind() != TrackBoth {
		t.Fatalf("AA/V kind = %q", result.Events[3].Kind())
	}
}

func TestParse_DropFrame(t *testing.T) {
	input := "TITLE: DF\nFCM: DROP FRAME\n001  AX V C 00:00:00;00 00:00:01;00 01:00:00;00 01:00:01;00\n"
	result := Parse(input, 29.97)

	if result.FCM != FCMDropFrame {
		t.Fatalf("FCM = %q", result.FCM)
	}
	if len(result.Events) != 1 || result.Events[0].DurationFrames != 30 {
		t.Fatalf("events = %+v", result.Events)
	}
}

func TestParse_MalformedLine(t *testing.T) {
	input := "TITLE: BAD\n" +
		"001  AX V C 01:00:00:00 01:00:01:00 01:00:00:00 01:00:01:00\n" +
		"002  AX V C 01:00:00:00 01:00:01:00\n" +
		"garbage here\n" +
		"003  AX V C 01:00:01:00 01:00:02:00 01:00:01:00 01:00:02:00\n"
	result := Parse(input, 24)

	if len(result.Events) != 2 {
		t.Fatalf("expected two good events, got %d", len(result.Events))
	}
	if len(result.Warnings) != 2 {
		t.Fatalf("expected two warnings, got %v", result.Warnings.Strings())
	}
	if result.Warnings[0].Line != 3 || result.Warnings[1].Line != 4 {
		t.Fatalf("warning lines = %d, %d", result.Warnings[0].Line, result.Warnings[1].Line)
	}
}

func TestParse_HeaderNoiseIsQuiet(t *testing.T) {
	input := "TITLE: HDR\nCREATED BY RESOLVE 18.6\nFRAME RATE 24\n\n" +
		"001  AX V C 01:00:00:00 01:00:01:00 01:00:00:00 01:00:01:00\n" +
		"stray trailer line\n"
	result := Parse(input, 24)

	if len(result.Events) != 1 {
		t.Fatalf("events = %+v", result.Events)
	}
	if len(result.Warnings) != 1 || result.Warnings[0].Line != 6 {
		t.Fatalf("warnings = %v", result.Warnings.Strings())
	}
}

func TestParse_CRLFAndEmpty(t *testing.T) {
	result := Parse("TITLE: WIN\r\n001  AX V C 01:00:00:00 01:00:01:00 01:00:00:00 01:00:01:00\r\n", 24)
	if result.Title != "WIN" || len(result.Events) != 1 {
		t.Fatalf("CRLF parse failed: %+v", result)
	}

	empty := Parse("", 24)
	if empty.TotalEvents != 0 || empty.FCM != FCMUnknown || len(empty.Warnings) != 0 {
		t.Fatalf("empty input result = %+v", empty)
	}
}

func TestPicture(t *testing.T) {
	result := Parse(sampleEDL, 24)
	picture := result.Picture()
	if len(picture) != 3 || picture[0].Number != 1 || picture[1].Number != 2 || picture[2].Number != 4 {
		t.Fatalf("Picture() = %+v", picture)
	}
}
