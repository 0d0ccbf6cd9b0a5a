package interchange

import (
	"testing"
)

const sampleEDL = "TITLE: REEL1\nFCM: NON-DROP FRAME\n\n" +
	"001  A001 V     C        01:00:00:00 01:00:01:00 01:00:00:00 01:00:01:00\n" +
	"* FROM CLIP NAME:  006_050\n"

const sampleALE = "Heading\nFIELD_DELIM\tTABS\nFPS\t25\n\nColumn\nName\tStart\tEnd\n\nData\nA001C001\t10:00:00:00\t10:00:01:00\n"

func TestDetect(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		content  string
		want     Format
	}{
		{name: "edl extension", filename: "cut.EDL", content: "anything", want: FormatEDL},
		{name: "ale extension", filename: "day1.ale", content: "", want: FormatALE},
		{name: "ale in txt", filename: "day1.txt", content: sampleALE, want: FormatALE},
		{name: "markers in txt", filename: "markers.txt", content: "VFX_1\t01:00:00:00\tV1\tred\tnote\n", want: FormatMarkers},
		{name: "filmscribe xml", filename: "list.xml", content: `<?xml version="1.0"?><FilmScribeFile Version="1.0">`, want: FormatFilmScribe},
		{name: "sequence xml", filename: "seq.xml", content: `<?xml version="1.0"?><xmeml version="5"><sequence>`, want: FormatSequenceXML},
		{name: "ccc as xml", filename: "grades.xml", content: `<ColorCorrectionCollection xmlns="urn:ASC:CDL:v1.01">`, want: FormatCDL},
		{name: "cc extension", filename: "A001.cc", content: "", want: FormatCDL},
		{name: "edl by content", filename: "", content: sampleEDL, want: FormatEDL},
		{name: "ale by content", filename: "upload", content: sampleALE, want: FormatALE},
		{name: "unknown", filename: "notes.doc", content: "hello world", want: FormatUnrecognized},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Detect(tc.filename, tc.content); got != tc.want {
				t.Fatalf("Detect(%q) = %s, want %s", tc.filename, got, tc.want)
			}
		})
	}
}

func TestDecode(t *testing.T) {
	if got := Decode([]byte("\xEF\xBB\xBFTITLE: X")); got != "TITLE: X" {
		t.Fatalf("utf-8 bom: %q", got)
	}
	le := []byte{0xFF, 0xFE, 'H', 0, 'i', 0}
	if got := Decode(le); got != "Hi" {
		t.Fatalf("utf-16le: %q", got)
	}
	be := []byte{0xFE, 0xFF, 0, 'H', 0, 'i'}
	if got := Decode(be); got != "Hi" {
		t.Fatalf("utf-16be: %q", got)
	}
	if got := Decode([]byte("Caf\xE9")); got != "Café" {
		t.Fatalf("windows-1252: %q", got)
	}
}

func TestParse_EDLShots(t *testing.T) {
	result := Parse("reel1.edl", []byte(sampleEDL), Options{FPS: 24})
	if result.Format != FormatEDL || result.EDL == nil {
		t.Fatalf("result = %+v", result)
	}
	shots := result.Shots()
	if len(shots) != 1 || shots[0].Code != "006_050" {
		t.Fatalf("shots = %+v", shots)
	}
	if result.RecordCount() != 1 {
		t.Fatalf("RecordCount = %d", result.RecordCount())
	}
}

func TestParse_ALESourceMedia(t *testing.T) {
	result := Parse("day1.ale", []byte(sampleALE), Options{ProjectID: "p1"})
	if result.Format != FormatALE || len(result.SourceMedia) != 1 {
		t.Fatalf("result = %+v", result)
	}
	r := result.SourceMedia[0]
	if r.ProjectID != "p1" || r.ALESource != "day1.ale" || r.FPS != 25 {
		t.Fatalf("record = %+v", r)
	}
	if r.DurationFrames == nil || *r.DurationFrames != 25 {
		t.Fatalf("DurationFrames = %v", r.DurationFrames)
	}
	if result.Shots() != nil {
		t.Fatalf("ALE has no shots")
	}
	if result.FPS(24) != 25 {
		t.Fatalf("FPS = %v", result.FPS(24))
	}
}

func TestParse_EmptyAndUnknown(t *testing.T) {
	empty := Parse("x.edl", []byte("  \n"), Options{})
	if empty.Format != FormatUnrecognized || len(empty.Warnings) != 1 {
		t.Fatalf("empty = %+v", empty)
	}
	unknown := Parse("x.doc", []byte("plain prose"), Options{})
	if unknown.Format != FormatUnrecognized || len(unknown.Warnings) != 1 {
		t.Fatalf("unknown = %+v", unknown)
	}
}

func TestParse_ForcedFormat(t *testing.T) {
	result := Parse("notes.bin", []byte("VFX_1\t01:00:00:00\tV1\tred\tfix sky\n"), Options{Format: FormatMarkers})
	if result.Markers == nil || len(result.Markers.Markers) != 1 {
		t.Fatalf("result = %+v", result)
	}
}
