package catalog

import (
	"context"
	"errors"
	"testing"
)

const sampleEDL = "TITLE: REEL1\nFCM: NON-DROP FRAME\n\n" +
	"001  A001C001 V     C        01:00:00:10 01:00:01:10 01:00:00:00 01:00:01:00\n" +
	"002  B001C002 V     C        05:00:00:00 05:00:02:00 01:00:01:00 01:00:03:00\n"

const sampleALE = "Heading\nFIELD_DELIM\tTABS\nVIDEO_FORMAT\t1080\nFPS\t24\n\n" +
	"Column\nName\tStart\tEnd\tCamera\tScene\n\n" +
	"Data\n" +
	"A001C001.mov\t01:00:00:00\t01:00:02:00\tA\t12\n" +
	"C001C001.mov\t07:00:00:00\t07:00:01:00\tC\t14\n"

const sampleMarkers = "VFX_ID\tTimecode\tTrack\tColor\tNote\n" +
	"M1\t01:00:00:12\tV1\tred\tremove boom\n" +
	"M2\t01:00:02:00\tV1\tblue\tsky replacement\n" +
	"M3\t02:00:00:00\tV1\tblue\toff the cut\n"

const sampleCCC = `<?xml version="1.0" encoding="UTF-8"?>
<ColorCorrectionCollection xmlns="urn:ASC:CDL:v1.01">
  <ColorCorrection id="REEL1_002">
    <SOPNode>
      <Slope>1.1 1 0.9</Slope>
      <Offset>0 0 0</Offset>
      <Power>1 1 1</Power>
    </SOPNode>
    <SatNode><Saturation>0.8</Saturation></SatNode>
  </ColorCorrection>
  <ColorCorrection id="grade-7">
    <Description>A001C001</Description>
    <SOPNode>
      <Slope>1.2 1.2 1.2</Slope>
      <Offset>0 0 0</Offset>
      <Power>1 1 1</Power>
    </SOPNode>
  </ColorCorrection>
</ColorCorrectionCollection>
`

func TestImportFile_TimelineThenLogs(t *testing.T) {
	database, repo := setupTestDB(t)
	defer database.Close()

	svc := NewService(repo, nil)
	ctx := context.Background()

	sum, err := svc.ImportFile(ctx, "p1", "reel1.edl", []byte(sampleEDL))
	if err != nil {
		t.Fatalf("ImportFile(edl) error = %v", err)
	}
	if sum.Format != "edl" || sum.Records != 2 || sum.ShotsUpserted != 2 || sum.ShotsLinked != 0 {
		t.Fatalf("edl summary = %+v", sum)
	}

	sum, err = svc.ImportFile(ctx, "p1", "day1.ale", []byte(sampleALE))
	if err != nil {
		t.Fatalf("ImportFile(ale) error = %v", err)
	}
	if sum.Format != "ale" || sum.SourceMediaAdded != 2 || sum.SourceMediaUpdated != 0 || sum.ShotsLinked != 1 {
		t.Fatalf("ale summary = %+v", sum)
	}

	media, _ := svc.ListSourceMedia(ctx, "p1")
	if len(media) != 2 || media[0].ClipName != "A001C001.mov" || media[0].ID == "" {
		t.Fatalf("media = %+v", media)
	}

	shots, _ := svc.ListShots(ctx, "p1")
	if len(shots) != 2 || shots[0].Code != "REEL1_001" || shots[0].SourceMediaID != media[0].ID {
		t.Fatalf("shots = %+v", shots)
	}
	if shots[1].SourceMediaID != "" || shots[0].SourceFile != "reel1.edl" {
		t.Fatalf("second shot = %+v", shots[1])
	}

	// Re-importing the same log updates rows in place.
	sum, _ = svc.ImportFile(ctx, "p1", "day1.ale", []byte(sampleALE))
	if sum.SourceMediaAdded != 0 || sum.SourceMediaUpdated != 2 {
		t.Fatalf("re-import summary = %+v", sum)
	}
	again, _ := svc.ListSourceMedia(ctx, "p1")
	if len(again) != 2 || again[0].ID != media[0].ID {
		t.Fatalf("re-import changed ids: %+v", again)
	}

	summary, err := svc.SummarizeSourceMedia(ctx, "p1")
	if err != nil || summary.TotalClips != 2 || len(summary.Scenes) != 2 {
		t.Fatalf("summary = %+v, %v", summary, err)
	}
}

func TestImportFile_MarkersAppendNotes(t *testing.T) {
	database, repo := setupTestDB(t)
	defer database.Close()

	svc := NewService(repo, nil)
	ctx := context.Background()

	if _, err := svc.ImportFile(ctx, "p1", "reel1.edl", []byte(sampleEDL)); err != nil {
		t.Fatalf("ImportFile(edl) error = %v", err)
	}

	sum, err := svc.ImportFile(ctx, "p1", "markers.txt", []byte(sampleMarkers))
	if err != nil {
		t.Fatalf("ImportFile(markers) error = %v", err)
	}
	if sum.Format != "markers" || sum.MarkersMatched != 2 || sum.MarkersUnmatched != 1 {
		t.Fatalf("markers summary = %+v", sum)
	}

	// Importing the same markers twice must not duplicate notes.
	svc.ImportFile(ctx, "p1", "markers.txt", []byte(sampleMarkers))

	shots, _ := svc.ListShots(ctx, "p1")
	if shots[0].VFXNotes != "remove boom" || shots[1].VFXNotes != "sky replacement" {
		t.Fatalf("notes = %q / %q", shots[0].VFXNotes, shots[1].VFXNotes)
	}

	// A timeline re-import without notes keeps the marker notes.
	svc.ImportFile(ctx, "p1", "reel1.edl", []byte(sampleEDL))
	shots, _ = svc.ListShots(ctx, "p1")
	if shots[0].VFXNotes != "remove boom" {
		t.Fatalf("notes lost on re-import: %q", shots[0].VFXNotes)
	}
}

func TestImportFile_CorrectionsGradeMediaAndShots(t *testing.T) {
	database, repo := setupTestDB(t)
	defer database.Close()

	svc := NewService(repo, nil)
	ctx := context.Background()

	svc.ImportFile(ctx, "p1", "reel1.edl", []byte(sampleEDL))
	svc.ImportFile(ctx, "p1", "day1.ale", []byte(sampleALE))

	sum, err := svc.ImportFile(ctx, "p1", "grades.ccc", []byte(sampleCCC))
	if err != nil {
		t.Fatalf("ImportFile(ccc) error = %v", err)
	}
	if sum.Format != "cdl" || sum.Records != 2 || sum.CorrectionsApplied != 2 {
		t.Fatalf("cdl summary = %+v", sum)
	}

	media, _ := svc.ListSourceMedia(ctx, "p1")
	if media[0].CDL == nil || media[0].CDL.Slope[0] != 1.2 || media[1].CDL != nil {
		t.Fatalf("media grades = %+v / %+v", media[0].CDL, media[1].CDL)
	}

	shots, _ := svc.ListShots(ctx, "p1")
	if shots[0].CDL != nil {
		t.Fatalf("first shot should stay ungraded: %+v", shots[0].CDL)
	}
	if shots[1].CDL == nil || shots[1].CDL.Saturation != 0.8 {
		t.Fatalf("second shot grade = %+v", shots[1].CDL)
	}
	if shots[0].SourceMediaID == "" {
		t.Fatal("grading a shot must not drop its media link")
	}
}

func TestImportFile_Errors(t *testing.T) {
	database, repo := setupTestDB(t)
	defer database.Close()

	svc := NewService(repo, nil)
	ctx := context.Background()

	_, err := svc.ImportFile(ctx, "p1", "readme.md", []byte("hello there"))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("err = %v, want ErrUnsupportedFormat", err)
	}
	if _, err := svc.ImportFile(ctx, "p1", "empty.edl", nil); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("empty input err = %v", err)
	}
	if _, err := svc.ImportFile(ctx, "", "reel1.edl", []byte(sampleEDL)); err == nil {
		t.Fatal("expected error for missing project id")
	}
}

func TestImportFile_MarkersOnOverlapGoToEarlierShot(t *testing.T) {
	database, repo := setupTestDB(t)
	defer database.Close()

	svc := NewService(repo, nil)
	ctx := context.Background()

	timeline := "TITLE: OVERLAP\n" +
		"001  A001 V     C        10:00:00:00 10:00:04:00 01:00:00:00 01:00:04:00\n" +
		"* FROM CLIP NAME:  ZZZ001\n" +
		"002  A002 V     C        11:00:00:00 11:00:04:00 01:00:02:00 01:00:06:00\n" +
		"* FROM CLIP NAME:  AAA001\n"
	if _, err := svc.ImportFile(ctx, "p1", "overlap.edl", []byte(timeline)); err != nil {
		t.Fatalf("ImportFile(edl) error = %v", err)
	}
	markers := "M1\t01:00:03:00\tV1\tred\toverlap note\n"
	sum, err := svc.ImportFile(ctx, "p1", "markers.txt", []byte(markers))
	if err != nil {
		t.Fatalf("ImportFile(markers) error = %v", err)
	}
	if sum.MarkersMatched != 1 {
		t.Fatalf("markers summary = %+v", sum)
	}

	shots, _ := svc.ListShots(ctx, "p1")
	notes := map[string]string{}
	for _, s := range shots {
		notes[s.Code] = s.VFXNotes
	}
	if notes["ZZZ001"] != "overlap note" || notes["AAA001"] != "" {
		t.Fatalf("notes = %v", notes)
	}
}

func TestMatchSourceMedia_Strategies(t *testing.T) {
	database, repo := setupTestDB(t)
	defer database.Close()

	svc := NewService(repo, nil)
	ctx := context.Background()

	svc.ImportFile(ctx, "p1", "day1.ale", []byte(sampleALE))
	edl := "TITLE: REEL2\n" +
		"001  C001 V     C        07:00:00:00 07:00:01:00 01:00:00:00 01:00:01:00\n" +
		"* FROM CLIP NAME:  C001C001\n"
	if _, err := svc.ImportFile(ctx, "p1", "reel2.edl", []byte(edl)); err != nil {
		t.Fatalf("ImportFile error = %v", err)
	}

	m, err := svc.MatchSourceMedia(ctx, "p1")
	if err != nil {
		t.Fatalf("MatchSourceMedia() error = %v", err)
	}
	if m.Shots != 1 || m.Linked != 1 || len(m.Unmatched) != 0 {
		t.Fatalf("match summary = %+v", m)
	}

	other, _ := svc.MatchSourceMedia(ctx, "p2")
	if other.Shots != 0 || other.Linked != 0 {
		t.Fatalf("projects must not mix: %+v", other)
	}
}
